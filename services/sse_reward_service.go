package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"click-reward-system/models"

	"github.com/gofiber/fiber/v2"
)

type rewardFeed interface {
	ListRewards(ctx context.Context, userID string, limit int) ([]models.RewardRecord, error)
	RewardsSince(ctx context.Context, userID string, cursor time.Time) ([]models.RewardRecord, error)
}

// RewardStreamService pushes newly recorded rewards to the user over SSE.
type RewardStreamService struct {
	Rewards      rewardFeed
	PollInterval time.Duration
}

func NewRewardStreamService(rewards rewardFeed) *RewardStreamService {
	return &RewardStreamService{Rewards: rewards, PollInterval: 2 * time.Second}
}

// StreamUserRewardsSSE streams reward records created after the connection opened
func (s *RewardStreamService) StreamUserRewardsSSE(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	done := c.Context().Done()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx := context.Background()
		ticker := time.NewTicker(s.PollInterval)
		defer ticker.Stop()

		var cursor time.Time
		if latest, err := s.Rewards.ListRewards(ctx, userID, 1); err != nil {
			log.Printf("[SSE] init error for user %s: %v", userID, err)
		} else if len(latest) > 0 {
			cursor = latest[0].CreatedAt
		}

		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-ticker.C:
				records, err := s.Rewards.RewardsSince(ctx, userID, cursor)
				if err != nil {
					log.Printf("[SSE] query error for user %s: %v", userID, err)
					continue
				}
				if len(records) == 0 {
					// keepalive so dead clients surface on Flush
					w.WriteString(":\n\n")
				} else {
					cursor = records[len(records)-1].CreatedAt
					for _, r := range records {
						payload, _ := json.Marshal(r)
						fmt.Fprintf(w, "event: reward\ndata: %s\n\n", payload)
					}
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})

	return nil
}
