// services/click_service.go
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"click-reward-system/models"

	"github.com/google/uuid"
)

type ClickStatus string

const (
	ClickAccepted        ClickStatus = "accepted"
	ClickRewarded        ClickStatus = "rewarded"
	ClickQuotaExceeded   ClickStatus = "quota_exceeded"
	ClickAccountNotFound ClickStatus = "account_not_found"
)

// ClickResult is what one global click leaves behind.
// RewardPending marks a granted reward whose record could not be written.
type ClickResult struct {
	Status        ClickStatus          `json:"status"`
	ClicksToday   int64                `json:"clicks_today"`
	DailyQuota    int64                `json:"daily_quota"`
	TotalClicks   int64                `json:"total_clicks"`
	GlobalCounter int64                `json:"global_counter"`
	Reward        *models.RewardRecord `json:"reward,omitempty"`
	RewardPending bool                 `json:"reward_pending,omitempty"`
}

// Accepted reports whether the click was counted.
func (r ClickResult) Accepted() bool {
	return r.Status == ClickAccepted || r.Status == ClickRewarded
}

// GlobalInfo is the public view of the game: where the counter is and what comes next.
type GlobalInfo struct {
	GlobalCounter int64              `json:"global_counter"`
	Current       models.RewardLevel `json:"current_target"`
	Next          models.RewardLevel `json:"next_target"`
	ClicksToGo    int64              `json:"clicks_to_go"`
}

type ClickService struct {
	Accounts  AccountStore
	Counter   CounterStore
	Table     *RewardTable
	Publisher RewardPublisher
	Now       func() time.Time
}

func NewClickService(accounts AccountStore, counter CounterStore, table *RewardTable, publisher RewardPublisher) *ClickService {
	return &ClickService{
		Accounts:  accounts,
		Counter:   counter,
		Table:     table,
		Publisher: publisher,
		Now:       time.Now,
	}
}

// Click counts one click for userID against its daily quota and the global counter.
// Quota and unknown-account outcomes come back as result statuses; only store
// and configuration failures are returned as errors.
func (s *ClickService) Click(ctx context.Context, userID string) (ClickResult, error) {
	tally, err := s.Accounts.IncrementClicks(ctx, userID)
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		state, qerr := s.Accounts.ReadQuotaState(ctx, userID)
		if qerr != nil {
			return ClickResult{Status: ClickQuotaExceeded}, nil
		}
		return ClickResult{
			Status:      ClickQuotaExceeded,
			ClicksToday: state.ClicksToday,
			DailyQuota:  state.DailyQuota,
		}, nil
	case errors.Is(err, ErrAccountNotFound):
		return ClickResult{Status: ClickAccountNotFound}, nil
	case err != nil:
		return ClickResult{}, err
	}

	after, err := s.Counter.Increment(ctx)
	if err != nil {
		log.Printf("[CLICK_RECONCILE] ⚠️ user %s counted (total=%d) but global increment failed: %v", userID, tally.TotalClicks, err)
		return ClickResult{}, err
	}

	result := ClickResult{
		Status:        ClickAccepted,
		ClicksToday:   tally.ClicksToday,
		DailyQuota:    tally.DailyQuota,
		TotalClicks:   tally.TotalClicks,
		GlobalCounter: after,
	}

	target, err := s.Table.Resolve(after - 1)
	if err != nil {
		// the click is already counted on both sides
		log.Printf("[CLICK] ❌ reward resolution failed at counter %d: %v", after, err)
		return result, err
	}
	if after != target.Threshold {
		return result, nil
	}

	record := models.RewardRecord{
		ID:                uuid.NewString(),
		UserID:            userID,
		Source:            models.RewardSourceGlobal,
		Prize:             target.Prize,
		WonAtCounterValue: after,
		CreatedAt:         s.Now().UTC(),
	}
	result.Status = ClickRewarded
	result.Reward = &record

	if err := s.Accounts.AppendReward(ctx, record); err != nil {
		log.Printf("[REWARD_RECONCILE] ❌ reward not recorded user=%s source=%s prize=%s won_at=%d at=%s: %v",
			userID, record.Source, record.Prize, record.WonAtCounterValue, record.CreatedAt.Format(time.RFC3339), err)
		result.RewardPending = true
		return result, nil
	}

	log.Printf("[CLICK] 🎉 user %s won %s at global counter %d", userID, record.Prize, after)
	s.publish(ctx, record)
	return result, nil
}

// GlobalInfo resolves the active target from the current counter and the one after it.
func (s *ClickService) GlobalInfo(ctx context.Context) (GlobalInfo, error) {
	value, err := s.Counter.Read(ctx)
	if err != nil {
		return GlobalInfo{}, err
	}
	current, err := s.Table.Resolve(value)
	if err != nil {
		return GlobalInfo{}, err
	}
	next, err := s.Table.Resolve(current.Threshold)
	if err != nil {
		return GlobalInfo{}, err
	}
	return GlobalInfo{
		GlobalCounter: value,
		Current:       current,
		Next:          next,
		ClicksToGo:    current.Threshold - value,
	}, nil
}

func (s *ClickService) publish(ctx context.Context, record models.RewardRecord) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishReward(ctx, record); err != nil {
		log.Printf("[CLICK] ⚠️ reward event not published for user %s: %v", record.UserID, err)
	}
}
