// services/activity_service.go
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"click-reward-system/models"

	"github.com/google/uuid"
)

type ActivityClickStatus string

const (
	ActivityAccepted         ActivityClickStatus = "accepted"
	ActivityCompleted        ActivityClickStatus = "completed"
	ActivityAlreadyCompleted ActivityClickStatus = "already_completed"
	ActivityNotFound         ActivityClickStatus = "activity_not_found"
)

type ActivityClickResult struct {
	Status         ActivityClickStatus  `json:"status"`
	ActivityID     string               `json:"activity_id"`
	Clicks         int64                `json:"clicks"`
	ClicksRequired int64                `json:"clicks_required"`
	Completed      bool                 `json:"completed"`
	RewardClaimed  bool                 `json:"reward_claimed"`
	Reward         *models.RewardRecord `json:"reward,omitempty"`
	RewardPending  bool                 `json:"reward_pending,omitempty"`
}

// ActivityStatus is a user's standing in one activity.
type ActivityStatus struct {
	Activity      models.ActivityDefinition `json:"activity"`
	Clicks        int64                     `json:"clicks"`
	Completed     bool                      `json:"completed"`
	RewardClaimed bool                      `json:"reward_claimed"`
	CompletedAt   *time.Time                `json:"completed_at,omitempty"`
	Remaining     int64                     `json:"remaining"`
}

type ActivityService struct {
	Activities ActivityStore
	Accounts   AccountStore
	Publisher  RewardPublisher
	Now        func() time.Time
}

func NewActivityService(activities ActivityStore, accounts AccountStore, publisher RewardPublisher) *ActivityService {
	return &ActivityService{
		Activities: activities,
		Accounts:   accounts,
		Publisher:  publisher,
		Now:        time.Now,
	}
}

// Click adds one click to the user's progress in activityID. The reward is
// attached only on the click that completes the activity.
func (s *ActivityService) Click(ctx context.Context, userID, activityID string) (ActivityClickResult, error) {
	def, err := s.Activities.GetDefinition(ctx, activityID)
	if errors.Is(err, ErrActivityNotFound) {
		return ActivityClickResult{Status: ActivityNotFound, ActivityID: activityID}, nil
	}
	if err != nil {
		return ActivityClickResult{}, err
	}

	update, err := s.Activities.IncrementProgress(ctx, userID, def)
	if errors.Is(err, ErrAlreadyCompleted) {
		return progressResult(ActivityAlreadyCompleted, def, update.Progress), nil
	}
	if err != nil {
		return ActivityClickResult{}, err
	}

	if !update.JustCompleted {
		return progressResult(ActivityAccepted, def, update.Progress), nil
	}

	result := progressResult(ActivityCompleted, def, update.Progress)
	activityRef := def.ID
	record := models.RewardRecord{
		ID:                uuid.NewString(),
		UserID:            userID,
		Source:            models.RewardSourceActivity,
		Prize:             def.Prize,
		WonAtCounterValue: update.Progress.Clicks,
		ActivityID:        &activityRef,
		CreatedAt:         s.Now().UTC(),
	}
	result.Reward = &record

	if err := s.Accounts.AppendReward(ctx, record); err != nil {
		log.Printf("[REWARD_RECONCILE] ❌ activity reward not recorded user=%s activity=%s prize=%s clicks=%d at=%s: %v",
			userID, def.ID, record.Prize, record.WonAtCounterValue, record.CreatedAt.Format(time.RFC3339), err)
		result.RewardPending = true
		return result, nil
	}

	if err := s.Activities.MarkRewardClaimed(ctx, userID, def.ID); err != nil {
		log.Printf("[ACTIVITY] ⚠️ reward recorded but claim flag not set user=%s activity=%s: %v", userID, def.ID, err)
	} else {
		result.RewardClaimed = true
	}

	log.Printf("[ACTIVITY] 🎉 user %s completed %s and won %s", userID, def.ID, record.Prize)
	if s.Publisher != nil {
		if err := s.Publisher.PublishReward(ctx, record); err != nil {
			log.Printf("[ACTIVITY] ⚠️ reward event not published for user %s: %v", userID, err)
		}
	}
	return result, nil
}

// Status returns zero progress when the user has not clicked the activity yet.
func (s *ActivityService) Status(ctx context.Context, userID, activityID string) (ActivityStatus, error) {
	def, err := s.Activities.GetDefinition(ctx, activityID)
	if err != nil {
		return ActivityStatus{}, err
	}
	prog, err := s.Activities.GetProgress(ctx, userID, activityID)
	if err != nil {
		return ActivityStatus{}, err
	}

	status := ActivityStatus{Activity: def, Remaining: def.ClicksRequired}
	if prog != nil {
		status.Clicks = prog.Clicks
		status.Completed = prog.Completed
		status.RewardClaimed = prog.RewardClaimed
		status.CompletedAt = prog.CompletedAt
		status.Remaining = max(def.ClicksRequired-prog.Clicks, 0)
	}
	return status, nil
}

func (s *ActivityService) List(ctx context.Context) ([]models.ActivityDefinition, error) {
	return s.Activities.ListDefinitions(ctx)
}

func progressResult(status ActivityClickStatus, def models.ActivityDefinition, prog models.UserActivityProgress) ActivityClickResult {
	return ActivityClickResult{
		Status:         status,
		ActivityID:     def.ID,
		Clicks:         prog.Clicks,
		ClicksRequired: def.ClicksRequired,
		Completed:      prog.Completed,
		RewardClaimed:  prog.RewardClaimed,
	}
}
