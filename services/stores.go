package services

import (
	"context"

	"click-reward-system/models"
)

// AccountStore owns the per-user counters and the reward log.
type AccountStore interface {
	ReadQuotaState(ctx context.Context, userID string) (models.QuotaState, error)
	// IncrementClicks re-validates the quota and bumps clicks_today and
	// total_clicks in one atomic unit. Fails with ErrQuotaExceeded or ErrAccountNotFound.
	IncrementClicks(ctx context.Context, userID string) (models.ClickTally, error)
	AppendReward(ctx context.Context, record models.RewardRecord) error
}

// CounterStore owns the single global click counter.
type CounterStore interface {
	Read(ctx context.Context) (int64, error)
	// Increment adds one and returns the new value; every call sees a distinct value.
	Increment(ctx context.Context) (int64, error)
	Reset(ctx context.Context, value int64) error
}

// ActivityStore owns sponsor activity definitions and per-user progress.
type ActivityStore interface {
	GetDefinition(ctx context.Context, activityID string) (models.ActivityDefinition, error)
	ListDefinitions(ctx context.Context) ([]models.ActivityDefinition, error)
	GetProgress(ctx context.Context, userID, activityID string) (*models.UserActivityProgress, error)
	// IncrementProgress fails with ErrAlreadyCompleted once the activity is done.
	IncrementProgress(ctx context.Context, userID string, def models.ActivityDefinition) (models.ProgressUpdate, error)
	MarkRewardClaimed(ctx context.Context, userID, activityID string) error
}

// RewardPublisher fans granted rewards out to other systems.
type RewardPublisher interface {
	PublishReward(ctx context.Context, record models.RewardRecord) error
}
