package models

import "time"

// ActivityDefinition is a sponsor activity: click ClicksRequired times, win Prize once.
type ActivityDefinition struct {
	ID             string    `gorm:"primaryKey;type:varchar(128)" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	SponsorName    string    `json:"sponsor_name,omitempty"`
	SponsorWebsite string    `json:"sponsor_website,omitempty"`
	ClicksRequired int64     `gorm:"not null" json:"clicks_required"`
	Prize          Prize     `gorm:"embedded;embeddedPrefix:prize_" json:"prize"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserActivityProgress is keyed by (UserID, ActivityID).
// Completed flips false→true on the click that first reaches ClicksRequired and never reverts.
type UserActivityProgress struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string     `gorm:"uniqueIndex:idx_activity_progress_user_activity;not null;type:varchar(128)" json:"user_id"`
	ActivityID    string     `gorm:"uniqueIndex:idx_activity_progress_user_activity;not null;type:varchar(128)" json:"activity_id"`
	Clicks        int64      `gorm:"not null;default:0" json:"clicks"`
	Completed     bool       `gorm:"not null;default:false" json:"completed"`
	RewardClaimed bool       `gorm:"not null;default:false" json:"reward_claimed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// ProgressUpdate is the outcome of one atomic progress increment
type ProgressUpdate struct {
	Progress      UserActivityProgress
	JustCompleted bool
}
