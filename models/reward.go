package models

import "time"

// RewardSource tells which counter domain produced the record
type RewardSource string

const (
	RewardSourceGlobal   RewardSource = "global"
	RewardSourceActivity RewardSource = "activity"
)

// RewardRecord is an append-only log entry. Its existence is the proof that a
// crossing granted a reward; rows are never updated or deleted.
type RewardRecord struct {
	ID                string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID            string       `gorm:"index;not null;type:varchar(128)" json:"user_id"`
	Source            RewardSource `gorm:"type:varchar(16);not null" json:"source"`
	Prize             Prize        `gorm:"embedded;embeddedPrefix:prize_" json:"prize"`
	WonAtCounterValue int64        `gorm:"not null" json:"won_at_counter_value"`
	ActivityID        *string      `gorm:"index;type:varchar(128)" json:"activity_id,omitempty"`
	CreatedAt         time.Time    `gorm:"index;not null" json:"timestamp"`
}
