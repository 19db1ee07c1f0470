package models

import (
	"time"

	"gorm.io/gorm"
)

// UserAccount holds the per-user click counters.
// ID is the external user ID forwarded by the gateway (X-User-ID).
type UserAccount struct {
	ID          string `gorm:"primaryKey;type:varchar(128)" json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`

	ClicksToday int64 `json:"clicks_today" gorm:"not null;default:0"`
	DailyQuota  int64 `json:"daily_quota" gorm:"not null;default:0"`
	TotalClicks int64 `json:"total_clicks" gorm:"not null;default:0"`

	ReferralCount        int64 `json:"referral_count" gorm:"not null;default:0"`
	ReferralBonusesToday int64 `json:"referral_bonuses_today" gorm:"not null;default:0"`

	LastResetAt *time.Time `json:"last_reset_at,omitempty"`

	Rewards []RewardRecord `json:"rewards,omitempty" gorm:"foreignKey:UserID"`

	Timestamps
}

// QuotaState is the eligibility view of an account
type QuotaState struct {
	ClicksToday int64 `json:"clicks_today"`
	DailyQuota  int64 `json:"daily_quota"`
}

// ClickTally is what an accepted click leaves on the account
type ClickTally struct {
	ClicksToday int64 `json:"clicks_today"`
	DailyQuota  int64 `json:"daily_quota"`
	TotalClicks int64 `json:"total_clicks"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
