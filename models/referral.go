package models

import "time"

// Referral tracks who brought whom; one row per referred user
type Referral struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ReferrerID   string    `gorm:"index;not null;type:varchar(128)" json:"referrer_id"`
	ReferredID   string    `gorm:"uniqueIndex;not null;type:varchar(128)" json:"referred_id"` // ExternalUserID
	BonusClicks  int64     `json:"bonus_clicks" gorm:"default:0"`
	BonusAwarded bool      `json:"bonus_awarded" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}
