package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"click-reward-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferralPolicy: bonus clicks per referral, capped per day
type ReferralPolicy struct {
	BonusClicks     int64
	MaxDailyBonuses int64
}

var DefaultReferralPolicy = ReferralPolicy{BonusClicks: 5, MaxDailyBonuses: 3}

// RecordReferral stores the referral once per referred user, bumps the
// referrer's count and, while under today's cap, grants bonus clicks.
func (s *GormAccountStore) RecordReferral(ctx context.Context, referrerID, referredID string, policy ReferralPolicy) (*models.Referral, error) {
	referrerID = strings.TrimSpace(referrerID)
	referredID = strings.TrimSpace(referredID)
	if referrerID == "" || referredID == "" || referrerID == referredID {
		return nil, fmt.Errorf("%w: referrer %q, referred %q", ErrInvalidReferral, referrerID, referredID)
	}

	var out *models.Referral
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Referral
		if err := tx.Where("referred_id = ?", referredID).Limit(1).Find(&existing).Error; err != nil {
			return unavailable("find referral", err)
		}
		if len(existing) > 0 {
			return ErrReferralExists
		}

		var referrer models.UserAccount
		if err := tx.Select("id").Where("id = ?", referrerID).First(&referrer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return unavailable("find referrer", err)
		}

		// bonus only while under the daily cap; the predicate keeps it race-free
		res := tx.Model(&models.UserAccount{}).
			Where("id = ? AND referral_bonuses_today < ?", referrerID, policy.MaxDailyBonuses).
			Updates(map[string]interface{}{
				"referral_count":         gorm.Expr("referral_count + ?", 1),
				"referral_bonuses_today": gorm.Expr("referral_bonuses_today + ?", 1),
				"daily_quota":            gorm.Expr("daily_quota + ?", policy.BonusClicks),
			})
		if res.Error != nil {
			return unavailable("grant referral bonus", res.Error)
		}
		awarded := res.RowsAffected > 0
		if !awarded {
			if err := tx.Model(&models.UserAccount{}).
				Where("id = ?", referrerID).
				Update("referral_count", gorm.Expr("referral_count + ?", 1)).Error; err != nil {
				return unavailable("count referral", err)
			}
		}

		ref := models.Referral{
			ID:           uuid.NewString(),
			ReferrerID:   referrerID,
			ReferredID:   referredID,
			BonusAwarded: awarded,
		}
		if awarded {
			ref.BonusClicks = policy.BonusClicks
		}
		if err := tx.Create(&ref).Error; err != nil {
			return unavailable("create referral", err)
		}
		out = &ref
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.BonusAwarded {
		log.Printf("🎁 [REFERRAL] %s referred %s → +%d clicks today", referrerID, referredID, out.BonusClicks)
	} else {
		log.Printf("[REFERRAL] %s referred %s → daily bonus cap reached", referrerID, referredID)
	}
	return out, nil
}
