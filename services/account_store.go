package services

import (
	"context"
	"errors"
	"time"

	"click-reward-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountStore keeps accounts and the reward log in Postgres.
type GormAccountStore struct {
	DB           *gorm.DB
	DefaultQuota int64
}

func NewAccountStore(db *gorm.DB, defaultQuota int64) *GormAccountStore {
	return &GormAccountStore{DB: db, DefaultQuota: defaultQuota}
}

// EnsureAccount creates the account on first observed login (idempotent)
func (s *GormAccountStore) EnsureAccount(ctx context.Context, userID string) (*models.UserAccount, error) {
	acct := models.UserAccount{ID: userID, DailyQuota: s.DefaultQuota}
	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&acct).Error; err != nil {
		return nil, unavailable("ensure account", err)
	}
	return s.GetAccount(ctx, userID)
}

func (s *GormAccountStore) GetAccount(ctx context.Context, userID string) (*models.UserAccount, error) {
	var acct models.UserAccount
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, unavailable("get account", err)
	}
	return &acct, nil
}

func (s *GormAccountStore) ReadQuotaState(ctx context.Context, userID string) (models.QuotaState, error) {
	acct, err := s.GetAccount(ctx, userID)
	if err != nil {
		return models.QuotaState{}, err
	}
	return models.QuotaState{ClicksToday: acct.ClicksToday, DailyQuota: acct.DailyQuota}, nil
}

// IncrementClicks is a compare-and-increment: the quota predicate sits in the
// UPDATE itself, so two racing clicks can never both pass it.
func (s *GormAccountStore) IncrementClicks(ctx context.Context, userID string) (models.ClickTally, error) {
	var tally models.ClickTally
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.UserAccount{}).
			Where("id = ? AND clicks_today < daily_quota", userID).
			Updates(map[string]interface{}{
				"clicks_today": gorm.Expr("clicks_today + ?", 1),
				"total_clicks": gorm.Expr("total_clicks + ?", 1),
			})
		if res.Error != nil {
			return unavailable("increment clicks", res.Error)
		}

		var acct models.UserAccount
		if err := tx.Select("id", "clicks_today", "daily_quota", "total_clicks").
			Where("id = ?", userID).
			First(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return unavailable("read clicks", err)
		}
		if res.RowsAffected == 0 {
			return ErrQuotaExceeded
		}

		tally = models.ClickTally{
			ClicksToday: acct.ClicksToday,
			DailyQuota:  acct.DailyQuota,
			TotalClicks: acct.TotalClicks,
		}
		return nil
	})
	if err != nil {
		return models.ClickTally{}, err
	}
	return tally, nil
}

// AppendReward adds one record to the user's reward log.
func (s *GormAccountStore) AppendReward(ctx context.Context, record models.RewardRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := s.DB.WithContext(ctx).Create(&record).Error; err != nil {
		return unavailable("append reward", err)
	}
	return nil
}

// ListRewards returns the newest records first; limit <= 0 means all.
func (s *GormAccountStore) ListRewards(ctx context.Context, userID string, limit int) ([]models.RewardRecord, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var records []models.RewardRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, unavailable("list rewards", err)
	}
	return records, nil
}

type RewardCounts struct {
	Total    int64 `json:"total_count"`
	Global   int64 `json:"global_count"`
	Activity int64 `json:"activity_count"`
}

func (s *GormAccountStore) CountRewards(ctx context.Context, userID string) (RewardCounts, error) {
	var rows []struct {
		Source models.RewardSource
		N      int64
	}
	if err := s.DB.WithContext(ctx).Model(&models.RewardRecord{}).
		Select("source, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("source").
		Scan(&rows).Error; err != nil {
		return RewardCounts{}, unavailable("count rewards", err)
	}

	var counts RewardCounts
	for _, r := range rows {
		switch r.Source {
		case models.RewardSourceGlobal:
			counts.Global = r.N
		case models.RewardSourceActivity:
			counts.Activity = r.N
		}
		counts.Total += r.N
	}
	return counts, nil
}

// SetDailyQuota is the administrative quota override. It may drop below clicks_today.
func (s *GormAccountStore) SetDailyQuota(ctx context.Context, userID string, quota int64) error {
	res := s.DB.WithContext(ctx).Model(&models.UserAccount{}).
		Where("id = ?", userID).
		Update("daily_quota", quota)
	if res.Error != nil {
		return unavailable("set daily quota", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ResetDaily starts a new quota day for every account.
func (s *GormAccountStore) ResetDaily(ctx context.Context, quota int64, at time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&models.UserAccount{}).
		Updates(map[string]interface{}{
			"clicks_today":           0,
			"daily_quota":            quota,
			"referral_bonuses_today": 0,
			"last_reset_at":          at,
		})
	if res.Error != nil {
		return 0, unavailable("reset daily", res.Error)
	}
	return res.RowsAffected, nil
}

// SumTotalClicks adds up every account's lifetime clicks
func (s *GormAccountStore) SumTotalClicks(ctx context.Context) (int64, error) {
	var sum int64
	if err := s.DB.WithContext(ctx).Model(&models.UserAccount{}).
		Select("COALESCE(SUM(total_clicks), 0)").
		Scan(&sum).Error; err != nil {
		return 0, unavailable("sum total clicks", err)
	}
	return sum, nil
}

// RewardsBetween returns records created in [from, to), oldest first.
func (s *GormAccountStore) RewardsBetween(ctx context.Context, from, to time.Time) ([]models.RewardRecord, error) {
	var records []models.RewardRecord
	if err := s.DB.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, unavailable("rewards between", err)
	}
	return records, nil
}

// RewardsSince returns the user's records created strictly after cursor, oldest first.
func (s *GormAccountStore) RewardsSince(ctx context.Context, userID string, cursor time.Time) ([]models.RewardRecord, error) {
	var records []models.RewardRecord
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND created_at > ?", userID, cursor.UTC()).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, unavailable("rewards since", err)
	}
	return records, nil
}
