package services

import (
	"context"
	"testing"
	"time"

	"click-reward-system/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	farPast   = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	farFuture = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// newTestDB opens a private in-memory database. One connection means
// transactions run one at a time, like row locks on the same record.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.UserAccount{},
		&models.RewardRecord{},
		&models.ActivityDefinition{},
		&models.UserActivityProgress{},
		&models.GlobalCounter{},
		&models.Referral{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func cash(amount int64) models.Prize {
	return models.CashPrize(decimal.NewFromInt(amount))
}

func mustTable(t *testing.T, levels ...models.RewardLevel) *RewardTable {
	t.Helper()
	table, err := NewRewardTable(levels)
	if err != nil {
		t.Fatalf("NewRewardTable: %v", err)
	}
	return table
}

func mustAccount(t *testing.T, store *GormAccountStore, userID string, quota int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.EnsureAccount(ctx, userID); err != nil {
		t.Fatalf("EnsureAccount(%s): %v", userID, err)
	}
	if err := store.SetDailyQuota(ctx, userID, quota); err != nil {
		t.Fatalf("SetDailyQuota(%s): %v", userID, err)
	}
}
