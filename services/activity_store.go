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

// GormActivityStore keeps activity definitions and per-user progress in Postgres.
type GormActivityStore struct {
	DB *gorm.DB
}

func NewActivityStore(db *gorm.DB) *GormActivityStore {
	return &GormActivityStore{DB: db}
}

// SeedDefinitions upserts the catalogue loaded at startup.
func (s *GormActivityStore) SeedDefinitions(ctx context.Context, defs []models.ActivityDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "sponsor_name", "sponsor_website", "clicks_required",
			"prize_kind", "prize_amount", "prize_description", "updated_at",
		}),
	}).Create(&defs).Error; err != nil {
		return unavailable("seed activities", err)
	}
	return nil
}

func (s *GormActivityStore) GetDefinition(ctx context.Context, activityID string) (models.ActivityDefinition, error) {
	var def models.ActivityDefinition
	if err := s.DB.WithContext(ctx).Where("id = ?", activityID).First(&def).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ActivityDefinition{}, ErrActivityNotFound
		}
		return models.ActivityDefinition{}, unavailable("get activity", err)
	}
	return def, nil
}

func (s *GormActivityStore) ListDefinitions(ctx context.Context) ([]models.ActivityDefinition, error) {
	var defs []models.ActivityDefinition
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&defs).Error; err != nil {
		return nil, unavailable("list activities", err)
	}
	return defs, nil
}

// GetProgress returns nil when the user never clicked the activity.
func (s *GormActivityStore) GetProgress(ctx context.Context, userID, activityID string) (*models.UserActivityProgress, error) {
	var prog models.UserActivityProgress
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get progress", err)
	}
	return &prog, nil
}

// IncrementProgress adds one click and flips completed in the same UPDATE,
// guarded by completed = false, so exactly one call observes the transition.
func (s *GormActivityStore) IncrementProgress(ctx context.Context, userID string, def models.ActivityDefinition) (models.ProgressUpdate, error) {
	var update models.ProgressUpdate
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.UserActivityProgress{
			ID:         uuid.NewString(),
			UserID:     userID,
			ActivityID: def.ID,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "activity_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return unavailable("create progress", err)
		}

		res := tx.Model(&models.UserActivityProgress{}).
			Where("user_id = ? AND activity_id = ? AND completed = ?", userID, def.ID, false).
			Updates(map[string]interface{}{
				"clicks":    gorm.Expr("clicks + ?", 1),
				"completed": gorm.Expr("clicks + ? >= ?", 1, def.ClicksRequired),
			})
		if res.Error != nil {
			return unavailable("increment progress", res.Error)
		}

		var prog models.UserActivityProgress
		if err := tx.Where("user_id = ? AND activity_id = ?", userID, def.ID).First(&prog).Error; err != nil {
			return unavailable("read progress", err)
		}
		update.Progress = prog
		if res.RowsAffected == 0 {
			return ErrAlreadyCompleted
		}

		// the guarded UPDATE ran, so completed was false before it
		if prog.Completed {
			now := time.Now().UTC()
			if err := tx.Model(&models.UserActivityProgress{}).
				Where("id = ?", prog.ID).
				Update("completed_at", now).Error; err != nil {
				return unavailable("stamp completion", err)
			}
			update.Progress.CompletedAt = &now
			update.JustCompleted = true
		}
		return nil
	})
	if errors.Is(err, ErrAlreadyCompleted) {
		return update, ErrAlreadyCompleted
	}
	if err != nil {
		return models.ProgressUpdate{}, err
	}
	return update, nil
}

func (s *GormActivityStore) MarkRewardClaimed(ctx context.Context, userID, activityID string) error {
	if err := s.DB.WithContext(ctx).Model(&models.UserActivityProgress{}).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Update("reward_claimed", true).Error; err != nil {
		return unavailable("mark reward claimed", err)
	}
	return nil
}
