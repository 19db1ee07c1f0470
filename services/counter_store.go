package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"click-reward-system/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const globalCounterKey = "click:global_counter"

// ConnectRedis accepts either a redis:// URL or a bare host:port.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisCounterStore keeps the global counter in a single Redis key; INCR is atomic.
type RedisCounterStore struct {
	client *redis.Client
	key    string
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client, key: globalCounterKey}
}

func (s *RedisCounterStore) Read(ctx context.Context) (int64, error) {
	n, err := s.client.Get(ctx, s.key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, unavailable("read counter", err)
	}
	return n, nil
}

func (s *RedisCounterStore) Increment(ctx context.Context) (int64, error) {
	n, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, unavailable("increment counter", err)
	}
	return n, nil
}

func (s *RedisCounterStore) Reset(ctx context.Context, value int64) error {
	if value < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCounter, value)
	}
	if err := s.client.Set(ctx, s.key, value, 0).Err(); err != nil {
		return unavailable("reset counter", err)
	}
	return nil
}

// GormCounterStore keeps the counter as one row; the increment is a single
// UPDATE value = value + 1 whose result is read back in the same transaction.
type GormCounterStore struct {
	DB   *gorm.DB
	Name string
}

// NewGormCounterStore makes sure the counter row exists.
func NewGormCounterStore(ctx context.Context, db *gorm.DB) (*GormCounterStore, error) {
	s := &GormCounterStore{DB: db, Name: models.GlobalCounterName}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&models.GlobalCounter{Name: s.Name}).Error; err != nil {
		return nil, unavailable("create counter", err)
	}
	return s, nil
}

func (s *GormCounterStore) Read(ctx context.Context) (int64, error) {
	var c models.GlobalCounter
	if err := s.DB.WithContext(ctx).Where("name = ?", s.Name).First(&c).Error; err != nil {
		return 0, unavailable("read counter", err)
	}
	return c.Value, nil
}

func (s *GormCounterStore) Increment(ctx context.Context) (int64, error) {
	var c models.GlobalCounter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.GlobalCounter{}).
			Where("name = ?", s.Name).
			Update("value", gorm.Expr("value + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("name = ?", s.Name).First(&c).Error
	})
	if err != nil {
		return 0, unavailable("increment counter", err)
	}
	return c.Value, nil
}

func (s *GormCounterStore) Reset(ctx context.Context, value int64) error {
	if value < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCounter, value)
	}
	if err := s.DB.WithContext(ctx).Model(&models.GlobalCounter{}).
		Where("name = ?", s.Name).
		Update("value", value).Error; err != nil {
		return unavailable("reset counter", err)
	}
	return nil
}
