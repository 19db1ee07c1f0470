// utils/config.go
package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type R2Config struct {
	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	Bucket          string `env:"R2_BUCKET_NAME"`
}

// Enabled is true when every R2 setting is present.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

type Config struct {
	Port           string   `env:"PORT" envDefault:"5200"`
	DatabaseURL    string   `env:"DATABASE_URL,required,notEmpty"`
	RedisURL       string   `env:"REDIS_URL"`
	ServiceToken   string   `env:"CLICK_SERVICE_TOKEN,required,notEmpty"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	RewardCatalogPath string `env:"REWARD_CATALOG_PATH" envDefault:"config/rewards.yaml"`
	DefaultDailyQuota int64  `env:"DEFAULT_DAILY_QUOTA" envDefault:"50"`
	DailyResetTZ      string `env:"DAILY_RESET_TZ" envDefault:"Asia/Taipei"`

	ReferralBonusClicks     int64 `env:"REFERRAL_BONUS_CLICKS" envDefault:"5"`
	MaxDailyReferralBonuses int64 `env:"MAX_DAILY_REFERRAL_BONUSES" envDefault:"3"`

	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaRewardTopic string   `env:"KAFKA_REWARD_TOPIC" envDefault:"click.rewards.granted"`

	SyncServiceURL    string        `env:"SYNC_SERVICE_URL"`
	AuthServiceURL    string        `env:"AUTH_SERVICE_URL"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"5m"`

	R2 R2Config
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found. Using system environment variables.")
	}
	return ParseConfig()
}

func ParseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DefaultDailyQuota < 0 {
		return Config{}, fmt.Errorf("DEFAULT_DAILY_QUOTA must be >= 0, got %d", cfg.DefaultDailyQuota)
	}
	if cfg.ReferralBonusClicks < 0 || cfg.MaxDailyReferralBonuses < 0 {
		return Config{}, fmt.Errorf("referral settings must be >= 0")
	}
	if cfg.ReconcileInterval <= 0 {
		return Config{}, fmt.Errorf("RECONCILE_INTERVAL must be positive, got %s", cfg.ReconcileInterval)
	}
	return cfg, nil
}

// Location resolves DailyResetTZ.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DailyResetTZ)
	if err != nil {
		return nil, fmt.Errorf("DAILY_RESET_TZ %q: %w", c.DailyResetTZ, err)
	}
	return loc, nil
}
