package utils

import (
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clicks")
	t.Setenv("CLICK_SERVICE_TOKEN", "secret")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Port != "5200" || cfg.DefaultDailyQuota != 50 || cfg.DailyResetTZ != "Asia/Taipei" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ReferralBonusClicks != 5 || cfg.MaxDailyReferralBonuses != 3 {
		t.Fatalf("unexpected referral defaults %+v", cfg)
	}
	if cfg.ReconcileInterval != 5*time.Minute || cfg.KafkaRewardTopic != "click.rewards.granted" {
		t.Fatalf("unexpected worker defaults %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.R2.Enabled() || len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected optional integrations off, got %+v", cfg)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clicks")
	t.Setenv("CLICK_SERVICE_TOKEN", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DEFAULT_DAILY_QUOTA", "20")
	t.Setenv("RECONCILE_INTERVAL", "30s")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "id")
	t.Setenv("R2_ACCESS_KEY_SECRET", "shh")
	t.Setenv("R2_BUCKET_NAME", "ledgers")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.DefaultDailyQuota != 20 || cfg.ReconcileInterval != 30*time.Second {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if !cfg.R2.Enabled() || cfg.R2.Bucket != "ledgers" {
		t.Fatalf("expected R2 enabled, got %+v", cfg.R2)
	}
}

func TestParseConfigRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CLICK_SERVICE_TOKEN", "secret")
	if _, err := ParseConfig(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestParseConfigRejectsNegativeQuota(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clicks")
	t.Setenv("CLICK_SERVICE_TOKEN", "secret")
	t.Setenv("DEFAULT_DAILY_QUOTA", "-1")
	if _, err := ParseConfig(); err == nil {
		t.Fatalf("expected error for negative quota")
	}
}
