package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"click-reward-system/models"
	"click-reward-system/services"
	"click-reward-system/workers"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	app      *fiber.App
	accounts *services.GormAccountStore
	counter  *services.GormCounterStore
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&models.UserAccount{}, &models.RewardRecord{}, &models.ActivityDefinition{},
		&models.UserActivityProgress{}, &models.GlobalCounter{}, &models.Referral{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	table, err := services.NewRewardTable([]models.RewardLevel{
		{Threshold: 2, Prize: models.CashPrize(decimal.NewFromInt(5))},
		{Threshold: 10, Prize: models.CashPrize(decimal.NewFromInt(10))},
	})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	accounts := services.NewAccountStore(db, 2)
	counter, err := services.NewGormCounterStore(ctx, db)
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	activityStore := services.NewActivityStore(db)
	if err := activityStore.SeedDefinitions(ctx, []models.ActivityDefinition{{
		ID: "sponsor-a-event", Name: "Sponsor A", ClicksRequired: 1, Prize: models.CouponPrize("$10 Coupon"),
	}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	app := fiber.New()
	SetupRoutes(app, Deps{
		Clicks:     services.NewClickService(accounts, counter, table, nil),
		Activities: services.NewActivityService(activityStore, accounts, nil),
		Accounts:   accounts,
		Counter:    counter,
		Referrals:  services.DefaultReferralPolicy,
		Reconciler: workers.NewCounterReconcileWorker(counter, accounts, 0),
	})
	return testServer{app: app, accounts: accounts, counter: counter}
}

func (s testServer) do(t *testing.T, method, path, userID, roles, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if roles != "" {
		req.Header.Set("X-User-Roles", roles)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func TestClickFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	if code, _ := s.do(t, http.MethodPost, "/s/click", "", "", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", code)
	}
	if code, body := s.do(t, http.MethodPost, "/s/click", "alice", "", ""); code != http.StatusNotFound || body["status"] != "account_not_found" {
		t.Fatalf("expected 404 account_not_found before login, got %d %v", code, body)
	}

	if code, body := s.do(t, http.MethodGet, "/s/user/account", "alice", "", ""); code != http.StatusOK || body["daily_quota"] != float64(2) {
		t.Fatalf("expected account with quota 2, got %d %v", code, body)
	}

	code, body := s.do(t, http.MethodPost, "/s/click", "alice", "", "")
	if code != http.StatusOK || body["status"] != "accepted" || body["global_counter"] != float64(1) {
		t.Fatalf("expected first click accepted, got %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/s/click", "alice", "", "")
	if code != http.StatusOK || body["status"] != "rewarded" || body["reward"] == nil {
		t.Fatalf("expected second click rewarded, got %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/s/click", "alice", "", "")
	if code != http.StatusTooManyRequests || body["status"] != "quota_exceeded" {
		t.Fatalf("expected 429 quota_exceeded, got %d %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, "/s/user/rewards?limit=10", "alice", "", "")
	if code != http.StatusOK {
		t.Fatalf("expected rewards list, got %d", code)
	}
	if rewards, _ := body["rewards"].([]any); len(rewards) != 1 {
		t.Fatalf("expected one reward, got %v", body["rewards"])
	}
	if code, _ := s.do(t, http.MethodGet, "/s/user/rewards?limit=0", "alice", "", ""); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", code)
	}
	if code, body := s.do(t, http.MethodGet, "/s/user/rewards/counts", "alice", "", ""); code != http.StatusOK || body["global_count"] != float64(1) {
		t.Fatalf("expected one global reward counted, got %d %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, "/global", "", "", "")
	if code != http.StatusOK || body["global_counter"] != float64(2) || body["clicks_to_go"] != float64(8) {
		t.Fatalf("unexpected global info %d %v", code, body)
	}
}

func TestActivityRoutes(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/activities", "", "", "")
	if acts, _ := body["activities"].([]any); code != http.StatusOK || len(acts) != 1 {
		t.Fatalf("expected one activity, got %d %v", code, body)
	}

	if code, body := s.do(t, http.MethodPost, "/s/activities/nope/click", "alice", "", ""); code != http.StatusNotFound || body["status"] != "activity_not_found" {
		t.Fatalf("expected 404, got %d %v", code, body)
	}
	if code, body := s.do(t, http.MethodPost, "/s/activities/sponsor-a-event/click", "alice", "", ""); code != http.StatusOK || body["status"] != "completed" {
		t.Fatalf("expected completed, got %d %v", code, body)
	}
	if code, body := s.do(t, http.MethodPost, "/s/activities/sponsor-a-event/click", "alice", "", ""); code != http.StatusConflict || body["status"] != "already_completed" {
		t.Fatalf("expected 409 already_completed, got %d %v", code, body)
	}
	if code, body := s.do(t, http.MethodGet, "/s/activities/sponsor-a-event/status", "alice", "", ""); code != http.StatusOK || body["completed"] != true {
		t.Fatalf("expected completed status, got %d %v", code, body)
	}
	if code, _ := s.do(t, http.MethodGet, "/s/activities/nope/status", "alice", "", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404 status for unknown activity, got %d", code)
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	if _, err := s.accounts.EnsureAccount(ctx, "alice"); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	if code, _ := s.do(t, http.MethodPost, "/s/admin/counter/reset", "bob", "gamer", `{"value":5}`); code != http.StatusForbidden {
		t.Fatalf("expected 403 without admin role, got %d", code)
	}
	if code, _ := s.do(t, http.MethodPost, "/s/admin/counter/reset", "root", "gamer,admin", `{"value":5}`); code != http.StatusOK {
		t.Fatalf("expected counter reset, got %d", code)
	}
	if v, _ := s.counter.Read(ctx); v != 5 {
		t.Fatalf("expected counter 5, got %d", v)
	}
	if code, _ := s.do(t, http.MethodPost, "/s/admin/counter/reset", "root", "admin", `{"value":-1}`); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative value, got %d", code)
	}

	if code, _ := s.do(t, http.MethodPut, "/s/admin/accounts/alice/quota", "root", "admin", `{"daily_quota":7}`); code != http.StatusOK {
		t.Fatalf("expected quota update, got %d", code)
	}
	if code, _ := s.do(t, http.MethodPut, "/s/admin/accounts/ghost/quota", "root", "admin", `{"daily_quota":7}`); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown account, got %d", code)
	}

	code, body := s.do(t, http.MethodPost, "/s/admin/referrals", "root", "admin", `{"referrer_id":"alice","referred_id":"carol"}`)
	if code != http.StatusCreated || body["bonus_awarded"] != true {
		t.Fatalf("expected referral with bonus, got %d %v", code, body)
	}
	if code, _ := s.do(t, http.MethodPost, "/s/admin/referrals", "root", "admin", `{"referrer_id":"alice","referred_id":"carol"}`); code != http.StatusConflict {
		t.Fatalf("expected 409 for repeated referral, got %d", code)
	}
	acct, _ := s.accounts.GetAccount(ctx, "alice")
	if acct.DailyQuota != 12 {
		t.Fatalf("expected quota 7+5, got %d", acct.DailyQuota)
	}

	code, body = s.do(t, http.MethodGet, "/s/admin/reconcile", "root", "admin", "")
	if code != http.StatusOK || body["global_counter"] != float64(5) || body["drift"] != float64(5) {
		t.Fatalf("unexpected reconcile report %d %v", code, body)
	}
}
