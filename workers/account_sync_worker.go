// workers/account_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"click-reward-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemoteProfile is one row of the profile sync service response.
type RemoteProfile struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type profileChangesResponse struct {
	Users []RemoteProfile `json:"users"`
}

// AccountSyncWorker mirrors profile changes into user_accounts. Counters are never touched.
type AccountSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	defaultQuota int64
	httpClient   *http.Client

	mu     sync.Mutex
	cursor time.Time
}

func NewAccountSyncWorker(db *gorm.DB, syncServiceBaseURL, serviceToken string, defaultQuota int64, client *http.Client) *AccountSyncWorker {
	return &AccountSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: "/api/v1/public/profiles",
		serviceToken: serviceToken,
		defaultQuota: defaultQuota,
		httpClient:   client,
	}
}

func (w *AccountSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Account Sync Worker (sync-service → user_accounts)…")
	go w.run(ctx)
}

func (w *AccountSyncWorker) run(ctx context.Context) {
	if _, err := w.SyncOnce(ctx); err != nil {
		log.Printf("⚠️ Initial account sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(ctx); err != nil {
				log.Printf("❌ Account sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Account Sync Worker stopped")
			return
		}
	}
}

// SyncOnce pulls changes since the last seen remote updated_at and upserts them.
// It returns the number of accounts written.
func (w *AccountSyncWorker) SyncOnce(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	profiles, err := w.fetch(ctx, w.cursor)
	if err != nil {
		return 0, err
	}
	if len(profiles) == 0 {
		log.Printf("[SYNC] ✅ No profile changes since %s", w.cursor.UTC().Format(time.RFC3339))
		return 0, nil
	}

	var upserted, failed int
	for _, p := range profiles {
		if p.ExternalID == "" {
			continue
		}
		acct := models.UserAccount{
			ID:          p.ExternalID,
			DisplayName: p.Username,
			Email:       p.Email,
			DailyQuota:  w.defaultQuota,
		}
		if err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "email", "updated_at"}),
		}).Create(&acct).Error; err != nil {
			failed++
			log.Printf("[SYNC] ⚠️ Failed to upsert account %q: %v", p.ExternalID, err)
			continue
		}
		upserted++
		if p.UpdatedAt.After(w.cursor) {
			w.cursor = p.UpdatedAt
		}
	}

	log.Printf("[SYNC] ✅ Synced %d profiles (%d upserted, %d errors), cursor=%s",
		len(profiles), upserted, failed, w.cursor.UTC().Format(time.RFC3339))
	return upserted, nil
}

func (w *AccountSyncWorker) fetch(ctx context.Context, since time.Time) ([]RemoteProfile, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid sync service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		log.Printf("[SYNC] ❌ Request to %s failed: %v", finalURL, err)
		return nil, fmt.Errorf("HTTP request to sync service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[SYNC] ❌ Sync service returned %d for %s: %s", resp.StatusCode, finalURL, string(body))
		return nil, fmt.Errorf("sync service non-200 response: %d", resp.StatusCode)
	}

	var out profileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode sync service response: %w", err)
	}
	return out.Users, nil
}
