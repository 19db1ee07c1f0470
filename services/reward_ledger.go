package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"click-reward-system/models"
)

// LedgerUploader receives the rendered daily ledger (R2 in production).
type LedgerUploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

type rewardLister interface {
	RewardsBetween(ctx context.Context, from, to time.Time) ([]models.RewardRecord, error)
}

var ledgerHeader = []string{
	"id", "user_id", "source", "prize_kind", "prize_amount", "prize_description",
	"won_at_counter_value", "activity_id", "created_at",
}

// BuildRewardLedgerCSV renders records in the order given.
func BuildRewardLedgerCSV(records []models.RewardRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ledgerHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		activityID := ""
		if r.ActivityID != nil {
			activityID = *r.ActivityID
		}
		amount := ""
		if r.Prize.Kind == models.PrizeKindCash {
			amount = r.Prize.Amount.StringFixed(2)
		}
		row := []string{
			r.ID,
			r.UserID,
			string(r.Source),
			string(r.Prize.Kind),
			amount,
			r.Prize.Description,
			strconv.FormatInt(r.WonAtCounterValue, 10),
			activityID,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type RewardLedgerExporter struct {
	Rewards  rewardLister
	Uploader LedgerUploader
	Prefix   string
}

func NewRewardLedgerExporter(rewards rewardLister, uploader LedgerUploader) *RewardLedgerExporter {
	return &RewardLedgerExporter{Rewards: rewards, Uploader: uploader, Prefix: "ledgers/rewards"}
}

// LedgerKey names the object for the local calendar day starting at dayStart.
func (e *RewardLedgerExporter) LedgerKey(dayStart time.Time) string {
	return fmt.Sprintf("%s/%s.csv", e.Prefix, dayStart.Format("2006-01-02"))
}

// ExportDay uploads every reward created in [dayStart, dayStart+24h).
func (e *RewardLedgerExporter) ExportDay(ctx context.Context, dayStart time.Time) (string, int, error) {
	records, err := e.Rewards.RewardsBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return "", 0, err
	}
	body, err := BuildRewardLedgerCSV(records)
	if err != nil {
		return "", 0, fmt.Errorf("render ledger: %w", err)
	}
	key := e.LedgerKey(dayStart)
	if err := e.Uploader.Upload(ctx, key, body, "text/csv"); err != nil {
		return "", 0, err
	}
	return key, len(records), nil
}
