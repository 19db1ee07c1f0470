// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type dailyResetter interface {
	ResetDaily(ctx context.Context, quota int64, at time.Time) (int64, error)
}

// DailyReset starts a new quota day at local midnight. The previous day's
// reward ledger is exported first when an exporter is configured.
type DailyReset struct {
	Accounts     dailyResetter
	Exporter     *RewardLedgerExporter
	DefaultQuota int64
	Location     *time.Location
}

// Run performs one reset as of now. Export failures are logged and do not block the reset.
func (d *DailyReset) Run(ctx context.Context, now time.Time) error {
	local := now.In(d.Location)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, d.Location)

	if d.Exporter != nil {
		yesterday := today.AddDate(0, 0, -1)
		key, n, err := d.Exporter.ExportDay(ctx, yesterday)
		if err != nil {
			log.Printf("[SCHEDULER] ⚠️ reward ledger export for %s failed: %v", yesterday.Format("2006-01-02"), err)
		} else {
			log.Printf("[SCHEDULER] 📦 exported %d rewards to %s", n, key)
		}
	}

	rows, err := d.Accounts.ResetDaily(ctx, d.DefaultQuota, now.UTC())
	if err != nil {
		log.Printf("[SCHEDULER] ❌ daily reset failed: %v", err)
		return err
	}
	log.Printf("✅ [SCHEDULER] daily reset applied to %d accounts (quota=%d)", rows, d.DefaultQuota)
	return nil
}

// Start schedules Run every day at 00:00 in d.Location.
func (d *DailyReset) Start() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(d.Location))
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.CronJob("0 0 * * *", false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			_ = d.Run(ctx, time.Now())
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
