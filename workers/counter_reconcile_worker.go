package workers

import (
	"context"
	"log"
	"sync"
	"time"
)

type counterReader interface {
	Read(ctx context.Context) (int64, error)
}

type clickSummer interface {
	SumTotalClicks(ctx context.Context) (int64, error)
}

// ReconcileReport compares the global counter with the sum of per-user totals.
// Drift is counter minus user clicks; it moves when one side of a click was
// written without the other, and jumps on an administrative counter reset.
type ReconcileReport struct {
	GlobalCounter int64     `json:"global_counter"`
	UserClicks    int64     `json:"user_clicks"`
	Drift         int64     `json:"drift"`
	DriftChanged  bool      `json:"drift_changed"`
	CheckedAt     time.Time `json:"checked_at"`
}

// CounterReconcileWorker only reports; it never rewrites either counter.
type CounterReconcileWorker struct {
	counter  counterReader
	accounts clickSummer
	interval time.Duration

	mu   sync.RWMutex
	last *ReconcileReport
}

func NewCounterReconcileWorker(counter counterReader, accounts clickSummer, interval time.Duration) *CounterReconcileWorker {
	return &CounterReconcileWorker{counter: counter, accounts: accounts, interval: interval}
}

func (w *CounterReconcileWorker) Start(ctx context.Context) {
	log.Printf("🔁 Starting counter reconciliation (every %s)…", w.interval)
	go w.run(ctx)
}

func (w *CounterReconcileWorker) run(ctx context.Context) {
	if _, err := w.Check(ctx); err != nil {
		log.Printf("[RECONCILE] ❌ initial check failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Counter reconciliation stopped")
			return
		case <-ticker.C:
			if _, err := w.Check(ctx); err != nil {
				log.Printf("[RECONCILE] ❌ check failed: %v", err)
			}
		}
	}
}

// Check takes one measurement and stores it as the latest report.
func (w *CounterReconcileWorker) Check(ctx context.Context) (ReconcileReport, error) {
	counter, err := w.counter.Read(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}
	clicks, err := w.accounts.SumTotalClicks(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}

	report := ReconcileReport{
		GlobalCounter: counter,
		UserClicks:    clicks,
		Drift:         counter - clicks,
		CheckedAt:     time.Now().UTC(),
	}

	w.mu.Lock()
	prev := w.last
	report.DriftChanged = prev != nil && prev.Drift != report.Drift
	w.last = &report
	w.mu.Unlock()

	if report.DriftChanged {
		log.Printf("[RECONCILE] ⚠️ drift moved %d → %d (counter=%d, user clicks=%d)",
			prev.Drift, report.Drift, counter, clicks)
	}
	return report, nil
}

// Last returns the most recent report, if any.
func (w *CounterReconcileWorker) Last() (ReconcileReport, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.last == nil {
		return ReconcileReport{}, false
	}
	return *w.last, true
}
