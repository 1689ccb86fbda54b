package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"homescout/models"
	"homescout/scraper"
	"homescout/services"
	"homescout/storage"
)

// PriceCheckWorker periodically re-fetches stale listings and records any
// price drops. It drives the full refresh runs the scheduler kicks off.
type PriceCheckWorker struct {
	store     *storage.PostgresStore
	listings  *services.ListingService
	handler   scraper.Handler
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewPriceCheckWorker(store *storage.PostgresStore, listings *services.ListingService, handler scraper.Handler) *PriceCheckWorker {
	return &PriceCheckWorker{
		store:     store,
		listings:  listings,
		handler:   handler,
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
	}
}

func (w *PriceCheckWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *PriceCheckWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the price check worker loop
func (w *PriceCheckWorker) Run(ctx context.Context, staleDuration time.Duration, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Price check worker stopping")
			return
		case <-ticker.C:
			w.RunBatch(ctx, staleDuration, batchSize)
		case <-w.triggerCh:
			log.Println("Price check worker triggered manually")
			w.RunBatch(ctx, staleDuration, batchSize)
		}
	}
}

// RunBatch refreshes one batch of stale listings inside a recorded run.
func (w *PriceCheckWorker) RunBatch(ctx context.Context, staleDuration time.Duration, batchSize int) {
	stale, err := w.store.ListStaleListings(ctx, time.Now().Add(-staleDuration), batchSize)
	if err != nil {
		log.Printf("Price check: query error: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	run := &models.ScrapeRun{
		Kind:      models.RunKindRefresh,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if err := w.store.CreateScrapeRun(ctx, run); err != nil {
		log.Printf("Price check: failed to create run: %v", err)
	}

	log.Printf("Price check: refreshing %d stale listings", len(stale))

	var checked, changes, errs int
	for i := range stale {
		l := &stale[i]
		if l.URL == "" {
			continue
		}

		price, err := w.handler.CheckPrice(ctx, l.URL)
		checked++
		if err != nil {
			log.Printf("Price check: failed for %s: %v", l.URL, err)
			errs++
			continue
		}
		if price == nil {
			continue
		}

		changed, err := w.listings.RecordPriceCheck(ctx, l, price)
		if err != nil {
			log.Printf("Price check: record failed for %s: %v", l.ID, err)
			errs++
			continue
		}
		if changed {
			changes++
			old := float64(0)
			if l.PriceNum != nil {
				old = *l.PriceNum
			}
			log.Printf("Price check: %s $%.0f -> $%.0f", l.Address, old, *price)
		}

		time.Sleep(500 * time.Millisecond)
	}

	run.Status = models.RunStatusCompleted
	if errs > 0 && errs == checked {
		run.Status = models.RunStatusFailed
	}
	run.ListingsChecked = checked
	run.PriceChanges = changes
	run.ErrorsCount = errs
	if err := w.store.FinishScrapeRun(ctx, run); err != nil {
		log.Printf("Price check: failed to finish run: %v", err)
	}

	if changes > 0 || errs > 0 {
		w.logFunc(models.LogLevelInfo, "pricecheck",
			fmt.Sprintf("Checked %d listings, %d price changes, %d errors", checked, changes, errs))
	}
}
