package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"homescout/config"
	"homescout/models"
	"homescout/scraper"
	"homescout/services"
	"homescout/storage"
)

// Triggerable allows workers to be triggered manually
type Triggerable interface {
	Trigger()
}

// Scheduler owns the refresh cadence and the command queue. Commands are
// rows in the local SQLite store, so the CLI and the daemon talk without
// any direct connection between them.
type Scheduler struct {
	cfg      *config.Config
	local    *storage.SQLiteStore
	handler  scraper.Handler
	listings *services.ListingService
	cron     *cron.Cron
	ticker   *time.Ticker
	stopCh   chan struct{}

	mu     sync.Mutex
	paused bool

	priceCheckWorker Triggerable
	enrichmentWorker Triggerable
}

func New(cfg *config.Config, local *storage.SQLiteStore, handler scraper.Handler, listings *services.ListingService) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		local:    local,
		handler:  handler,
		listings: listings,
		cron:     cron.New(),
		stopCh:   make(chan struct{}),
	}
}

// SetWorkers registers background workers for manual triggering
func (s *Scheduler) SetWorkers(priceCheck, enrichment Triggerable) {
	s.priceCheckWorker = priceCheck
	s.enrichmentWorker = enrichment
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			s.scheduledRefresh()
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.scheduledRefresh()
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, daemon will only respond to commands")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) scheduledRefresh() {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()

	if paused {
		log.Println("Scheduled refresh skipped: daemon paused")
		return
	}
	if s.priceCheckWorker != nil {
		s.priceCheckWorker.Trigger()
	}
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.local.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}

			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.local.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdAddListing:
		params, err := s.local.ParseCommandParams(cmd)
		if err != nil {
			return fmt.Errorf("parse params: %w", err)
		}
		if params.URL == "" {
			return fmt.Errorf("add_listing command without url")
		}
		return s.AddListing(ctx, params.URL)

	case models.CmdImportList:
		params, err := s.local.ParseCommandParams(cmd)
		if err != nil {
			return fmt.Errorf("parse params: %w", err)
		}
		if params.URL == "" {
			return fmt.Errorf("import_list command without url")
		}
		return s.ImportList(ctx, params.URL)

	case models.CmdRefreshNow:
		if s.priceCheckWorker != nil {
			s.priceCheckWorker.Trigger()
			log.Println("Price check worker triggered via command")
		}
		return nil

	case models.CmdRunEnrichment:
		if s.enrichmentWorker != nil {
			s.enrichmentWorker.Trigger()
			log.Println("Enrichment worker triggered via command")
		}
		return nil

	case models.CmdPause:
		s.mu.Lock()
		s.paused = true
		s.mu.Unlock()
		log.Println("Scheduled refreshes paused")
		return nil

	case models.CmdResume:
		s.mu.Lock()
		s.paused = false
		s.mu.Unlock()
		log.Println("Scheduled refreshes resumed")
		return nil

	default:
		return fmt.Errorf("unknown command: %s", cmd.Command)
	}
}

// ImportList scrapes a search-results page and queues an add for every
// property link found. The adds go back through the command queue so each
// one is processed and marked independently.
func (s *Scheduler) ImportList(ctx context.Context, url string) error {
	urls, err := s.handler.ScrapeList(ctx, url)
	if err != nil {
		return fmt.Errorf("scrape list %s: %w", url, err)
	}

	log.Printf("List import: found %d property links on %s", len(urls), url)
	for _, u := range urls {
		if err := s.local.EnqueueCommand(models.CmdAddListing, models.CommandParams{URL: u}); err != nil {
			return fmt.Errorf("queue %s: %w", u, err)
		}
	}
	return nil
}

// AddListing scrapes one URL and stores the result.
func (s *Scheduler) AddListing(ctx context.Context, url string) error {
	if !scraper.IsListingURL(url) {
		return fmt.Errorf("not a listing URL: %s", url)
	}

	raw, err := s.handler.Scrape(ctx, url)
	if err != nil {
		return fmt.Errorf("scrape %s: %w", url, err)
	}

	result, err := s.listings.ProcessScrape(ctx, raw)
	if err != nil {
		return fmt.Errorf("process %s: %w", url, err)
	}

	if result.IsNew {
		log.Printf("Added listing %s (%s)", result.ListingID, raw.Address)
	} else {
		log.Printf("Refreshed listing %s (%s)", result.ListingID, raw.Address)
	}
	return nil
}
