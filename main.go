package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"homescout/config"
	"homescout/geo"
	"homescout/logging"
	"homescout/models"
	"homescout/output"
	"homescout/scheduler"
	"homescout/scoring"
	"homescout/scraper"
	"homescout/server"
	"homescout/services"
	"homescout/storage"
	"homescout/workers"
)

var (
	addURL       = flag.String("add", "", "Scrape one Zillow listing URL and exit")
	listNow      = flag.Bool("list", false, "Print the ranked listing table and exit")
	sortFlag     = flag.String("sort", "score", "Sort column for -list")
	dirFlag      = flag.String("dir", "desc", "Sort direction for -list (asc or desc)")
	refreshNow   = flag.Bool("refresh", false, "Re-check prices on every listing and exit")
	resetWeights = flag.Bool("reset-weights", false, "Restore default scoring weights and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	ctx := context.Background()

	pgStore, err := storage.NewPostgresStore(ctx, cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Postgres.URL))

	sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()

	if len(cfg.Weights.Values) > 0 || cfg.Weights.Mode != "" {
		w := scoring.WeightsFromConfig(cfg.Weights.Mode, cfg.Weights.Values)
		if err := sqliteStore.SeedWeights(cfg.UserID, &w); err != nil {
			log.Printf("Warning: could not seed weights from config: %v", err)
		}
	}

	relay := storage.NewSupabaseStore(&cfg.Supabase)
	if relay.Enabled() {
		log.Printf("Supabase relay enabled: %s", cfg.Supabase.URL)
	}

	listingService := services.NewListingService(pgStore, relay)
	ratingService := services.NewRatingService(pgStore)

	// One-shot commands
	if *resetWeights {
		if err := sqliteStore.ResetWeights(cfg.UserID); err != nil {
			log.Fatalf("Failed to reset weights: %v", err)
		}
		log.Println("Scoring weights reset to defaults")
		return
	}

	if *listNow {
		if err := printListings(ctx, cfg, pgStore, sqliteStore); err != nil {
			log.Fatalf("Failed to list: %v", err)
		}
		return
	}

	if *addURL != "" {
		if err := addListing(ctx, cfg, listingService, *addURL); err != nil {
			log.Fatalf("Failed to add listing: %v", err)
		}
		return
	}

	if *refreshNow {
		handler := scraper.NewHandler(cfg)
		worker := workers.NewPriceCheckWorker(pgStore, listingService, handler)
		worker.RunBatch(ctx, 0, 100) // stale threshold of zero means everything
		log.Println("Refresh complete")
		return
	}

	// Daemon mode
	log.Println("Starting homescout daemon...")

	handler := scraper.NewHandler(cfg)
	log.Printf("Scrape handler: %s", cfg.Scraper.Handler)

	commute := geo.NewCommuteEstimator(cfg)
	if !commute.Enabled() {
		log.Println("Warning: commute estimation disabled (no Maps API key or destination)")
	}

	var uploader *storage.S3Uploader
	if cfg.S3.Bucket != "" {
		uploader, err = storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			log.Printf("Warning: thumbnail rehosting disabled: %v", err)
			uploader = nil
		} else {
			log.Printf("Thumbnail bucket: %s", cfg.S3.Bucket)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dbLog := func(level models.LogLevel, source, message string) {
		if err := pgStore.AddScrapeLog(ctx, nil, level, source+": "+message); err != nil {
			log.Printf("Warning: could not persist log entry: %v", err)
		}
	}

	enrichmentWorker := workers.NewEnrichmentWorker(cfg, pgStore, commute, uploader)
	enrichmentWorker.SetLogger(dbLog)
	go enrichmentWorker.Run(ctx, 10, 5*time.Minute)
	log.Println("Enrichment worker started")

	priceCheckWorker := workers.NewPriceCheckWorker(pgStore, listingService, handler)
	priceCheckWorker.SetLogger(dbLog)
	go priceCheckWorker.Run(ctx, 24*time.Hour, 20, 30*time.Minute)
	log.Println("Price check worker started")

	sched := scheduler.New(cfg, sqliteStore, handler, listingService)
	sched.SetWorkers(priceCheckWorker, enrichmentWorker)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	srv := server.New(cfg, pgStore, sqliteStore, listingService, ratingService)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("API server error: %v", err)
		}
	}()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
	sched.Stop()
	cancel()
	log.Println("Goodbye!")
}

func printListings(ctx context.Context, cfg *config.Config, pgStore *storage.PostgresStore, sqliteStore *storage.SQLiteStore) error {
	listings, err := pgStore.ListListings(ctx, cfg.UserID)
	if err != nil {
		return err
	}

	weights, err := sqliteStore.GetWeights(cfg.UserID)
	if err != nil {
		return err
	}

	scored := scoring.ScoreAll(listings, *weights)

	dir := scoring.Desc
	if strings.EqualFold(*dirFlag, "asc") {
		dir = scoring.Asc
	}
	sorted := scoring.Sort(scored, scoring.ParseSortKey(*sortFlag), dir)

	return output.WriteTable(os.Stdout, sorted)
}

func addListing(ctx context.Context, cfg *config.Config, listings *services.ListingService, url string) error {
	if !scraper.IsListingURL(url) {
		log.Fatalf("Not a Zillow URL: %s", url)
	}

	handler := scraper.NewHandler(cfg)

	// A search-results URL imports every property on the page.
	if !scraper.IsDetailURL(url) {
		log.Printf("Scraping search results %s...", url)
		urls, err := handler.ScrapeList(ctx, url)
		if err != nil {
			return err
		}
		log.Printf("Found %d property links", len(urls))
		for _, u := range urls {
			if err := scrapeOne(ctx, handler, listings, u); err != nil {
				log.Printf("Warning: %s: %v", u, err)
			}
			time.Sleep(time.Duration(cfg.Scraper.DelayMS) * time.Millisecond)
		}
		return nil
	}

	return scrapeOne(ctx, handler, listings, url)
}

func scrapeOne(ctx context.Context, handler scraper.Handler, listings *services.ListingService, url string) error {
	log.Printf("Scraping %s...", url)

	raw, err := handler.Scrape(ctx, url)
	if err != nil {
		return err
	}

	result, err := listings.ProcessScrape(ctx, raw)
	if err != nil {
		return err
	}

	if result.IsNew {
		log.Printf("Added %s (%s)", raw.Address, result.ListingID)
	} else {
		log.Printf("Refreshed %s (%s)", raw.Address, result.ListingID)
	}
	return nil
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
