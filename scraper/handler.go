package scraper

import (
	"context"

	"homescout/config"
	"homescout/models"
)

// Handler fetches a single listing page and extracts its structured data.
type Handler interface {
	ID() string
	Scrape(ctx context.Context, url string) (*models.RawListing, error)
	// CheckPrice does a cheaper fetch that only extracts the current asking
	// price, for refresh runs.
	CheckPrice(ctx context.Context, url string) (*float64, error)
	// ScrapeList fetches a search-results page and returns the property
	// detail URLs found on it.
	ScrapeList(ctx context.Context, url string) ([]string, error)
}

func NewHandler(cfg *config.Config) Handler {
	switch cfg.Scraper.Handler {
	case "browser":
		return NewBrowserHandler(cfg)
	case "firecrawl":
		return NewFirecrawlHandler(cfg)
	default:
		return NewFirecrawlHandler(cfg)
	}
}
