package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"homescout/models"
	"homescout/scraper"
	"homescout/storage"
)

// ListingService merges scraped data into the store and keeps the web
// relay in sync. All writes funnel through here so refresh semantics stay
// in one place.
type ListingService struct {
	store *storage.PostgresStore
	relay *storage.SupabaseStore
}

func NewListingService(store *storage.PostgresStore, relay *storage.SupabaseStore) *ListingService {
	return &ListingService{
		store: store,
		relay: relay,
	}
}

// ProcessResult contains the outcome of processing one scraped listing.
type ProcessResult struct {
	ListingID     uuid.UUID
	IsNew         bool
	PriceChanged  bool
	StatusChanged bool
}

// ProcessScrape takes raw extraction output and upserts it. The URL key
// dedups re-adds of the same property; on refresh the stored id, rating
// and notes survive untouched.
func (s *ListingService) ProcessScrape(ctx context.Context, raw *models.RawListing) (*ProcessResult, error) {
	result := &ProcessResult{}
	now := time.Now()

	urlKey := scraper.URLKey(raw.URL)

	existing, err := s.store.GetListingByURLKey(ctx, urlKey)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	listing := buildListing(raw, urlKey, now)
	if existing == nil {
		listing.ID = uuid.New()
		result.IsNew = true
	} else {
		listing.ID = existing.ID
		result.PriceChanged = priceChanged(existing.PriceNum, raw.PriceNum)
		result.StatusChanged = existing.Status != "" && raw.Status != "" && existing.Status != raw.Status

		if result.PriceChanged {
			applyPriceCut(listing, existing.PriceNum, raw.PriceNum, now)
		}
	}

	if err := s.store.UpsertListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("upsert listing: %w", err)
	}
	result.ListingID = listing.ID

	s.sync(listing)

	return result, nil
}

// RecordPriceCheck applies the outcome of a price-only refresh.
func (s *ListingService) RecordPriceCheck(ctx context.Context, existing *models.Listing, newPrice *float64) (bool, error) {
	if !priceChanged(existing.PriceNum, newPrice) {
		return false, nil
	}

	now := time.Now()
	updated := *existing
	applyPriceCut(&updated, existing.PriceNum, newPrice, now)
	updated.PriceNum = newPrice
	updated.Price = formatPrice(*newPrice)
	updated.ScrapedAt = now
	updated.UpdatedAt = now

	if err := s.store.UpsertListing(ctx, &updated); err != nil {
		return false, fmt.Errorf("record price: %w", err)
	}
	s.sync(&updated)
	return true, nil
}

func (s *ListingService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteListing(ctx, id); err != nil {
		return err
	}
	if s.relay != nil && s.relay.Enabled() {
		if err := s.relay.DeleteListing(id); err != nil {
			log.Printf("Warning: failed to delete from relay: %v", err)
		}
	}
	return nil
}

func (s *ListingService) sync(l *models.Listing) {
	if s.relay == nil || !s.relay.Enabled() {
		return
	}
	if err := s.relay.UpsertListing(l); err != nil {
		log.Printf("Warning: failed to sync listing %s: %v", l.ID, err)
	}
}

func buildListing(raw *models.RawListing, urlKey string, now time.Time) *models.Listing {
	return &models.Listing{
		URL:          raw.URL,
		URLKey:       urlKey,
		Address:      raw.Address,
		Price:        raw.Price,
		PriceNum:     raw.PriceNum,
		Sqft:         raw.Sqft,
		SqftNum:      raw.SqftNum,
		Beds:         raw.Beds,
		Baths:        raw.Baths,
		PropertyType: raw.PropertyType,
		YearBuilt:    raw.YearBuilt,
		LotSize:      raw.LotSize,
		Zestimate:    raw.Zestimate,
		Status:       raw.Status,
		DaysOnMarket: raw.DaysOnMarket,
		HOAFee:       raw.HOAFee,
		Neighborhood: raw.Neighborhood,
		Description:  raw.Description,
		ThumbnailURL: raw.ImageURL,
		HasGarage:    raw.HasGarage,
		GarageSpots:  raw.GarageSpots,

		ElementarySchoolRating: raw.ElementarySchoolRating,
		MiddleSchoolRating:     raw.MiddleSchoolRating,
		HighSchoolRating:       raw.HighSchoolRating,

		WalkScore: raw.WalkScore,
		BikeScore: raw.BikeScore,
		FloodZone: raw.FloodZone,

		ScrapedAt: now,
		UpdatedAt: now,
	}
}

func priceChanged(old, new *float64) bool {
	return old != nil && new != nil && *old != *new && *new > 0
}

// applyPriceCut records a drop; an increase clears any stale cut marker.
func applyPriceCut(l *models.Listing, old, new *float64, now time.Time) {
	if old == nil || new == nil {
		return
	}
	drop := *old - *new
	if drop <= 0 {
		l.PriceCutAmount = nil
		l.PriceCutPercent = nil
		l.PriceCutDate = nil
		return
	}
	pct := math.Round(drop / *old * 1000) / 10
	l.PriceCutAmount = &drop
	l.PriceCutPercent = &pct
	l.PriceCutDate = &now
}

func formatPrice(v float64) string {
	// $1,234,567 without pulling in a locale package.
	n := int64(v)
	if n < 1000 {
		return fmt.Sprintf("$%d", n)
	}
	var parts []string
	for n >= 1000 {
		parts = append([]string{fmt.Sprintf("%03d", n%1000)}, parts...)
		n /= 1000
	}
	out := fmt.Sprintf("$%d", n)
	for _, p := range parts {
		out += "," + p
	}
	return out
}

// ProcessStats aggregates results across one scrape or refresh run.
type ProcessStats struct {
	ListingsProcessed int
	ListingsNew       int
	PriceChanges      int
	StatusChanges     int
	Errors            int
}

func (s *ProcessStats) Aggregate(r *ProcessResult) {
	s.ListingsProcessed++
	if r.IsNew {
		s.ListingsNew++
	}
	if r.PriceChanged {
		s.PriceChanges++
	}
	if r.StatusChanged {
		s.StatusChanges++
	}
}

func (s *ProcessStats) ToJSON() json.RawMessage {
	data, _ := json.Marshal(map[string]int{
		"listings_processed": s.ListingsProcessed,
		"listings_new":       s.ListingsNew,
		"price_changes":      s.PriceChanges,
		"status_changes":     s.StatusChanges,
		"errors":             s.Errors,
	})
	return data
}
