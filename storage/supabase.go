package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"homescout/config"
	"homescout/models"
)

// SupabaseStore relays listings to the hosted web table so the browser UI
// sees the same data the daemon works with.
type SupabaseStore struct {
	url        string
	serviceKey string
	client     *http.Client
}

func NewSupabaseStore(cfg *config.SupabaseConfig) *SupabaseStore {
	return &SupabaseStore{
		url:        cfg.URL,
		serviceKey: cfg.ServiceKey,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether a relay target is configured. Callers skip sync
// when it is not, so the daemon runs fine without Supabase credentials.
func (s *SupabaseStore) Enabled() bool {
	return s.url != "" && s.serviceKey != ""
}

type supabaseListing struct {
	ID            uuid.UUID          `json:"id"`
	URL           string             `json:"url"`
	Address       string             `json:"address"`
	Price         string             `json:"price"`
	PriceNum      *float64           `json:"price_num"`
	Sqft          string             `json:"sqft"`
	SqftNum       *float64           `json:"sqft_num"`
	Beds          *float64           `json:"beds"`
	Baths         *float64           `json:"baths"`
	PropertyType  string             `json:"property_type"`
	YearBuilt     *int               `json:"year_built"`
	Status        string             `json:"status"`
	DaysOnMarket  *int               `json:"days_on_market"`
	Neighborhood  string             `json:"neighborhood"`
	ThumbnailURL  string             `json:"thumbnail_url"`
	FloodZone     string             `json:"flood_zone"`
	CommuteAM     *int               `json:"commute_am"`
	CommutePM     *int               `json:"commute_pm"`
	DistanceMiles *float64           `json:"distance_miles"`
	WalkScore     *int               `json:"walk_score"`
	BikeScore     *int               `json:"bike_score"`
	AIFeatures    *models.AIFeatures `json:"ai_features"`
	ScrapedAt     time.Time          `json:"scraped_at"`
	LastSyncedAt  time.Time          `json:"last_synced_at"`
}

func (s *SupabaseStore) UpsertListing(l *models.Listing) error {
	row := supabaseListing{
		ID:            l.ID,
		URL:           l.URL,
		Address:       l.Address,
		Price:         l.Price,
		PriceNum:      l.PriceNum,
		Sqft:          l.Sqft,
		SqftNum:       l.SqftNum,
		Beds:          l.Beds,
		Baths:         l.Baths,
		PropertyType:  l.PropertyType,
		YearBuilt:     l.YearBuilt,
		Status:        l.Status,
		DaysOnMarket:  l.DaysOnMarket,
		Neighborhood:  l.Neighborhood,
		ThumbnailURL:  l.ThumbnailURL,
		FloodZone:     l.FloodZone,
		CommuteAM:     l.CommuteAM,
		CommutePM:     l.CommutePM,
		DistanceMiles: l.DistanceMiles,
		WalkScore:     l.WalkScore,
		BikeScore:     l.BikeScore,
		AIFeatures:    l.AIFeatures,
		ScrapedAt:     l.ScrapedAt,
		LastSyncedAt:  time.Now(),
	}

	data, err := json.Marshal(row)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", s.url+"/rest/v1/listings", bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	return s.do(req)
}

func (s *SupabaseStore) DeleteListing(id uuid.UUID) error {
	req, err := http.NewRequest("DELETE", s.url+"/rest/v1/listings?id=eq."+id.String(), nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	return s.do(req)
}

func (s *SupabaseStore) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
}

func (s *SupabaseStore) do(req *http.Request) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("supabase error %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
