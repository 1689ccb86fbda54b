package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Rating is the user's verdict on a listing. Absence of a rating row means
// "unrated" - it is never stored as a value.
type Rating string

const (
	RatingYes   Rating = "yes"
	RatingMaybe Rating = "maybe"
	RatingNo    Rating = "no"
)

func (r Rating) IsValid() bool {
	switch r {
	case RatingYes, RatingMaybe, RatingNo:
		return true
	}
	return false
}

// AIFeatures holds the ten subjective 1-10 photo/text quality scores
// produced by the LLM extractor, plus its free-text summary.
type AIFeatures struct {
	KitchenQuality   int    `json:"kitchen_quality" db:"kitchen_quality"`
	BathroomQuality  int    `json:"bathroom_quality" db:"bathroom_quality"`
	OverallCondition int    `json:"overall_condition" db:"overall_condition"`
	NaturalLight     int    `json:"natural_light" db:"natural_light"`
	LayoutFlow       int    `json:"layout_flow" db:"layout_flow"`
	CurbAppeal       int    `json:"curb_appeal" db:"curb_appeal"`
	PrivacyLevel     int    `json:"privacy_level" db:"privacy_level"`
	YardUsability    int    `json:"yard_usability" db:"yard_usability"`
	StorageSpace     int    `json:"storage_space" db:"storage_space"`
	ModernUpdates    int    `json:"modern_updates" db:"modern_updates"`
	Summary          string `json:"summary" db:"summary"`
}

// Listing is one scraped property record plus the current user's overlay.
// Every optional numeric attribute is a pointer: nil means "absent", which
// the scoring core treats differently from a present zero.
type Listing struct {
	ID      uuid.UUID `json:"id" db:"id"`
	URL     string    `json:"url" db:"url"`
	URLKey  string    `json:"url_key" db:"url_key"`
	Address string    `json:"address" db:"address"`

	Price    string   `json:"price" db:"price"`
	PriceNum *float64 `json:"price_num" db:"price_num"`
	Sqft     string   `json:"sqft" db:"sqft"`
	SqftNum  *float64 `json:"sqft_num" db:"sqft_num"`
	Beds     *float64 `json:"beds" db:"beds"`
	Baths    *float64 `json:"baths" db:"baths"`

	PropertyType string `json:"property_type" db:"property_type"`
	YearBuilt    *int   `json:"year_built" db:"year_built"`
	LotSize      string `json:"lot_size" db:"lot_size"`
	Zestimate    string `json:"zestimate" db:"zestimate"`
	Status       string `json:"status" db:"status"`
	DaysOnMarket *int   `json:"days_on_market" db:"days_on_market"`
	HOAFee       string `json:"hoa_fee" db:"hoa_fee"`
	Neighborhood string `json:"neighborhood" db:"neighborhood"`
	Description  string `json:"description" db:"description"`
	ThumbnailURL string `json:"thumbnail_url" db:"thumbnail_url"`

	HasGarage   *bool `json:"has_garage" db:"has_garage"`
	GarageSpots *int  `json:"garage_spots" db:"garage_spots"`

	ElementarySchoolRating *int `json:"elementary_school_rating" db:"elementary_school_rating"`
	MiddleSchoolRating     *int `json:"middle_school_rating" db:"middle_school_rating"`
	HighSchoolRating       *int `json:"high_school_rating" db:"high_school_rating"`

	CommuteAM     *int     `json:"commute_am" db:"commute_am"` // minutes, traffic-pessimistic morning run
	CommutePM     *int     `json:"commute_pm" db:"commute_pm"`
	DistanceMiles *float64 `json:"distance_miles" db:"distance_miles"`

	WalkScore *int `json:"walk_score" db:"walk_score"`
	BikeScore *int `json:"bike_score" db:"bike_score"`

	FloodZone string `json:"flood_zone" db:"flood_zone"`

	PriceCutAmount  *float64   `json:"price_cut_amount" db:"price_cut_amount"`
	PriceCutPercent *float64   `json:"price_cut_percent" db:"price_cut_percent"`
	PriceCutDate    *time.Time `json:"price_cut_date" db:"price_cut_date"`

	AIFeatures *AIFeatures `json:"ai_features" db:"ai_features"`

	ScrapedAt time.Time `json:"scraped_at" db:"scraped_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Per-user overlay, joined from user_ratings. Rating nil = unrated.
	UserRating *Rating `json:"user_rating" db:"user_rating"`
	UserNotes  string  `json:"user_notes" db:"user_notes"`

	// View-time computation, relative to the current working set.
	// Never persisted as ground truth.
	TotalScore int `json:"total_score" db:"-"`
}

// PricePerSqft returns round(price/sqft) when both are present and positive,
// otherwise nil.
func (l *Listing) PricePerSqft() *float64 {
	if l.PriceNum == nil || l.SqftNum == nil || *l.PriceNum <= 0 || *l.SqftNum <= 0 {
		return nil
	}
	v := math.Round(*l.PriceNum / *l.SqftNum)
	return &v
}

// RawListing is what the extraction boundary produces from a crawled page.
// The same absent-vs-zero convention applies; services merge it into a
// stored Listing, preserving id/rating/notes on refresh.
type RawListing struct {
	URL     string
	Address string

	Price    string
	PriceNum *float64
	Sqft     string
	SqftNum  *float64
	Beds     *float64
	Baths    *float64

	PropertyType string
	YearBuilt    *int
	LotSize      string
	Zestimate    string
	Status       string
	DaysOnMarket *int
	HOAFee       string
	Neighborhood string
	Description  string
	ImageURL     string

	HasGarage   *bool
	GarageSpots *int

	ElementarySchoolRating *int
	MiddleSchoolRating     *int
	HighSchoolRating       *int

	WalkScore *int
	BikeScore *int

	FloodZone string
}
