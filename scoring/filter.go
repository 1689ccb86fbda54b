package scoring

import (
	"sort"
	"strings"

	"homescout/models"
)

// RatingUnrated selects listings with no rating row in a rating filter.
const RatingUnrated = "unrated"

// Range is a numeric band with independently optional bounds.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r Range) active() bool {
	return r.Min != nil || r.Max != nil
}

// match reports whether a present value satisfies the bounds. A listing
// missing the value cannot satisfy an active bound and is excluded.
func (r Range) match(v float64, present bool) bool {
	if !r.active() {
		return true
	}
	if !present {
		return false
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Criteria is a conjunction of independent predicates. A nil/empty set or an
// unset range means "no filter", never "match nothing".
type Criteria struct {
	Ratings    []string    `json:"ratings,omitempty"` // yes/maybe/no/unrated
	Statuses   []string    `json:"statuses,omitempty"`
	FloodRisks []RiskLevel `json:"flood_risks,omitempty"`

	Price        Range `json:"price"`
	PricePerSqft Range `json:"price_per_sqft"`
	YearBuilt    Range `json:"year_built"`
	Beds         Range `json:"beds"`
	Baths        Range `json:"baths"`
	Sqft         Range `json:"sqft"`
	CommuteAM    Range `json:"commute_am"`
	CommutePM    Range `json:"commute_pm"`
	Distance     Range `json:"distance"`

	MinElementaryRating *int `json:"min_elementary_rating,omitempty"`
	MinMiddleRating     *int `json:"min_middle_rating,omitempty"`
	MinHighRating       *int `json:"min_high_rating,omitempty"`
}

// Filter returns the listings satisfying every active predicate. The input
// slice is not modified.
func Filter(listings []models.Listing, c Criteria) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for i := range listings {
		if matches(&listings[i], c) {
			out = append(out, listings[i])
		}
	}
	return out
}

func matches(l *models.Listing, c Criteria) bool {
	if !matchRating(l, c.Ratings) {
		return false
	}
	if !matchStatus(l, c.Statuses) {
		return false
	}
	if len(c.FloodRisks) > 0 {
		risk := ClassifyFloodRisk(l.FloodZone)
		found := false
		for _, want := range c.FloodRisks {
			if risk == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if v, ok := extractPrice(l); !c.Price.match(v, ok) {
		return false
	}
	if v, ok := extractPricePerSqft(l); !c.PricePerSqft.match(v, ok) {
		return false
	}
	if !c.YearBuilt.match(intVal(l.YearBuilt)) {
		return false
	}
	if v, ok := extractBeds(l); !c.Beds.match(v, ok) {
		return false
	}
	if v, ok := extractBaths(l); !c.Baths.match(v, ok) {
		return false
	}
	if v, ok := extractSqft(l); !c.Sqft.match(v, ok) {
		return false
	}
	if v, ok := extractCommuteAM(l); !c.CommuteAM.match(v, ok) {
		return false
	}
	if !c.CommutePM.match(intVal(l.CommutePM)) {
		return false
	}
	if !c.Distance.match(floatVal(l.DistanceMiles)) {
		return false
	}

	if !minRating(l.ElementarySchoolRating, c.MinElementaryRating) {
		return false
	}
	if !minRating(l.MiddleSchoolRating, c.MinMiddleRating) {
		return false
	}
	if !minRating(l.HighSchoolRating, c.MinHighRating) {
		return false
	}

	return true
}

func matchRating(l *models.Listing, ratings []string) bool {
	if len(ratings) == 0 {
		return true
	}
	for _, r := range ratings {
		if r == RatingUnrated {
			if l.UserRating == nil {
				return true
			}
			continue
		}
		if l.UserRating != nil && string(*l.UserRating) == r {
			return true
		}
	}
	return false
}

func matchStatus(l *models.Listing, statuses []string) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if strings.EqualFold(l.Status, s) {
			return true
		}
	}
	return false
}

func minRating(v *int, min *int) bool {
	if min == nil {
		return true
	}
	return v != nil && *v >= *min
}

func intVal(p *int) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return float64(*p), true
}

func floatVal(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// StatusOption is one observed status string and how often it occurs.
type StatusOption struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// StatusOptions derives the filterable status values from the working set.
// Status is an open string set; the choices come from the data, not a
// hard-coded enum.
func StatusOptions(listings []models.Listing) []StatusOption {
	counts := make(map[string]int)
	for i := range listings {
		if s := strings.TrimSpace(listings[i].Status); s != "" {
			counts[s]++
		}
	}
	opts := make([]StatusOption, 0, len(counts))
	for s, n := range counts {
		opts = append(opts, StatusOption{Status: s, Count: n})
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Count != opts[j].Count {
			return opts[i].Count > opts[j].Count
		}
		return opts[i].Status < opts[j].Status
	})
	return opts
}
