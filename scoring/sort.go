package scoring

import (
	"sort"
	"strings"

	"homescout/models"
)

// SortKey names one sortable column of the listings table.
type SortKey string

const (
	SortScore            SortKey = "score"
	SortPrice            SortKey = "price"
	SortSqft             SortKey = "sqft"
	SortDaysOnMarket     SortKey = "days_on_market"
	SortAddress          SortKey = "address"
	SortStatus           SortKey = "status"
	SortBeds             SortKey = "beds"
	SortBaths            SortKey = "baths"
	SortPriceCut         SortKey = "price_cut"
	SortPricePerSqft     SortKey = "price_per_sqft"
	SortGarageSpots      SortKey = "garage_spots"
	SortCommuteAM        SortKey = "commute_am"
	SortCommutePM        SortKey = "commute_pm"
	SortElementarySchool SortKey = "elementary_school"
	SortMiddleSchool     SortKey = "middle_school"
	SortHighSchool       SortKey = "high_school"
	SortWalkScore        SortKey = "walk_score"
	SortBikeScore        SortKey = "bike_score"
	SortFloodRisk        SortKey = "flood_risk"
	SortNeighborhood     SortKey = "neighborhood"
	SortScrapedAt        SortKey = "scraped_at"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort returns a new slice ordered by the given key. The sort is stable:
// ties keep their incoming relative order. Listings missing the key's value
// always sort last, whatever the direction - one uniform rule instead of
// per-key magic sentinels.
func Sort(listings []models.Listing, key SortKey, dir Direction) []models.Listing {
	out := make([]models.Listing, len(listings))
	copy(out, listings)

	if str := stringExtractor(key); str != nil {
		sortByString(out, str, dir)
		return out
	}

	num := numericExtractor(key)
	sort.SliceStable(out, func(i, j int) bool {
		vi, oki := num(&out[i])
		vj, okj := num(&out[j])
		if oki != okj {
			return oki // present before missing
		}
		if !oki {
			return false
		}
		if vi == vj {
			return false
		}
		if dir == Desc {
			return vi > vj
		}
		return vi < vj
	})
	return out
}

func sortByString(out []models.Listing, extract func(*models.Listing) string, dir Direction) {
	sort.SliceStable(out, func(i, j int) bool {
		si := strings.ToLower(extract(&out[i]))
		sj := strings.ToLower(extract(&out[j]))
		// Empty strings are "missing" and go last either way.
		if (si == "") != (sj == "") {
			return si != ""
		}
		if si == sj {
			return false
		}
		if dir == Desc {
			return si > sj
		}
		return si < sj
	})
}

func stringExtractor(key SortKey) func(*models.Listing) string {
	switch key {
	case SortAddress:
		return func(l *models.Listing) string { return l.Address }
	case SortStatus:
		return func(l *models.Listing) string { return l.Status }
	case SortNeighborhood:
		return func(l *models.Listing) string { return l.Neighborhood }
	}
	return nil
}

func numericExtractor(key SortKey) extractor {
	switch key {
	case SortPrice:
		return extractPrice
	case SortSqft:
		return extractSqft
	case SortBeds:
		return extractBeds
	case SortBaths:
		return extractBaths
	case SortPricePerSqft:
		return extractPricePerSqft
	case SortDaysOnMarket:
		return func(l *models.Listing) (float64, bool) { return intVal(l.DaysOnMarket) }
	case SortPriceCut:
		return func(l *models.Listing) (float64, bool) { return floatVal(l.PriceCutAmount) }
	case SortGarageSpots:
		return func(l *models.Listing) (float64, bool) { return intVal(l.GarageSpots) }
	case SortCommuteAM:
		return extractCommuteAM
	case SortCommutePM:
		return func(l *models.Listing) (float64, bool) { return intVal(l.CommutePM) }
	case SortElementarySchool:
		return func(l *models.Listing) (float64, bool) { return intVal(l.ElementarySchoolRating) }
	case SortMiddleSchool:
		return func(l *models.Listing) (float64, bool) { return intVal(l.MiddleSchoolRating) }
	case SortHighSchool:
		return func(l *models.Listing) (float64, bool) { return intVal(l.HighSchoolRating) }
	case SortWalkScore:
		return func(l *models.Listing) (float64, bool) { return intVal(l.WalkScore) }
	case SortBikeScore:
		return func(l *models.Listing) (float64, bool) { return intVal(l.BikeScore) }
	case SortFloodRisk:
		return func(l *models.Listing) (float64, bool) {
			return float64(ClassifyFloodRisk(l.FloodZone).Ordinal()), true
		}
	case SortScrapedAt:
		return func(l *models.Listing) (float64, bool) {
			if l.ScrapedAt.IsZero() {
				return 0, false
			}
			return float64(l.ScrapedAt.UnixNano()), true
		}
	default: // SortScore
		return func(l *models.Listing) (float64, bool) { return float64(l.TotalScore), true }
	}
}

// ParseSortKey validates a query-string sort key, defaulting to score.
func ParseSortKey(s string) SortKey {
	key := SortKey(s)
	switch key {
	case SortScore, SortPrice, SortSqft, SortDaysOnMarket, SortAddress, SortStatus,
		SortBeds, SortBaths, SortPriceCut, SortPricePerSqft, SortGarageSpots,
		SortCommuteAM, SortCommutePM, SortElementarySchool, SortMiddleSchool,
		SortHighSchool, SortWalkScore, SortBikeScore, SortFloodRisk,
		SortNeighborhood, SortScrapedAt:
		return key
	}
	return SortScore
}
