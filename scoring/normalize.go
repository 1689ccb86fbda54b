package scoring

import "homescout/models"

// direction says whether a bigger raw value is a better one.
type direction int

const (
	higherIsBetter direction = iota
	lowerIsBetter
)

// extractor pulls one numeric attribute from a listing. ok=false means the
// attribute is absent, which is distinct from a present zero.
type extractor func(l *models.Listing) (v float64, ok bool)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// bounds returns the population min/max for an extractor. The magnitude flag
// drops non-positive values, the right policy for dollar/area/time figures
// where 0 is a stand-in for "unknown". Degenerate populations collapse to
// the documented defaults (min 0, max 1, range 1) so the caller never
// divides by zero.
func bounds(population []models.Listing, extract extractor, magnitude bool) (min, max, rng float64) {
	first := true
	for i := range population {
		v, ok := extract(&population[i])
		if !ok || (magnitude && v <= 0) {
			continue
		}
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if first {
		min, max = 0, 1
	}
	rng = max - min
	if rng == 0 {
		rng = 1
	}
	return min, max, rng
}

// normalize maps a listing's attribute into [0,1] relative to the working
// set. Absent values land on the neutral 0.5: a listing is neither punished
// nor rewarded for data the scraper could not find.
func normalize(l *models.Listing, population []models.Listing, extract extractor, dir direction, magnitude bool) float64 {
	v, ok := extract(l)
	if !ok || (magnitude && v <= 0) {
		return 0.5
	}

	min, _, rng := bounds(population, extract, magnitude)
	n := clamp01((v - min) / rng)
	if dir == lowerIsBetter {
		return 1 - n
	}
	return n
}

// normalizeGarage scores garage size. An explicit "no garage" is the worst
// case (0), which is not the same as unknown (0.5). Known spot counts scale
// against the population's max count.
func normalizeGarage(l *models.Listing, population []models.Listing) float64 {
	if l.HasGarage != nil && !*l.HasGarage {
		return 0
	}
	if l.GarageSpots == nil || *l.GarageSpots <= 0 {
		return 0.5
	}

	maxSpots := 1.0
	for i := range population {
		if s := population[i].GarageSpots; s != nil && float64(*s) > maxSpots {
			maxSpots = float64(*s)
		}
	}
	return clamp01(float64(*l.GarageSpots) / maxSpots)
}

// avgSchoolRating averages whichever of the three school ratings are
// present. ok=false when none are.
func avgSchoolRating(l *models.Listing) (float64, bool) {
	var sum float64
	var n int
	for _, r := range []*int{l.ElementarySchoolRating, l.MiddleSchoolRating, l.HighSchoolRating} {
		if r != nil {
			sum += float64(*r)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Attribute extractors shared by the score engine and tests.

func extractPrice(l *models.Listing) (float64, bool) {
	if l.PriceNum == nil {
		return 0, false
	}
	return *l.PriceNum, true
}

func extractSqft(l *models.Listing) (float64, bool) {
	if l.SqftNum == nil {
		return 0, false
	}
	return *l.SqftNum, true
}

func extractBeds(l *models.Listing) (float64, bool) {
	if l.Beds == nil {
		return 0, false
	}
	return *l.Beds, true
}

func extractBaths(l *models.Listing) (float64, bool) {
	if l.Baths == nil {
		return 0, false
	}
	return *l.Baths, true
}

func extractPricePerSqft(l *models.Listing) (float64, bool) {
	if pps := l.PricePerSqft(); pps != nil {
		return *pps, true
	}
	return 0, false
}

func extractCommuteAM(l *models.Listing) (float64, bool) {
	if l.CommuteAM == nil {
		return 0, false
	}
	return float64(*l.CommuteAM), true
}

func extractAvgSchool(l *models.Listing) (float64, bool) {
	return avgSchoolRating(l)
}

func aiExtractor(field func(f *models.AIFeatures) int) extractor {
	return func(l *models.Listing) (float64, bool) {
		if l.AIFeatures == nil {
			return 0, false
		}
		return float64(field(l.AIFeatures)), true
	}
}
