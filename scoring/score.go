package scoring

import (
	"math"

	"homescout/models"
)

// attribute binds a weight to the function that produces its normalized
// [0,1] value. New optional attributes slot in here without touching the
// engine.
type attribute struct {
	weight func(w *Weights) int
	norm   func(l *models.Listing, pop []models.Listing) float64
}

func structuredAttributes() []attribute {
	return []attribute{
		{func(w *Weights) int { return w.Price }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractPrice, lowerIsBetter, true)
		}},
		{func(w *Weights) int { return w.Size }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractSqft, higherIsBetter, true)
		}},
		{func(w *Weights) int { return w.Beds }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractBeds, higherIsBetter, true)
		}},
		{func(w *Weights) int { return w.Baths }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractBaths, higherIsBetter, true)
		}},
		{func(w *Weights) int { return w.PricePerSqft }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractPricePerSqft, lowerIsBetter, true)
		}},
		{func(w *Weights) int { return w.AvgSchoolRating }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractAvgSchool, higherIsBetter, false)
		}},
		{func(w *Weights) int { return w.CommuteTime }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractCommuteAM, lowerIsBetter, true)
		}},
		{func(w *Weights) int { return w.GarageSize }, normalizeGarage},
		{func(w *Weights) int { return w.FloodRisk }, func(l *models.Listing, pop []models.Listing) float64 {
			return ClassifyFloodRisk(l.FloodZone).Score()
		}},
	}
}

func aiAttributes() []attribute {
	base := []attribute{
		{func(w *Weights) int { return w.Price }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractPrice, lowerIsBetter, true)
		}},
		{func(w *Weights) int { return w.Size }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractSqft, higherIsBetter, true)
		}},
		{func(w *Weights) int { return w.Beds }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractBeds, higherIsBetter, true)
		}},
		{func(w *Weights) int { return w.Baths }, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, extractBaths, higherIsBetter, true)
		}},
	}

	features := []struct {
		weight func(w *Weights) int
		field  func(f *models.AIFeatures) int
	}{
		{func(w *Weights) int { return w.KitchenQuality }, func(f *models.AIFeatures) int { return f.KitchenQuality }},
		{func(w *Weights) int { return w.BathroomQuality }, func(f *models.AIFeatures) int { return f.BathroomQuality }},
		{func(w *Weights) int { return w.OverallCondition }, func(f *models.AIFeatures) int { return f.OverallCondition }},
		{func(w *Weights) int { return w.NaturalLight }, func(f *models.AIFeatures) int { return f.NaturalLight }},
		{func(w *Weights) int { return w.LayoutFlow }, func(f *models.AIFeatures) int { return f.LayoutFlow }},
		{func(w *Weights) int { return w.CurbAppeal }, func(f *models.AIFeatures) int { return f.CurbAppeal }},
		{func(w *Weights) int { return w.PrivacyLevel }, func(f *models.AIFeatures) int { return f.PrivacyLevel }},
		{func(w *Weights) int { return w.YardUsability }, func(f *models.AIFeatures) int { return f.YardUsability }},
		{func(w *Weights) int { return w.StorageSpace }, func(f *models.AIFeatures) int { return f.StorageSpace }},
		{func(w *Weights) int { return w.ModernUpdates }, func(f *models.AIFeatures) int { return f.ModernUpdates }},
	}
	for _, f := range features {
		ex := aiExtractor(f.field)
		base = append(base, attribute{f.weight, func(l *models.Listing, pop []models.Listing) float64 {
			return normalize(l, pop, ex, higherIsBetter, false)
		}})
	}
	return base
}

func attributesFor(mode WeightMode) []attribute {
	if mode == ModeAI {
		return aiAttributes()
	}
	return structuredAttributes()
}

// Score computes a listing's 0-100 score relative to the working set. It is
// deliberately population-relative: adding or removing any listing moves the
// normalization bounds and therefore everyone's score. This is a ranking,
// not a valuation.
func Score(l *models.Listing, population []models.Listing, w Weights) int {
	attrs := attributesFor(w.Mode)

	total := 0
	for _, a := range attrs {
		total += a.weight(&w)
	}
	if total <= 0 {
		// All weights zeroed out; a defined 0 beats a NaN poisoning sorts.
		return 0
	}

	var sum float64
	for _, a := range attrs {
		wt := a.weight(&w)
		if wt == 0 {
			continue
		}
		sum += a.norm(l, population) * float64(wt)
	}

	return int(math.Round(sum / float64(total) * 100))
}

// ScoreAll returns a new slice with TotalScore filled in for every listing.
// The input is never mutated; each call recomputes from scratch so a weight
// change can never leak stale scores.
func ScoreAll(population []models.Listing, w Weights) []models.Listing {
	out := make([]models.Listing, len(population))
	copy(out, population)
	for i := range out {
		out[i].TotalScore = Score(&out[i], population, w)
	}
	return out
}
