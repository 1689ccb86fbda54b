package scoring

// WeightMode selects which attribute set feeds the score: the structured
// facts scraped from the page, or the AI photo-quality features.
type WeightMode string

const (
	ModeStructured WeightMode = "structured"
	ModeAI         WeightMode = "ai"
)

// Weights controls each attribute's influence on the composite score.
// Each weight is an integer on a 0-10 scale; 0 removes the attribute
// entirely. The engine divides by the sum of the active mode's weights,
// so weights are relative, not percentages.
type Weights struct {
	Mode WeightMode `json:"mode" yaml:"mode"`

	Price int `json:"price" yaml:"price"`
	Size  int `json:"size" yaml:"size"`
	Beds  int `json:"beds" yaml:"beds"`
	Baths int `json:"baths" yaml:"baths"`

	// Structured mode only.
	PricePerSqft    int `json:"price_per_sqft" yaml:"price_per_sqft"`
	AvgSchoolRating int `json:"avg_school_rating" yaml:"avg_school_rating"`
	CommuteTime     int `json:"commute_time" yaml:"commute_time"`
	GarageSize      int `json:"garage_size" yaml:"garage_size"`
	FloodRisk       int `json:"flood_risk" yaml:"flood_risk"`

	// AI mode only.
	KitchenQuality   int `json:"kitchen_quality" yaml:"kitchen_quality"`
	BathroomQuality  int `json:"bathroom_quality" yaml:"bathroom_quality"`
	OverallCondition int `json:"overall_condition" yaml:"overall_condition"`
	NaturalLight     int `json:"natural_light" yaml:"natural_light"`
	LayoutFlow       int `json:"layout_flow" yaml:"layout_flow"`
	CurbAppeal       int `json:"curb_appeal" yaml:"curb_appeal"`
	PrivacyLevel     int `json:"privacy_level" yaml:"privacy_level"`
	YardUsability    int `json:"yard_usability" yaml:"yard_usability"`
	StorageSpace     int `json:"storage_space" yaml:"storage_space"`
	ModernUpdates    int `json:"modern_updates" yaml:"modern_updates"`
}

// DefaultWeights returns the shipped defaults for structured scoring.
func DefaultWeights() Weights {
	return Weights{
		Mode:            ModeStructured,
		Price:           10,
		Size:            8,
		Beds:            6,
		Baths:           5,
		PricePerSqft:    7,
		AvgSchoolRating: 8,
		CommuteTime:     7,
		GarageSize:      4,
		FloodRisk:       6,
	}
}

// DefaultAIWeights returns the shipped defaults for AI-feature scoring.
func DefaultAIWeights() Weights {
	return Weights{
		Mode:             ModeAI,
		Price:            10,
		Size:             8,
		Beds:             6,
		Baths:            5,
		KitchenQuality:   9,
		BathroomQuality:  7,
		OverallCondition: 8,
		NaturalLight:     6,
		LayoutFlow:       5,
		CurbAppeal:       4,
		PrivacyLevel:     5,
		YardUsability:    4,
		StorageSpace:     3,
		ModernUpdates:    6,
	}
}

// WeightsFromConfig builds weights from the YAML override block: start from
// the mode's defaults, then apply each named value.
func WeightsFromConfig(mode string, values map[string]int) Weights {
	w := DefaultWeights()
	if WeightMode(mode) == ModeAI {
		w = DefaultAIWeights()
	}

	fields := map[string]*int{
		"price":             &w.Price,
		"size":              &w.Size,
		"beds":              &w.Beds,
		"baths":             &w.Baths,
		"price_per_sqft":    &w.PricePerSqft,
		"avg_school_rating": &w.AvgSchoolRating,
		"commute_time":      &w.CommuteTime,
		"garage_size":       &w.GarageSize,
		"flood_risk":        &w.FloodRisk,
		"kitchen_quality":   &w.KitchenQuality,
		"bathroom_quality":  &w.BathroomQuality,
		"overall_condition": &w.OverallCondition,
		"natural_light":     &w.NaturalLight,
		"layout_flow":       &w.LayoutFlow,
		"curb_appeal":       &w.CurbAppeal,
		"privacy_level":     &w.PrivacyLevel,
		"yard_usability":    &w.YardUsability,
		"storage_space":     &w.StorageSpace,
		"modern_updates":    &w.ModernUpdates,
	}
	for name, v := range values {
		if p, ok := fields[name]; ok {
			*p = v
		}
	}
	return w.Clamp()
}

// Clamp forces every weight into the 0-10 range and fixes an unknown mode.
// Loaded preferences pass through here so a hand-edited store cannot skew
// the denominator.
func (w Weights) Clamp() Weights {
	if w.Mode != ModeAI {
		w.Mode = ModeStructured
	}
	for _, p := range []*int{
		&w.Price, &w.Size, &w.Beds, &w.Baths,
		&w.PricePerSqft, &w.AvgSchoolRating, &w.CommuteTime, &w.GarageSize, &w.FloodRisk,
		&w.KitchenQuality, &w.BathroomQuality, &w.OverallCondition, &w.NaturalLight,
		&w.LayoutFlow, &w.CurbAppeal, &w.PrivacyLevel, &w.YardUsability,
		&w.StorageSpace, &w.ModernUpdates,
	} {
		if *p < 0 {
			*p = 0
		}
		if *p > 10 {
			*p = 10
		}
	}
	return w
}
