package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"homescout/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func bptr(v bool) *bool       { return &v }

func priceListing(price float64) models.Listing {
	return models.Listing{
		ID:       uuid.New(),
		PriceNum: fptr(price),
	}
}

func priceOnlyWeights() Weights {
	return Weights{Mode: ModeStructured, Price: 10}
}

func TestScoreLinearOverEvenPopulation(t *testing.T) {
	pop := []models.Listing{
		priceListing(300_000),
		priceListing(500_000),
		priceListing(700_000),
	}
	w := priceOnlyWeights()

	scored := ScoreAll(pop, w)

	// Price is lower-is-better: cheapest listing normalizes to 1.
	want := []int{100, 50, 0}
	for i, listing := range scored {
		if listing.TotalScore != want[i] {
			t.Fatalf("listing %d: score = %d, want %d", i, listing.TotalScore, want[i])
		}
	}

	ranked := Sort(scored, SortScore, Desc)
	if *ranked[0].PriceNum != 300_000 || *ranked[1].PriceNum != 500_000 || *ranked[2].PriceNum != 700_000 {
		t.Fatalf("score-desc order wrong: %v %v %v",
			*ranked[0].PriceNum, *ranked[1].PriceNum, *ranked[2].PriceNum)
	}
}

func TestScoreBounds(t *testing.T) {
	pop := []models.Listing{
		{SqftNum: fptr(900)},
		{SqftNum: fptr(1500)},
		{SqftNum: fptr(2400)},
		{SqftNum: fptr(3100)},
	}
	w := Weights{Mode: ModeStructured, Size: 10}

	scored := ScoreAll(pop, w)
	for i, l := range scored {
		if l.TotalScore < 0 || l.TotalScore > 100 {
			t.Fatalf("listing %d: score %d out of [0,100]", i, l.TotalScore)
		}
	}
	// Minimum value scores 0, maximum scores 100 for higher-is-better.
	if scored[0].TotalScore != 0 {
		t.Fatalf("smallest sqft score = %d, want 0", scored[0].TotalScore)
	}
	if scored[3].TotalScore != 100 {
		t.Fatalf("largest sqft score = %d, want 100", scored[3].TotalScore)
	}
}

func TestScoreIsPopulationRelative(t *testing.T) {
	pop := []models.Listing{
		priceListing(300_000),
		priceListing(500_000),
		priceListing(700_000),
	}
	w := priceOnlyWeights()

	before := ScoreAll(pop, w)

	// Removing the most expensive listing rescales the survivors.
	smaller := ScoreAll(pop[:2], w)

	if smaller[1].TotalScore == before[1].TotalScore {
		t.Fatalf("middle listing's score should change when population shrinks: stayed %d",
			before[1].TotalScore)
	}
	if smaller[0].TotalScore != 100 || smaller[1].TotalScore != 0 {
		t.Fatalf("two-listing population should span [100,0], got [%d,%d]",
			smaller[0].TotalScore, smaller[1].TotalScore)
	}
}

func TestZeroWeightNullifiesAttribute(t *testing.T) {
	a := models.Listing{PriceNum: fptr(400_000), SqftNum: fptr(1200)}
	b := models.Listing{PriceNum: fptr(400_000), SqftNum: fptr(3600)}
	pop := []models.Listing{a, b}

	w := Weights{Mode: ModeStructured, Price: 10, Size: 0}
	sa := Score(&a, pop, w)
	sb := Score(&b, pop, w)
	if sa != sb {
		t.Fatalf("listings differing only in a zero-weighted attribute scored %d vs %d", sa, sb)
	}
}

func TestZeroTotalWeight(t *testing.T) {
	pop := []models.Listing{priceListing(300_000), priceListing(700_000)}
	w := Weights{Mode: ModeStructured}

	for i := range pop {
		if got := Score(&pop[i], pop, w); got != 0 {
			t.Fatalf("zero total weight: score = %d, want 0", got)
		}
	}
}

func TestScoreMissingValuesNeutral(t *testing.T) {
	// A listing with no price sits at the neutral midpoint, between the
	// extremes of the listings that have one.
	pop := []models.Listing{
		priceListing(300_000),
		priceListing(700_000),
		{ID: uuid.New()}, // no price at all
	}
	w := priceOnlyWeights()

	scored := ScoreAll(pop, w)
	if scored[2].TotalScore != 50 {
		t.Fatalf("missing price score = %d, want neutral 50", scored[2].TotalScore)
	}
}

func TestGarageExplicitNoneIsWorstCase(t *testing.T) {
	none := models.Listing{HasGarage: bptr(false)}
	big := models.Listing{HasGarage: bptr(true), GarageSpots: iptr(4)}
	unknown := models.Listing{}
	pop := []models.Listing{none, big, unknown}

	w := Weights{Mode: ModeStructured, GarageSize: 10}

	if got := Score(&none, pop, w); got != 0 {
		t.Fatalf("hasGarage=false score = %d, want 0", got)
	}
	if got := Score(&big, pop, w); got != 100 {
		t.Fatalf("max garage score = %d, want 100", got)
	}
	if got := Score(&unknown, pop, w); got != 50 {
		t.Fatalf("unknown garage score = %d, want 50", got)
	}
}

func TestSchoolAverageSkipsAbsentLevels(t *testing.T) {
	// Listing with only two school ratings averages those two.
	partial := models.Listing{ElementarySchoolRating: iptr(8), HighSchoolRating: iptr(6)}
	low := models.Listing{ElementarySchoolRating: iptr(2), MiddleSchoolRating: iptr(2), HighSchoolRating: iptr(2)}
	high := models.Listing{ElementarySchoolRating: iptr(10), MiddleSchoolRating: iptr(10), HighSchoolRating: iptr(10)}
	noSchools := models.Listing{}
	pop := []models.Listing{partial, low, high, noSchools}

	w := Weights{Mode: ModeStructured, AvgSchoolRating: 10}

	if got := Score(&low, pop, w); got != 0 {
		t.Fatalf("lowest school avg score = %d, want 0", got)
	}
	if got := Score(&high, pop, w); got != 100 {
		t.Fatalf("highest school avg score = %d, want 100", got)
	}
	if got := Score(&noSchools, pop, w); got != 50 {
		t.Fatalf("no school data score = %d, want neutral 50", got)
	}
	// avg 7 between 2 and 10 -> (7-2)/8 = 0.625 -> 63.
	if got := Score(&partial, pop, w); got != 63 {
		t.Fatalf("partial school avg score = %d, want 63", got)
	}
}

func TestTiedPopulationDoesNotDivideByZero(t *testing.T) {
	pop := []models.Listing{priceListing(500_000), priceListing(500_000)}
	w := priceOnlyWeights()
	for i := range pop {
		got := Score(&pop[i], pop, w)
		if got < 0 || got > 100 {
			t.Fatalf("tied population produced out-of-range score %d", got)
		}
	}
}

func TestAIModeScoring(t *testing.T) {
	sharp := models.Listing{
		PriceNum:   fptr(400_000),
		AIFeatures: &models.AIFeatures{KitchenQuality: 9},
	}
	dull := models.Listing{
		PriceNum:   fptr(400_000),
		AIFeatures: &models.AIFeatures{KitchenQuality: 3},
	}
	pop := []models.Listing{sharp, dull}

	w := Weights{Mode: ModeAI, KitchenQuality: 10}
	if got := Score(&sharp, pop, w); got != 100 {
		t.Fatalf("best kitchen score = %d, want 100", got)
	}
	if got := Score(&dull, pop, w); got != 0 {
		t.Fatalf("worst kitchen score = %d, want 0", got)
	}

	// Structured weights are inert in AI mode.
	w = Weights{Mode: ModeAI, KitchenQuality: 10, FloodRisk: 10}
	if got := Score(&dull, pop, w); got != 0 {
		t.Fatalf("flood weight leaked into AI mode: score = %d, want 0", got)
	}
}

func TestScoreAllDoesNotMutateInput(t *testing.T) {
	pop := []models.Listing{priceListing(300_000), priceListing(700_000)}
	pop[0].ScrapedAt = time.Now()

	_ = ScoreAll(pop, priceOnlyWeights())
	for i := range pop {
		if pop[i].TotalScore != 0 {
			t.Fatalf("ScoreAll mutated input listing %d", i)
		}
	}
}
