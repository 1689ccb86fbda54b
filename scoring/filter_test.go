package scoring

import (
	"testing"

	"homescout/models"
)

func rated(r models.Rating) *models.Rating { return &r }

func TestFilterNoCriteriaPassesEverything(t *testing.T) {
	listings := []models.Listing{
		{Status: "For Sale"},
		{Status: "Pending"},
		{},
	}
	got := Filter(listings, Criteria{})
	if len(got) != len(listings) {
		t.Fatalf("empty criteria filtered: got %d of %d", len(got), len(listings))
	}
}

func TestFilterConjunction(t *testing.T) {
	listings := []models.Listing{
		{Status: "For Sale", UserRating: rated(models.RatingYes)},
		{Status: "For Sale", UserRating: rated(models.RatingNo)},
		{Status: "Pending", UserRating: rated(models.RatingYes)},
		{Status: "Pending", UserRating: rated(models.RatingNo)},
	}

	got := Filter(listings, Criteria{
		Ratings:  []string{"yes"},
		Statuses: []string{"For Sale"},
	})

	// Intersection, never a union.
	if len(got) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(got))
	}
	if got[0].Status != "For Sale" || *got[0].UserRating != models.RatingYes {
		t.Fatalf("wrong listing survived: %+v", got[0])
	}
}

func TestFilterUnrated(t *testing.T) {
	listings := []models.Listing{
		{Address: "1 Main St", UserRating: rated(models.RatingMaybe)},
		{Address: "2 Main St"},
	}

	got := Filter(listings, Criteria{Ratings: []string{RatingUnrated}})
	if len(got) != 1 || got[0].Address != "2 Main St" {
		t.Fatalf("unrated filter returned %+v", got)
	}

	// Multi-select: unrated together with a real rating.
	got = Filter(listings, Criteria{Ratings: []string{"maybe", RatingUnrated}})
	if len(got) != 2 {
		t.Fatalf("maybe+unrated filter returned %d listings", len(got))
	}
}

func TestFilterPriceRange(t *testing.T) {
	listings := []models.Listing{
		{PriceNum: fptr(250_000)},
		{PriceNum: fptr(450_000)},
		{PriceNum: fptr(850_000)},
		{}, // no price
	}

	got := Filter(listings, Criteria{Price: Range{Min: fptr(300_000), Max: fptr(500_000)}})
	if len(got) != 1 || *got[0].PriceNum != 450_000 {
		t.Fatalf("price range filter returned %d listings", len(got))
	}

	// Half-open: only min set.
	got = Filter(listings, Criteria{Price: Range{Min: fptr(400_000)}})
	if len(got) != 2 {
		t.Fatalf("min-only price filter returned %d listings, want 2", len(got))
	}

	// A listing missing the value cannot satisfy an active bound.
	got = Filter(listings, Criteria{Price: Range{Max: fptr(900_000)}})
	for _, l := range got {
		if l.PriceNum == nil {
			t.Fatalf("listing without a price passed an active price filter")
		}
	}
}

func TestFilterFloodRisk(t *testing.T) {
	listings := []models.Listing{
		{FloodZone: "Zone X"},
		{FloodZone: "Zone AE"},
		{FloodZone: ""},
	}

	got := Filter(listings, Criteria{FloodRisks: []RiskLevel{RiskLow, RiskUndetermined}})
	if len(got) != 2 {
		t.Fatalf("flood filter returned %d listings, want 2", len(got))
	}
	for _, l := range got {
		if l.FloodZone == "Zone AE" {
			t.Fatalf("high-risk listing passed a low/undetermined filter")
		}
	}
}

func TestFilterSchoolMinimums(t *testing.T) {
	listings := []models.Listing{
		{ElementarySchoolRating: iptr(9)},
		{ElementarySchoolRating: iptr(4)},
		{},
	}

	got := Filter(listings, Criteria{MinElementaryRating: iptr(7)})
	if len(got) != 1 || *got[0].ElementarySchoolRating != 9 {
		t.Fatalf("school minimum filter returned %d listings", len(got))
	}
}

func TestFilterStatusCaseInsensitive(t *testing.T) {
	listings := []models.Listing{{Status: "For Sale"}}
	got := Filter(listings, Criteria{Statuses: []string{"for sale"}})
	if len(got) != 1 {
		t.Fatalf("status match should ignore case")
	}
}

func TestFilterDoesNotMutate(t *testing.T) {
	listings := []models.Listing{
		{Status: "For Sale", TotalScore: 77},
		{Status: "Sold", TotalScore: 12},
	}
	_ = Filter(listings, Criteria{Statuses: []string{"Sold"}})
	if listings[0].TotalScore != 77 || listings[0].Status != "For Sale" {
		t.Fatalf("filter mutated its input")
	}
}

func TestStatusOptions(t *testing.T) {
	listings := []models.Listing{
		{Status: "For Sale"},
		{Status: "For Sale"},
		{Status: "Active Contingent"},
		{Status: "  "},
	}

	opts := StatusOptions(listings)
	if len(opts) != 2 {
		t.Fatalf("expected 2 status options, got %d", len(opts))
	}
	if opts[0].Status != "For Sale" || opts[0].Count != 2 {
		t.Fatalf("unexpected first option %+v", opts[0])
	}
	if opts[1].Status != "Active Contingent" || opts[1].Count != 1 {
		t.Fatalf("unexpected second option %+v", opts[1])
	}
}
