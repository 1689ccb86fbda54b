package scoring

import (
	"testing"
	"time"

	"homescout/models"
)

func TestSortPriceAscending(t *testing.T) {
	listings := []models.Listing{
		{Address: "c", PriceNum: fptr(700_000)},
		{Address: "a", PriceNum: fptr(300_000)},
		{Address: "missing"},
		{Address: "b", PriceNum: fptr(500_000)},
	}

	got := Sort(listings, SortPrice, Asc)

	for i := 0; i < len(got)-1; i++ {
		a, b := got[i], got[i+1]
		if a.PriceNum != nil && b.PriceNum != nil && *a.PriceNum > *b.PriceNum {
			t.Fatalf("adjacent pair out of order at %d: %v > %v", i, *a.PriceNum, *b.PriceNum)
		}
	}
	if got[len(got)-1].Address != "missing" {
		t.Fatalf("missing price should sort last, got %q", got[len(got)-1].Address)
	}
}

func TestSortMissingLastRegardlessOfDirection(t *testing.T) {
	listings := []models.Listing{
		{Address: "missing"},
		{Address: "low", DaysOnMarket: iptr(3)},
		{Address: "high", DaysOnMarket: iptr(90)},
	}

	asc := Sort(listings, SortDaysOnMarket, Asc)
	if asc[len(asc)-1].Address != "missing" {
		t.Fatalf("asc: missing value not last: %q", asc[len(asc)-1].Address)
	}

	desc := Sort(listings, SortDaysOnMarket, Desc)
	if desc[len(desc)-1].Address != "missing" {
		t.Fatalf("desc: missing value not last: %q", desc[len(desc)-1].Address)
	}
	if desc[0].Address != "high" {
		t.Fatalf("desc: expected high first, got %q", desc[0].Address)
	}
}

func TestSortStability(t *testing.T) {
	listings := []models.Listing{
		{Address: "first", PriceNum: fptr(500_000)},
		{Address: "second", PriceNum: fptr(500_000)},
		{Address: "third", PriceNum: fptr(500_000)},
	}

	once := Sort(listings, SortPrice, Asc)
	twice := Sort(once, SortPrice, Asc)

	for i := range once {
		if once[i].Address != listings[i].Address {
			t.Fatalf("tie order changed on first sort at %d: %q", i, once[i].Address)
		}
		if twice[i].Address != once[i].Address {
			t.Fatalf("sort not idempotent at %d: %q vs %q", i, twice[i].Address, once[i].Address)
		}
	}
}

func TestSortAddressLexicographic(t *testing.T) {
	listings := []models.Listing{
		{Address: "20 Oak Ave"},
		{Address: "5 Birch Rd"},
		{Address: ""},
		{Address: "100 Pine St"},
	}

	got := Sort(listings, SortAddress, Asc)
	if got[0].Address != "100 Pine St" || got[1].Address != "20 Oak Ave" || got[2].Address != "5 Birch Rd" {
		t.Fatalf("unexpected order: %q %q %q", got[0].Address, got[1].Address, got[2].Address)
	}
	if got[3].Address != "" {
		t.Fatalf("empty address should sort last")
	}
}

func TestSortFloodRiskOrdinal(t *testing.T) {
	listings := []models.Listing{
		{FloodZone: "Zone VE"},
		{FloodZone: "Zone X"},
		{FloodZone: ""},
		{FloodZone: "Zone AE"},
		{FloodZone: "Zone B"},
	}

	got := Sort(listings, SortFloodRisk, Asc)
	want := []string{"", "Zone X", "Zone B", "Zone AE", "Zone VE"}
	for i, zone := range want {
		if got[i].FloodZone != zone {
			t.Fatalf("position %d: got %q, want %q", i, got[i].FloodZone, zone)
		}
	}
}

func TestSortScrapedAtNewestFirst(t *testing.T) {
	now := time.Now()
	listings := []models.Listing{
		{Address: "old", ScrapedAt: now.Add(-48 * time.Hour)},
		{Address: "new", ScrapedAt: now},
		{Address: "mid", ScrapedAt: now.Add(-24 * time.Hour)},
	}

	got := Sort(listings, SortScrapedAt, Desc)
	want := []string{"new", "mid", "old"}
	for i, addr := range want {
		if got[i].Address != addr {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Address, addr)
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	listings := []models.Listing{
		{Address: "b", PriceNum: fptr(2)},
		{Address: "a", PriceNum: fptr(1)},
	}
	_ = Sort(listings, SortPrice, Asc)
	if listings[0].Address != "b" {
		t.Fatalf("sort reordered its input slice")
	}
}

func TestParseSortKey(t *testing.T) {
	if got := ParseSortKey("price"); got != SortPrice {
		t.Fatalf("ParseSortKey(price) = %s", got)
	}
	if got := ParseSortKey("bogus"); got != SortScore {
		t.Fatalf("unknown key should default to score, got %s", got)
	}
	if got := ParseSortKey(""); got != SortScore {
		t.Fatalf("empty key should default to score, got %s", got)
	}
}
