package services

import (
	"testing"
	"time"

	"homescout/models"
)

func fp(v float64) *float64 { return &v }

func TestPriceChanged(t *testing.T) {
	tests := []struct {
		name string
		old  *float64
		new  *float64
		want bool
	}{
		{"drop", fp(500000), fp(475000), true},
		{"increase", fp(500000), fp(510000), true},
		{"same", fp(500000), fp(500000), false},
		{"old missing", nil, fp(500000), false},
		{"new missing", fp(500000), nil, false},
		{"new zero is garbage", fp(500000), fp(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := priceChanged(tt.old, tt.new); got != tt.want {
				t.Fatalf("priceChanged(%v, %v) = %v, want %v", tt.old, tt.new, got, tt.want)
			}
		})
	}
}

func TestApplyPriceCutRecordsDrop(t *testing.T) {
	now := time.Now()
	l := &models.Listing{}

	applyPriceCut(l, fp(500000), fp(450000), now)

	if l.PriceCutAmount == nil || *l.PriceCutAmount != 50000 {
		t.Fatalf("PriceCutAmount = %v", l.PriceCutAmount)
	}
	if l.PriceCutPercent == nil || *l.PriceCutPercent != 10.0 {
		t.Fatalf("PriceCutPercent = %v", l.PriceCutPercent)
	}
	if l.PriceCutDate == nil || !l.PriceCutDate.Equal(now) {
		t.Fatalf("PriceCutDate = %v", l.PriceCutDate)
	}
}

func TestApplyPriceCutClearsOnIncrease(t *testing.T) {
	now := time.Now()
	stale := now.Add(-30 * 24 * time.Hour)
	l := &models.Listing{
		PriceCutAmount:  fp(25000),
		PriceCutPercent: fp(5),
		PriceCutDate:    &stale,
	}

	applyPriceCut(l, fp(475000), fp(500000), now)

	if l.PriceCutAmount != nil || l.PriceCutPercent != nil || l.PriceCutDate != nil {
		t.Fatalf("increase should clear stale cut marker: %+v", l)
	}
}

func TestApplyPriceCutPercentRounding(t *testing.T) {
	l := &models.Listing{}
	applyPriceCut(l, fp(300000), fp(289999), time.Now())

	// 10001/300000 = 3.3336...% rounds to one decimal place.
	if l.PriceCutPercent == nil || *l.PriceCutPercent != 3.3 {
		t.Fatalf("PriceCutPercent = %v, want 3.3", l.PriceCutPercent)
	}
}

func TestBuildListingPreservesAbsentFields(t *testing.T) {
	now := time.Now()
	raw := &models.RawListing{
		URL:      "https://www.zillow.com/homedetails/1_zpid/",
		Address:  "123 Main St",
		Price:    "$450,000",
		PriceNum: fp(450000),
	}

	l := buildListing(raw, "key", now)

	if l.Address != "123 Main St" || l.URLKey != "key" {
		t.Fatalf("identity fields lost: %+v", l)
	}
	if l.Beds != nil || l.SqftNum != nil || l.YearBuilt != nil {
		t.Fatal("absent raw fields must stay nil, not become zero")
	}
	if !l.ScrapedAt.Equal(now) || !l.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps not set: %+v", l)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{450, "$450"},
		{1500, "$1,500"},
		{450000, "$450,000"},
		{1234567, "$1,234,567"},
	}
	for _, tt := range tests {
		if got := formatPrice(tt.in); got != tt.want {
			t.Fatalf("formatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProcessStatsAggregate(t *testing.T) {
	var stats ProcessStats
	stats.Aggregate(&ProcessResult{IsNew: true})
	stats.Aggregate(&ProcessResult{PriceChanged: true, StatusChanged: true})
	stats.Aggregate(&ProcessResult{})

	if stats.ListingsProcessed != 3 {
		t.Fatalf("ListingsProcessed = %d", stats.ListingsProcessed)
	}
	if stats.ListingsNew != 1 || stats.PriceChanges != 1 || stats.StatusChanges != 1 {
		t.Fatalf("counters wrong: %+v", stats)
	}
}
