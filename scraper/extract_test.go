package scraper

import (
	"os"
	"path/filepath"
	"testing"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

func TestExtractListing_FullPage(t *testing.T) {
	markdown := loadFixture(t, "zillow_full.md")
	url := "https://www.zillow.com/homedetails/123-Ashley-River-Rd-Charleston-SC-29414/12345678_zpid/"

	l := ExtractListing(markdown, url)

	if l.Address != "123 Ashley River Rd, Charleston, SC 29414" {
		t.Fatalf("address = %q", l.Address)
	}
	if l.Price != "$485,000" {
		t.Fatalf("price = %q", l.Price)
	}
	if l.PriceNum == nil || *l.PriceNum != 485000 {
		t.Fatalf("priceNum = %v", l.PriceNum)
	}
	if l.Beds == nil || *l.Beds != 4 {
		t.Fatalf("beds = %v", l.Beds)
	}
	if l.Baths == nil || *l.Baths != 3 {
		t.Fatalf("baths = %v", l.Baths)
	}
	if l.SqftNum == nil || *l.SqftNum != 2450 {
		t.Fatalf("sqftNum = %v", l.SqftNum)
	}
	if l.PropertyType != "Single Family" {
		t.Fatalf("propertyType = %q", l.PropertyType)
	}
	if l.YearBuilt == nil || *l.YearBuilt != 2004 {
		t.Fatalf("yearBuilt = %v", l.YearBuilt)
	}
	if l.LotSize != "0.28 acres" {
		t.Fatalf("lotSize = %q", l.LotSize)
	}
	if l.Zestimate != "$492,300" {
		t.Fatalf("zestimate = %q", l.Zestimate)
	}
	if l.Status != "For Sale" {
		t.Fatalf("status = %q", l.Status)
	}
	if l.DaysOnMarket == nil || *l.DaysOnMarket != 12 {
		t.Fatalf("daysOnMarket = %v", l.DaysOnMarket)
	}
	if l.HOAFee != "$45/mo" {
		t.Fatalf("hoaFee = %q", l.HOAFee)
	}
	if l.Neighborhood != "Carolina Bay" {
		t.Fatalf("neighborhood = %q", l.Neighborhood)
	}
	if l.HasGarage == nil || !*l.HasGarage {
		t.Fatalf("hasGarage = %v", l.HasGarage)
	}
	if l.GarageSpots == nil || *l.GarageSpots != 2 {
		t.Fatalf("garageSpots = %v", l.GarageSpots)
	}
	if l.ElementarySchoolRating == nil || *l.ElementarySchoolRating != 7 {
		t.Fatalf("elementary = %v", l.ElementarySchoolRating)
	}
	if l.MiddleSchoolRating == nil || *l.MiddleSchoolRating != 6 {
		t.Fatalf("middle = %v", l.MiddleSchoolRating)
	}
	if l.HighSchoolRating == nil || *l.HighSchoolRating != 5 {
		t.Fatalf("high = %v", l.HighSchoolRating)
	}
	if l.WalkScore == nil || *l.WalkScore != 34 {
		t.Fatalf("walkScore = %v", l.WalkScore)
	}
	if l.BikeScore == nil || *l.BikeScore != 41 {
		t.Fatalf("bikeScore = %v", l.BikeScore)
	}
	if l.FloodZone != "Zone AE - FEMA Special Flood Hazard Area" {
		t.Fatalf("floodZone = %q", l.FloodZone)
	}
	if l.ImageURL == "" {
		t.Fatalf("expected an image URL")
	}
	if len(l.Description) < 80 {
		t.Fatalf("description too short: %q", l.Description)
	}
}

// A page that never mentions a field must leave it nil, not zero.
func TestExtractListing_SparsePage(t *testing.T) {
	markdown := "# 42 Mystery Ln\n\nContact agent for details."
	l := ExtractListing(markdown, "https://www.zillow.com/homedetails/42-Mystery-Ln/99_zpid/")

	if l.PriceNum != nil {
		t.Fatalf("priceNum should be nil, got %v", *l.PriceNum)
	}
	if l.Beds != nil || l.Baths != nil || l.SqftNum != nil {
		t.Fatalf("beds/baths/sqft should be nil")
	}
	if l.YearBuilt != nil || l.DaysOnMarket != nil {
		t.Fatalf("yearBuilt/daysOnMarket should be nil")
	}
	if l.HasGarage != nil || l.GarageSpots != nil {
		t.Fatalf("garage fields should be nil, not false/zero")
	}
	if l.ElementarySchoolRating != nil || l.MiddleSchoolRating != nil || l.HighSchoolRating != nil {
		t.Fatalf("school ratings should be nil")
	}
	if l.WalkScore != nil || l.BikeScore != nil {
		t.Fatalf("walk/bike scores should be nil")
	}
	if l.FloodZone != "" {
		t.Fatalf("floodZone should be empty, got %q", l.FloodZone)
	}
}

func TestExtractListing_ExplicitNoGarage(t *testing.T) {
	markdown := "$300,000\n\n3 beds | 2 baths\n\nParking: no garage, street parking only"
	l := ExtractListing(markdown, "https://www.zillow.com/homedetails/x/1_zpid/")

	if l.HasGarage == nil || *l.HasGarage {
		t.Fatalf("hasGarage should be explicit false, got %v", l.HasGarage)
	}
	if l.GarageSpots != nil {
		t.Fatalf("garageSpots should stay nil for no-garage, got %v", *l.GarageSpots)
	}
}

func TestExtractListing_AddressFromURL(t *testing.T) {
	l := ExtractListing("no usable content", "https://www.zillow.com/homedetails/55-Oak-St-Portland-OR-97201/777_zpid/")
	if l.Address == "" {
		t.Fatalf("expected address recovered from URL")
	}
}

func TestExtractBestPrice(t *testing.T) {
	markdown := "Est. payment: $2,914/mo\n\n$485,000\n\nPrice cut: $15,000"
	p := ExtractBestPrice(markdown)
	if p == nil || *p != 485000 {
		t.Fatalf("best price = %v, want 485000", p)
	}

	if p := ExtractBestPrice("no prices here"); p != nil {
		t.Fatalf("expected nil for priceless page, got %v", *p)
	}
}

func TestURLKey(t *testing.T) {
	a := URLKey("https://www.zillow.com/homedetails/123-Main-St/12345678_zpid/")
	b := URLKey("https://zillow.com/homedetails/123-main-st-anything/12345678_zpid/?utm=x")
	if a != b {
		t.Fatalf("same zpid produced different keys: %q vs %q", a, b)
	}
	if a != "zpid:12345678" {
		t.Fatalf("unexpected key %q", a)
	}

	c := URLKey("https://example.com/some/page")
	d := URLKey("https://example.com/some/page/")
	if c != d {
		t.Fatalf("trailing slash changed fallback key")
	}
	if c == a {
		t.Fatalf("fallback key collided with zpid key")
	}
}
