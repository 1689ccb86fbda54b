package workers

import (
	"strings"
	"testing"

	"homescout/models"
)

func TestListingContent(t *testing.T) {
	beds := 4.0
	year := 1998
	l := &models.Listing{
		Address:   "123 Main St, Charleston, SC 29401",
		Price:     "$450,000",
		Beds:      &beds,
		YearBuilt: &year,
		Status:    "For Sale",
	}

	content := listingContent(l)
	for _, want := range []string{
		"Address: 123 Main St, Charleston, SC 29401",
		"Price: $450,000",
		"Beds: 4",
		"Year built: 1998",
		"Status: For Sale",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("content missing %q:\n%s", want, content)
		}
	}

	// Absent fields are left out entirely, not rendered as zeros.
	if strings.Contains(content, "Baths") || strings.Contains(content, "Size:") {
		t.Fatalf("absent fields leaked into content:\n%s", content)
	}
}

func TestParseFeatureResponse(t *testing.T) {
	content := "Here is my analysis:\n" + `{
		"kitchen_quality": 8,
		"bathroom_quality": 6,
		"overall_condition": 7,
		"natural_light": 9,
		"layout_flow": 6,
		"curb_appeal": 7,
		"privacy_level": 4,
		"yard_usability": 6,
		"storage_space": 5,
		"modern_updates": 8,
		"summary": "Bright, updated home with a small lot."
	}`

	f := ParseFeatureResponse(content)
	if f.KitchenQuality != 8 {
		t.Fatalf("kitchenQuality = %d", f.KitchenQuality)
	}
	if f.NaturalLight != 9 {
		t.Fatalf("naturalLight = %d", f.NaturalLight)
	}
	if f.Summary != "Bright, updated home with a small lot." {
		t.Fatalf("summary = %q", f.Summary)
	}
}

func TestParseFeatureResponseClampsAndDefaults(t *testing.T) {
	content := `{"kitchen_quality": 14, "bathroom_quality": -2, "summary": ""}`

	f := ParseFeatureResponse(content)
	if f.KitchenQuality != 10 {
		t.Fatalf("kitchenQuality should clamp to 10, got %d", f.KitchenQuality)
	}
	if f.BathroomQuality != 1 {
		t.Fatalf("bathroomQuality should clamp to 1, got %d", f.BathroomQuality)
	}
	// Fields missing from the reply default to neutral.
	if f.OverallCondition != 5 || f.ModernUpdates != 5 {
		t.Fatalf("missing fields should default to 5, got %d/%d", f.OverallCondition, f.ModernUpdates)
	}
	if f.Summary == "" {
		t.Fatalf("empty summary should be replaced")
	}
}

func TestParseFeatureResponseGarbage(t *testing.T) {
	f := ParseFeatureResponse("I cannot analyze this listing.")
	d := DefaultAIFeatures()
	if *f != *d {
		t.Fatalf("garbage reply should fall back to defaults, got %+v", f)
	}
}
