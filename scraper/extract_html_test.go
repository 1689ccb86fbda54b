package scraper

import "testing"

func TestExtractPageMeta(t *testing.T) {
	html := `<html><head>
		<meta property="og:title" content="123 Ashley River Rd, Charleston, SC 29414 | MLS #25001234 | Zillow" />
		<meta property="og:image" content="https://photos.zillowstatic.com/fp/abc123-cc_ft_1536.jpg" />
		<meta property="og:description" content="4 bed, 3 bath house for sale." />
	</head><body></body></html>`

	meta := ExtractPageMeta(html)
	if meta.Address != "123 Ashley River Rd, Charleston, SC 29414" {
		t.Fatalf("address = %q", meta.Address)
	}
	if meta.ImageURL != "https://photos.zillowstatic.com/fp/abc123-cc_ft_1536.jpg" {
		t.Fatalf("imageURL = %q", meta.ImageURL)
	}
	if meta.Description != "4 bed, 3 bath house for sale." {
		t.Fatalf("description = %q", meta.Description)
	}
}

func TestExtractPageMetaMergeBackfillsOnly(t *testing.T) {
	meta := &PageMeta{
		Address:     "456 Meta St",
		ImageURL:    "https://example.com/meta.jpg",
		Description: "meta description",
	}

	addr := "123 Text Ave" // visible-text value wins
	image := ""
	desc := ""
	meta.MergeInto(&addr, &image, &desc)

	if addr != "123 Text Ave" {
		t.Fatalf("address should not be overwritten, got %q", addr)
	}
	if image != "https://example.com/meta.jpg" {
		t.Fatalf("image should backfill, got %q", image)
	}
	if desc != "meta description" {
		t.Fatalf("description should backfill, got %q", desc)
	}
}

func TestExtractPageMetaGarbage(t *testing.T) {
	meta := ExtractPageMeta("not html at all")
	if meta.Address != "" || meta.ImageURL != "" {
		t.Fatalf("expected empty meta, got %+v", meta)
	}
}
