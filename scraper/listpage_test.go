package scraper

import "testing"

func TestExtractListingURLs(t *testing.T) {
	content := `
	[123 Main St](https://www.zillow.com/homedetails/123-Main-St-Charleston-SC-29401/12345678_zpid/?utm_source=search)
	some text https://www.zillow.com/homedetails/456-Oak-Ave-Charleston-SC-29403/87654321_zpid/#photos
	<a href="https://zillow.com/homedetails/123-Main-St-Charleston-SC-29401/12345678_zpid/">dupe of the first</a>
	https://www.zillow.com/charleston-sc/ is a search page, not a listing
	`

	urls := ExtractListingURLs(content)
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://www.zillow.com/homedetails/123-Main-St-Charleston-SC-29401/12345678_zpid/" {
		t.Fatalf("query params not stripped: %q", urls[0])
	}
	if urls[1] != "https://www.zillow.com/homedetails/456-Oak-Ave-Charleston-SC-29403/87654321_zpid/" {
		t.Fatalf("fragment not stripped: %q", urls[1])
	}
}

func TestExtractListingURLsTrailingPunctuation(t *testing.T) {
	content := `(see https://www.zillow.com/homedetails/1-Elm-St/11111111_zpid/) and "https://www.zillow.com/homedetails/2-Elm-St/22222222_zpid/"`

	urls := ExtractListingURLs(content)
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %v", urls)
	}
	for _, u := range urls {
		if u[len(u)-1] != '/' {
			t.Fatalf("trailing punctuation survived: %q", u)
		}
	}
}

func TestExtractListingURLsNone(t *testing.T) {
	if urls := ExtractListingURLs("no zillow links here at all"); urls != nil {
		t.Fatalf("expected nil, got %v", urls)
	}
}

func TestIsDetailURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.zillow.com/homedetails/123-Main-St/12345678_zpid/", true},
		{"https://www.zillow.com/b/some-building/12345678_zpid/", true},
		{"https://www.zillow.com/charleston-sc/", false},
		{"https://www.zillow.com/homes/for_sale/", false},
	}
	for _, tt := range tests {
		if got := IsDetailURL(tt.url); got != tt.want {
			t.Fatalf("IsDetailURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsLoginWalled(t *testing.T) {
	if !IsLoginWalled("Please Sign In to view your saved homes") {
		t.Fatal("sign-in page not detected")
	}
	if IsLoginWalled("42 results in Charleston SC") {
		t.Fatal("results page flagged as login wall")
	}
}
