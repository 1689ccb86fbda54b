package scraper

import (
	"regexp"
	"strings"
)

// Property-detail URL shapes that appear in Zillow search results: plain
// homedetails links and any URL carrying a zpid.
var listingURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://(?:www\.)?zillow\.com/homedetails/[^\s"'\)\]>]+`),
	regexp.MustCompile(`https?://(?:www\.)?zillow\.com/[^\s"'\)\]>]*\d+_zpid[^\s"'\)\]>]*`),
}

// IsDetailURL reports whether the URL points at a single property page
// rather than a search-results page.
func IsDetailURL(rawURL string) bool {
	return strings.Contains(rawURL, "/homedetails/") || zpidRe.MatchString(rawURL)
}

// ExtractListingURLs scans search-results page content (markdown, HTML and
// link lists concatenated) for property detail URLs. Results are deduped by
// URL key, so differently-formatted links to the same property collapse to
// one entry; order of first appearance is kept.
func ExtractListingURLs(content string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, re := range listingURLPatterns {
		for _, m := range re.FindAllString(content, -1) {
			u := cleanListingURL(m)
			if u == "" {
				continue
			}
			key := URLKey(u)
			if seen[key] {
				continue
			}
			seen[key] = true
			urls = append(urls, u)
		}
	}
	return urls
}

func cleanListingURL(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimRight(raw, `])"'>.,`)
	if !IsDetailURL(raw) {
		return ""
	}
	return raw
}

// IsLoginWalled detects the sign-in interstitial Zillow serves instead of
// results for saved-search and map URLs, so the caller can tell the user to
// try a public search URL.
func IsLoginWalled(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "sign in") ||
		strings.Contains(lower, "log in") ||
		strings.Contains(lower, "create account")
}
