package scraper

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

var zpidRe = regexp.MustCompile(`(\d+)_zpid`)

// URLKey produces the dedup key for a listing URL. Zillow detail pages
// carry a stable numeric zpid, so two differently-formatted URLs for the
// same property collapse to the same key. Anything without a zpid falls
// back to a hash of the normalized URL.
func URLKey(rawURL string) string {
	if m := zpidRe.FindStringSubmatch(rawURL); m != nil {
		return "zpid:" + m[1]
	}

	normalized := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		normalized = strings.ToLower(u.Host) + strings.TrimRight(strings.ToLower(u.Path), "/")
	}
	hash := sha256.Sum256([]byte(normalized))
	return "url:" + hex.EncodeToString(hash[:16])
}

// IsListingURL reports whether the URL looks like a Zillow listing page.
func IsListingURL(rawURL string) bool {
	return strings.Contains(rawURL, "zillow.com")
}
