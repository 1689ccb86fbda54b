package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageMeta is what the document head gives up without any text heuristics:
// Zillow ships OpenGraph tags even on pages whose body text renders late.
type PageMeta struct {
	Address     string
	ImageURL    string
	Description string
}

// ExtractPageMeta parses the raw HTML and pulls listing hints from meta
// tags. Used by the browser handler to backfill fields the visible-text
// extraction misses.
func ExtractPageMeta(html string) *PageMeta {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &PageMeta{}
	}

	meta := &PageMeta{
		Address:     metaContent(doc, `meta[property="og:title"]`),
		ImageURL:    metaContent(doc, `meta[property="og:image"]`),
		Description: metaContent(doc, `meta[property="og:description"]`),
	}
	if meta.Description == "" {
		meta.Description = metaContent(doc, `meta[name="description"]`)
	}

	// og:title carries marketing suffixes like " | Zillow" or " | MLS #123".
	if i := strings.Index(meta.Address, "|"); i > 0 {
		meta.Address = strings.TrimSpace(meta.Address[:i])
	}

	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// MergeInto fills raw listing gaps from head metadata. Visible-text values
// win; meta tags only backfill.
func (m *PageMeta) MergeInto(addr, image, desc *string) {
	if *addr == "" && m.Address != "" {
		*addr = m.Address
	}
	if *image == "" && m.ImageURL != "" {
		*image = m.ImageURL
	}
	if *desc == "" && m.Description != "" {
		*desc = m.Description
	}
}
