package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"homescout/config"
	"homescout/models"
)

// FirecrawlHandler fetches listing pages through the Firecrawl rendering
// API, which handles the JS-heavy pages and bot walls for us.
type FirecrawlHandler struct {
	cfg    *config.Config
	client *http.Client
}

func NewFirecrawlHandler(cfg *config.Config) *FirecrawlHandler {
	return &FirecrawlHandler{
		cfg: cfg,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (h *FirecrawlHandler) ID() string {
	return "firecrawl"
}

type firecrawlRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	WaitFor         int      `json:"waitFor"`
}

type firecrawlResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string   `json:"markdown"`
		HTML     string   `json:"html"`
		Links    []string `json:"links"`
	} `json:"data"`
	Markdown string   `json:"markdown"`
	Links    []string `json:"links"`
}

func (h *FirecrawlHandler) Scrape(ctx context.Context, url string) (*models.RawListing, error) {
	markdown, err := h.fetch(ctx, url, false, 5000)
	if err != nil {
		return nil, err
	}

	listing := ExtractListing(markdown, url)
	log.Printf("firecrawl: extracted %q from %s", listing.Address, url)
	return listing, nil
}

func (h *FirecrawlHandler) CheckPrice(ctx context.Context, url string) (*float64, error) {
	markdown, err := h.fetch(ctx, url, true, 3000)
	if err != nil {
		return nil, err
	}
	return ExtractBestPrice(markdown), nil
}

// ScrapeList pulls a search-results page with links and raw HTML included;
// result cards often carry their detail links outside the main content, so
// onlyMainContent stays off and the wait is generous.
func (h *FirecrawlHandler) ScrapeList(ctx context.Context, url string) ([]string, error) {
	result, err := h.do(ctx, firecrawlRequest{
		URL:             url,
		Formats:         []string{"markdown", "links", "html"},
		OnlyMainContent: false,
		WaitFor:         8000,
	})
	if err != nil {
		return nil, err
	}

	links := result.Data.Links
	if len(links) == 0 {
		links = result.Links
	}
	content := result.Data.Markdown + " " + result.Markdown + " " +
		result.Data.HTML + " " + strings.Join(links, " ")

	urls := ExtractListingURLs(content)
	if len(urls) == 0 {
		if IsLoginWalled(content) {
			return nil, fmt.Errorf("%s requires login; use a public search results URL", url)
		}
		return nil, fmt.Errorf("no property links found on %s", url)
	}

	log.Printf("firecrawl: found %d property links on %s", len(urls), url)
	return urls, nil
}

func (h *FirecrawlHandler) fetch(ctx context.Context, url string, mainOnly bool, waitMS int) (string, error) {
	result, err := h.do(ctx, firecrawlRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: mainOnly,
		WaitFor:         waitMS,
	})
	if err != nil {
		return "", err
	}

	markdown := result.Data.Markdown
	if markdown == "" {
		markdown = result.Markdown
	}
	if markdown == "" {
		return "", fmt.Errorf("firecrawl returned no content for %s", url)
	}

	return markdown, nil
}

func (h *FirecrawlHandler) do(ctx context.Context, payload firecrawlRequest) (*firecrawlResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.cfg.Firecrawl.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.cfg.Firecrawl.APIKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("firecrawl error %d: %s", resp.StatusCode, string(respBody))
	}

	var result firecrawlResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
