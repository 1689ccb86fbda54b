package scraper

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"homescout/config"
	"homescout/models"
)

// BrowserHandler drives a real Chromium session for when Firecrawl is not
// configured or keeps getting blocked. Slower, but it sees exactly what a
// person would.
type BrowserHandler struct {
	cfg         *config.Config
	pw          *playwright.Playwright
	context     playwright.BrowserContext
	mu          sync.Mutex
	initialized bool
}

func NewBrowserHandler(cfg *config.Config) *BrowserHandler {
	return &BrowserHandler{cfg: cfg}
}

func (h *BrowserHandler) ID() string {
	return "browser"
}

func (h *BrowserHandler) Scrape(ctx context.Context, url string) (*models.RawListing, error) {
	text, html, err := h.fetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	raw := ExtractListing(text, url)
	ExtractPageMeta(html).MergeInto(&raw.Address, &raw.ImageURL, &raw.Description)
	return raw, nil
}

func (h *BrowserHandler) CheckPrice(ctx context.Context, url string) (*float64, error) {
	text, _, err := h.fetchPage(ctx, url)
	if err != nil {
		return nil, err
	}
	return ExtractBestPrice(text), nil
}

// ScrapeList loads a search-results page and harvests property detail
// links from the rendered HTML.
func (h *BrowserHandler) ScrapeList(ctx context.Context, url string) ([]string, error) {
	text, html, err := h.fetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	urls := ExtractListingURLs(text + " " + html)
	if len(urls) == 0 {
		if IsLoginWalled(text) {
			return nil, fmt.Errorf("%s requires login; use a public search results URL", url)
		}
		return nil, fmt.Errorf("no property links found on %s", url)
	}
	return urls, nil
}

func (h *BrowserHandler) fetchPage(ctx context.Context, url string) (string, string, error) {
	if err := h.ensureBrowser(); err != nil {
		return "", "", err
	}

	page, err := h.context.NewPage()
	if err != nil {
		return "", "", fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	_, err = page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(60000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		log.Printf("browser: navigation error (continuing): %v", err)
	}

	h.humanDelay(3000, 5000)
	h.simulateHumanBehavior(page)

	text, err := page.Locator("body").InnerText()
	if err != nil {
		return "", "", fmt.Errorf("read page text: %w", err)
	}
	if isBlocked(text) {
		return "", "", fmt.Errorf("bot wall on %s", url)
	}

	html, err := page.Content()
	if err != nil {
		html = ""
	}
	return text, html, nil
}

func (h *BrowserHandler) ensureBrowser() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return nil
	}

	var err error
	h.pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	cwd, _ := os.Getwd()
	userDataDir := filepath.Join(cwd, "browser_data")
	h.context, err = h.pw.Chromium.LaunchPersistentContext(userDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	h.initialized = true
	return nil
}

func (h *BrowserHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.context != nil {
		h.context.Close()
	}
	if h.pw != nil {
		h.pw.Stop()
	}
	h.initialized = false
}

func (h *BrowserHandler) simulateHumanBehavior(page playwright.Page) {
	page.Mouse().Move(float64(300+rand.Intn(400)), float64(200+rand.Intn(300)))
	page.WaitForTimeout(float64(200 + rand.Intn(300)))
	scrollAmount := 100 + rand.Intn(300)
	page.Evaluate(fmt.Sprintf(`window.scrollBy(0, %d)`, scrollAmount))
}

func (h *BrowserHandler) humanDelay(minMs, maxMs int) {
	delay := minMs + rand.Intn(maxMs-minMs)
	time.Sleep(time.Duration(delay) * time.Millisecond)
}

func isBlocked(content string) bool {
	triggers := []string{
		"Access Denied",
		"This request was blocked",
		"press and hold",
		"Pardon Our Interruption",
	}
	for _, t := range triggers {
		if len(content) < 2000 && contains(content, t) {
			return true
		}
	}
	return false
}

func contains(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
