package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"homescout/config"
	"homescout/geo"
	"homescout/models"
	"homescout/storage"
)

// EnrichmentWorker fills in the slow, third-party-sourced fields after a
// listing is stored: the AI feature ratings, the commute estimate, and a
// rehosted thumbnail. Each piece degrades independently - a missing API
// key just means that field stays empty.
type EnrichmentWorker struct {
	cfg       *config.Config
	store     *storage.PostgresStore
	commute   *geo.CommuteEstimator
	uploader  *storage.S3Uploader
	client    *http.Client
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewEnrichmentWorker(cfg *config.Config, store *storage.PostgresStore, commute *geo.CommuteEstimator, uploader *storage.S3Uploader) *EnrichmentWorker {
	return &EnrichmentWorker{
		cfg:       cfg,
		store:     store,
		commute:   commute,
		uploader:  uploader,
		client:    &http.Client{Timeout: 60 * time.Second},
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
	}
}

func (w *EnrichmentWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *EnrichmentWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the enrichment worker loop
func (w *EnrichmentWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Enrichment worker stopping")
			return
		case <-ticker.C:
			w.processBatch(ctx, batchSize)
		case <-w.triggerCh:
			log.Println("Enrichment worker triggered manually")
			w.processBatch(ctx, batchSize)
		}
	}
}

func (w *EnrichmentWorker) processBatch(ctx context.Context, batchSize int) {
	listings, err := w.store.ListPendingEnrichment(ctx, batchSize)
	if err != nil {
		log.Printf("Enrichment: query error: %v", err)
		return
	}
	if len(listings) == 0 {
		return
	}

	log.Printf("Enrichment: processing %d listings", len(listings))
	var enriched int

	for i := range listings {
		l := &listings[i]

		if l.AIFeatures == nil {
			features := w.ExtractFeatures(ctx, l.Description, listingContent(l))
			if err := w.store.UpdateAIFeatures(ctx, l.ID, features); err != nil {
				log.Printf("Enrichment: failed to store features for %s: %v", l.ID, err)
			}
		}

		if l.CommuteAM == nil && w.commute != nil && w.commute.Enabled() && l.Address != "" {
			c, err := w.commute.Estimate(ctx, l.Address)
			if err != nil {
				log.Printf("Enrichment: commute failed for %q: %v", l.Address, err)
			} else if err := w.store.UpdateCommute(ctx, l.ID, c.AMMinutes, c.PMMinutes, c.DistanceMiles); err != nil {
				log.Printf("Enrichment: failed to store commute for %s: %v", l.ID, err)
			}
		}

		if w.uploader != nil && l.ThumbnailURL != "" && !isRehosted(l.ThumbnailURL) {
			if url, err := w.rehostThumbnail(ctx, l); err != nil {
				log.Printf("Enrichment: thumbnail failed for %s: %v", l.ID, err)
			} else if err := w.store.UpdateThumbnail(ctx, l.ID, url); err != nil {
				log.Printf("Enrichment: failed to store thumbnail for %s: %v", l.ID, err)
			}
		}

		enriched++
		time.Sleep(500 * time.Millisecond)
	}

	if enriched > 0 {
		w.logFunc(models.LogLevelInfo, "enrichment", fmt.Sprintf("Enriched %d listings", enriched))
	}
}

// listingContent rebuilds a compact fact sheet from the stored fields so
// the model sees the hard facts alongside the free-text description.
// Absent fields are simply omitted.
func listingContent(l *models.Listing) string {
	var b strings.Builder
	add := func(label, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, v)
		}
	}

	add("Address", l.Address)
	add("Price", l.Price)
	if l.Beds != nil {
		add("Beds", strconv.FormatFloat(*l.Beds, 'f', -1, 64))
	}
	if l.Baths != nil {
		add("Baths", strconv.FormatFloat(*l.Baths, 'f', -1, 64))
	}
	add("Size", l.Sqft)
	add("Type", l.PropertyType)
	if l.YearBuilt != nil {
		add("Year built", strconv.Itoa(*l.YearBuilt))
	}
	add("Lot size", l.LotSize)
	add("Status", l.Status)
	add("HOA", l.HOAFee)
	add("Neighborhood", l.Neighborhood)
	if l.GarageSpots != nil {
		add("Garage spots", strconv.Itoa(*l.GarageSpots))
	}
	return b.String()
}

var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)

const featuresPrompt = `Analyze this real estate listing and rate each feature from 1-10. Be objective and honest.

LISTING CONTENT:
%s

DESCRIPTION:
%s

Rate these features from 1-10 (1=poor, 5=average, 10=excellent):
1. Kitchen Quality - modern appliances, countertops, cabinets, layout
2. Bathroom Quality - fixtures, tile, vanities, condition
3. Overall Condition - maintenance, wear, needed repairs
4. Natural Light - windows, sun exposure, brightness
5. Layout Flow - room arrangement, open concept, functionality
6. Curb Appeal - exterior appearance, landscaping, first impression
7. Privacy Level - distance from neighbors, lot position, fencing
8. Yard Usability - flat areas, outdoor living space, garden potential
9. Storage Space - closets, garage, basement, attic
10. Modern Updates - recent renovations, smart home, energy efficiency

Respond ONLY with valid JSON in this exact format:
{
  "kitchen_quality": 7,
  "bathroom_quality": 6,
  "overall_condition": 7,
  "natural_light": 8,
  "layout_flow": 6,
  "curb_appeal": 7,
  "privacy_level": 5,
  "yard_usability": 6,
  "storage_space": 5,
  "modern_updates": 6,
  "summary": "Brief 1-2 sentence summary of the property's best and worst features."
}`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractFeatures asks the chat completions gateway for the ten ratings.
// Any failure falls back to neutral defaults so a flaky gateway never
// blocks the pipeline.
func (w *EnrichmentWorker) ExtractFeatures(ctx context.Context, description, pageContent string) *models.AIFeatures {
	if w.cfg.AI.APIKey == "" {
		return DefaultAIFeatures()
	}

	if len(pageContent) > 8000 {
		pageContent = pageContent[:8000]
	}
	prompt := fmt.Sprintf(featuresPrompt, pageContent, description)

	body, err := json.Marshal(chatRequest{
		Model:       w.cfg.AI.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
	})
	if err != nil {
		return DefaultAIFeatures()
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.cfg.AI.Endpoint, bytes.NewReader(body))
	if err != nil {
		return DefaultAIFeatures()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.cfg.AI.APIKey)

	resp, err := w.client.Do(req)
	if err != nil {
		log.Printf("Enrichment: AI gateway error: %v", err)
		return DefaultAIFeatures()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		log.Printf("Enrichment: AI gateway status %d: %s", resp.StatusCode, string(respBody))
		return DefaultAIFeatures()
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || len(result.Choices) == 0 {
		return DefaultAIFeatures()
	}

	return ParseFeatureResponse(result.Choices[0].Message.Content)
}

// ParseFeatureResponse pulls the JSON block out of the model's reply and
// clamps every rating into 1-10.
func ParseFeatureResponse(content string) *models.AIFeatures {
	match := jsonBlockRe.FindString(content)
	if match == "" {
		return DefaultAIFeatures()
	}

	var parsed models.AIFeatures
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return DefaultAIFeatures()
	}

	f := &models.AIFeatures{
		KitchenQuality:   clampRating(parsed.KitchenQuality),
		BathroomQuality:  clampRating(parsed.BathroomQuality),
		OverallCondition: clampRating(parsed.OverallCondition),
		NaturalLight:     clampRating(parsed.NaturalLight),
		LayoutFlow:       clampRating(parsed.LayoutFlow),
		CurbAppeal:       clampRating(parsed.CurbAppeal),
		PrivacyLevel:     clampRating(parsed.PrivacyLevel),
		YardUsability:    clampRating(parsed.YardUsability),
		StorageSpace:     clampRating(parsed.StorageSpace),
		ModernUpdates:    clampRating(parsed.ModernUpdates),
		Summary:          parsed.Summary,
	}
	if f.Summary == "" {
		f.Summary = "Analysis complete."
	}
	return f
}

// DefaultAIFeatures returns the all-fives neutral set used when the
// gateway is unavailable.
func DefaultAIFeatures() *models.AIFeatures {
	return &models.AIFeatures{
		KitchenQuality:   5,
		BathroomQuality:  5,
		OverallCondition: 5,
		NaturalLight:     5,
		LayoutFlow:       5,
		CurbAppeal:       5,
		PrivacyLevel:     5,
		YardUsability:    5,
		StorageSpace:     5,
		ModernUpdates:    5,
		Summary:          "AI analysis not available. Using default ratings.",
	}
}

func clampRating(v int) int {
	if v == 0 {
		return 5 // field missing from the reply
	}
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func (w *EnrichmentWorker) rehostThumbnail(ctx context.Context, l *models.Listing) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", l.ThumbnailURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch thumbnail: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return w.uploader.UploadThumbnail(ctx, l.ID, io.LimitReader(resp.Body, 5*1024*1024), contentType)
}

func isRehosted(url string) bool {
	return regexp.MustCompile(`amazonaws\.com|digitaloceanspaces\.com`).MatchString(url)
}
