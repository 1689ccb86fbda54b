package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"homescout/config"
)

const distanceMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// CommuteEstimator asks the Google Distance Matrix API for traffic-aware
// drive times from a listing address to the configured destination.
type CommuteEstimator struct {
	cfg    *config.Config
	client *http.Client
}

func NewCommuteEstimator(cfg *config.Config) *CommuteEstimator {
	return &CommuteEstimator{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether an API key and destination are configured.
func (e *CommuteEstimator) Enabled() bool {
	return e.cfg.Google.MapsAPIKey != "" && e.cfg.Commute.Destination != ""
}

// Commute holds one estimate pair: morning rush in, evening rush out.
type Commute struct {
	AMMinutes     *int
	PMMinutes     *int
	DistanceMiles *float64
}

// Estimate runs the AM and PM legs. A failed leg stays nil rather than
// failing the whole estimate, so a partial answer still gets stored.
func (e *CommuteEstimator) Estimate(ctx context.Context, origin string) (*Commute, error) {
	if origin == "" {
		return nil, fmt.Errorf("empty origin address")
	}

	c := &Commute{}

	am, dist, err := e.leg(ctx, origin, nextWeekday(time.Tuesday, e.cfg.Commute.AMHour))
	if err != nil {
		return nil, fmt.Errorf("am leg: %w", err)
	}
	c.AMMinutes = am
	c.DistanceMiles = dist

	pm, _, err := e.leg(ctx, origin, nextWeekday(time.Tuesday, e.cfg.Commute.PMHour))
	if err == nil {
		c.PMMinutes = pm
	}

	return c, nil
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
			DurationInTraffic struct {
				Value int `json:"value"`
			} `json:"duration_in_traffic"`
			Distance struct {
				Text  string `json:"text"`
				Value int    `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
	ErrorMessage string `json:"error_message"`
}

func (e *CommuteEstimator) leg(ctx context.Context, origin string, departure time.Time) (*int, *float64, error) {
	params := url.Values{}
	params.Set("origins", origin)
	params.Set("destinations", e.cfg.Commute.Destination)
	params.Set("mode", "driving")
	params.Set("departure_time", strconv.FormatInt(departure.Unix(), 10))
	params.Set("key", e.cfg.Google.MapsAPIKey)

	req, err := http.NewRequestWithContext(ctx, "GET", distanceMatrixURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	var result distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil, err
	}

	if result.Status != "OK" || len(result.Rows) == 0 || len(result.Rows[0].Elements) == 0 {
		return nil, nil, fmt.Errorf("distance matrix status %s: %s", result.Status, result.ErrorMessage)
	}

	el := result.Rows[0].Elements[0]
	if el.Status != "OK" {
		return nil, nil, fmt.Errorf("element status %s", el.Status)
	}

	// duration_in_traffic reflects the departure time; plain duration is
	// the free-flow fallback.
	seconds := el.DurationInTraffic.Value
	if seconds == 0 {
		seconds = el.Duration.Value
	}
	minutes := int(math.Round(float64(seconds) / 60))

	var miles *float64
	if el.Distance.Value > 0 {
		m := math.Round(float64(el.Distance.Value)/1609.344*10) / 10
		miles = &m
	} else if el.Distance.Text != "" {
		miles = parseMilesText(el.Distance.Text)
	}

	return &minutes, miles, nil
}

// nextWeekday returns the next occurrence of the weekday at the given hour,
// at least a week out so the API treats it as a forecast, not live traffic.
func nextWeekday(day time.Weekday, hour int) time.Time {
	now := time.Now()
	days := (int(day) - int(now.Weekday()) + 7) % 7
	t := now.AddDate(0, 0, days+7)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

func parseMilesText(text string) *float64 {
	text = strings.TrimSpace(strings.TrimSuffix(text, "mi"))
	text = strings.ReplaceAll(text, ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil
	}
	return &v
}
