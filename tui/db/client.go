package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

type Client struct {
	pg     *pgxpool.Pool
	sqlite *sql.DB // commands still flow through SQLite (the daemon polls it)
	userID string
	ctx    context.Context
}

type Totals struct {
	Listings          int
	RatedYes          int
	RatedNo           int
	RatedMaybe        int
	PriceCuts         int
	PendingEnrichment int
}

type ScrapeRun struct {
	ID              int64
	Kind            string
	StartedAt       time.Time
	FinishedAt      *time.Time
	Status          string
	ListingsChecked int
	ListingsNew     int
	PriceChanges    int
	StatusChanges   int
	ErrorsCount     int
}

type Listing struct {
	ID              string // UUID as string
	URL             string
	Address         string
	Price           string
	PriceNum        float64
	Beds            float64
	Baths           float64
	Sqft            string
	Status          string
	Neighborhood    string
	FloodZone       string
	CommuteAM       int
	DaysOnMarket    int
	PriceCutPercent float64
	PriceCutDate    *time.Time
	ElementarySchool int
	MiddleSchool    int
	HighSchool      int
	Description     string
	AISummary       string
	Rating          string
	Notes           string
}

type ScrapeLog struct {
	ID        int64
	RunID     *int64
	Timestamp time.Time
	Level     string
	Message   string
}

func New(postgresURL, sqlitePath, userID string) (*Client, error) {
	ctx := context.Background()

	pgPool, err := pgxpool.New(ctx, postgresURL)
	if err != nil {
		return nil, err
	}

	sqliteDB, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		pgPool.Close()
		return nil, err
	}

	return &Client{
		pg:     pgPool,
		sqlite: sqliteDB,
		userID: userID,
		ctx:    ctx,
	}, nil
}

func (c *Client) Close() error {
	c.pg.Close()
	return c.sqlite.Close()
}

func (c *Client) GetTotals() (Totals, error) {
	var t Totals
	err := c.pg.QueryRow(c.ctx, `
		SELECT
			(SELECT COUNT(*) FROM listings),
			(SELECT COUNT(*) FROM user_ratings WHERE user_id = $1 AND rating = 'yes'),
			(SELECT COUNT(*) FROM user_ratings WHERE user_id = $1 AND rating = 'no'),
			(SELECT COUNT(*) FROM user_ratings WHERE user_id = $1 AND rating = 'maybe'),
			(SELECT COUNT(*) FROM listings WHERE price_cut_amount IS NOT NULL),
			(SELECT COUNT(*) FROM listings WHERE ai_features IS NULL OR commute_am IS NULL)
	`, c.userID).Scan(&t.Listings, &t.RatedYes, &t.RatedNo, &t.RatedMaybe,
		&t.PriceCuts, &t.PendingEnrichment)
	return t, err
}

func (c *Client) GetRecentRuns(limit int) ([]ScrapeRun, error) {
	rows, err := c.pg.Query(c.ctx, `
		SELECT id, kind, started_at, finished_at, status,
			COALESCE(listings_checked, 0), COALESCE(listings_new, 0),
			COALESCE(price_changes, 0), COALESCE(status_changes, 0),
			COALESCE(errors_count, 0)
		FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ScrapeRun
	for rows.Next() {
		var r ScrapeRun
		err := rows.Scan(&r.ID, &r.Kind, &r.StartedAt, &r.FinishedAt, &r.Status,
			&r.ListingsChecked, &r.ListingsNew, &r.PriceChanges,
			&r.StatusChanges, &r.ErrorsCount)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}

func (c *Client) GetListings(limit, offset int) ([]Listing, error) {
	rows, err := c.pg.Query(c.ctx, `
		SELECT
			l.id::text,
			COALESCE(l.url, ''),
			COALESCE(l.address, ''),
			COALESCE(l.price, ''),
			COALESCE(l.price_num, 0),
			COALESCE(l.beds, 0),
			COALESCE(l.baths, 0),
			COALESCE(l.sqft, ''),
			COALESCE(l.status, ''),
			COALESCE(l.neighborhood, ''),
			COALESCE(l.flood_zone, ''),
			COALESCE(l.commute_am, 0),
			COALESCE(l.days_on_market, 0),
			COALESCE(l.price_cut_percent, 0),
			l.price_cut_date,
			COALESCE(l.elementary_school_rating, 0),
			COALESCE(l.middle_school_rating, 0),
			COALESCE(l.high_school_rating, 0),
			COALESCE(l.description, ''),
			COALESCE(l.ai_features->>'summary', ''),
			COALESCE(r.rating, ''),
			COALESCE(r.notes, '')
		FROM listings l
		LEFT JOIN user_ratings r ON r.listing_id = l.id AND r.user_id = $1
		ORDER BY l.updated_at DESC
		LIMIT $2 OFFSET $3
	`, c.userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []Listing
	for rows.Next() {
		var l Listing
		err := rows.Scan(&l.ID, &l.URL, &l.Address, &l.Price, &l.PriceNum,
			&l.Beds, &l.Baths, &l.Sqft, &l.Status, &l.Neighborhood,
			&l.FloodZone, &l.CommuteAM, &l.DaysOnMarket,
			&l.PriceCutPercent, &l.PriceCutDate,
			&l.ElementarySchool, &l.MiddleSchool, &l.HighSchool,
			&l.Description, &l.AISummary, &l.Rating, &l.Notes)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (c *Client) GetListingCount() (int, error) {
	var count int
	err := c.pg.QueryRow(c.ctx, "SELECT COUNT(*) FROM listings").Scan(&count)
	return count, err
}

func (c *Client) GetRecentLogs(limit int, level *string) ([]ScrapeLog, error) {
	query := `
		SELECT id, run_id, timestamp, level, message
		FROM scrape_logs
		ORDER BY timestamp DESC
		LIMIT $1`
	args := []any{limit}
	if level != nil && *level != "ALL" {
		query = `
			SELECT id, run_id, timestamp, level, message
			FROM scrape_logs
			WHERE UPPER(level) = UPPER($2)
			ORDER BY timestamp DESC
			LIMIT $1`
		args = append(args, *level)
	}

	rows, err := c.pg.Query(c.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []ScrapeLog
	for rows.Next() {
		var l ScrapeLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &l.Level, &l.Message); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// Commands go through SQLite; the daemon's scheduler polls the table.
func (c *Client) SendCommand(command string, params string) error {
	if params == "" {
		params = "{}"
	}
	_, err := c.sqlite.Exec(`
		INSERT INTO commands (command, params, created_at)
		VALUES (?, ?, datetime('now'))
	`, command, params)
	return err
}

func (c *Client) RefreshNow() error {
	return c.SendCommand("refresh_now", "")
}

func (c *Client) RunEnrichment() error {
	return c.SendCommand("run_enrichment", "")
}

func (c *Client) Pause() error {
	return c.SendCommand("pause", "")
}

func (c *Client) Resume() error {
	return c.SendCommand("resume", "")
}
