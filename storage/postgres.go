package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"homescout/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id UUID PRIMARY KEY,
		url TEXT NOT NULL,
		url_key TEXT NOT NULL UNIQUE,
		address TEXT,
		price TEXT,
		price_num DOUBLE PRECISION,
		sqft TEXT,
		sqft_num DOUBLE PRECISION,
		beds DOUBLE PRECISION,
		baths DOUBLE PRECISION,
		property_type TEXT,
		year_built INTEGER,
		lot_size TEXT,
		zestimate TEXT,
		status TEXT,
		days_on_market INTEGER,
		hoa_fee TEXT,
		neighborhood TEXT,
		description TEXT,
		thumbnail_url TEXT,
		has_garage BOOLEAN,
		garage_spots INTEGER,
		elementary_school_rating INTEGER,
		middle_school_rating INTEGER,
		high_school_rating INTEGER,
		commute_am INTEGER,
		commute_pm INTEGER,
		distance_miles DOUBLE PRECISION,
		walk_score INTEGER,
		bike_score INTEGER,
		flood_zone TEXT,
		price_cut_amount DOUBLE PRECISION,
		price_cut_percent DOUBLE PRECISION,
		price_cut_date TIMESTAMPTZ,
		ai_features JSONB,
		scraped_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_ratings (
		user_id TEXT NOT NULL,
		listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		rating TEXT,
		notes TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, listing_id)
	);

	CREATE TABLE IF NOT EXISTS scrape_runs (
		id BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		status TEXT NOT NULL,
		listings_checked INTEGER DEFAULT 0,
		listings_new INTEGER DEFAULT 0,
		price_changes INTEGER DEFAULT 0,
		status_changes INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id BIGSERIAL PRIMARY KEY,
		run_id BIGINT REFERENCES scrape_runs(id),
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		level TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_listings_url_key ON listings(url_key);
	CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
	CREATE INDEX IF NOT EXISTS idx_listings_updated ON listings(updated_at);
	CREATE INDEX IF NOT EXISTS idx_ratings_listing ON user_ratings(listing_id);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id, timestamp);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

const listingColumns = `
	id, url, url_key, address, price, price_num, sqft, sqft_num, beds, baths,
	property_type, year_built, lot_size, zestimate, status, days_on_market,
	hoa_fee, neighborhood, description, thumbnail_url, has_garage, garage_spots,
	elementary_school_rating, middle_school_rating, high_school_rating,
	commute_am, commute_pm, distance_miles, walk_score, bike_score, flood_zone,
	price_cut_amount, price_cut_percent, price_cut_date, ai_features,
	scraped_at, updated_at`

func scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	var features []byte
	err := row.Scan(
		&l.ID, &l.URL, &l.URLKey, &l.Address, &l.Price, &l.PriceNum, &l.Sqft, &l.SqftNum, &l.Beds, &l.Baths,
		&l.PropertyType, &l.YearBuilt, &l.LotSize, &l.Zestimate, &l.Status, &l.DaysOnMarket,
		&l.HOAFee, &l.Neighborhood, &l.Description, &l.ThumbnailURL, &l.HasGarage, &l.GarageSpots,
		&l.ElementarySchoolRating, &l.MiddleSchoolRating, &l.HighSchoolRating,
		&l.CommuteAM, &l.CommutePM, &l.DistanceMiles, &l.WalkScore, &l.BikeScore, &l.FloodZone,
		&l.PriceCutAmount, &l.PriceCutPercent, &l.PriceCutDate, &features,
		&l.ScrapedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(features) > 0 {
		var f models.AIFeatures
		if err := json.Unmarshal(features, &f); err == nil {
			l.AIFeatures = &f
		}
	}
	return &l, nil
}

func featuresJSON(l *models.Listing) ([]byte, error) {
	if l.AIFeatures == nil {
		return nil, nil
	}
	return json.Marshal(l.AIFeatures)
}

// UpsertListing inserts a listing or, on url_key conflict, refreshes every
// scraped field while keeping the stored id (and with it the rating rows
// hanging off it).
func (s *PostgresStore) UpsertListing(ctx context.Context, l *models.Listing) error {
	features, err := featuresJSON(l)
	if err != nil {
		return fmt.Errorf("marshal ai features: %w", err)
	}

	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36, $37
		)
		ON CONFLICT (url_key) DO UPDATE SET
			url = EXCLUDED.url,
			address = EXCLUDED.address,
			price = EXCLUDED.price,
			price_num = EXCLUDED.price_num,
			sqft = EXCLUDED.sqft,
			sqft_num = EXCLUDED.sqft_num,
			beds = EXCLUDED.beds,
			baths = EXCLUDED.baths,
			property_type = EXCLUDED.property_type,
			year_built = COALESCE(EXCLUDED.year_built, listings.year_built),
			lot_size = EXCLUDED.lot_size,
			zestimate = EXCLUDED.zestimate,
			status = EXCLUDED.status,
			days_on_market = COALESCE(EXCLUDED.days_on_market, listings.days_on_market),
			hoa_fee = EXCLUDED.hoa_fee,
			neighborhood = COALESCE(NULLIF(EXCLUDED.neighborhood, ''), listings.neighborhood),
			description = COALESCE(NULLIF(EXCLUDED.description, ''), listings.description),
			thumbnail_url = COALESCE(NULLIF(EXCLUDED.thumbnail_url, ''), listings.thumbnail_url),
			has_garage = COALESCE(EXCLUDED.has_garage, listings.has_garage),
			garage_spots = COALESCE(EXCLUDED.garage_spots, listings.garage_spots),
			elementary_school_rating = COALESCE(EXCLUDED.elementary_school_rating, listings.elementary_school_rating),
			middle_school_rating = COALESCE(EXCLUDED.middle_school_rating, listings.middle_school_rating),
			high_school_rating = COALESCE(EXCLUDED.high_school_rating, listings.high_school_rating),
			commute_am = COALESCE(EXCLUDED.commute_am, listings.commute_am),
			commute_pm = COALESCE(EXCLUDED.commute_pm, listings.commute_pm),
			distance_miles = COALESCE(EXCLUDED.distance_miles, listings.distance_miles),
			walk_score = COALESCE(EXCLUDED.walk_score, listings.walk_score),
			bike_score = COALESCE(EXCLUDED.bike_score, listings.bike_score),
			flood_zone = COALESCE(NULLIF(EXCLUDED.flood_zone, ''), listings.flood_zone),
			price_cut_amount = COALESCE(EXCLUDED.price_cut_amount, listings.price_cut_amount),
			price_cut_percent = COALESCE(EXCLUDED.price_cut_percent, listings.price_cut_percent),
			price_cut_date = COALESCE(EXCLUDED.price_cut_date, listings.price_cut_date),
			ai_features = COALESCE(EXCLUDED.ai_features, listings.ai_features),
			updated_at = NOW()
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		l.ID, l.URL, l.URLKey, l.Address, l.Price, l.PriceNum, l.Sqft, l.SqftNum, l.Beds, l.Baths,
		l.PropertyType, l.YearBuilt, l.LotSize, l.Zestimate, l.Status, l.DaysOnMarket,
		l.HOAFee, l.Neighborhood, l.Description, l.ThumbnailURL, l.HasGarage, l.GarageSpots,
		l.ElementarySchoolRating, l.MiddleSchoolRating, l.HighSchoolRating,
		l.CommuteAM, l.CommutePM, l.DistanceMiles, l.WalkScore, l.BikeScore, l.FloodZone,
		l.PriceCutAmount, l.PriceCutPercent, l.PriceCutDate, features,
		l.ScrapedAt, l.UpdatedAt,
	).Scan(&l.ID)
}

func (s *PostgresStore) GetListingByURLKey(ctx context.Context, urlKey string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE url_key = $1`
	l, err := scanListing(s.pool.QueryRow(ctx, query, urlKey))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *PostgresStore) GetListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := scanListing(s.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListListings returns the whole working set, newest first, with the given
// user's rating overlay merged in. No rating row means unrated.
func (s *PostgresStore) ListListings(ctx context.Context, userID string) ([]models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `, r.rating, COALESCE(r.notes, '')
		FROM listings
		LEFT JOIN user_ratings r ON r.listing_id = listings.id AND r.user_id = $1
		ORDER BY scraped_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		var features []byte
		var rating *string
		err := rows.Scan(
			&l.ID, &l.URL, &l.URLKey, &l.Address, &l.Price, &l.PriceNum, &l.Sqft, &l.SqftNum, &l.Beds, &l.Baths,
			&l.PropertyType, &l.YearBuilt, &l.LotSize, &l.Zestimate, &l.Status, &l.DaysOnMarket,
			&l.HOAFee, &l.Neighborhood, &l.Description, &l.ThumbnailURL, &l.HasGarage, &l.GarageSpots,
			&l.ElementarySchoolRating, &l.MiddleSchoolRating, &l.HighSchoolRating,
			&l.CommuteAM, &l.CommutePM, &l.DistanceMiles, &l.WalkScore, &l.BikeScore, &l.FloodZone,
			&l.PriceCutAmount, &l.PriceCutPercent, &l.PriceCutDate, &features,
			&l.ScrapedAt, &l.UpdatedAt, &rating, &l.UserNotes,
		)
		if err != nil {
			return nil, err
		}
		if len(features) > 0 {
			var f models.AIFeatures
			if err := json.Unmarshal(features, &f); err == nil {
				l.AIFeatures = &f
			}
		}
		if rating != nil {
			r := models.Rating(*rating)
			if r.IsValid() {
				l.UserRating = &r
			}
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *PostgresStore) DeleteListing(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	return err
}

// =============================================================================
// User ratings
// =============================================================================

func (s *PostgresStore) SetRating(ctx context.Context, userID string, listingID uuid.UUID, rating models.Rating) error {
	query := `
		INSERT INTO user_ratings (user_id, listing_id, rating, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, listing_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			updated_at = NOW()`
	_, err := s.pool.Exec(ctx, query, userID, listingID, string(rating))
	return err
}

// DeleteRating clears the rating but keeps any notes. The row disappears
// only when there is nothing left in it, so "unrated" stays representable
// as plain absence.
func (s *PostgresStore) DeleteRating(ctx context.Context, userID string, listingID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE user_ratings SET rating = NULL, updated_at = NOW()
		WHERE user_id = $1 AND listing_id = $2`, userID, listingID)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		DELETE FROM user_ratings
		WHERE user_id = $1 AND listing_id = $2 AND rating IS NULL AND COALESCE(notes, '') = ''`,
		userID, listingID)
	return err
}

func (s *PostgresStore) SetNotes(ctx context.Context, userID string, listingID uuid.UUID, notes string) error {
	query := `
		INSERT INTO user_ratings (user_id, listing_id, notes, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, listing_id) DO UPDATE SET
			notes = EXCLUDED.notes,
			updated_at = NOW()`
	_, err := s.pool.Exec(ctx, query, userID, listingID, notes)
	return err
}

// =============================================================================
// Enrichment and refresh queues
// =============================================================================

// ListPendingEnrichment returns listings still missing AI features or a
// commute estimate, oldest first.
func (s *PostgresStore) ListPendingEnrichment(ctx context.Context, limit int) ([]models.Listing, error) {
	query := `
		SELECT ` + listingColumns + ` FROM listings
		WHERE ai_features IS NULL OR commute_am IS NULL
		ORDER BY scraped_at ASC
		LIMIT $1`
	return s.queryListings(ctx, query, limit)
}

// ListStaleListings returns listings not refreshed since the cutoff.
func (s *PostgresStore) ListStaleListings(ctx context.Context, olderThan time.Time, limit int) ([]models.Listing, error) {
	query := `
		SELECT ` + listingColumns + ` FROM listings
		WHERE updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2`
	return s.queryListings(ctx, query, olderThan, limit)
}

func (s *PostgresStore) queryListings(ctx context.Context, query string, args ...any) ([]models.Listing, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func (s *PostgresStore) UpdateAIFeatures(ctx context.Context, id uuid.UUID, f *models.AIFeatures) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE listings SET ai_features = $2, updated_at = NOW() WHERE id = $1`, id, data)
	return err
}

func (s *PostgresStore) UpdateCommute(ctx context.Context, id uuid.UUID, am, pm *int, miles *float64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE listings SET
			commute_am = COALESCE($2, commute_am),
			commute_pm = COALESCE($3, commute_pm),
			distance_miles = COALESCE($4, distance_miles),
			updated_at = NOW()
		WHERE id = $1`, id, am, pm, miles)
	return err
}

func (s *PostgresStore) UpdateThumbnail(ctx context.Context, id uuid.UUID, url string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE listings SET thumbnail_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

// =============================================================================
// Runs and logs
// =============================================================================

func (s *PostgresStore) CreateScrapeRun(ctx context.Context, run *models.ScrapeRun) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO scrape_runs (kind, started_at, status)
		VALUES ($1, $2, $3)
		RETURNING id`,
		run.Kind, run.StartedAt, run.Status,
	).Scan(&run.ID)
}

func (s *PostgresStore) FinishScrapeRun(ctx context.Context, run *models.ScrapeRun) error {
	now := time.Now()
	run.FinishedAt = &now
	_, err := s.pool.Exec(ctx, `
		UPDATE scrape_runs SET
			finished_at = $2, status = $3, listings_checked = $4,
			listings_new = $5, price_changes = $6, status_changes = $7, errors_count = $8
		WHERE id = $1`,
		run.ID, run.FinishedAt, run.Status, run.ListingsChecked,
		run.ListingsNew, run.PriceChanges, run.StatusChanges, run.ErrorsCount)
	return err
}

func (s *PostgresStore) AddScrapeLog(ctx context.Context, runID *int64, level models.LogLevel, message string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scrape_logs (run_id, level, message) VALUES ($1, $2, $3)`,
		runID, string(level), message)
	return err
}
