package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type RunKind string

const (
	RunKindScrape  RunKind = "scrape"
	RunKindRefresh RunKind = "refresh"
)

// ScrapeRun records one scrape or refresh execution.
type ScrapeRun struct {
	ID              int64      `json:"id" db:"id"`
	Kind            RunKind    `json:"kind" db:"kind"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	FinishedAt      *time.Time `json:"finished_at" db:"finished_at"`
	Status          RunStatus  `json:"status" db:"status"`
	ListingsChecked int        `json:"listings_checked" db:"listings_checked"`
	ListingsNew     int        `json:"listings_new" db:"listings_new"`
	PriceChanges    int        `json:"price_changes" db:"price_changes"`
	StatusChanges   int        `json:"status_changes" db:"status_changes"`
	ErrorsCount     int        `json:"errors_count" db:"errors_count"`
}
