package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"homescout/config"
	"homescout/models"
	"homescout/scoring"
	"homescout/scraper"
	"homescout/services"
	"homescout/storage"
)

// Server exposes the scored, filtered, sorted listing views over a JSON
// API. Scoring happens per request against whatever survives the filters'
// upstream - the working set - so scores always reflect current weights.
type Server struct {
	cfg      *config.Config
	store    *storage.PostgresStore
	local    *storage.SQLiteStore
	listings *services.ListingService
	ratings  *services.RatingService
	http     *http.Server
}

func New(cfg *config.Config, store *storage.PostgresStore, local *storage.SQLiteStore, listings *services.ListingService, ratings *services.RatingService) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		local:    local,
		listings: listings,
		ratings:  ratings,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/listings", s.handleListListings)
	mux.HandleFunc("POST /api/listings", s.handleAddListing)
	mux.HandleFunc("DELETE /api/listings/{id}", s.handleDeleteListing)
	mux.HandleFunc("PUT /api/listings/{id}/rating", s.handleSetRating)
	mux.HandleFunc("DELETE /api/listings/{id}/rating", s.handleClearRating)
	mux.HandleFunc("PUT /api/listings/{id}/notes", s.handleSetNotes)
	mux.HandleFunc("GET /api/views", s.handleListViews)
	mux.HandleFunc("PUT /api/views/{name}", s.handleSaveView)
	mux.HandleFunc("DELETE /api/views/{name}", s.handleDeleteView)
	mux.HandleFunc("GET /api/weights", s.handleGetWeights)
	mux.HandleFunc("PUT /api/weights", s.handleSetWeights)
	mux.HandleFunc("GET /api/status-options", s.handleStatusOptions)

	s.http = &http.Server{
		Addr:         cfg.Listen,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	log.Printf("API listening on %s", s.cfg.Listen)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type listResponse struct {
	Listings []models.Listing       `json:"listings"`
	Total    int                    `json:"total"`
	Shown    int                    `json:"shown"`
	Weights  *scoring.Weights       `json:"weights"`
	Statuses []scoring.StatusOption `json:"statuses"`
}

// handleListListings returns the full pipeline output: score against the
// whole working set, then filter, then sort.
func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	all, err := s.store.ListListings(ctx, s.cfg.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	weights, err := s.local.GetWeights(s.cfg.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	criteria := criteriaFromQuery(r)
	key := scoring.ParseSortKey(r.URL.Query().Get("sort"))
	dir := scoring.Desc
	if strings.EqualFold(r.URL.Query().Get("dir"), "asc") {
		dir = scoring.Asc
	}

	// A saved view replaces the query-string filters wholesale.
	if name := r.URL.Query().Get("view"); name != "" {
		view, err := s.local.GetView(s.cfg.UserID, name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if view == nil {
			writeErrorMsg(w, http.StatusNotFound, "no such view: "+name)
			return
		}
		criteria = view.Criteria
		key = scoring.ParseSortKey(view.SortKey)
		if strings.EqualFold(view.SortDir, "asc") {
			dir = scoring.Asc
		} else {
			dir = scoring.Desc
		}
	}

	scored := scoring.ScoreAll(all, *weights)
	filtered := scoring.Filter(scored, criteria)
	sorted := scoring.Sort(filtered, key, dir)

	writeJSON(w, http.StatusOK, listResponse{
		Listings: sorted,
		Total:    len(all),
		Shown:    len(sorted),
		Weights:  weights,
		Statuses: scoring.StatusOptions(all),
	})
}

func criteriaFromQuery(r *http.Request) scoring.Criteria {
	q := r.URL.Query()
	c := scoring.Criteria{
		Ratings:  splitParam(q.Get("ratings")),
		Statuses: splitParam(q.Get("statuses")),
	}

	for _, fr := range splitParam(q.Get("flood_risks")) {
		level := scoring.RiskLevel(fr)
		if level.IsValid() {
			c.FloodRisks = append(c.FloodRisks, level)
		}
	}

	c.Price = rangeFromQuery(q.Get("price_min"), q.Get("price_max"))
	c.PricePerSqft = rangeFromQuery(q.Get("ppsf_min"), q.Get("ppsf_max"))
	c.YearBuilt = rangeFromQuery(q.Get("year_min"), q.Get("year_max"))
	c.Beds = rangeFromQuery(q.Get("beds_min"), q.Get("beds_max"))
	c.Baths = rangeFromQuery(q.Get("baths_min"), q.Get("baths_max"))
	c.Sqft = rangeFromQuery(q.Get("sqft_min"), q.Get("sqft_max"))
	c.CommuteAM = rangeFromQuery(q.Get("commute_am_min"), q.Get("commute_am_max"))
	c.CommutePM = rangeFromQuery(q.Get("commute_pm_min"), q.Get("commute_pm_max"))
	c.Distance = rangeFromQuery(q.Get("distance_min"), q.Get("distance_max"))

	c.MinElementaryRating = intParam(q.Get("min_elementary"))
	c.MinMiddleRating = intParam(q.Get("min_middle"))
	c.MinHighRating = intParam(q.Get("min_high"))

	return c
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func rangeFromQuery(minStr, maxStr string) scoring.Range {
	var rng scoring.Range
	if v, err := strconv.ParseFloat(minStr, 64); err == nil {
		rng.Min = &v
	}
	if v, err := strconv.ParseFloat(maxStr, 64); err == nil {
		rng.Max = &v
	}
	return rng
}

func intParam(v string) *int {
	if n, err := strconv.Atoi(v); err == nil {
		return &n
	}
	return nil
}

type addListingRequest struct {
	URL string `json:"url"`
}

// handleAddListing queues the URL for the daemon rather than scraping
// inline; a Zillow page fetch can take the better part of a minute.
func (s *Server) handleAddListing(w http.ResponseWriter, r *http.Request) {
	var req addListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeErrorMsg(w, http.StatusBadRequest, "url is required")
		return
	}
	if !strings.Contains(req.URL, "zillow.com") {
		writeErrorMsg(w, http.StatusBadRequest, "please provide a valid Zillow URL")
		return
	}

	// A search-results URL becomes a bulk import; a detail URL a single add.
	cmd := models.CmdAddListing
	if !scraper.IsDetailURL(req.URL) {
		cmd = models.CmdImportList
	}

	if err := s.local.EnqueueCommand(cmd, models.CommandParams{URL: req.URL}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "command": string(cmd)})
}

func (s *Server) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.listings.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ratingRequest struct {
	Rating string `json:"rating"`
}

func (s *Server) handleSetRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.ratings.Rate(r.Context(), s.cfg.UserID, id, models.Rating(req.Rating)); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.ratings.Clear(r.Context(), s.cfg.UserID, id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleSetNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.ratings.SetNotes(r.Context(), s.cfg.UserID, id, req.Notes); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type viewRequest struct {
	Criteria scoring.Criteria `json:"criteria"`
	Sort     string           `json:"sort"`
	Dir      string           `json:"dir"`
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.local.ListViews(s.cfg.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if views == nil {
		views = []storage.SavedView{}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSaveView(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		writeErrorMsg(w, http.StatusBadRequest, "view name is required")
		return
	}

	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view := &storage.SavedView{
		UserID:   s.cfg.UserID,
		Name:     name,
		Criteria: req.Criteria,
		SortKey:  req.Sort,
		SortDir:  req.Dir,
	}
	if err := s.local.SaveView(view); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		writeErrorMsg(w, http.StatusBadRequest, "view name is required")
		return
	}
	if err := s.local.DeleteView(s.cfg.UserID, name); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetWeights(w http.ResponseWriter, r *http.Request) {
	weights, err := s.local.GetWeights(s.cfg.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, weights)
}

func (s *Server) handleSetWeights(w http.ResponseWriter, r *http.Request) {
	var weights scoring.Weights
	if err := json.NewDecoder(r.Body).Decode(&weights); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.local.SetWeights(s.cfg.UserID, &weights); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, weights)
}

func (s *Server) handleStatusOptions(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.ListListings(r.Context(), s.cfg.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, scoring.StatusOptions(all))
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid listing id")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeErrorMsg(w, status, err.Error())
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
