package storage

import (
	"path/filepath"
	"testing"

	"homescout/models"
	"homescout/scoring"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetWeightsDefaultsWhenUnsaved(t *testing.T) {
	store := openTestStore(t)

	w, err := store.GetWeights("alice")
	if err != nil {
		t.Fatalf("get weights: %v", err)
	}
	if *w != scoring.DefaultWeights() {
		t.Fatalf("expected shipped defaults, got %+v", w)
	}
}

func TestSetWeightsRoundTrip(t *testing.T) {
	store := openTestStore(t)

	saved := scoring.DefaultWeights()
	saved.Price = 3
	saved.FloodRisk = 10
	if err := store.SetWeights("alice", &saved); err != nil {
		t.Fatalf("set weights: %v", err)
	}

	got, err := store.GetWeights("alice")
	if err != nil {
		t.Fatalf("get weights: %v", err)
	}
	if got.Price != 3 || got.FloodRisk != 10 {
		t.Fatalf("round trip lost values: %+v", got)
	}

	// Another user still sees defaults.
	other, err := store.GetWeights("bob")
	if err != nil {
		t.Fatalf("get weights: %v", err)
	}
	if *other != scoring.DefaultWeights() {
		t.Fatalf("weights leaked across users: %+v", other)
	}
}

func TestSetWeightsClampsOutOfRange(t *testing.T) {
	store := openTestStore(t)

	w := scoring.DefaultWeights()
	w.Beds = 99
	w.Baths = -4
	if err := store.SetWeights("alice", &w); err != nil {
		t.Fatalf("set weights: %v", err)
	}

	got, err := store.GetWeights("alice")
	if err != nil {
		t.Fatalf("get weights: %v", err)
	}
	if got.Beds != 10 {
		t.Fatalf("Beds = %d, want clamped to 10", got.Beds)
	}
	if got.Baths != 0 {
		t.Fatalf("Baths = %d, want clamped to 0", got.Baths)
	}
}

func TestSeedWeightsNeverClobbers(t *testing.T) {
	store := openTestStore(t)

	seed := scoring.DefaultWeights()
	seed.Price = 2
	if err := store.SeedWeights("alice", &seed); err != nil {
		t.Fatalf("seed weights: %v", err)
	}

	got, err := store.GetWeights("alice")
	if err != nil {
		t.Fatalf("get weights: %v", err)
	}
	if got.Price != 2 {
		t.Fatalf("first seed should stick, Price = %d", got.Price)
	}

	// User tunes through the API; a later seed (daemon restart) must lose.
	tuned := scoring.DefaultWeights()
	tuned.Price = 9
	if err := store.SetWeights("alice", &tuned); err != nil {
		t.Fatalf("set weights: %v", err)
	}
	if err := store.SeedWeights("alice", &seed); err != nil {
		t.Fatalf("re-seed weights: %v", err)
	}

	got, err = store.GetWeights("alice")
	if err != nil {
		t.Fatalf("get weights: %v", err)
	}
	if got.Price != 9 {
		t.Fatalf("seed clobbered saved weights, Price = %d", got.Price)
	}
}

func TestSavedViews(t *testing.T) {
	store := openTestStore(t)

	min := 300000.0
	view := &SavedView{
		UserID:  "alice",
		Name:    "cheap-and-dry",
		SortKey: "price",
		SortDir: "asc",
		Criteria: scoring.Criteria{
			Price:      scoring.Range{Min: &min},
			FloodRisks: []scoring.RiskLevel{scoring.RiskLow},
		},
	}
	if err := store.SaveView(view); err != nil {
		t.Fatalf("save view: %v", err)
	}

	got, err := store.GetView("alice", "cheap-and-dry")
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if got == nil {
		t.Fatal("view not found after save")
	}
	if got.SortKey != "price" || got.SortDir != "asc" {
		t.Fatalf("sort lost: %+v", got)
	}
	if got.Criteria.Price.Min == nil || *got.Criteria.Price.Min != min {
		t.Fatalf("criteria lost: %+v", got.Criteria)
	}

	// Saving the same name overwrites, not duplicates.
	view.SortDir = "desc"
	if err := store.SaveView(view); err != nil {
		t.Fatalf("re-save view: %v", err)
	}
	views, err := store.ListViews("alice")
	if err != nil {
		t.Fatalf("list views: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	if views[0].SortDir != "desc" {
		t.Fatalf("re-save did not overwrite: %+v", views[0])
	}

	if err := store.DeleteView("alice", "cheap-and-dry"); err != nil {
		t.Fatalf("delete view: %v", err)
	}
	got, err = store.GetView("alice", "cheap-and-dry")
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if got != nil {
		t.Fatalf("view survived delete: %+v", got)
	}
}

func TestCommandQueue(t *testing.T) {
	store := openTestStore(t)

	if err := store.EnqueueCommand(models.CmdAddListing, models.CommandParams{URL: "https://www.zillow.com/homedetails/1_zpid/"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := store.EnqueueCommand(models.CmdRefreshNow, nil); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	cmds, err := store.GetPendingCommands()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("expected 2 pending commands, got %d", len(cmds))
	}
	if cmds[0].Command != models.CmdAddListing {
		t.Fatalf("wrong order: %s first", cmds[0].Command)
	}

	params, err := store.ParseCommandParams(&cmds[0])
	if err != nil {
		t.Fatalf("parse params: %v", err)
	}
	if params.URL != "https://www.zillow.com/homedetails/1_zpid/" {
		t.Fatalf("params lost: %+v", params)
	}

	// No params is fine: parse gives a zero struct.
	params, err = store.ParseCommandParams(&cmds[1])
	if err != nil {
		t.Fatalf("parse empty params: %v", err)
	}
	if params.URL != "" {
		t.Fatalf("expected empty params, got %+v", params)
	}

	if err := store.MarkCommandProcessed(cmds[0].ID); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	cmds, err = store.GetPendingCommands()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(cmds) != 1 || cmds[0].Command != models.CmdRefreshNow {
		t.Fatalf("processed command still pending: %+v", cmds)
	}
}
