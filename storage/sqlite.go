package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"homescout/models"
	"homescout/scoring"
)

// SQLiteStore is the local operational store: scoring weights, saved views,
// and the command queue the scheduler polls.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scoring_weights (
		user_id TEXT PRIMARY KEY,
		weights JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS saved_views (
		id INTEGER PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		criteria JSON,
		sort_key TEXT,
		sort_dir TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, name)
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_views_user ON saved_views(user_id, name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetWeights returns the user's saved weights, or the shipped defaults when
// nothing has been saved yet.
func (s *SQLiteStore) GetWeights(userID string) (*scoring.Weights, error) {
	var raw string
	err := s.db.QueryRow(`
		SELECT weights FROM scoring_weights WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		w := scoring.DefaultWeights()
		return &w, nil
	}
	if err != nil {
		return nil, err
	}

	var w scoring.Weights
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("parse saved weights: %w", err)
	}
	w = w.Clamp()
	return &w, nil
}

func (s *SQLiteStore) SetWeights(userID string, w *scoring.Weights) error {
	*w = w.Clamp()
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO scoring_weights (user_id, weights, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			weights = excluded.weights,
			updated_at = excluded.updated_at`,
		userID, string(data), time.Now())
	return err
}

// SeedWeights writes the given weights only if the user has never saved any.
// Startup uses this to push YAML overrides without clobbering tuning done
// through the API.
func (s *SQLiteStore) SeedWeights(userID string, w *scoring.Weights) error {
	*w = w.Clamp()
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO scoring_weights (user_id, weights, updated_at)
		VALUES (?, ?, ?)`,
		userID, string(data), time.Now())
	return err
}

func (s *SQLiteStore) ResetWeights(userID string) error {
	_, err := s.db.Exec(`DELETE FROM scoring_weights WHERE user_id = ?`, userID)
	return err
}

// SavedView is a named filter/sort preset.
type SavedView struct {
	ID       int64            `json:"id"`
	UserID   string           `json:"-"`
	Name     string           `json:"name"`
	Criteria scoring.Criteria `json:"criteria"`
	SortKey  string           `json:"sort"`
	SortDir  string           `json:"dir"`
}

func (s *SQLiteStore) SaveView(v *SavedView) error {
	criteria, err := json.Marshal(v.Criteria)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO saved_views (user_id, name, criteria, sort_key, sort_dir)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, name) DO UPDATE SET
			criteria = excluded.criteria,
			sort_key = excluded.sort_key,
			sort_dir = excluded.sort_dir`,
		v.UserID, v.Name, string(criteria), v.SortKey, v.SortDir)
	return err
}

func (s *SQLiteStore) ListViews(userID string) ([]SavedView, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, criteria, sort_key, sort_dir
		FROM saved_views WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []SavedView
	for rows.Next() {
		var v SavedView
		var criteria sql.NullString
		if err := rows.Scan(&v.ID, &v.UserID, &v.Name, &criteria, &v.SortKey, &v.SortDir); err != nil {
			return nil, err
		}
		if criteria.Valid {
			if err := json.Unmarshal([]byte(criteria.String), &v.Criteria); err != nil {
				return nil, fmt.Errorf("parse view %q: %w", v.Name, err)
			}
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (s *SQLiteStore) GetView(userID, name string) (*SavedView, error) {
	var v SavedView
	var criteria sql.NullString
	err := s.db.QueryRow(`
		SELECT id, user_id, name, criteria, sort_key, sort_dir
		FROM saved_views WHERE user_id = ? AND name = ?`, userID, name).
		Scan(&v.ID, &v.UserID, &v.Name, &criteria, &v.SortKey, &v.SortDir)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if criteria.Valid {
		if err := json.Unmarshal([]byte(criteria.String), &v.Criteria); err != nil {
			return nil, fmt.Errorf("parse view %q: %w", name, err)
		}
	}
	return &v, nil
}

func (s *SQLiteStore) DeleteView(userID, name string) error {
	_, err := s.db.Exec(`DELETE FROM saved_views WHERE user_id = ? AND name = ?`, userID, name)
	return err
}

func (s *SQLiteStore) EnqueueCommand(command models.CommandType, params any) error {
	var raw []byte
	if params != nil {
		var err error
		raw, err = json.Marshal(params)
		if err != nil {
			return err
		}
	}
	_, err := s.db.Exec(`
		INSERT INTO commands (command, params) VALUES (?, ?)`, string(command), string(raw))
	return err
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt, &cmd.ProcessedAt); err != nil {
			return nil, err
		}
		if params.Valid {
			cmd.Params = json.RawMessage(params.String)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func (s *SQLiteStore) ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	if cmd.Params == nil || string(cmd.Params) == "null" || string(cmd.Params) == "" {
		return &models.CommandParams{}, nil
	}
	var params models.CommandParams
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}
