// Package storage persists pipeline runs and the synonym-oracle cache in a
// local SQLite database.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"specdoc/internal/confidence"
	"specdoc/internal/spec"
)

type Store struct {
	db *sql.DB
}

// NewStore creates or opens the SQLite database and initializes the schema.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		document    TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS spec_items (
		run_id     TEXT NOT NULL REFERENCES runs(id),
		spec_item  TEXT NOT NULL,
		value      TEXT NOT NULL,
		confidence REAL NOT NULL,
		triage     TEXT NOT NULL,
		PRIMARY KEY (run_id, spec_item)
	);
	CREATE TABLE IF NOT EXISTS gap_records (
		run_id      TEXT NOT NULL REFERENCES runs(id),
		section     TEXT NOT NULL,
		gap_type    TEXT NOT NULL,
		severity    TEXT NOT NULL,
		confidence  REAL NOT NULL,
		description TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS oracle_cache (
		term     TEXT PRIMARY KEY,
		synonyms TEXT NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun records one pipeline run: every extracted item with its triage
// bucket, plus the gap records. The write is transactional.
func (s *Store) SaveRun(runID, document string, items []spec.Item, triage confidence.TriageResult, gaps []confidence.GapRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, document, created_at) VALUES (?, ?, ?)`,
		runID, document, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	approved := make(map[string]bool, len(triage.AutoApproved))
	for _, id := range triage.AutoApproved {
		approved[id] = true
	}
	for _, it := range items {
		bucket := "review_needed"
		if approved[it.SpecItem] {
			bucket = "auto_approved"
		}
		if _, err := tx.Exec(
			`INSERT INTO spec_items (run_id, spec_item, value, confidence, triage) VALUES (?, ?, ?, ?, ?)`,
			runID, it.SpecItem, it.Value, it.Confidence, bucket,
		); err != nil {
			return fmt.Errorf("insert spec item %q: %w", it.SpecItem, err)
		}
	}

	for _, g := range gaps {
		section := ""
		if len(g.AffectedSections) > 0 {
			section = g.AffectedSections[0]
		}
		if _, err := tx.Exec(
			`INSERT INTO gap_records (run_id, section, gap_type, severity, confidence, description) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, section, string(g.GapType), g.Severity.String(), g.Confidence, g.Description,
		); err != nil {
			return fmt.Errorf("insert gap record: %w", err)
		}
	}
	return tx.Commit()
}

// LoadRunItems returns the items recorded for a run, ordered by name.
func (s *Store) LoadRunItems(runID string) ([]spec.Item, error) {
	rows, err := s.db.Query(
		`SELECT spec_item, value, confidence FROM spec_items WHERE run_id = ? ORDER BY spec_item`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []spec.Item
	for rows.Next() {
		var it spec.Item
		if err := rows.Scan(&it.SpecItem, &it.Value, &it.Confidence); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetSynonyms implements oracle.Store.
func (s *Store) GetSynonyms(term string) ([]string, bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT synonyms FROM oracle_cache WHERE term = ?`, term).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var synonyms []string
	if err := json.Unmarshal([]byte(raw), &synonyms); err != nil {
		return nil, false, err
	}
	return synonyms, true, nil
}

// PutSynonyms implements oracle.Store.
func (s *Store) PutSynonyms(term string, synonyms []string) error {
	data, err := json.Marshal(synonyms)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO oracle_cache (term, synonyms) VALUES (?, ?)
		 ON CONFLICT(term) DO UPDATE SET synonyms = excluded.synonyms`,
		term, string(data),
	)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
