package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"pirate-scout/internal/engine"
	"pirate-scout/internal/galaxy"
)

// savedSystemTTL is how long a saved system stays before it is considered
// stale and pruned. Market and faction data drift too much past that.
const savedSystemTTL = 12 * time.Hour

// SavedSystem pairs a system record with the score it was saved with.
type SavedSystem struct {
	Record *galaxy.SystemRecord `json:"record"`
	Result *engine.ScoreResult  `json:"result"`
}

// SaveSystem upserts a scored system. The result's SavedAt is stamped here.
func (s *Store) SaveSystem(rec *galaxy.SystemRecord, res *engine.ScoreResult) error {
	if rec == nil || res == nil {
		return fmt.Errorf("save system: nil record or result")
	}
	res.SavedAt = time.Now().UTC()

	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	resJSON, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.sql.Exec(`
		INSERT INTO saved_systems (name, record, result, score, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			record = excluded.record,
			result = excluded.result,
			score = excluded.score,
			saved_at = excluded.saved_at
	`, rec.Name, string(recJSON), string(resJSON), res.FinalScore, res.SavedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save system %q: %w", rec.Name, err)
	}
	return nil
}

// SavedSystems prunes expired entries and returns the rest, best score first.
func (s *Store) SavedSystems() ([]SavedSystem, error) {
	cutoff := time.Now().UTC().Add(-savedSystemTTL).Format(time.RFC3339)
	if _, err := s.sql.Exec("DELETE FROM saved_systems WHERE saved_at < ?", cutoff); err != nil {
		return nil, fmt.Errorf("prune saved systems: %w", err)
	}

	rows, err := s.sql.Query("SELECT name, record, result FROM saved_systems ORDER BY score DESC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("load saved systems: %w", err)
	}
	defer rows.Close()

	var out []SavedSystem
	for rows.Next() {
		var (
			name             string
			recJSON, resJSON string
		)
		if err := rows.Scan(&name, &recJSON, &resJSON); err != nil {
			return nil, fmt.Errorf("scan saved system: %w", err)
		}
		var saved SavedSystem
		if err := json.Unmarshal([]byte(recJSON), &saved.Record); err != nil {
			s.log.Warn().Err(err).Str("system", name).Msg("dropping unreadable saved record")
			continue
		}
		if err := json.Unmarshal([]byte(resJSON), &saved.Result); err != nil {
			s.log.Warn().Err(err).Str("system", name).Msg("dropping unreadable saved result")
			continue
		}
		out = append(out, saved)
	}
	return out, rows.Err()
}

// SavedSystem returns one saved system by name. The bool reports whether it
// existed.
func (s *Store) SavedSystem(name string) (SavedSystem, bool, error) {
	var recJSON, resJSON string
	err := s.sql.QueryRow("SELECT record, result FROM saved_systems WHERE name = ?", name).
		Scan(&recJSON, &resJSON)
	if err == sql.ErrNoRows {
		return SavedSystem{}, false, nil
	}
	if err != nil {
		return SavedSystem{}, false, fmt.Errorf("load saved system %q: %w", name, err)
	}
	var saved SavedSystem
	if err := json.Unmarshal([]byte(recJSON), &saved.Record); err != nil {
		return SavedSystem{}, false, fmt.Errorf("parse saved record %q: %w", name, err)
	}
	if err := json.Unmarshal([]byte(resJSON), &saved.Result); err != nil {
		return SavedSystem{}, false, fmt.Errorf("parse saved result %q: %w", name, err)
	}
	return saved, true, nil
}

// RemoveSystem deletes one saved system. Removing an unknown name is not an
// error.
func (s *Store) RemoveSystem(name string) error {
	_, err := s.sql.Exec("DELETE FROM saved_systems WHERE name = ?", name)
	return err
}

// ClearSaved deletes every saved system and reports how many went.
func (s *Store) ClearSaved() (int, error) {
	res, err := s.sql.Exec("DELETE FROM saved_systems")
	if err != nil {
		return 0, fmt.Errorf("clear saved systems: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
