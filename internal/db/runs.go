package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// RunRecord is one simulation run.
type RunRecord struct {
	ID         int64           `json:"id"`
	StartedAt  string          `json:"started_at"`
	FinishedAt string          `json:"finished_at,omitempty"`
	Seed       int64           `json:"seed"`
	Ticks      uint64          `json:"ticks"`
	Stars      int             `json:"stars"`
	Lanes      int             `json:"lanes"`
	Empires    int             `json:"empires"`
	Params     json.RawMessage `json:"params"`
}

// InsertRun starts a run record and returns its id. params is stored as JSON.
func (d *DB) InsertRun(seed int64, stars, lanes, empires int, params any) (int64, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("encode run params: %w", err)
	}
	result, err := d.sql.Exec(
		"INSERT INTO runs (started_at, seed, stars, lanes, empires, params_json) VALUES (?, ?, ?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), seed, stars, lanes, empires, string(paramsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return result.LastInsertId()
}

// FinishRun stamps a run with its final tick count.
func (d *DB) FinishRun(runID int64, ticks uint64) error {
	res, err := d.sql.Exec(
		"UPDATE runs SET finished_at = ?, ticks = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), ticks, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %d: %w", runID, sql.ErrNoRows)
	}
	return nil
}

// GetRuns returns the last N runs (newest first).
func (d *DB) GetRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(
		`SELECT id, started_at, COALESCE(finished_at, ''), seed, ticks, stars, lanes, empires,
		 COALESCE(params_json, '{}')
		 FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var params string
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Seed, &r.Ticks,
			&r.Stars, &r.Lanes, &r.Empires, &params); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Params = json.RawMessage(params)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
