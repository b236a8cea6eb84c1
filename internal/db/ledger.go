package db

import (
	"fmt"

	"starlane/internal/engine"
	"starlane/internal/galaxy"
	"starlane/internal/graph"
)

// InsertColonizations bulk-inserts ledger entries for a run.
func (d *DB) InsertColonizations(runID int64, records []engine.ColonizationRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO colonization_events (
		run_id, tick, fleet_id, empire_id, body_id, node_id, colonists, outcome
	) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare colonizations: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(runID, r.Tick, r.Fleet, r.Empire, r.Body, r.Node, r.Colonists, string(r.Outcome)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert colonization: %w", err)
		}
	}
	return tx.Commit()
}

// GetColonizations returns the ledger of a run in insertion order.
func (d *DB) GetColonizations(runID int64) ([]engine.ColonizationRecord, error) {
	rows, err := d.sql.Query(`
		SELECT tick, fleet_id, empire_id, body_id, node_id, colonists, outcome
		FROM colonization_events WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query colonizations: %w", err)
	}
	defer rows.Close()

	var out []engine.ColonizationRecord
	for rows.Next() {
		var (
			r                 engine.ColonizationRecord
			fleet, body, node uint32
			empire            uint16
			outcome           string
		)
		if err := rows.Scan(&r.Tick, &fleet, &empire, &body, &node, &r.Colonists, &outcome); err != nil {
			return nil, fmt.Errorf("scan colonization: %w", err)
		}
		r.Fleet = engine.FleetID(fleet)
		r.Empire = galaxy.EmpireID(empire)
		r.Body = galaxy.BodyID(body)
		r.Node = graph.NodeID(node)
		r.Outcome = engine.Outcome(outcome)
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertEmpireSnapshots stores one snapshot row per empire.
func (d *DB) InsertEmpireSnapshots(runID int64, snaps []engine.EmpireSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO empire_snapshots (
		run_id, tick, empire_id, name, systems, colonies, population, fleets
	) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare snapshots: %w", err)
	}
	defer stmt.Close()

	for _, s := range snaps {
		if _, err := stmt.Exec(runID, s.Tick, s.Empire, s.Name, s.Systems, s.Colonies, s.Population, s.Fleets); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	return tx.Commit()
}

// GetEmpireSnapshots returns a run's snapshots ordered by tick, then empire.
func (d *DB) GetEmpireSnapshots(runID int64) ([]engine.EmpireSnapshot, error) {
	rows, err := d.sql.Query(`
		SELECT tick, empire_id, name, systems, colonies, population, fleets
		FROM empire_snapshots WHERE run_id = ? ORDER BY tick, empire_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []engine.EmpireSnapshot
	for rows.Next() {
		var s engine.EmpireSnapshot
		var empire uint16
		if err := rows.Scan(&s.Tick, &empire, &s.Name, &s.Systems, &s.Colonies, &s.Population, &s.Fleets); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Empire = galaxy.EmpireID(empire)
		out = append(out, s)
	}
	return out, rows.Err()
}

// RunRecorder writes a simulation's output under one run id.
type RunRecorder struct {
	db    *DB
	runID int64
}

// Recorder returns an engine.Recorder bound to runID.
func (d *DB) Recorder(runID int64) *RunRecorder {
	return &RunRecorder{db: d, runID: runID}
}

// RunID returns the run the recorder writes to.
func (r *RunRecorder) RunID() int64 { return r.runID }

func (r *RunRecorder) RecordColonizations(records []engine.ColonizationRecord) error {
	return r.db.InsertColonizations(r.runID, records)
}

func (r *RunRecorder) RecordSnapshots(snaps []engine.EmpireSnapshot) error {
	return r.db.InsertEmpireSnapshots(r.runID, snaps)
}

var _ engine.Recorder = (*RunRecorder)(nil)
