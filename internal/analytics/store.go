// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package analytics persists fingerprint observations to SQLite for
// offline review. The store sits off the hot path: the pipeline batches
// observations and flushes them periodically.
package analytics

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Observation is one fingerprinted flow.
type Observation struct {
	Timestamp   time.Time `json:"timestamp"`
	SrcIP       string    `json:"src_ip"`
	DstIP       string    `json:"dst_ip"`
	SrcPort     int       `json:"src_port"`
	DstPort     int       `json:"dst_port"`
	ServerName  string    `json:"server_name,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	Approx      string    `json:"approx,omitempty"`
	Process     string    `json:"process,omitempty"`
	Score       float64   `json:"score,omitempty"`
}

// FingerprintCount aggregates sightings per fingerprint.
type FingerprintCount struct {
	Fingerprint string `json:"fingerprint"`
	Count       int64  `json:"count"`
}

// Store handles persistence of observations to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the observation database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics db: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		observed_at INTEGER NOT NULL, -- Unix timestamp
		src_ip TEXT,
		dst_ip TEXT,
		src_port INTEGER,
		dst_port INTEGER,
		server_name TEXT,
		fingerprint TEXT NOT NULL,
		approx TEXT,
		process TEXT,
		score REAL
	);
	CREATE INDEX IF NOT EXISTS idx_observations_time ON observations(observed_at);
	CREATE INDEX IF NOT EXISTS idx_observations_fp ON observations(fingerprint);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordObservations persists a batch of observations in one
// transaction.
func (s *Store) RecordObservations(observations []Observation) error {
	if len(observations) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO observations (observed_at, src_ip, dst_ip, src_port, dst_port, server_name, fingerprint, approx, process, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, obs := range observations {
		_, err := stmt.Exec(
			obs.Timestamp.Unix(),
			obs.SrcIP,
			obs.DstIP,
			obs.SrcPort,
			obs.DstPort,
			obs.ServerName,
			obs.Fingerprint,
			obs.Approx,
			obs.Process,
			obs.Score,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// TopFingerprints returns the most-seen fingerprints since the given
// time.
func (s *Store) TopFingerprints(since time.Time, limit int) ([]FingerprintCount, error) {
	rows, err := s.db.Query(`
		SELECT fingerprint, COUNT(*) AS n
		FROM observations
		WHERE observed_at >= ?
		GROUP BY fingerprint
		ORDER BY n DESC
		LIMIT ?
	`, since.Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FingerprintCount
	for rows.Next() {
		var fc FingerprintCount
		if err := rows.Scan(&fc.Fingerprint, &fc.Count); err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

// ObservationCount returns the total number of stored observations.
func (s *Store) ObservationCount() (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM observations`).Scan(&n)
	return n, err
}
