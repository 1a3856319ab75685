// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package fpdb holds the in-memory fingerprint database: exact lookup
// over records loaded once at startup, plus the append-only runtime
// entries the approximate matcher and the miss path create.
package fpdb

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"

	"github.com/klauspost/compress/gzip"

	"grimm.is/glasswing/internal/align"
	"grimm.is/glasswing/internal/errors"
	"grimm.is/glasswing/internal/logging"
	"grimm.is/glasswing/internal/tlsfp"
)

// Long database lines (thousands of process entries) exceed the
// default bufio.Scanner limit.
const maxRecordLine = 64 * 1024 * 1024

// Database is the shared fingerprint store. Reads are safe concurrently
// with the append-only inserts performed on the miss path.
type Database struct {
	logger *logging.Logger

	mu             sync.RWMutex
	records        map[string]*Record
	malwareCapable bool

	// Structural parameter sets, cached per fingerprint string on
	// first use. Entries are never invalidated: equal keys always
	// yield equal parameter sets.
	paramsMu sync.RWMutex
	params   map[string][2][]string

	aligner *align.Aligner
}

// Load reads a gzip-compressed, newline-delimited JSON record stream
// and indexes it by fingerprint string. A load failure is fatal to the
// caller: the system cannot identify anything without its database.
func Load(path string, logger *logging.Logger) (*Database, error) {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "opening fingerprint database %s", path)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "decompressing fingerprint database %s", path)
	}
	defer gz.Close()

	db := &Database{
		logger:         logger,
		records:        make(map[string]*Record),
		malwareCapable: true,
		params:         make(map[string][2][]string),
		aligner:        align.New(align.Exact, 0.0),
	}

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 1024*1024), maxRecordLine)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, errors.Wrapf(err, errors.KindValidation, "fingerprint database line %d", lineNo)
		}
		for i := range rec.ProcessInfo {
			if rec.ProcessInfo[i].Malware == nil {
				db.malwareCapable = false
			}
		}
		db.records[rec.StrRepr] = &rec
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "reading fingerprint database %s", path)
	}

	logger.Info("Fingerprint database loaded",
		"path", path, "records", len(db.records), "malware_capable", db.malwareCapable)
	return db, nil
}

// NewEmpty creates a database with no records, for tests and for
// running without a persisted database.
func NewEmpty(logger *logging.Logger) *Database {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	return &Database{
		logger:         logger,
		records:        make(map[string]*Record),
		malwareCapable: true,
		params:         make(map[string][2][]string),
		aligner:        align.New(align.Exact, 0.0),
	}
}

// MalwareCapable reports whether every process entry loaded carried a
// malware annotation. Identification only aggregates malware
// probability when this holds.
func (db *Database) MalwareCapable() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.malwareCapable
}

// Size returns the number of records currently in the database.
func (db *Database) Size() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.records)
}

// Lookup returns the record stored under the exact fingerprint string.
func (db *Database) Lookup(key string) (*Record, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	rec, ok := db.records[key]
	return rec, ok
}

// Resolve follows the alias chain from key to the record whose process
// entries are authoritative. A dangling alias target degrades to "no
// match" rather than failing.
func (db *Database) Resolve(key string) (*Record, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rec, ok := db.records[key]
	if !ok {
		return nil, false
	}
	if rec.ApproxStr != "" && rec.ApproxStr != key {
		target, ok := db.records[rec.ApproxStr]
		if !ok {
			return nil, false
		}
		return target, true
	}
	return rec, true
}

// InsertUnknown synthesizes a placeholder record for a fingerprint with
// no exact or approximate match, so repeated sightings of the same
// novel fingerprint stay O(1). Insert-if-absent: an existing record
// under the key is never overwritten.
func (db *Database) InsertUnknown(key string) *Record {
	db.mu.Lock()
	defer db.mu.Unlock()

	if existing, ok := db.records[key]; ok {
		return existing
	}

	rec := &Record{
		StrRepr:     key,
		TotalCount:  1,
		Synthesized: true,
	}
	malware := MalwareFlag(false)
	rec.ProcessInfo = []ProcessInfo{{
		Process:                 "Unknown",
		SHA256:                  "Unknown",
		Count:                   1,
		Malware:                 &malware,
		ClassesIPAS:             map[string]int64{},
		ClassesHostnameDomains:  map[string]int64{},
		ClassesPortApplications: map[string]int64{},
	}}
	if lit, ok := tlsfp.ParseLiteral([]byte(key)); ok {
		rec.MaxImplementationDate, rec.MinImplementationDate = tlsfp.ImplementationDates(lit.Ciphers)
	}

	db.records[key] = rec
	db.logger.Debug("Synthesized unknown fingerprint record", "fingerprint", key)
	return rec
}

// InsertAlias records that key approximately matched target, sharing
// the target's process entries. Inserting an alias for a key that
// already resolves is a no-op; an existing non-alias record is never
// overwritten.
func (db *Database) InsertAlias(key, target string) *Record {
	db.mu.Lock()
	defer db.mu.Unlock()

	if existing, ok := db.records[key]; ok {
		return existing
	}
	tgt, ok := db.records[target]
	if !ok {
		// Matcher and insert race on a target that was never real:
		// degrade to nothing rather than fabricate a record.
		return nil
	}

	rec := &Record{
		StrRepr:     key,
		Source:      tgt.Source,
		TotalCount:  tgt.TotalCount,
		ProcessInfo: tgt.ProcessInfo,
		ApproxStr:   target,
	}
	db.records[key] = rec
	db.logger.Debug("Inserted approximate alias", "fingerprint", key, "target", target)
	return rec
}

// keys snapshots the current key set for the matcher's pre-filter scan.
func (db *Database) keys() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]string, 0, len(db.records))
	for k := range db.records {
		out = append(out, k)
	}
	return out
}

// sourceOf returns the record's source tags, for source-filtered
// matching.
func (db *Database) sourceOf(key string) []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if rec, ok := db.records[key]; ok {
		return rec.Source
	}
	return nil
}
