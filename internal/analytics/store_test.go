// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package analytics

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "obs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndCount(t *testing.T) {
	s := openTestStore(t)

	now := time.Now()
	obs := []Observation{
		{Timestamp: now, SrcIP: "10.0.0.1", DstIP: "93.184.216.34", SrcPort: 51000, DstPort: 443,
			ServerName: "example.com", Fingerprint: "(0303)(c02b)", Process: "firefox", Score: 0.9},
		{Timestamp: now, SrcIP: "10.0.0.2", DstIP: "93.184.216.34", SrcPort: 51001, DstPort: 443,
			Fingerprint: "(0303)(c02b)"},
		{Timestamp: now, SrcIP: "10.0.0.3", DstIP: "1.1.1.1", SrcPort: 51002, DstPort: 443,
			Fingerprint: "(0303)(1301)"},
	}
	if err := s.RecordObservations(obs); err != nil {
		t.Fatalf("RecordObservations: %v", err)
	}

	n, err := s.ObservationCount()
	if err != nil {
		t.Fatalf("ObservationCount: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestTopFingerprints(t *testing.T) {
	s := openTestStore(t)

	now := time.Now()
	var obs []Observation
	for i := 0; i < 3; i++ {
		obs = append(obs, Observation{Timestamp: now, Fingerprint: "(0303)(c02b)"})
	}
	obs = append(obs, Observation{Timestamp: now, Fingerprint: "(0303)(1301)"})
	if err := s.RecordObservations(obs); err != nil {
		t.Fatalf("RecordObservations: %v", err)
	}

	top, err := s.TopFingerprints(now.Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("TopFingerprints: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].Fingerprint != "(0303)(c02b)" || top[0].Count != 3 {
		t.Errorf("top[0] = %+v, want (0303)(c02b) x3", top[0])
	}
}

func TestRecordEmptyBatch(t *testing.T) {
	s := openTestStore(t)
	if err := s.RecordObservations(nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}
