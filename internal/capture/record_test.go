// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package capture

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"grimm.is/glasswing/internal/protocol"
)

func TestFlowRecordFieldOrder(t *testing.T) {
	rec := &FlowRecord{
		SrcIP:      "10.0.0.2",
		DstIP:      "93.184.216.34",
		SrcPort:    51044,
		DstPort:    443,
		Protocol:   6,
		EventStart: "2026-08-24 12:00:00.000123",
		Context:    &protocol.Context{ServerName: "example.com"},
		Fingerprints: Fingerprints{
			TLS:       "(0303)(c02b)((0000))",
			TLSApprox: "(0303)(c02bc02f)((0000))",
			JA3:       "66918128f1b9b03303d77c6f2eefd128",
		},
	}

	var buf bytes.Buffer
	w := NewRecordWriter(&buf)
	if err := w.Write(rec); err != nil {
		t.Fatal(err)
	}

	line := buf.String()
	if !strings.HasSuffix(line, "\n") {
		t.Error("record line is not newline-terminated")
	}

	// Consumers depend on the field order.
	order := []string{`"src_ip"`, `"dst_ip"`, `"src_port"`, `"dst_port"`, `"protocol"`, `"event_start"`, `"context"`, `"fingerprints"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(line, key)
		if idx < 0 {
			t.Fatalf("missing key %s in %s", key, line)
		}
		if idx < last {
			t.Errorf("key %s out of order in %s", key, line)
		}
		last = idx
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if _, present := decoded["tls"]; present {
		t.Error("empty human-readable block should be omitted")
	}
	if _, present := decoded["analysis"]; present {
		t.Error("empty analysis block should be omitted")
	}
	fps := decoded["fingerprints"].(map[string]any)
	if fps["tls_approx"] != "(0303)(c02bc02f)((0000))" {
		t.Errorf("tls_approx = %v", fps["tls_approx"])
	}
}

func TestFormatEventStart(t *testing.T) {
	whole := time.Date(2026, 8, 24, 9, 30, 1, 0, time.UTC)
	if got := formatEventStart(whole); got != "2026-08-24 09:30:01" {
		t.Errorf("formatEventStart = %q", got)
	}

	micros := time.Date(2026, 8, 24, 9, 30, 1, 123000, time.UTC)
	if got := formatEventStart(micros); got != "2026-08-24 09:30:01.000123" {
		t.Errorf("formatEventStart = %q", got)
	}

	// Non-UTC input renders in UTC.
	est := time.FixedZone("EST", -5*3600)
	local := time.Date(2026, 8, 24, 9, 30, 1, 0, est)
	if got := formatEventStart(local); got != "2026-08-24 14:30:01" {
		t.Errorf("formatEventStart = %q", got)
	}
}
