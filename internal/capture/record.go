// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package capture

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
	"time"

	"grimm.is/glasswing/internal/identify"
	"grimm.is/glasswing/internal/protocol"
	"grimm.is/glasswing/internal/tlsfp"
)

// Fingerprints groups the fingerprint strings attached to one flow.
// The approx variant is present only when resolution went through the
// approximate matcher.
type Fingerprints struct {
	TLS       string `json:"tls,omitempty"`
	TLSApprox string `json:"tls_approx,omitempty"`
	JA3       string `json:"ja3,omitempty"`
}

// FlowRecord is the per-flow output record. Field order is significant
// for downstream consumers and is preserved by the struct layout.
type FlowRecord struct {
	SrcIP        string            `json:"src_ip"`
	DstIP        string            `json:"dst_ip"`
	SrcPort      uint16            `json:"src_port"`
	DstPort      uint16            `json:"dst_port"`
	Protocol     uint8             `json:"protocol"`
	EventStart   string            `json:"event_start"`
	Context      *protocol.Context `json:"context,omitempty"`
	Fingerprints Fingerprints      `json:"fingerprints"`
	TLS          *tlsfp.Readable   `json:"tls,omitempty"`
	Analysis     *identify.Result  `json:"analysis,omitempty"`
}

// formatEventStart renders a capture timestamp the way downstream
// consumers expect: UTC, space-separated date and time, microseconds
// only when non-zero.
func formatEventStart(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.000000")
}

// RecordWriter emits newline-delimited JSON records, flushing after
// every record so output can be consumed as a stream.
type RecordWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewRecordWriter wraps w.
func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{w: bufio.NewWriter(w)}
}

// Write marshals one flow record as a JSON line.
func (rw *RecordWriter) Write(rec *FlowRecord) error {
	return rw.WriteValue(rec)
}

// WriteValue marshals any value as a JSON line; the raw-record lookup
// path uses it to print database entries directly.
func (rw *RecordWriter) WriteValue(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	rw.mu.Lock()
	defer rw.mu.Unlock()
	if _, err := rw.w.Write(data); err != nil {
		return err
	}
	if err := rw.w.WriteByte('\n'); err != nil {
		return err
	}
	return rw.w.Flush()
}
