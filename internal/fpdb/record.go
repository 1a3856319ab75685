// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fpdb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MalwareFlag unmarshals the database's malware annotation, which
// appears as either a JSON bool or a 0/1 number depending on the
// database generation.
type MalwareFlag bool

func (m *MalwareFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("1")):
		*m = true
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("0")):
		*m = false
	default:
		return fmt.Errorf("malware flag: unexpected value %s", data)
	}
	return nil
}

func (m MalwareFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(m))
}

// ProcessInfo is one per-process observation entry inside a fingerprint
// record. The classes maps count contextual feature sightings for the
// process: destination ASN, hostname domain and destination port
// application.
type ProcessInfo struct {
	Process                 string           `json:"process"`
	SHA256                  string           `json:"sha256"`
	Count                   int64            `json:"count"`
	Malware                 *MalwareFlag     `json:"malware,omitempty"`
	ClassesIPAS             map[string]int64 `json:"classes_ip_as"`
	ClassesHostnameDomains  map[string]int64 `json:"classes_hostname_domains"`
	ClassesPortApplications map[string]int64 `json:"classes_port_applications"`
}

// IsMalware reports the malware annotation, defaulting to false when
// the entry carries none.
func (p *ProcessInfo) IsMalware() bool {
	return p.Malware != nil && bool(*p.Malware)
}

// Record is one fingerprint database entry, keyed by its canonical
// fingerprint string.
type Record struct {
	StrRepr     string        `json:"str_repr"`
	Source      []string      `json:"source,omitempty"`
	TotalCount  int64         `json:"total_count"`
	ProcessInfo []ProcessInfo `json:"process_info"`

	// ApproxStr names the fingerprint this record was approximately
	// matched to, when the record is a synthesized alias.
	ApproxStr string `json:"approx_str,omitempty"`

	// Implementation-date bounds, set on synthesized unknown records.
	MaxImplementationDate string `json:"max_implementation_date,omitempty"`
	MinImplementationDate string `json:"min_implementation_date,omitempty"`

	// Synthesized marks runtime "Unknown" placeholder records; the
	// pipeline treats them as unresolved and emits nothing for them.
	Synthesized bool `json:"-"`
}
