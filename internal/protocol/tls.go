// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package protocol

import (
	"grimm.is/glasswing/internal/fpdb"
	"grimm.is/glasswing/internal/logging"
	"grimm.is/glasswing/internal/metrics"
	"grimm.is/glasswing/internal/tlsfp"
)

// TLSParser resolves ClientHello payloads against the fingerprint
// database, falling back to approximate matching on a miss and caching
// the outcome so later sightings of the same fingerprint are O(1).
type TLSParser struct {
	db      *fpdb.Database
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewTLSParser creates the TLS ClientHello parser. metrics may be nil.
func NewTLSParser(db *fpdb.Database, m *metrics.Metrics, logger *logging.Logger) *TLSParser {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	return &TLSParser{db: db, metrics: m, logger: logger}
}

// Proto implements Parser.
func (p *TLSParser) Proto() string { return "tls" }

// Fingerprint implements Parser. Resolution order: canonical encoding,
// exact lookup, approximate match, unknown synthesis. Unknown
// placeholder records never produce a result, so repeated sightings of
// an unresolvable fingerprint stay silent and cheap.
func (p *TLSParser) Fingerprint(payload []byte) (*Result, bool) {
	fpBytes, serverName, ok := tlsfp.Encode(payload)
	if !ok {
		return nil, false
	}
	fpStr := string(fpBytes)

	approx := ""
	record, found := p.db.Lookup(fpStr)
	switch {
	case !found:
		lit, ok := tlsfp.ParseLiteral(fpBytes)
		if !ok {
			return nil, false
		}
		match, ok := p.db.FindApprox(lit)
		if !ok {
			p.db.InsertUnknown(fpStr)
			p.count(func(m *metrics.Metrics) { m.UnknownFingerprints.Inc() })
			p.logger.Debug("No approximate match for novel fingerprint", "fingerprint", fpStr)
			return nil, false
		}
		if p.db.InsertAlias(fpStr, match) == nil {
			return nil, false
		}
		approx = match
		p.count(func(m *metrics.Metrics) { m.ApproxMatches.Inc() })

	case record.Synthesized:
		// Previously seen and still unresolvable.
		return nil, false

	default:
		approx = record.ApproxStr
		p.count(func(m *metrics.Metrics) { m.ExactMatches.Inc() })
	}

	result := &Result{
		Protocol:    "tls",
		Fingerprint: fpStr,
		Approx:      approx,
	}
	if serverName != "" {
		result.Context = &Context{ServerName: serverName}
	}
	return result, true
}

func (p *TLSParser) count(f func(*metrics.Metrics)) {
	if p.metrics != nil {
		f(p.metrics)
	}
}
