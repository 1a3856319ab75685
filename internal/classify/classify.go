// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package classify derives the contextual feature classes the
// identification engine scores against: destination ASN, hostname
// domain and destination port application. Every lookup is total; a
// miss returns "unknown" rather than an error.
package classify

import (
	"net"
	"strconv"

	"github.com/oschwald/geoip2-golang"

	"grimm.is/glasswing/internal/logging"
)

// UnknownClass is the class returned when no lookup applies.
const UnknownClass = "unknown"

// NoHostname is the domain/TLD class recorded for flows without an SNI
// hostname; it matches the class key the database uses for such flows.
const NoHostname = "None"

// Classifiers bundles the contextual feature lookups.
type Classifiers struct {
	logger *logging.Logger
	asnDB  *geoip2.Reader
}

// New opens the MaxMind ASN database at asnDBPath. An empty path or an
// unreadable database degrades ASN classification to "unknown" instead
// of failing: contextual features are advisory, not required.
func New(asnDBPath string, logger *logging.Logger) *Classifiers {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	c := &Classifiers{logger: logger}

	if asnDBPath == "" {
		logger.Warn("No ASN database configured, ASN classification disabled")
		return c
	}
	db, err := geoip2.Open(asnDBPath)
	if err != nil {
		logger.Warn("Failed to open ASN database, ASN classification disabled",
			"path", asnDBPath, "error", err)
		return c
	}
	c.asnDB = db
	logger.Info("ASN database loaded", "path", asnDBPath)
	return c
}

// Close releases the underlying MaxMind reader.
func (c *Classifiers) Close() {
	if c.asnDB != nil {
		c.asnDB.Close()
	}
}

// ASN returns the autonomous system number of addr as a decimal string,
// or "unknown".
func (c *Classifiers) ASN(addr string) string {
	if c.asnDB == nil {
		return UnknownClass
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return UnknownClass
	}
	rec, err := c.asnDB.ASN(ip)
	if err != nil || rec == nil || rec.AutonomousSystemNumber == 0 {
		return UnknownClass
	}
	return strconv.FormatUint(uint64(rec.AutonomousSystemNumber), 10)
}
