// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package protocol defines the closed parser interface the capture
// pipeline fans payloads out to. New protocol parsers (TCP, HTTP,
// server-side TLS) plug in here without touching the pipeline.
package protocol

// Context carries the side fields a parser extracted beyond the
// fingerprint itself.
type Context struct {
	ServerName string `json:"server_name,omitempty"`
}

// Result is a successful fingerprint extraction for one payload.
type Result struct {
	// Protocol names the fingerprint namespace, e.g. "tls".
	Protocol string
	// Fingerprint is the canonical fingerprint string.
	Fingerprint string
	// Approx is the known fingerprint this one was approximately
	// matched to, when resolution went through the matcher.
	Approx string
	// Context holds extracted side fields, nil when there are none.
	Context *Context
}

// Parser turns one TCP payload into a fingerprint result. ok=false
// means the payload is not this parser's protocol or could not be
// resolved; it is never an error.
type Parser interface {
	Proto() string
	Fingerprint(payload []byte) (*Result, bool)
}
