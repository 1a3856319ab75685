// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fpdb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/glasswing/internal/tlsfp"
)

// tenCiphers is ten distinct cipher-suite tokens, 0001 through 000a.
func tenCiphers() string {
	s := ""
	for i := 1; i <= 10; i++ {
		s += fmt.Sprintf("%04x", i)
	}
	return s
}

func mustLiteral(t *testing.T, fp string) tlsfp.Literal {
	t.Helper()
	lit, ok := tlsfp.ParseLiteral([]byte(fp))
	require.True(t, ok, "bad test fingerprint %q", fp)
	return lit
}

func TestFindApproxAccepts(t *testing.T) {
	db := NewEmpty(nil)
	// Same ten ciphers plus one extension: eleven aligned symbols out
	// of ten vs eleven, distance 1 - 20/21, well under the threshold.
	known := "(0303)(" + tenCiphers() + ")((0000))"
	db.InsertUnknown(known)

	query := mustLiteral(t, "(0303)("+tenCiphers()+")")
	match, ok := db.FindApprox(query)
	require.True(t, ok)
	assert.Equal(t, known, match)
}

func TestFindApproxThresholdIsStrict(t *testing.T) {
	db := NewEmpty(nil)
	// Ten tokens each, nine shared: distance is exactly 0.1, which the
	// strict threshold must reject.
	known := "(0303)(" + tenCiphers()[:36] + "00ff)"
	db.InsertUnknown(known)

	query := mustLiteral(t, "(0303)("+tenCiphers()+")")
	_, ok := db.FindApprox(query)
	assert.False(t, ok)
}

func TestFindApproxEmptyDatabase(t *testing.T) {
	db := NewEmpty(nil)
	_, ok := db.FindApprox(mustLiteral(t, "(0303)(c02b)"))
	assert.False(t, ok)
}

func TestFindApproxPrefersClosest(t *testing.T) {
	db := NewEmpty(nil)
	exact := "(0303)(" + tenCiphers() + ")"
	near := "(0303)(" + tenCiphers() + ")((0000))"
	db.InsertUnknown(exact)
	db.InsertUnknown(near)

	match, ok := db.FindApprox(mustLiteral(t, exact))
	require.True(t, ok)
	assert.Equal(t, exact, match)
}

func TestFindApproxPrefilterSurvivesNoise(t *testing.T) {
	db := NewEmpty(nil)
	near := "(0303)(" + tenCiphers() + ")((0000))"
	db.InsertUnknown(near)
	// Unrelated fingerprints share no structural tokens with the query
	// and must not displace the real candidate.
	for i := 0; i < 2*prefilterCandidates; i++ {
		db.InsertUnknown(fmt.Sprintf("(0303)(%04x%04x)", 0x9000+i, 0xa000+i))
	}

	match, ok := db.FindApprox(mustLiteral(t, "(0303)("+tenCiphers()+")"))
	require.True(t, ok)
	assert.Equal(t, near, match)
}

func TestFindApproxSourceFilter(t *testing.T) {
	db := NewEmpty(nil)
	near := "(0303)(" + tenCiphers() + ")((0000))"
	rec := db.InsertUnknown(near)
	rec.Source = []string{"enterprise"}

	query := mustLiteral(t, "(0303)("+tenCiphers()+")")

	_, ok := db.FindApproxFiltered(query, MatchOptions{SourceFilter: "malware"})
	assert.False(t, ok)

	match, ok := db.FindApproxFiltered(query, MatchOptions{SourceFilter: "enterprise"})
	require.True(t, ok)
	assert.Equal(t, near, match)
}
