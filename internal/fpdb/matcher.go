// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fpdb

import (
	"sort"

	"grimm.is/glasswing/internal/tlsfp"
)

// Matching parameters. The pre-filter bounds the number of expensive
// alignment calls per miss to a small constant; the threshold is a
// strict upper bound on accepted normalized distance.
const (
	prefilterCandidates = 10
	matchThreshold      = 0.1
)

// MatchOptions restricts the candidate set of an approximate match.
// Zero values mean no restriction.
type MatchOptions struct {
	// SourceFilter keeps only candidates whose record carries this
	// source tag.
	SourceFilter string
	// KeyFilter keeps only candidates in this set.
	KeyFilter map[string]bool
}

// FindApprox locates the known fingerprint closest to a literal
// fingerprint absent from the database. Stage one ranks all keys by
// structural token-set overlap and keeps the top candidates; stage two
// scores those by sequence alignment and accepts the best only when its
// normalized distance is strictly below the threshold.
func (db *Database) FindApprox(lit tlsfp.Literal) (string, bool) {
	return db.FindApproxFiltered(lit, MatchOptions{})
}

// FindApproxFiltered is FindApprox with candidate restrictions.
func (db *Database) FindApproxFiltered(lit tlsfp.Literal, opts MatchOptions) (string, bool) {
	target := tlsfp.Sequence(lit)
	if len(target) == 0 {
		return "", false
	}
	params := tlsfp.Params(lit)

	candidates := db.prefilter(params, opts)

	type scored struct {
		dist float64
		key  string
	}
	results := make([]scored, 0, len(candidates))
	for _, key := range candidates {
		candLit, ok := tlsfp.ParseLiteral([]byte(key))
		if !ok {
			continue
		}
		test := tlsfp.Sequence(candLit)
		if len(test) == 0 {
			continue
		}
		s := db.aligner.Align(target, test)
		dist := 1.0 - 2.0*s/float64(len(target)+len(test))
		results = append(results, scored{dist: dist, key: key})
	}
	if len(results) == 0 {
		return "", false
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].dist != results[j].dist {
			return results[i].dist < results[j].dist
		}
		return results[i].key < results[j].key
	})

	if results[0].dist < matchThreshold {
		return results[0].key, true
	}
	return "", false
}

// prefilter ranks every database key by structural overlap with the
// query's parameter sets and returns the best candidate keys.
func (db *Database) prefilter(params [2][]string, opts MatchOptions) []string {
	p0 := toSet(params[0])
	p1 := toSet(params[1])

	type scored struct {
		score float64
		key   string
	}
	var scores []scored
	for _, key := range db.keys() {
		if opts.SourceFilter != "" && !hasSource(db.sourceOf(key), opts.SourceFilter) {
			continue
		}
		if opts.KeyFilter != nil && !opts.KeyFilter[key] {
			continue
		}

		candParams, ok := db.paramsFor(key)
		if !ok {
			continue
		}
		s := setOverlap(p0, toSet(candParams[0])) + setOverlap(p1, toSet(candParams[1]))
		scores = append(scores, scored{score: s, key: key})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].key > scores[j].key
	})

	n := prefilterCandidates
	if len(scores) < n {
		n = len(scores)
	}
	out := make([]string, 0, n)
	for _, sc := range scores[:n] {
		out = append(out, sc.key)
	}
	return out
}

// paramsFor returns the cached structural parameter set for a database
// key, computing it on first use. Cache entries are never invalidated.
func (db *Database) paramsFor(key string) ([2][]string, bool) {
	db.paramsMu.RLock()
	params, ok := db.params[key]
	db.paramsMu.RUnlock()
	if ok {
		return params, true
	}

	lit, ok := tlsfp.ParseLiteral([]byte(key))
	if !ok {
		return [2][]string{}, false
	}
	params = tlsfp.Params(lit)

	db.paramsMu.Lock()
	db.params[key] = params
	db.paramsMu.Unlock()
	return params, true
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// setOverlap is |intersection| / max(1, |union|).
func setOverlap(a, b map[string]struct{}) float64 {
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union < 1 {
		union = 1
	}
	return float64(inter) / float64(union)
}

func hasSource(sources []string, want string) bool {
	for _, s := range sources {
		if s == want {
			return true
		}
	}
	return false
}
