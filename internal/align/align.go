// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package align implements pairwise sequence alignment over ordered
// symbol sequences. The approximate fingerprint matcher uses it to
// score how much ordered structure two fingerprints share.
package align

// Similarity scores a pair of symbols. It must be symmetric.
type Similarity func(a, b string) float64

// Exact is the identity similarity: 1 for equal symbols, 0 otherwise.
func Exact(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return 0.0
}

// Aligner computes global alignment scores by dynamic programming.
// With the Exact similarity and a zero gap penalty the score equals the
// length of the longest common subsequence.
type Aligner struct {
	similarity Similarity
	gap        float64
}

// New creates an Aligner with the given symbol similarity and gap
// penalty.
func New(similarity Similarity, gap float64) *Aligner {
	return &Aligner{similarity: similarity, gap: gap}
}

// Align returns the alignment score between two symbol sequences. The
// score is bounded by min(len(a), len(b)) for similarities in [0,1].
func (al *Aligner) Align(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	// Two-row DP table. prev[j] is the score of aligning a[:i] with b[:j].
	prev := make([]float64, len(b)+1)
	curr := make([]float64, len(b)+1)

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			match := prev[j] + al.similarity(a[i], b[j])
			del := prev[j+1] + al.gap
			ins := curr[j] + al.gap

			best := match
			if del > best {
				best = del
			}
			if ins > best {
				best = ins
			}
			curr[j+1] = best
		}
		prev, curr = curr, prev
		curr[0] = 0
	}
	return prev[len(b)]
}
