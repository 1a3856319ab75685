// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package align

import "testing"

func TestAlignIdentical(t *testing.T) {
	al := New(Exact, 0.0)
	seq := []string{"c02b", "c02f", "009e"}

	if got := al.Align(seq, seq); got != 3.0 {
		t.Errorf("Align(x, x) = %v, want 3", got)
	}
}

func TestAlignDisjoint(t *testing.T) {
	al := New(Exact, 0.0)
	a := []string{"0001", "0002"}
	b := []string{"0003", "0004"}

	if got := al.Align(a, b); got != 0.0 {
		t.Errorf("Align(disjoint) = %v, want 0", got)
	}
}

func TestAlignSubsequence(t *testing.T) {
	al := New(Exact, 0.0)
	a := []string{"0001", "0002", "0003", "0004"}
	b := []string{"0002", "0004"}

	// b is an ordered subsequence of a.
	if got := al.Align(a, b); got != 2.0 {
		t.Errorf("Align(subseq) = %v, want 2", got)
	}
}

func TestAlignReordered(t *testing.T) {
	al := New(Exact, 0.0)
	a := []string{"0001", "0002", "0003"}
	b := []string{"0003", "0002", "0001"}

	// Only one symbol of a reversed sequence can stay aligned.
	if got := al.Align(a, b); got != 1.0 {
		t.Errorf("Align(reversed) = %v, want 1", got)
	}
}

func TestAlignEmpty(t *testing.T) {
	al := New(Exact, 0.0)
	if got := al.Align(nil, []string{"0001"}); got != 0.0 {
		t.Errorf("Align(nil, x) = %v, want 0", got)
	}
}

func TestAlignSymmetric(t *testing.T) {
	al := New(Exact, 0.0)
	a := []string{"0001", "0002", "0003", "0005"}
	b := []string{"0002", "0003", "0004"}

	ab := al.Align(a, b)
	ba := al.Align(b, a)
	if ab != ba {
		t.Errorf("alignment not symmetric: %v vs %v", ab, ba)
	}
	if ab != 2.0 {
		t.Errorf("Align = %v, want 2", ab)
	}
}
