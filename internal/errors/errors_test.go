// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindInternal, "internal"},
		{KindValidation, "validation"},
		{KindNotFound, "not_found"},
		{KindUnavailable, "unavailable"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, KindInternal, "nope") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, KindInternal, "nope %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestWrapPreservesChain(t *testing.T) {
	base := stderrors.New("root cause")
	err := Wrap(base, KindNotFound, "lookup failed")

	if !stderrors.Is(err, base) {
		t.Error("wrapped error should match the base via errors.Is")
	}
	if err.Error() != "lookup failed: root cause" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !IsNotFound(err) {
		t.Error("expected IsNotFound to be true")
	}
}

func TestKindOfDoubleWrap(t *testing.T) {
	inner := New(KindValidation, "bad record")
	outer := fmt.Errorf("loading database: %w", inner)

	if KindOf(outer) != KindValidation {
		t.Errorf("KindOf through fmt wrap = %v, want validation", KindOf(outer))
	}
	if KindOf(stderrors.New("plain")) != KindUnknown {
		t.Error("plain errors should report KindUnknown")
	}
}
