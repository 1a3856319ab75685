// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tlsfp

import (
	"reflect"
	"testing"
)

func TestParseLiteral(t *testing.T) {
	lit, ok := ParseLiteral([]byte("(0303)(c02bc02f)((0000)(000a000800060a0a001d0017)(002d00020101))"))
	if !ok {
		t.Fatal("ParseLiteral rejected a valid fingerprint")
	}
	if lit.Version != "0303" {
		t.Errorf("Version = %q", lit.Version)
	}
	if lit.Ciphers != "c02bc02f" {
		t.Errorf("Ciphers = %q", lit.Ciphers)
	}
	want := []string{"0000", "000a000800060a0a001d0017", "002d00020101"}
	if !reflect.DeepEqual(lit.Extensions, want) {
		t.Errorf("Extensions = %v, want %v", lit.Extensions, want)
	}
}

func TestParseLiteralShortForm(t *testing.T) {
	lit, ok := ParseLiteral([]byte("(0303)(c02b)"))
	if !ok {
		t.Fatal("ParseLiteral rejected a short-form fingerprint")
	}
	if len(lit.Extensions) != 0 {
		t.Errorf("Extensions = %v, want none", lit.Extensions)
	}
}

func TestParseLiteralRejects(t *testing.T) {
	cases := []string{
		"",
		"(0303)",          // missing cipher group
		"(0303)(c02b",     // unbalanced
		"(0303)(c02b))",   // trailing garbage
		"0303(c02b)",      // does not start with a group
	}
	for _, fp := range cases {
		if _, ok := ParseLiteral([]byte(fp)); ok {
			t.Errorf("ParseLiteral accepted %q", fp)
		}
	}
}

func TestSequence(t *testing.T) {
	lit := Literal{
		Version:    "0303",
		Ciphers:    "1301c02b",
		Extensions: []string{"0000", "000b00020100"},
	}
	want := []string{"1301", "c02b", "ext_0000::", "ext_000b::00020100"}
	if got := Sequence(lit); !reflect.DeepEqual(got, want) {
		t.Errorf("Sequence = %v, want %v", got, want)
	}
}

func TestParamsFallsBackToTokens(t *testing.T) {
	// Too few tokens for 4-grams: the token lists themselves are the
	// parameter sets.
	lit := Literal{Ciphers: "1301c02b", Extensions: []string{"0000"}}
	params := Params(lit)
	if want := []string{"1301", "c02b"}; !reflect.DeepEqual(params[0], want) {
		t.Errorf("cipher params = %v, want %v", params[0], want)
	}
	if want := []string{"ext_0000::"}; !reflect.DeepEqual(params[1], want) {
		t.Errorf("extension params = %v, want %v", params[1], want)
	}
}

func TestParamsNgrams(t *testing.T) {
	lit := Literal{Ciphers: "13011302130313041305c02b"}
	params := Params(lit)
	// Six tokens yield two 4-grams over sliding windows.
	want := []string{"1301130213031304", "1302130313041305"}
	if !reflect.DeepEqual(params[0], want) {
		t.Errorf("cipher params = %v, want %v", params[0], want)
	}
}

func TestImplementationDates(t *testing.T) {
	max, min := ImplementationDates("0004c02b1301")
	if max != "2018-08" || min != "1999-01" {
		t.Errorf("dates = (%s, %s), want (2018-08, 1999-01)", max, min)
	}

	max, min = ImplementationDates("dead")
	if max != "unknown" || min != "unknown" {
		t.Errorf("dates = (%s, %s), want unknown", max, min)
	}
}

func TestHumanReadable(t *testing.T) {
	readable, ok := HumanReadable([]byte("(0303)(c02b)((0000)(ffee))"))
	if !ok {
		t.Fatal("HumanReadable rejected a valid fingerprint")
	}
	if readable.Version != "TLS 1.2" {
		t.Errorf("Version = %q", readable.Version)
	}
	if len(readable.CipherSuites) != 1 || readable.CipherSuites[0] != "TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256" {
		t.Errorf("CipherSuites = %v", readable.CipherSuites)
	}
	if len(readable.Extensions) != 2 {
		t.Fatalf("Extensions = %v", readable.Extensions)
	}
	if readable.Extensions[0].Name != "server_name" {
		t.Errorf("extension name = %q", readable.Extensions[0].Name)
	}
}
