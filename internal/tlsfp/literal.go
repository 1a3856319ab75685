// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tlsfp

import (
	"sort"
	"strings"
)

// Literal is the parsed, structured form of a fingerprint string. It is
// derived deterministically from the string, used only for similarity
// computation, and never persisted.
type Literal struct {
	Version    string
	Ciphers    string
	Extensions []string
}

// ParseLiteral parses the nested parenthesized grammar of a fingerprint
// string back into its structured form.
func ParseLiteral(fp []byte) (Literal, bool) {
	groups, rest, ok := parseGroups(string(fp))
	if !ok || rest != "" || len(groups) < 2 {
		return Literal{}, false
	}

	lit := Literal{
		Version: groups[0].text,
		Ciphers: groups[1].text,
	}
	if len(groups) > 2 {
		for _, ext := range groups[2].children {
			lit.Extensions = append(lit.Extensions, ext.text)
		}
	}
	return lit, true
}

type group struct {
	text     string
	children []group
}

// parseGroups consumes a sequence of balanced parenthesized groups.
func parseGroups(s string) ([]group, string, bool) {
	var groups []group
	for s != "" && s[0] == '(' {
		g, rest, ok := parseGroup(s)
		if !ok {
			return nil, s, false
		}
		groups = append(groups, g)
		s = rest
	}
	return groups, s, true
}

func parseGroup(s string) (group, string, bool) {
	if s == "" || s[0] != '(' {
		return group{}, s, false
	}
	s = s[1:]

	var g group
	var text strings.Builder
	for s != "" {
		switch s[0] {
		case ')':
			g.text = text.String()
			return g, s[1:], true
		case '(':
			child, rest, ok := parseGroup(s)
			if !ok {
				return group{}, s, false
			}
			g.children = append(g.children, child)
			s = rest
		default:
			text.WriteByte(s[0])
			s = s[1:]
		}
	}
	return group{}, s, false // unbalanced
}

// Sequence flattens a literal fingerprint into the ordered symbol
// sequence used for alignment: one symbol per offered cipher suite,
// then one per extension.
func Sequence(lit Literal) []string {
	var seq []string
	for i := 0; i+4 <= len(lit.Ciphers); i += 4 {
		seq = append(seq, lit.Ciphers[i:i+4])
	}
	for _, ext := range lit.Extensions {
		seq = append(seq, extSymbol(ext))
	}
	return seq
}

func extSymbol(ext string) string {
	if len(ext) < 4 {
		return "ext_" + ext + "::"
	}
	return "ext_" + ext[:4] + "::" + ext[4:]
}

// Params computes the structural parameter sets of a literal
// fingerprint: 4-grams over the cipher-suite tokens and over the
// extension tokens. Short token lists fall back to the tokens
// themselves. The matcher uses set overlap on these for cheap
// pre-filtering.
func Params(lit Literal) [2][]string {
	var ciphers []string
	for i := 0; i+4 <= len(lit.Ciphers); i += 4 {
		ciphers = append(ciphers, lit.Ciphers[i:i+4])
	}

	var exts []string
	for _, ext := range lit.Extensions {
		exts = append(exts, extSymbol(ext))
	}

	return [2][]string{ngrams(ciphers, 4), ngrams(exts, 4)}
}

func ngrams(tokens []string, n int) []string {
	var out []string
	for i := 0; i < len(tokens)-n; i++ {
		out = append(out, strings.Join(tokens[i:i+n], ""))
	}
	if len(out) == 0 {
		return tokens
	}
	return out
}

// ImplementationDates estimates the newest and oldest implementation
// dates across a fingerprint's offered cipher suites, as "YYYY-MM"
// strings. Suites without a known date are ignored; if none are known
// both bounds are "unknown".
func ImplementationDates(ciphers string) (max, min string) {
	seen := map[string]bool{}
	var dates []string
	for i := 0; i+4 <= len(ciphers); i += 4 {
		if d, ok := cipherImplementationDates[ciphers[i:i+4]]; ok && !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return "unknown", "unknown"
	}
	sort.Strings(dates)
	return dates[len(dates)-1], dates[0]
}
