// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package classify

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// DomainInfo splits a hostname into its registrable domain (eTLD+1) and
// its public suffix. An empty hostname maps to the NoHostname class;
// hostnames the public suffix list cannot place fall back to the last
// two labels.
func DomainInfo(hostname string) (domain, tld string) {
	if hostname == "" {
		return NoHostname, NoHostname
	}
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))

	suffix, _ := publicsuffix.PublicSuffix(hostname)
	if d, err := publicsuffix.EffectiveTLDPlusOne(hostname); err == nil {
		return d, suffix
	}

	labels := strings.Split(hostname, ".")
	if len(labels) >= 2 {
		return labels[len(labels)-2] + "." + labels[len(labels)-1], labels[len(labels)-1]
	}
	return hostname, hostname
}
