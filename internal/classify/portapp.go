// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package classify

// portApplications maps well-known destination ports to the application
// class recorded in the fingerprint database.
var portApplications = map[uint16]string{
	443:  "https",
	448:  "database",
	465:  "email",
	563:  "nntp",
	585:  "email",
	614:  "shell",
	636:  "ldap",
	989:  "ftp",
	990:  "ftp",
	991:  "nas",
	992:  "telnet",
	993:  "email",
	994:  "irc",
	995:  "email",
	1443: "alt-https",
	2376: "docker",
	8001: "tor",
	8443: "alt-https",
	9000: "tor",
	9001: "tor",
	9002: "tor",
	9101: "tor",
}

// PortApplication returns the application class for a destination port,
// or "unknown".
func PortApplication(port uint16) string {
	if app, ok := portApplications[port]; ok {
		return app
	}
	return UnknownClass
}
