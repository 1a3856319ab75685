// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tlsfp

// Readable is the human-oriented rendering of a fingerprint string,
// attached to output records on request.
type Readable struct {
	Version      string              `json:"version"`
	CipherSuites []string            `json:"cipher_suites"`
	Extensions   []ReadableExtension `json:"extensions,omitempty"`
}

// ReadableExtension names one extension and carries its raw encoded
// data, if the encoding policy captured any.
type ReadableExtension struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

// HumanReadable renders a fingerprint string with protocol names in
// place of code points. Unknown code points keep their hex form.
func HumanReadable(fp []byte) (Readable, bool) {
	lit, ok := ParseLiteral(fp)
	if !ok {
		return Readable{}, false
	}

	r := Readable{Version: versionName(lit.Version)}
	for i := 0; i+4 <= len(lit.Ciphers); i += 4 {
		r.CipherSuites = append(r.CipherSuites, cipherName(lit.Ciphers[i:i+4]))
	}
	for _, ext := range lit.Extensions {
		if len(ext) < 4 {
			continue
		}
		re := ReadableExtension{
			Name: extensionName(ext[:4]),
			Type: ext[:4],
		}
		if len(ext) > 4 {
			re.Data = ext[4:]
		}
		r.Extensions = append(r.Extensions, re)
	}
	return r, true
}

func versionName(hexVer string) string {
	if name, ok := versionNames[hexVer]; ok {
		return name
	}
	return "unknown (" + hexVer + ")"
}

func cipherName(hexCS string) string {
	if name, ok := cipherSuiteNames[hexCS]; ok {
		return name
	}
	return "unknown (" + hexCS + ")"
}

func extensionName(hexType string) string {
	if name, ok := extensionNames[hexType]; ok {
		return name
	}
	return "unknown (" + hexType + ")"
}
