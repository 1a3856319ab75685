// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tlsfp turns raw TLS ClientHello bytes into a canonical,
// GREASE-normalized fingerprint string. The string is the primary key
// for the fingerprint database; its parsed Literal form feeds the
// approximate matcher.
package tlsfp

import (
	"encoding/binary"
	"encoding/hex"
)

// Encode extracts the canonical fingerprint from a TCP payload believed
// to start a TLS record. It returns the fingerprint string, the SNI
// hostname when present, and ok=false when the payload is not a
// recognizable ClientHello. Malformed or truncated input is never an
// error, just "not recognized".
func Encode(buf []byte) (fp []byte, serverName string, ok bool) {
	if len(buf) < 32 {
		return nil, "", false
	}
	for i := 0; i < 11; i++ {
		if buf[i]&clientHelloMask[i] != clientHelloValue[i] {
			return nil, "", false
		}
	}

	recordLen := int(binary.BigEndian.Uint16(buf[3:5]))
	if recordLen != len(buf)-5 {
		return nil, "", false
	}

	return extractFingerprint(buf[5:])
}

// extractFingerprint walks the handshake message that follows the
// 5-byte record header. Every length field is bounds-checked before the
// corresponding slice access.
func extractFingerprint(data []byte) ([]byte, string, bool) {
	n := len(data)

	// Handshake version sits after the 4-byte handshake header. The
	// 32-byte minimum on the record guarantees these bytes exist.
	fp := make([]byte, 0, 128)
	fp = append(fp, '(')
	fp = appendHex(fp, data[4:6])
	fp = append(fp, ')')

	// Skip handshake header, version and client random.
	off := 38
	if off >= n {
		return nil, "", false
	}

	// session_id
	sessionIDLen := int(data[off])
	off += 1 + sessionIDLen
	if off >= n {
		return nil, "", false
	}

	// cipher_suites
	if off+2 > n {
		return nil, "", false
	}
	cipherLen := int(binary.BigEndian.Uint16(data[off : off+2]))
	off += 2
	if off >= n || off+2 > n {
		return nil, "", false
	}
	fp = append(fp, '(')
	// Only the first listed code position is degreased, per the
	// observed protocol convention.
	fp = append(fp, degreaseCode(data[off:off+2])...)
	if cipherLen > 2 {
		if off+cipherLen > n {
			return nil, "", false
		}
		fp = appendHex(fp, data[off+2:off+cipherLen])
	}
	fp = append(fp, ')')
	off += cipherLen
	if off >= n {
		return nil, "", false
	}

	// compression_methods
	compLen := int(data[off])
	off += 1 + compLen
	if off >= n {
		// No extensions: the short-form fingerprint is still valid.
		return fp, "", true
	}

	// extensions
	if off+2 > n {
		return nil, "", false
	}
	extTotal := int(binary.BigEndian.Uint16(data[off : off+2]))
	off += 2
	if off >= n {
		return nil, "", false
	}

	var serverName string
	fp = append(fp, '(')
	for extTotal > 0 {
		fp = append(fp, '(')
		if off+2 > n {
			return nil, "", false
		}

		if binary.BigEndian.Uint16(data[off:off+2]) == extTypeServerName {
			serverName = extractServerName(data[off+2:])
		}

		extFp, newOff, extLen, extOK := parseExtension(data, off)
		if !extOK {
			return nil, "", false
		}
		fp = append(fp, extFp...)
		off = newOff
		extTotal -= 4 + extLen
		fp = append(fp, ')')
	}
	fp = append(fp, ')')

	return fp, serverName, true
}

// parseExtension encodes one extension according to the
// per-extension-type policy: the (degreased) type always, length and
// (degreased) value only for types in extDataExtract.
func parseExtension(data []byte, off int) (extFp []byte, newOff, extLen int, ok bool) {
	n := len(data)
	if off+4 > n {
		return nil, 0, 0, false
	}

	typeHex := degreaseCode(data[off : off+2])
	extFp = append(extFp, typeHex...)
	off += 2

	extLen = int(binary.BigEndian.Uint16(data[off : off+2]))
	lenBytes := data[off : off+2]
	off += 2
	if off+extLen > n {
		return nil, 0, 0, false
	}

	if extDataExtract[string(typeHex)] {
		extFp = appendHex(extFp, lenBytes)
		extFp = appendHex(extFp, degreaseExtData(data[off:off+extLen], string(typeHex)))
	}

	return extFp, off + extLen, extLen, true
}

// degreaseCode returns the lowercase hex encoding of a two-byte code
// point, normalizing GREASE values to the fixed placeholder.
func degreaseCode(b []byte) []byte {
	if isGREASE(b[0], b[1]) {
		return []byte(greasePlaceholder)
	}
	out := make([]byte, 4)
	hex.Encode(out, b)
	return out
}

// degreaseExtData normalizes embedded GREASE code points inside
// supported_groups and supported_versions values. Other extension
// values pass through untouched.
func degreaseExtData(value []byte, typeHex string) []byte {
	var skip int
	switch typeHex {
	case extTypeSupportedGroups:
		skip = 2 // two-byte list length
	case extTypeSupportedVersions:
		skip = 1 // one-byte list length
	default:
		return value
	}

	if len(value) < skip {
		return value
	}
	out := make([]byte, 0, len(value))
	out = append(out, value[:skip]...)
	for i := skip; i < len(value); i += 2 {
		if i+2 <= len(value) && isGREASE(value[i], value[i+1]) {
			out = append(out, 0x0a, 0x0a)
			continue
		}
		end := i + 2
		if end > len(value) {
			end = len(value)
		}
		out = append(out, value[i:end]...)
	}
	return out
}

// extractServerName pulls the first hostname entry out of an SNI
// extension body. data starts at the extension length field.
func extractServerName(data []byte) string {
	// length(2) + list length(2) + name type(1) + name length(2)
	if len(data) < 7 {
		return ""
	}
	nameLen := int(binary.BigEndian.Uint16(data[5:7]))
	if 7+nameLen > len(data) {
		return ""
	}
	return string(data[7 : 7+nameLen])
}

func appendHex(dst, src []byte) []byte {
	out := make([]byte, hex.EncodedLen(len(src)))
	hex.Encode(out, src)
	return append(dst, out...)
}
