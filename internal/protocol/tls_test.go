// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/glasswing/internal/fpdb"
)

// clientHello builds a TLS record for a ClientHello offering the given
// cipher bytes, optionally with an SNI extension.
func clientHello(ciphers []byte, sni string) []byte {
	var body bytes.Buffer
	body.Write([]byte{0x03, 0x03})
	body.Write(make([]byte, 32))
	body.WriteByte(0)
	binary.Write(&body, binary.BigEndian, uint16(len(ciphers)))
	body.Write(ciphers)
	body.Write([]byte{0x01, 0x00})

	if sni != "" {
		value := make([]byte, 5+len(sni))
		binary.BigEndian.PutUint16(value[0:2], uint16(3+len(sni)))
		binary.BigEndian.PutUint16(value[3:5], uint16(len(sni)))
		copy(value[5:], sni)

		binary.Write(&body, binary.BigEndian, uint16(4+len(value)))
		binary.Write(&body, binary.BigEndian, uint16(0)) // server_name
		binary.Write(&body, binary.BigEndian, uint16(len(value)))
		body.Write(value)
	}

	handshake := append([]byte{0x01, 0x00, byte(body.Len() >> 8), byte(body.Len())}, body.Bytes()...)
	return append([]byte{0x16, 0x03, 0x01, byte(len(handshake) >> 8), byte(len(handshake))}, handshake...)
}

// manyCiphers returns n distinct cipher-suite code points.
func manyCiphers(n int) []byte {
	out := make([]byte, 0, 2*n)
	for i := 1; i <= n; i++ {
		out = append(out, byte(i>>8), byte(i))
	}
	return out
}

func cipherHex(n int) string {
	s := ""
	for i := 1; i <= n; i++ {
		s += fmt.Sprintf("%04x", i)
	}
	return s
}

func TestTLSParserExactMatch(t *testing.T) {
	db := fpdb.NewEmpty(nil)
	known := db.InsertUnknown("(0303)(" + cipherHex(10) + ")((0000))")
	known.Synthesized = false // behave like a loaded record

	parser := NewTLSParser(db, nil, nil)
	payload := clientHello(manyCiphers(10), "example.com")

	result, ok := parser.Fingerprint(payload)
	require.True(t, ok)
	assert.Equal(t, "tls", result.Protocol)
	assert.Equal(t, known.StrRepr, result.Fingerprint)
	assert.Empty(t, result.Approx)
	require.NotNil(t, result.Context)
	assert.Equal(t, "example.com", result.Context.ServerName)
}

func TestTLSParserApproximateMatch(t *testing.T) {
	db := fpdb.NewEmpty(nil)
	known := db.InsertUnknown("(0303)(" + cipherHex(10) + ")((0000))")
	known.Synthesized = false

	parser := NewTLSParser(db, nil, nil)
	// Same ten ciphers, no SNI: absent from the database but close
	// enough to alias to the known fingerprint.
	payload := clientHello(manyCiphers(10), "")

	result, ok := parser.Fingerprint(payload)
	require.True(t, ok)
	assert.Equal(t, "(0303)("+cipherHex(10)+")", result.Fingerprint)
	assert.Equal(t, known.StrRepr, result.Approx)
	assert.Nil(t, result.Context)

	// The alias is now a database record: the second sighting resolves
	// exactly and still reports the approximate target.
	result, ok = parser.Fingerprint(payload)
	require.True(t, ok)
	assert.Equal(t, known.StrRepr, result.Approx)
}

func TestTLSParserUnknownStaysSilent(t *testing.T) {
	db := fpdb.NewEmpty(nil)
	parser := NewTLSParser(db, nil, nil)
	payload := clientHello(manyCiphers(10), "example.com")

	// No match anywhere: nothing is emitted, but a placeholder record
	// is synthesized.
	_, ok := parser.Fingerprint(payload)
	assert.False(t, ok)
	assert.Equal(t, 1, db.Size())

	// Every later sighting stays silent too.
	_, ok = parser.Fingerprint(payload)
	assert.False(t, ok)
	assert.Equal(t, 1, db.Size())
}

func TestTLSParserRejectsNonTLS(t *testing.T) {
	parser := NewTLSParser(fpdb.NewEmpty(nil), nil, nil)

	_, ok := parser.Fingerprint([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"))
	assert.False(t, ok)
	_, ok = parser.Fingerprint(nil)
	assert.False(t, ok)
}
