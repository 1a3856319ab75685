// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tlsfp

// ClientHello recognition pattern. A TCP payload is considered a
// ClientHello when, for each of the first 11 bytes,
// payload[i] & clientHelloMask[i] == clientHelloValue[i]. This pins the
// record type (handshake), an SSL3/TLS record version, the handshake
// type (client_hello) and a plausible handshake version.
var (
	clientHelloMask  = [11]byte{0xff, 0xff, 0xfc, 0x00, 0x00, 0xff, 0x00, 0x00, 0x00, 0xff, 0xfc}
	clientHelloValue = [11]byte{0x16, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x03, 0x00}
)

// greasePlaceholder replaces any GREASE code point at a normalized
// position so random per-connection draws collapse to one fingerprint.
const greasePlaceholder = "0a0a"

// isGREASE reports whether the two-byte code point is one of the
// sixteen reserved GREASE values (0x0a0a, 0x1a1a, ... 0xfafa).
func isGREASE(hi, lo byte) bool {
	return hi == lo && hi&0x0f == 0x0a
}

// Extension encoding policy, version 1.
//
// Extensions whose hex type appears here contribute their full
// length+value bytes to the fingerprint; all others contribute the type
// alone. Changing this table changes fingerprint identity, so it is
// treated as a versioned constant and covered by tests.
var extDataExtract = map[string]bool{
	"0001": true, // max_fragment_length
	"0005": true, // status_request
	"0007": true, // client_authz
	"0008": true, // server_authz
	"0009": true, // cert_type
	"000a": true, // supported_groups (degreased element-wise)
	"000b": true, // ec_point_formats
	"000d": true, // signature_algorithms
	"000f": true, // heartbeat
	"0010": true, // application_layer_protocol_negotiation
	"0011": true, // status_request_v2
	"0013": true, // client_certificate_type
	"0014": true, // server_certificate_type
	"0018": true, // token_binding
	"001b": true, // compress_certificate
	"001c": true, // record_size_limit
	"002b": true, // supported_versions (degreased element-wise)
	"002d": true, // psk_key_exchange_modes
	"0032": true, // signature_algorithms_cert
	"5500": true, // channel_id
}

// The SNI extension type; its hostname is the only field surfaced
// outside the fingerprint string.
const extTypeServerName = 0x0000

// Extension types whose value bytes carry embedded GREASE code points.
const (
	extTypeSupportedGroups   = "000a"
	extTypeSupportedVersions = "002b"
)

var versionNames = map[string]string{
	"0300": "SSL 3.0",
	"0301": "TLS 1.0",
	"0302": "TLS 1.1",
	"0303": "TLS 1.2",
	"0304": "TLS 1.3",
}

var extensionNames = map[string]string{
	"0000": "server_name",
	"0001": "max_fragment_length",
	"0005": "status_request",
	"000a": "supported_groups",
	"000b": "ec_point_formats",
	"000d": "signature_algorithms",
	"000f": "heartbeat",
	"0010": "application_layer_protocol_negotiation",
	"0011": "status_request_v2",
	"0012": "signed_certificate_timestamp",
	"0015": "padding",
	"0016": "encrypt_then_mac",
	"0017": "extended_master_secret",
	"0018": "token_binding",
	"001b": "compress_certificate",
	"001c": "record_size_limit",
	"0023": "session_ticket",
	"0029": "pre_shared_key",
	"002a": "early_data",
	"002b": "supported_versions",
	"002c": "cookie",
	"002d": "psk_key_exchange_modes",
	"0032": "signature_algorithms_cert",
	"0033": "key_share",
	"0a0a": "grease",
	"3374": "next_protocol_negotiation",
	"5500": "channel_id",
	"ff01": "renegotiation_info",
}

var cipherSuiteNames = map[string]string{
	"0004": "TLS_RSA_WITH_RC4_128_MD5",
	"0005": "TLS_RSA_WITH_RC4_128_SHA",
	"000a": "TLS_RSA_WITH_3DES_EDE_CBC_SHA",
	"002f": "TLS_RSA_WITH_AES_128_CBC_SHA",
	"0033": "TLS_DHE_RSA_WITH_AES_128_CBC_SHA",
	"0035": "TLS_RSA_WITH_AES_256_CBC_SHA",
	"0039": "TLS_DHE_RSA_WITH_AES_256_CBC_SHA",
	"003c": "TLS_RSA_WITH_AES_128_CBC_SHA256",
	"003d": "TLS_RSA_WITH_AES_256_CBC_SHA256",
	"0067": "TLS_DHE_RSA_WITH_AES_128_CBC_SHA256",
	"006b": "TLS_DHE_RSA_WITH_AES_256_CBC_SHA256",
	"009c": "TLS_RSA_WITH_AES_128_GCM_SHA256",
	"009d": "TLS_RSA_WITH_AES_256_GCM_SHA384",
	"009e": "TLS_DHE_RSA_WITH_AES_128_GCM_SHA256",
	"009f": "TLS_DHE_RSA_WITH_AES_256_GCM_SHA384",
	"00ff": "TLS_EMPTY_RENEGOTIATION_INFO_SCSV",
	"1301": "TLS_AES_128_GCM_SHA256",
	"1302": "TLS_AES_256_GCM_SHA384",
	"1303": "TLS_CHACHA20_POLY1305_SHA256",
	"1304": "TLS_AES_128_CCM_SHA256",
	"1305": "TLS_AES_128_CCM_8_SHA256",
	"c009": "TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA",
	"c00a": "TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA",
	"c013": "TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA",
	"c014": "TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA",
	"c023": "TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256",
	"c024": "TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA384",
	"c027": "TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA256",
	"c028": "TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA384",
	"c02b": "TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256",
	"c02c": "TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384",
	"c02f": "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256",
	"c030": "TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384",
	"cca8": "TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256",
	"cca9": "TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256",
	"ccaa": "TLS_DHE_RSA_WITH_CHACHA20_POLY1305_SHA256",
}

// cipherImplementationDates maps cipher-suite code points to the month
// the defining RFC was published. Unknown fingerprints carry the
// min/max over their offered suites as a rough age estimate.
var cipherImplementationDates = map[string]string{
	"0004": "1999-01", // RFC 2246
	"0005": "1999-01",
	"000a": "1999-01",
	"002f": "2002-06", // RFC 3268
	"0033": "2002-06",
	"0035": "2002-06",
	"0039": "2002-06",
	"003c": "2008-08", // RFC 5246
	"003d": "2008-08",
	"0067": "2008-08",
	"006b": "2008-08",
	"009c": "2008-08", // RFC 5288
	"009d": "2008-08",
	"009e": "2008-08",
	"009f": "2008-08",
	"00ff": "2010-02", // RFC 5746
	"1301": "2018-08", // RFC 8446
	"1302": "2018-08",
	"1303": "2018-08",
	"1304": "2018-08",
	"1305": "2018-08",
	"c009": "2006-05", // RFC 4492
	"c00a": "2006-05",
	"c013": "2006-05",
	"c014": "2006-05",
	"c023": "2008-08", // RFC 5289
	"c024": "2008-08",
	"c027": "2008-08",
	"c028": "2008-08",
	"c02b": "2008-08",
	"c02c": "2008-08",
	"c02f": "2008-08",
	"c030": "2008-08",
	"cca8": "2016-06", // RFC 7905
	"cca9": "2016-06",
	"ccaa": "2016-06",
}
