package wstring

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Base identifies one of the base-N codecs the evaluator's base_encode and
// base_decode transforms expose.
type Base string

const (
	Base16    Base = "16"
	Base32    Base = "32"
	Base64    Base = "64"
	Base64URL Base = "64url"
)

// Encode returns the base-B encoding of data.
func Encode(b Base, data []byte) (string, error) {
	switch b {
	case Base16:
		return hex.EncodeToString(data), nil
	case Base32:
		return base32.StdEncoding.EncodeToString(data), nil
	case Base64:
		return base64.StdEncoding.EncodeToString(data), nil
	case Base64URL:
		return base64.URLEncoding.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("wstring: unknown base %q", b)
	}
}

// Decode reverses Encode. Round-tripping Decode(Encode(s)) == s for any byte
// string s is a tested invariant of the evaluator.
func Decode(b Base, s string) ([]byte, error) {
	switch b {
	case Base16:
		return hex.DecodeString(s)
	case Base32:
		return base32.StdEncoding.DecodeString(s)
	case Base64:
		return base64.StdEncoding.DecodeString(s)
	case Base64URL:
		return base64.URLEncoding.DecodeString(s)
	default:
		return nil, fmt.Errorf("wstring: unknown base %q", b)
	}
}
