package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// VerifyTOTP implements RFC 6238 (TOTP) over the 30-second, 6-digit,
// SHA-1 defaults weechat uses for relay.network.totp_secret. No TOTP
// library is available anywhere in the dependency surface this module
// draws from, so the algorithm is implemented directly against
// crypto/hmac and crypto/sha1 — both standard library, since RFC 6238 is
// a short, fully specified primitive rather than a larger protocol worth
// pulling a dependency in for.
//
// window allows a ±1 step tolerance: the code is also accepted if it
// matches the previous or next 30-second step.
func VerifyTOTP(secretBase32, code string, now time.Time) bool {
	secret, err := decodeSecret(secretBase32)
	if err != nil {
		return false
	}
	code = strings.TrimSpace(code)
	step := now.Unix() / 30
	for _, delta := range []int64{0, -1, 1} {
		if totpAt(secret, step+delta) == code {
			return true
		}
	}
	return false
}

func decodeSecret(secretBase32 string) ([]byte, error) {
	secretBase32 = strings.ToUpper(strings.TrimSpace(secretBase32))
	secretBase32 = strings.TrimRight(secretBase32, "=")
	padded := secretBase32
	if n := len(padded) % 8; n != 0 {
		padded += strings.Repeat("=", 8-n)
	}
	return base32.StdEncoding.DecodeString(padded)
}

func totpAt(secret []byte, step int64) string {
	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(step))

	mac := hmac.New(sha1.New, secret)
	mac.Write(counter[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	truncated := (uint32(sum[offset])&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])

	code := truncated % 1000000
	return fmt.Sprintf("%06d", code)
}

// GenerateTOTP returns the current code, used by tests and by any CLI
// helper that needs to show a QR-less pairing code.
func GenerateTOTP(secretBase32 string, now time.Time) (string, error) {
	secret, err := decodeSecret(secretBase32)
	if err != nil {
		return "", fmt.Errorf("auth: invalid totp secret: %w", err)
	}
	step := now.Unix() / 30
	return totpAt(secret, step), nil
}
