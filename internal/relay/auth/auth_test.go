package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongestPicksIntersection(t *testing.T) {
	offered := ParseAlgoList("sha256,pbkdf2+sha512")
	allowed := ParseAlgoList("pbkdf2+sha256,pbkdf2+sha512")
	assert.Equal(t, AlgoPBKDF2SHA512, Strongest(offered, allowed))
}

func TestStrongestNoIntersection(t *testing.T) {
	offered := ParseAlgoList("sha256")
	allowed := ParseAlgoList("pbkdf2+sha512")
	assert.Equal(t, Algo(""), Strongest(offered, allowed))
}

func TestVerifyPlain(t *testing.T) {
	assert.True(t, VerifyPlain("hunter2", "hunter2"))
	assert.False(t, VerifyPlain("wrong", "hunter2"))
}

func TestVerifyHashedSHA256RoundTrip(t *testing.T) {
	salt := "abc123"
	password := "hunter2"
	digest, err := computeHash(AlgoSHA256, salt, 0, password)
	require.NoError(t, err)

	ok, err := VerifyHashed(AlgoSHA256, salt, 0, hexEncode(digest), password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyHashedPBKDF2RoundTrip(t *testing.T) {
	salt := "somesalt"
	password := "hunter2"
	iterations := 1000
	digest, err := computeHash(AlgoPBKDF2SHA256, salt, iterations, password)
	require.NoError(t, err)

	ok, err := VerifyHashed(AlgoPBKDF2SHA256, salt, iterations, hexEncode(digest), password)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyHashed(AlgoPBKDF2SHA256, salt, iterations, hexEncode(digest), "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseAuthorizationValue(t *testing.T) {
	cred, err := ParseAuthorizationValue("plain:hunter2")
	require.NoError(t, err)
	assert.True(t, cred.Plain)
	assert.Equal(t, "hunter2", cred.Password)

	cred, err = ParseAuthorizationValue("hash:pbkdf2+sha512:salt1:100000:deadbeef")
	require.NoError(t, err)
	assert.Equal(t, AlgoPBKDF2SHA512, cred.Algo)
	assert.Equal(t, 100000, cred.Iterations)
}

func TestTOTPRoundTripWithinWindow(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	now := time.Unix(1_700_000_000, 0)
	code, err := GenerateTOTP(secret, now)
	require.NoError(t, err)

	assert.True(t, VerifyTOTP(secret, code, now))
	assert.True(t, VerifyTOTP(secret, code, now.Add(30*time.Second)))
	assert.False(t, VerifyTOTP(secret, code, now.Add(90*time.Second)))
}

func hexEncode(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}
