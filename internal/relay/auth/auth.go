// Package auth implements the API protocol layer's password and TOTP
// verification: Basic auth credential parsing, hashed/plain comparison,
// and the handshake algorithm negotiation.
package auth

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Algo identifies one password-hash algorithm, ordered here from weakest
// to strongest so Strongest can pick the best mutually-supported one.
type Algo string

const (
	AlgoPlain         Algo = "plain"
	AlgoSHA256        Algo = "sha256"
	AlgoSHA512        Algo = "sha512"
	AlgoPBKDF2SHA256  Algo = "pbkdf2+sha256"
	AlgoPBKDF2SHA512  Algo = "pbkdf2+sha512"
)

// strength ranks algorithms; higher is stronger. plain is never offered
// during handshake negotiation (it only exists so a bare "plain:<pw>"
// Authorization header can be verified), hence its absence here.
var strength = map[Algo]int{
	AlgoSHA256:       1,
	AlgoSHA512:       2,
	AlgoPBKDF2SHA256: 3,
	AlgoPBKDF2SHA512: 4,
}

// Strongest returns the strongest algorithm present in both offered (the
// client's handshake request) and allowed (relay.network.password_hash_algo),
// or "" if the two sets don't intersect.
func Strongest(offered, allowed []Algo) Algo {
	allowedSet := make(map[Algo]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}
	best := Algo("")
	bestRank := -1
	for _, a := range offered {
		if !allowedSet[a] {
			continue
		}
		if r := strength[a]; r > bestRank {
			bestRank = r
			best = a
		}
	}
	return best
}

// ParseAlgoList splits a comma-separated algorithm list, as found in the
// relay.network.password_hash_algo config option. (The handshake request
// body carries its list as a JSON array instead.)
func ParseAlgoList(s string) []Algo {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]Algo, 0, len(parts))
	for _, p := range parts {
		out = append(out, Algo(strings.TrimSpace(p)))
	}
	return out
}

// VerifyPlain checks a bare "plain:<pw>" credential against the
// configured password using a constant-time comparison.
func VerifyPlain(password, configured string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(configured)) == 1
}

// VerifyHashed checks a "hash:<algo>:<salt>:[<iterations>:]<hex>" credential
// by recomputing the same digest over salt+configured-password and
// comparing in constant time.
func VerifyHashed(algo Algo, salt string, iterations int, hexDigest string, configuredPassword string) (bool, error) {
	want, err := hex.DecodeString(hexDigest)
	if err != nil {
		return false, fmt.Errorf("auth: invalid hex digest: %w", err)
	}

	got, err := computeHash(algo, salt, iterations, configuredPassword)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func computeHash(algo Algo, salt string, iterations int, password string) ([]byte, error) {
	switch algo {
	case AlgoSHA256:
		h := sha256.Sum256([]byte(salt + password))
		return h[:], nil
	case AlgoSHA512:
		h := sha512.Sum512([]byte(salt + password))
		return h[:], nil
	case AlgoPBKDF2SHA256:
		return pbkdf2.Key([]byte(password), []byte(salt), iterations, sha256.Size, sha256.New), nil
	case AlgoPBKDF2SHA512:
		return pbkdf2.Key([]byte(password), []byte(salt), iterations, sha512.Size, sha512.New), nil
	default:
		return nil, fmt.Errorf("auth: unsupported hash algorithm %q", algo)
	}
}

// ParseAuthorizationValue splits the decoded Basic auth payload into its
// "plain:<pw>" or "hash:<algo>:<salt>[:<iter>]:<hex>" forms.
type Credential struct {
	Plain      bool
	Password   string // set when Plain
	Algo       Algo
	Salt       string
	Iterations int
	HexDigest  string
}

func ParseAuthorizationValue(decoded string) (Credential, error) {
	parts := strings.SplitN(decoded, ":", 2)
	if len(parts) != 2 {
		return Credential{}, fmt.Errorf("auth: malformed credential")
	}
	switch parts[0] {
	case "plain":
		return Credential{Plain: true, Password: parts[1]}, nil
	case "hash":
		fields := strings.Split(parts[1], ":")
		switch Algo(fields[0]) {
		case AlgoSHA256, AlgoSHA512:
			if len(fields) != 3 {
				return Credential{}, fmt.Errorf("auth: malformed hash credential")
			}
			return Credential{Algo: Algo(fields[0]), Salt: fields[1], HexDigest: fields[2]}, nil
		case AlgoPBKDF2SHA256, AlgoPBKDF2SHA512:
			if len(fields) != 4 {
				return Credential{}, fmt.Errorf("auth: malformed pbkdf2 credential")
			}
			iter, err := strconv.Atoi(fields[2])
			if err != nil {
				return Credential{}, fmt.Errorf("auth: invalid iteration count: %w", err)
			}
			return Credential{Algo: Algo(fields[0]), Salt: fields[1], Iterations: iter, HexDigest: fields[3]}, nil
		default:
			return Credential{}, fmt.Errorf("auth: unknown hash algorithm %q", fields[0])
		}
	default:
		return Credential{}, fmt.Errorf("auth: unknown credential kind %q", parts[0])
	}
}
