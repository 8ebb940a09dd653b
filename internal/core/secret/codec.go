// Package secret implements salted one-way hashing and constant-time
// verification of account passwords.
//
// Two codecs are provided. PBKDF2Codec (PBKDF2-HMAC-SHA256) is the default
// for new credentials. SHA256Codec computes hex(sha256(secret || salt)) and
// exists only to verify records migrated from the legacy desktop database;
// a single unsalted SHA-256 pass is too cheap for new password storage.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// saltBytes is the random salt length before hex encoding.
const saltBytes = 32

// Codec hashes and verifies passwords. Implementations are stateless and
// safe for unrestricted concurrent use.
type Codec interface {
	// Hash generates a fresh random salt and returns (digest, salt).
	Hash(secretText string) (digest, salt string, err error)

	// HashWith recomputes the digest of secretText under an existing salt.
	HashWith(secretText, salt string) string

	// Verify reports whether secretText matches the stored digest. The
	// comparison is constant-time.
	Verify(secretText, digest, salt string) bool
}

// NewSalt returns a cryptographically random salt, hex-encoded.
func NewSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func constantTimeEqual(a, b string) bool {
	// ConstantTimeCompare is length-sensitive; digests of the same codec
	// always have equal length, so a length mismatch means no match.
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// SHA256Codec is the legacy codec: hex(sha256(secret || salt)).
type SHA256Codec struct{}

func NewSHA256Codec() SHA256Codec { return SHA256Codec{} }

func (SHA256Codec) Hash(secretText string) (string, string, error) {
	salt, err := NewSalt()
	if err != nil {
		return "", "", err
	}
	return SHA256Codec{}.HashWith(secretText, salt), salt, nil
}

func (SHA256Codec) HashWith(secretText, salt string) string {
	sum := sha256.Sum256([]byte(secretText + salt))
	return hex.EncodeToString(sum[:])
}

func (c SHA256Codec) Verify(secretText, digest, salt string) bool {
	return constantTimeEqual(c.HashWith(secretText, salt), digest)
}

// DefaultPBKDF2Iterations follows the current OWASP recommendation for
// PBKDF2-HMAC-SHA256.
const DefaultPBKDF2Iterations = 210_000

// PBKDF2Codec derives digests with PBKDF2-HMAC-SHA256.
type PBKDF2Codec struct {
	iterations int
}

// NewPBKDF2Codec returns a PBKDF2Codec. Non-positive iteration counts fall
// back to DefaultPBKDF2Iterations.
func NewPBKDF2Codec(iterations int) PBKDF2Codec {
	if iterations <= 0 {
		iterations = DefaultPBKDF2Iterations
	}
	return PBKDF2Codec{iterations: iterations}
}

func (c PBKDF2Codec) Hash(secretText string) (string, string, error) {
	salt, err := NewSalt()
	if err != nil {
		return "", "", err
	}
	return c.HashWith(secretText, salt), salt, nil
}

func (c PBKDF2Codec) HashWith(secretText, salt string) string {
	key := pbkdf2.Key([]byte(secretText), []byte(salt), c.iterations, sha256.Size, sha256.New)
	return hex.EncodeToString(key)
}

func (c PBKDF2Codec) Verify(secretText, digest, salt string) bool {
	return constantTimeEqual(c.HashWith(secretText, salt), digest)
}
