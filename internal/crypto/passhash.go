// Package crypto implements server-side password hashing and escrow-secret
// generation.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// escrowKeyLen is the byte length of a freshly generated escrow secret.
const escrowKeyLen = 32

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// NewEscrowKey generates a fresh random escrow secret, hex-encoded. Generated
// once at signup, before any optional passphrase encryption is applied.
func NewEscrowKey() (string, error) {
	b, err := RandBytes(escrowKeyLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashPassword returns Argon2id hash of password using the provided salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword verifies password against expected Argon2id hash and salt.
func VerifyPassword(password, salt, expected []byte) bool {
	got := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
