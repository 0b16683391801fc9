// Package crypto implements the vault's cryptographic primitives: password
// key derivation, authenticated encryption of private keys, key
// fingerprinting and secp256k1 key handling.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KDFIterations is the fixed PBKDF2 iteration count. Deliberately slow
	// to resist offline brute force; changing it invalidates every stored
	// envelope.
	KDFIterations = 100_000

	// SaltLength is the salt size in bytes (256 bits)
	SaltLength = 32

	// KeyLength is the derived symmetric key size in bytes (256 bits)
	KeyLength = 32
)

// NewSalt returns a fresh random salt
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a 256-bit symmetric key from a password and salt using
// PBKDF2-HMAC-SHA256. Pure: the same inputs always yield the same key.
// A salt of the wrong length is a programming error, not a runtime
// condition.
func DeriveKey(password string, salt []byte) []byte {
	if len(salt) != SaltLength {
		panic(fmt.Sprintf("crypto: salt must be %d bytes, got %d", SaltLength, len(salt)))
	}
	return pbkdf2.Key([]byte(password), salt, KDFIterations, KeyLength, sha256.New)
}

// Zero overwrites b. Used to bound the lifetime of plaintext key material
// and derived keys on every exit path.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
