// Package vault implements the password-based envelope that protects a
// private key at rest, its storable base64 encoding, and the checksummed
// recovery-code format for offline backup.
package vault

import (
	"encoding/base64"
	"fmt"

	"github.com/seipay/custody/internal/crypto"
	"github.com/seipay/custody/pkg/types"
)

// Envelope is one sealed private key: ciphertext, the randomness that
// produced it, and a fingerprint of the plaintext for post-decrypt
// verification.
type Envelope struct {
	Ciphertext  []byte
	Salt        []byte
	Nonce       []byte
	Tag         []byte
	Fingerprint string
}

// Seal encrypts plaintext key material under a password-derived key and
// fingerprints the plaintext. The caller keeps ownership of plaintext.
func Seal(plaintext []byte, password string) (*Envelope, error) {
	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, err
	}

	key := crypto.DeriveKey(password, salt)
	defer crypto.Zero(key)

	sealed, err := crypto.Encrypt(plaintext, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt key: %w", err)
	}

	return &Envelope{
		Ciphertext:  sealed.Ciphertext,
		Salt:        salt,
		Nonce:       sealed.Nonce,
		Tag:         sealed.Tag,
		Fingerprint: crypto.Fingerprint(plaintext),
	}, nil
}

// Open decrypts the envelope and verifies the plaintext against the stored
// fingerprint in constant time. A decrypt that succeeds cryptographically
// but yields an unexpected fingerprint is still a failure, and surfaces the
// same error as an authentication failure.
//
// Callers own the returned slice and must crypto.Zero it when done.
func (e *Envelope) Open(password string) ([]byte, error) {
	if len(e.Salt) != crypto.SaltLength {
		return nil, crypto.ErrDecryptFailed
	}

	key := crypto.DeriveKey(password, e.Salt)
	defer crypto.Zero(key)

	plaintext, err := crypto.Decrypt(&crypto.SealedKey{
		Ciphertext: e.Ciphertext,
		Nonce:      e.Nonce,
		Tag:        e.Tag,
	}, key)
	if err != nil {
		return nil, crypto.ErrDecryptFailed
	}

	if !crypto.FingerprintEqual(crypto.Fingerprint(plaintext), e.Fingerprint) {
		crypto.Zero(plaintext)
		return nil, crypto.ErrDecryptFailed
	}

	return plaintext, nil
}

// ApplyTo writes the envelope onto a vault record in transport encoding
func (e *Envelope) ApplyTo(record *types.VaultRecord) {
	record.Ciphertext = base64.StdEncoding.EncodeToString(e.Ciphertext)
	record.Salt = base64.StdEncoding.EncodeToString(e.Salt)
	record.Nonce = base64.StdEncoding.EncodeToString(e.Nonce)
	record.AuthTag = base64.StdEncoding.EncodeToString(e.Tag)
	record.KeyFingerprint = e.Fingerprint
}

// FromRecord decodes a record's envelope fields. Decode failures mean a
// corrupted record, not an authentication failure.
func FromRecord(record *types.VaultRecord) (*Envelope, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(record.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("corrupted ciphertext encoding: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(record.Salt)
	if err != nil {
		return nil, fmt.Errorf("corrupted salt encoding: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(record.Nonce)
	if err != nil {
		return nil, fmt.Errorf("corrupted nonce encoding: %w", err)
	}
	tag, err := base64.StdEncoding.DecodeString(record.AuthTag)
	if err != nil {
		return nil, fmt.Errorf("corrupted auth tag encoding: %w", err)
	}

	return &Envelope{
		Ciphertext:  ciphertext,
		Salt:        salt,
		Nonce:       nonce,
		Tag:         tag,
		Fingerprint: record.KeyFingerprint,
	}, nil
}
