package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	// NonceLength is the GCM nonce size in bytes (96 bits)
	NonceLength = 12

	// TagLength is the GCM authentication tag size in bytes
	TagLength = 16
)

// ErrDecryptFailed is the single recoverable decryption failure. It
// deliberately carries no further detail, to avoid an oracle between wrong
// password and tampered ciphertext.
var ErrDecryptFailed = errors.New("invalid password or corrupted data")

// SealedKey holds the output of one authenticated encryption: ciphertext
// with a detached tag and the nonce used.
type SealedKey struct {
	Ciphertext []byte
	Nonce      []byte
	Tag        []byte
}

// Encrypt encrypts plaintext under key with AES-256-GCM. The nonce is
// freshly random per call and never reused with the same key.
func Encrypt(plaintext, key []byte) (*SealedKey, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, NonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	// gcm.Seal appends the tag; store it detached
	return &SealedKey{
		Ciphertext: sealed[:len(sealed)-TagLength],
		Nonce:      nonce,
		Tag:        sealed[len(sealed)-TagLength:],
	}, nil
}

// Decrypt reverses Encrypt. Any authentication failure returns
// ErrDecryptFailed.
func Decrypt(sk *SealedKey, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(sk.Nonce) != NonceLength || len(sk.Tag) != TagLength {
		return nil, ErrDecryptFailed
	}

	sealed := make([]byte, 0, len(sk.Ciphertext)+len(sk.Tag))
	sealed = append(sealed, sk.Ciphertext...)
	sealed = append(sealed, sk.Tag...)

	plaintext, err := gcm.Open(nil, sk.Nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}

	return plaintext, nil
}
