package app

import (
	"crypto/ecdsa"
	"fmt"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// Signer is a session-scoped handle over a decrypted private key. It is
// valid for the current session only, is never persisted, and must be
// closed when the session ends. Closing wipes the key material.
type Signer struct {
	mu       sync.Mutex
	key      *ecdsa.PrivateKey
	address  string
	walletID uuid.UUID
}

// NewSigner wraps a decrypted private key. The signer takes ownership of
// the key.
func NewSigner(key *ecdsa.PrivateKey, address string, walletID uuid.UUID) *Signer {
	return &Signer{
		key:      key,
		address:  address,
		walletID: walletID,
	}
}

// Address returns the wallet's public address
func (s *Signer) Address() string {
	return s.address
}

// WalletID returns the wallet this signer was unlocked from
func (s *Signer) WalletID() uuid.UUID {
	return s.walletID
}

// SignHash signs a 32-byte digest with the wallet key
func (s *Signer) SignHash(hash []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return nil, fmt.Errorf("signer is closed")
	}
	if len(hash) != 32 {
		return nil, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	return ethcrypto.Sign(hash, s.key)
}

// Close wipes the private key. Safe to call more than once.
func (s *Signer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return
	}
	s.key.D.SetInt64(0)
	s.key = nil
}
