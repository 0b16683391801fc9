package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// privateKeyPattern matches a 32-byte hex private key, 0x prefix optional
var privateKeyPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

// GeneratedKey is a freshly created secp256k1 keypair with its one-time
// recovery phrase. The mnemonic encodes the exact key bytes as BIP-39
// entropy (24 words), so the phrase alone recovers the key.
type GeneratedKey struct {
	PrivateKey *ecdsa.PrivateKey
	Address    string
	Mnemonic   string
}

// GenerateKey creates a new secp256k1 private key and its recovery phrase
func GenerateKey() (*GeneratedKey, error) {
	privateKey, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	keyBytes := ethcrypto.FromECDSA(privateKey)
	defer Zero(keyBytes)

	mnemonic, err := bip39.NewMnemonic(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recovery phrase: %w", err)
	}

	return &GeneratedKey{
		PrivateKey: privateKey,
		Address:    AddressFromKey(privateKey),
		Mnemonic:   mnemonic,
	}, nil
}

// KeyFromMnemonic recovers a private key from a 24-word recovery phrase
// produced by GenerateKey.
func KeyFromMnemonic(mnemonic string) (*ecdsa.PrivateKey, error) {
	entropy, err := bip39.EntropyFromMnemonic(strings.TrimSpace(mnemonic))
	if err != nil {
		return nil, fmt.Errorf("invalid recovery phrase: %w", err)
	}
	defer Zero(entropy)

	return ethcrypto.ToECDSA(entropy)
}

// ParsePrivateKey validates and parses hex private key material. Leading
// and trailing whitespace and a missing 0x prefix are tolerated; anything
// else is rejected before any parsing.
func ParsePrivateKey(material string) (*ecdsa.PrivateKey, error) {
	clean := strings.TrimSpace(material)
	if !privateKeyPattern.MatchString(clean) {
		return nil, fmt.Errorf("private key must be 64 hex characters")
	}

	clean = strings.TrimPrefix(clean, "0x")
	privateKey, err := ethcrypto.HexToECDSA(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return privateKey, nil
}

// AddressFromKey derives the checksummed Ethereum-format address
func AddressFromKey(privateKey *ecdsa.PrivateKey) string {
	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		panic("failed to cast public key to ECDSA")
	}
	return ethcrypto.PubkeyToAddress(*publicKey).Hex()
}

// KeyBytes returns the 32-byte big-endian encoding of the private key.
// Callers own the slice and must Zero it when done.
func KeyBytes(privateKey *ecdsa.PrivateKey) []byte {
	return ethcrypto.FromECDSA(privateKey)
}

// KeyFromBytes parses a 32-byte private key
func KeyFromBytes(b []byte) (*ecdsa.PrivateKey, error) {
	return ethcrypto.ToECDSA(b)
}

// IsHexAddress reports whether s is a valid Ethereum-format address
func IsHexAddress(s string) bool {
	return common.IsHexAddress(s)
}
