// Package keywrap provides an optional second encryption layer over the
// password-sealed envelope ciphertext before it reaches the store. The
// wrapper only ever sees ciphertext, so zero-knowledge custody is
// preserved; it protects against offline attacks on a leaked database.
package keywrap

import (
	"context"
	"fmt"
)

// Wrapper is an interface for at-rest wrapping backends. Different KMS
// backends (local master key, AWS KMS, HashiCorp Vault Transit) implement
// this interface.
type Wrapper interface {
	// Wrap encrypts already-encrypted envelope ciphertext
	Wrap(ctx context.Context, data []byte) ([]byte, error)

	// Unwrap reverses Wrap
	Unwrap(ctx context.Context, wrapped []byte) ([]byte, error)

	// Provider returns the provider name (e.g., "none", "local", "aws-kms", "vault")
	Provider() string
}

// ProviderType represents supported wrapping providers
type ProviderType string

const (
	// ProviderNone stores envelope ciphertext as-is
	ProviderNone ProviderType = "none"

	// ProviderLocal wraps with a local master key (development/simple deployments)
	ProviderLocal ProviderType = "local"

	// ProviderAWSKMS wraps with AWS KMS
	ProviderAWSKMS ProviderType = "aws-kms"

	// ProviderVault wraps with HashiCorp Vault Transit engine
	ProviderVault ProviderType = "vault"
)

// Config contains configuration for wrapping providers
type Config struct {
	// Provider specifies which wrapping provider to use
	Provider string

	// Local provider config
	LocalMasterKeyHex string

	// AWS KMS config
	AWSKMSKeyID  string
	AWSKMSRegion string

	// Vault config
	VaultAddress    string
	VaultToken      string
	VaultTransitKey string
}

// New creates a wrapper from configuration
func New(cfg *Config) (Wrapper, error) {
	switch ProviderType(cfg.Provider) {
	case ProviderNone, "":
		return NoopWrapper{}, nil
	case ProviderLocal:
		return NewLocalWrapper(cfg.LocalMasterKeyHex)
	case ProviderAWSKMS:
		return NewAWSKMSWrapper(cfg.AWSKMSKeyID, cfg.AWSKMSRegion)
	case ProviderVault:
		return NewVaultWrapper(cfg.VaultAddress, cfg.VaultToken, cfg.VaultTransitKey)
	default:
		return nil, fmt.Errorf("unknown keywrap provider: %s", cfg.Provider)
	}
}

// NoopWrapper passes ciphertext through unchanged
type NoopWrapper struct{}

// Wrap returns data unchanged
func (NoopWrapper) Wrap(ctx context.Context, data []byte) ([]byte, error) {
	return data, nil
}

// Unwrap returns wrapped unchanged
func (NoopWrapper) Unwrap(ctx context.Context, wrapped []byte) ([]byte, error) {
	return wrapped, nil
}

// Provider returns the provider name
func (NoopWrapper) Provider() string {
	return string(ProviderNone)
}
