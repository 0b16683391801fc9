package crypto

import (
	"fmt"

	"github.com/hashicorp/vault/shamir"
)

const (
	// DefaultShareThreshold is the minimum shares needed to reconstruct a
	// recovery payload
	DefaultShareThreshold = 2

	// DefaultShareCount is the default number of shares to produce
	DefaultShareCount = 3
)

// SplitSecret splits secret into parts shares of which threshold are
// required to reconstruct it. Used to shard recovery codes for offline
// backup across multiple locations.
func SplitSecret(secret []byte, parts, threshold int) ([][]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("secret cannot be empty")
	}
	if threshold < 2 || threshold > parts {
		return nil, fmt.Errorf("invalid share configuration: %d of %d", threshold, parts)
	}

	shares, err := shamir.Split(secret, parts, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split secret: %w", err)
	}
	return shares, nil
}

// CombineShares reconstructs a secret from threshold or more shares
func CombineShares(shares [][]byte) ([]byte, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("at least 2 shares are required")
	}

	secret, err := shamir.Combine(shares)
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %w", err)
	}
	return secret, nil
}
