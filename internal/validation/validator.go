package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressPattern is the regex pattern for Ethereum-format addresses
var AddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// labelPattern constrains wallet labels to 1-20 lowercase letters, digits
// and hyphens
var labelPattern = regexp.MustCompile(`^[a-z0-9-]{1,20}$`)

// ValidateAddress validates an Ethereum-format address
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if !AddressPattern.MatchString(address) {
		return fmt.Errorf("invalid address format: must be 0x followed by 40 hex characters")
	}

	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address")
	}

	if strings.ToLower(address) == "0x0000000000000000000000000000000000000000" {
		return fmt.Errorf("zero address is not allowed")
	}

	return nil
}

// NormalizeLabel lowercases and validates a wallet label. Labels are
// unique within an owner's namespace; uniqueness itself is enforced by the
// store.
func NormalizeLabel(label string) (string, error) {
	clean := strings.ToLower(strings.TrimSpace(label))
	if !labelPattern.MatchString(clean) {
		return "", fmt.Errorf("label must be 1-20 characters (lowercase letters, numbers, hyphens)")
	}
	return clean, nil
}

// ValidateOwnerID validates the controlling principal identifier, which is
// an external wallet address
func ValidateOwnerID(ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("owner id cannot be empty")
	}
	return ValidateAddress(ownerID)
}
