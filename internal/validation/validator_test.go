package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{
			name:    "valid_address",
			address: "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
			wantErr: false,
		},
		{
			name:    "valid_lowercase",
			address: "0x742d35cc6634c0532925a3b844bc454e4438f44e",
			wantErr: false,
		},
		{name: "empty", address: "", wantErr: true},
		{name: "missing_prefix", address: "742d35Cc6634C0532925a3b844Bc454e4438f44e", wantErr: true},
		{name: "too_short", address: "0x742d35Cc", wantErr: true},
		{name: "non_hex", address: "0xZZZd35Cc6634C0532925a3b844Bc454e4438f44e", wantErr: true},
		{name: "zero_address", address: "0x0000000000000000000000000000000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		want    string
		wantErr bool
	}{
		{name: "simple", label: "savings", want: "savings"},
		{name: "uppercase_normalized", label: "Savings", want: "savings"},
		{name: "whitespace_trimmed", label: "  trading  ", want: "trading"},
		{name: "hyphens_and_digits", label: "agent-wallet-2", want: "agent-wallet-2"},
		{name: "empty", label: "", wantErr: true},
		{name: "too_long", label: "abcdefghijklmnopqrstu", wantErr: true},
		{name: "invalid_characters", label: "my wallet!", wantErr: true},
		{name: "underscore_rejected", label: "my_wallet", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLabel(tt.label)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateOwnerID(t *testing.T) {
	assert.NoError(t, ValidateOwnerID("0x742d35Cc6634C0532925a3b844Bc454e4438f44e"))
	assert.Error(t, ValidateOwnerID(""))
	assert.Error(t, ValidateOwnerID("not-an-address"))
}
