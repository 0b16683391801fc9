package keywrap

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMasterKey() string {
	return hex.EncodeToString(make([]byte, 32))
}

func TestLocalWrapperRoundtrip(t *testing.T) {
	wrapper, err := NewLocalWrapper(testMasterKey())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("envelope ciphertext bytes")

	wrapped, err := wrapper.Wrap(ctx, data)
	require.NoError(t, err)
	assert.NotEqual(t, data, wrapped)

	unwrapped, err := wrapper.Unwrap(ctx, wrapped)
	require.NoError(t, err)
	assert.Equal(t, data, unwrapped)
}

func TestLocalWrapperRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "not_hex", key: "zz"},
		{name: "wrong_length", key: "deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLocalWrapper(tt.key)
			assert.Error(t, err)
		})
	}
}

func TestLocalWrapperRejectsTamperedData(t *testing.T) {
	wrapper, err := NewLocalWrapper(testMasterKey())
	require.NoError(t, err)

	ctx := context.Background()
	wrapped, err := wrapper.Wrap(ctx, []byte("envelope ciphertext bytes"))
	require.NoError(t, err)

	wrapped[len(wrapped)-1] ^= 0xFF
	_, err = wrapper.Unwrap(ctx, wrapped)
	assert.Error(t, err)
}

func TestNoopWrapperPassthrough(t *testing.T) {
	ctx := context.Background()
	data := []byte("envelope ciphertext bytes")

	wrapped, err := NoopWrapper{}.Wrap(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, data, wrapped)

	unwrapped, err := NoopWrapper{}.Unwrap(ctx, wrapped)
	require.NoError(t, err)
	assert.Equal(t, data, unwrapped)
}

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		name         string
		cfg          *Config
		wantProvider string
		wantErr      bool
	}{
		{
			name:         "default_none",
			cfg:          &Config{},
			wantProvider: string(ProviderNone),
		},
		{
			name:         "explicit_none",
			cfg:          &Config{Provider: "none"},
			wantProvider: string(ProviderNone),
		},
		{
			name:         "local",
			cfg:          &Config{Provider: "local", LocalMasterKeyHex: testMasterKey()},
			wantProvider: string(ProviderLocal),
		},
		{
			name:    "local_missing_key",
			cfg:     &Config{Provider: "local"},
			wantErr: true,
		},
		{
			name:    "unknown_provider",
			cfg:     &Config{Provider: "hsm"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapper, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, wrapper.Provider())
		})
	}
}
