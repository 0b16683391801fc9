package crypto

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	generated, err := GenerateKey()
	require.NoError(t, err)

	assert.True(t, IsHexAddress(generated.Address))
	assert.Len(t, strings.Fields(generated.Mnemonic), 24)
}

func TestKeyFromMnemonicRecoversKey(t *testing.T) {
	generated, err := GenerateKey()
	require.NoError(t, err)

	recovered, err := KeyFromMnemonic(generated.Mnemonic)
	require.NoError(t, err)

	assert.Equal(t, KeyBytes(generated.PrivateKey), KeyBytes(recovered))
	assert.Equal(t, generated.Address, AddressFromKey(recovered))
}

func TestKeyFromMnemonicRejectsGarbage(t *testing.T) {
	_, err := KeyFromMnemonic("not a valid mnemonic phrase at all")
	assert.Error(t, err)
}

func TestParsePrivateKey(t *testing.T) {
	generated, err := GenerateKey()
	require.NoError(t, err)
	hexKey := hex.EncodeToString(KeyBytes(generated.PrivateKey))

	tests := []struct {
		name     string
		material string
		wantErr  bool
	}{
		{name: "bare_hex", material: hexKey, wantErr: false},
		{name: "with_0x_prefix", material: "0x" + hexKey, wantErr: false},
		{name: "uppercase_hex", material: strings.ToUpper(hexKey), wantErr: false},
		{name: "empty", material: "", wantErr: true},
		{name: "too_short", material: hexKey[:40], wantErr: true},
		{name: "too_long", material: hexKey + "ab", wantErr: true},
		{name: "non_hex_characters", material: strings.Repeat("zz", 32), wantErr: true},
		{name: "whitespace_padded", material: " " + hexKey + " ", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParsePrivateKey(tt.material)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, generated.Address, AddressFromKey(key))
		})
	}
}

func TestKeyBytesRoundtrip(t *testing.T) {
	generated, err := GenerateKey()
	require.NoError(t, err)

	b := KeyBytes(generated.PrivateKey)
	assert.Len(t, b, KeyLength)

	recovered, err := KeyFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, generated.Address, AddressFromKey(recovered))
}
