package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := bytes.Repeat([]byte{0x42}, KeyLength)
	return key
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("thirty-two bytes of private key!")

	sealed, err := Encrypt(plaintext, key)
	require.NoError(t, err)

	assert.Len(t, sealed.Nonce, NonceLength)
	assert.Len(t, sealed.Tag, TagLength)
	assert.NotEqual(t, plaintext, sealed.Ciphertext)

	decrypted, err := Decrypt(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("same plaintext")

	sealed1, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	sealed2, err := Encrypt(plaintext, key)
	require.NoError(t, err)

	assert.NotEqual(t, sealed1.Nonce, sealed2.Nonce)
	assert.NotEqual(t, sealed1.Ciphertext, sealed2.Ciphertext)
}

func TestDecryptFailsClosed(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("thirty-two bytes of private key!")

	sealed, err := Encrypt(plaintext, key)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(sk *SealedKey) []byte
	}{
		{
			name: "wrong_key",
			mutate: func(sk *SealedKey) []byte {
				return bytes.Repeat([]byte{0x43}, KeyLength)
			},
		},
		{
			name: "tampered_ciphertext",
			mutate: func(sk *SealedKey) []byte {
				sk.Ciphertext[0] ^= 0xFF
				return key
			},
		},
		{
			name: "tampered_tag",
			mutate: func(sk *SealedKey) []byte {
				sk.Tag[0] ^= 0xFF
				return key
			},
		},
		{
			name: "tampered_nonce",
			mutate: func(sk *SealedKey) []byte {
				sk.Nonce[0] ^= 0xFF
				return key
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			copied := &SealedKey{
				Ciphertext: append([]byte(nil), sealed.Ciphertext...),
				Nonce:      append([]byte(nil), sealed.Nonce...),
				Tag:        append([]byte(nil), sealed.Tag...),
			}
			useKey := tt.mutate(copied)

			decrypted, err := Decrypt(copied, useKey)
			assert.ErrorIs(t, err, ErrDecryptFailed)
			assert.Nil(t, decrypted)
		})
	}
}
