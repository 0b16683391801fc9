package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	key1 := DeriveKey("correct horse battery staple", salt)
	key2 := DeriveKey("correct horse battery staple", salt)

	assert.Len(t, key1, KeyLength)
	assert.Equal(t, key1, key2)
}

func TestDeriveKeyVariesWithInputs(t *testing.T) {
	salt1, err := NewSalt()
	require.NoError(t, err)
	salt2, err := NewSalt()
	require.NoError(t, err)

	base := DeriveKey("correct horse battery staple", salt1)

	assert.NotEqual(t, base, DeriveKey("correct horse battery staple", salt2),
		"different salts must produce different keys")
	assert.NotEqual(t, base, DeriveKey("correct horse battery stapl3", salt1),
		"different passwords must produce different keys")
}

func TestDeriveKeyRejectsBadSalt(t *testing.T) {
	assert.Panics(t, func() {
		DeriveKey("password", []byte("short"))
	})
}

func TestNewSalt(t *testing.T) {
	salt1, err := NewSalt()
	require.NoError(t, err)
	salt2, err := NewSalt()
	require.NoError(t, err)

	assert.Len(t, salt1, SaltLength)
	assert.NotEqual(t, salt1, salt2)
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)
}
