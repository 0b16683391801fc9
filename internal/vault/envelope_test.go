package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seipay/custody/internal/crypto"
	"github.com/seipay/custody/pkg/types"
)

const testPassword = "correct horse battery staple 9!"

func TestSealOpenRoundtrip(t *testing.T) {
	keyBytes := []byte("thirty-two bytes of private key!")

	env, err := Seal(keyBytes, testPassword)
	require.NoError(t, err)

	opened, err := env.Open(testPassword)
	require.NoError(t, err)
	assert.Equal(t, keyBytes, opened)
}

func TestOpenWrongPassword(t *testing.T) {
	env, err := Seal([]byte("thirty-two bytes of private key!"), testPassword)
	require.NoError(t, err)

	opened, err := env.Open("not the password")
	assert.ErrorIs(t, err, crypto.ErrDecryptFailed)
	assert.Nil(t, opened)
}

func TestOpenRejectsTamperedFingerprint(t *testing.T) {
	env, err := Seal([]byte("thirty-two bytes of private key!"), testPassword)
	require.NoError(t, err)

	// decryption itself would succeed; the fingerprint check must still
	// fail with the same error as a wrong password
	env.Fingerprint = crypto.Fingerprint([]byte("a different key"))

	opened, err := env.Open(testPassword)
	assert.ErrorIs(t, err, crypto.ErrDecryptFailed)
	assert.Nil(t, opened)
}

func TestOpenRejectsBadSalt(t *testing.T) {
	env, err := Seal([]byte("thirty-two bytes of private key!"), testPassword)
	require.NoError(t, err)

	env.Salt = env.Salt[:8]

	_, err = env.Open(testPassword)
	assert.ErrorIs(t, err, crypto.ErrDecryptFailed)
}

func TestRecordRoundtrip(t *testing.T) {
	keyBytes := []byte("thirty-two bytes of private key!")

	env, err := Seal(keyBytes, testPassword)
	require.NoError(t, err)

	var record types.VaultRecord
	env.ApplyTo(&record)

	assert.NotEmpty(t, record.Ciphertext)
	assert.NotEmpty(t, record.Salt)
	assert.NotEmpty(t, record.Nonce)
	assert.NotEmpty(t, record.AuthTag)
	assert.Equal(t, env.Fingerprint, record.KeyFingerprint)

	decoded, err := FromRecord(&record)
	require.NoError(t, err)

	opened, err := decoded.Open(testPassword)
	require.NoError(t, err)
	assert.Equal(t, keyBytes, opened)
}

func TestFromRecordRejectsCorruptedEncoding(t *testing.T) {
	env, err := Seal([]byte("thirty-two bytes of private key!"), testPassword)
	require.NoError(t, err)

	var record types.VaultRecord
	env.ApplyTo(&record)
	record.Salt = "not base64 !!!"

	_, err = FromRecord(&record)
	assert.Error(t, err)
}
