package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	fp1 := Fingerprint([]byte("key material one"))
	fp2 := Fingerprint([]byte("key material one"))
	fp3 := Fingerprint([]byte("key material two"))

	assert.Len(t, fp1, 64)
	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
}

func TestFingerprintEqual(t *testing.T) {
	fp := Fingerprint([]byte("key material"))

	assert.True(t, FingerprintEqual(fp, fp))
	assert.False(t, FingerprintEqual(fp, Fingerprint([]byte("other"))))
	assert.False(t, FingerprintEqual(fp, fp[:63]))
}
