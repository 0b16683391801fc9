package vault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/seipay/custody/internal/crypto"
	apperrors "github.com/seipay/custody/pkg/errors"
	"github.com/seipay/custody/pkg/types"
)

const (
	// recoveryPrefix heads every recovery code
	recoveryPrefix = "SEIPAY-WALLET"

	// sharePrefix heads every recovery share
	sharePrefix = "SEIPAY-SHARE"

	// recoveryVersion is the backup payload version
	recoveryVersion = "1.0"

	// checksumLength is the number of hex characters in the code checksum
	checksumLength = 8
)

// recoveryPayload is the JSON body sealed inside a recovery code. The
// record's envelope fields are redacted by VaultRecord's own JSON tags, so
// the backup carries them explicitly; a payload without them is useless.
type recoveryPayload struct {
	Record    *types.VaultRecord `json:"wallet"`
	Envelope  backupEnvelope     `json:"envelope"`
	Timestamp int64              `json:"timestamp"`
	Version   string             `json:"version"`
}

// backupEnvelope is the inner password envelope of the backed-up wallet,
// base64 transport encoding
type backupEnvelope struct {
	Ciphertext     string `json:"ciphertext"`
	Salt           string `json:"salt"`
	Nonce          string `json:"nonce"`
	AuthTag        string `json:"auth_tag"`
	KeyFingerprint string `json:"key_fingerprint"`
}

// sealedBackup is the transport form of the sealed payload
type sealedBackup struct {
	Ciphertext string `json:"ciphertext"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	AuthTag    string `json:"auth_tag"`
}

// ExportRecoveryCode wraps a full vault record as a password-sealed,
// checksummed code: SEIPAY-WALLET-<8-char checksum>-<base64 blob>.
// The record's envelope stays encrypted inside the backup; the master
// password only wraps it once more.
func ExportRecoveryCode(record *types.VaultRecord, masterPassword string) (string, error) {
	payload, err := json.Marshal(&recoveryPayload{
		Record: record,
		Envelope: backupEnvelope{
			Ciphertext:     record.Ciphertext,
			Salt:           record.Salt,
			Nonce:          record.Nonce,
			AuthTag:        record.AuthTag,
			KeyFingerprint: record.KeyFingerprint,
		},
		Timestamp: time.Now().UnixMilli(),
		Version:   recoveryVersion,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup: %w", err)
	}

	env, err := Seal(payload, masterPassword)
	if err != nil {
		return "", err
	}

	blob, err := json.Marshal(&sealedBackup{
		Ciphertext: base64.StdEncoding.EncodeToString(env.Ciphertext),
		Salt:       base64.StdEncoding.EncodeToString(env.Salt),
		Nonce:      base64.StdEncoding.EncodeToString(env.Nonce),
		AuthTag:    base64.StdEncoding.EncodeToString(env.Tag),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sealed backup: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(blob)
	checksum := crypto.Fingerprint([]byte(encoded))[:checksumLength]

	return fmt.Sprintf("%s-%s-%s", recoveryPrefix, checksum, encoded), nil
}

// RestoreRecoveryCode verifies and unwraps a recovery code. The checksum is
// recomputed and compared before any decryption attempt.
func RestoreRecoveryCode(code, masterPassword string) (*types.VaultRecord, error) {
	if !strings.HasPrefix(code, recoveryPrefix+"-") {
		return nil, apperrors.ErrCorruptedRecoveryCode
	}

	parts := strings.Split(code, "-")
	if len(parts) != 4 || len(parts[2]) != checksumLength {
		return nil, apperrors.ErrCorruptedRecoveryCode
	}
	checksum, encoded := parts[2], parts[3]

	if crypto.Fingerprint([]byte(encoded))[:checksumLength] != checksum {
		return nil, apperrors.ErrChecksumMismatch
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.ErrCorruptedRecoveryCode
	}

	var backup sealedBackup
	if err := json.Unmarshal(blob, &backup); err != nil {
		return nil, apperrors.ErrCorruptedRecoveryCode
	}

	env, err := FromRecord(&types.VaultRecord{
		Ciphertext: backup.Ciphertext,
		Salt:       backup.Salt,
		Nonce:      backup.Nonce,
		AuthTag:    backup.AuthTag,
	})
	if err != nil {
		return nil, apperrors.ErrCorruptedRecoveryCode
	}
	// the backup seal has no plaintext fingerprint of its own; the record's
	// key fingerprint inside the payload is the integrity anchor
	payload, err := env.openWithoutFingerprint(masterPassword)
	if err != nil {
		return nil, apperrors.WrongPassword(0)
	}

	var restored recoveryPayload
	if err := json.Unmarshal(payload, &restored); err != nil {
		return nil, apperrors.ErrCorruptedRecoveryCode
	}
	if restored.Record == nil || restored.Envelope.Ciphertext == "" {
		return nil, apperrors.ErrCorruptedRecoveryCode
	}

	restored.Record.Ciphertext = restored.Envelope.Ciphertext
	restored.Record.Salt = restored.Envelope.Salt
	restored.Record.Nonce = restored.Envelope.Nonce
	restored.Record.AuthTag = restored.Envelope.AuthTag
	restored.Record.KeyFingerprint = restored.Envelope.KeyFingerprint

	return restored.Record, nil
}

// openWithoutFingerprint decrypts an envelope that carries no plaintext
// fingerprint. Only valid for recovery backups, where GCM authentication
// plus the outer checksum cover integrity.
func (e *Envelope) openWithoutFingerprint(password string) ([]byte, error) {
	if len(e.Salt) != crypto.SaltLength {
		return nil, crypto.ErrDecryptFailed
	}

	key := crypto.DeriveKey(password, e.Salt)
	defer crypto.Zero(key)

	return crypto.Decrypt(&crypto.SealedKey{
		Ciphertext: e.Ciphertext,
		Nonce:      e.Nonce,
		Tag:        e.Tag,
	}, key)
}

// SplitRecoveryCode shards a recovery code into parts shares, threshold of
// which reconstruct it. Each share is independently useless.
func SplitRecoveryCode(code string, parts, threshold int) ([]string, error) {
	if !strings.HasPrefix(code, recoveryPrefix+"-") {
		return nil, apperrors.ErrCorruptedRecoveryCode
	}

	shares, err := crypto.SplitSecret([]byte(code), parts, threshold)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(shares))
	for i, share := range shares {
		out[i] = fmt.Sprintf("%s-%s", sharePrefix, base64.StdEncoding.EncodeToString(share))
	}
	return out, nil
}

// CombineRecoveryShares reconstructs a recovery code from shares produced
// by SplitRecoveryCode
func CombineRecoveryShares(shares []string) (string, error) {
	raw := make([][]byte, 0, len(shares))
	for _, share := range shares {
		encoded, ok := strings.CutPrefix(share, sharePrefix+"-")
		if !ok {
			return "", fmt.Errorf("invalid recovery share format")
		}
		b, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("invalid recovery share encoding: %w", err)
		}
		raw = append(raw, b)
	}

	secret, err := crypto.CombineShares(raw)
	if err != nil {
		return "", err
	}

	code := string(secret)
	if !strings.HasPrefix(code, recoveryPrefix+"-") {
		return "", apperrors.ErrCorruptedRecoveryCode
	}
	return code, nil
}
