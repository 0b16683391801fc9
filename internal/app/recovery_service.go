package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/seipay/custody/internal/storage"
	"github.com/seipay/custody/internal/vault"
	apperrors "github.com/seipay/custody/pkg/errors"
	"github.com/seipay/custody/pkg/types"
)

// ExportRecoveryCode produces a portable, password-wrapped backup of one
// wallet. The at-rest wrap is removed first so the code can be restored
// into any deployment; the inner password envelope stays intact.
func (s *VaultService) ExportRecoveryCode(ctx context.Context, ownerID string, walletID uuid.UUID, masterPassword string) (string, error) {
	record, err := s.vaults.GetByID(ctx, ownerID, walletID)
	if err != nil {
		return "", storeError(err)
	}
	if record == nil {
		return "", apperrors.WalletNotFound(walletID.String())
	}

	env, err := vault.FromRecord(record)
	if err != nil {
		return "", apperrors.ErrInternalError
	}
	unwrapped, err := s.wrapper.Unwrap(ctx, env.Ciphertext)
	if err != nil {
		return "", apperrors.ErrInternalError
	}
	env.Ciphertext = unwrapped

	portable := *record
	env.ApplyTo(&portable)

	code, err := vault.ExportRecoveryCode(&portable, masterPassword)
	if err != nil {
		return "", apperrors.ErrInternalError
	}

	s.logAudit(ctx, record, storage.AuditActionRecoveryExported, nil)
	return code, nil
}

// ExportRecoveryShares exports a recovery code sharded into parts shares,
// threshold of which reconstruct it
func (s *VaultService) ExportRecoveryShares(ctx context.Context, ownerID string, walletID uuid.UUID, masterPassword string, parts, threshold int) ([]string, error) {
	code, err := s.ExportRecoveryCode(ctx, ownerID, walletID, masterPassword)
	if err != nil {
		return nil, err
	}
	shares, err := vault.SplitRecoveryCode(code, parts, threshold)
	if err != nil {
		return nil, apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Invalid share configuration", err.Error(), 400)
	}
	return shares, nil
}

// RestoreRecoveryCode restores a wallet from a recovery code into the
// caller's account. The checksum is verified before any decryption, and
// the restored record passes through the same creation invariants as a
// fresh import (duplicate address, wallet cap).
func (s *VaultService) RestoreRecoveryCode(ctx context.Context, ownerID, code, masterPassword string) (*RestoredWallet, error) {
	record, err := vault.RestoreRecoveryCode(code, masterPassword)
	if err != nil {
		return nil, err
	}

	existing, err := s.vaults.GetByAddress(ctx, record.Address)
	if err != nil {
		return nil, storeError(err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateAddress
	}

	// re-apply the at-rest wrap before persisting
	env, err := vault.FromRecord(record)
	if err != nil {
		return nil, apperrors.ErrCorruptedRecoveryCode
	}
	wrapped, err := s.wrapper.Wrap(ctx, env.Ciphertext)
	if err != nil {
		return nil, apperrors.ErrInternalError
	}
	env.Ciphertext = wrapped
	env.ApplyTo(record)

	// the address, not the row ID, is the wallet's identity; a fresh ID
	// avoids colliding with a row the backup's UUID still belongs to
	record.ID = uuid.New()
	record.OwnerID = ownerID
	record.CreatedAt = s.clock()

	if err := s.vaults.Create(ctx, record); err != nil {
		return nil, storeError(err)
	}

	s.logAudit(ctx, record, storage.AuditActionRecoveryRestored, map[string]interface{}{
		"address": record.Address,
	})

	return &RestoredWallet{Wallet: record.Info()}, nil
}

// RestoreRecoveryShares reconstructs a recovery code from shares and
// restores it
func (s *VaultService) RestoreRecoveryShares(ctx context.Context, ownerID string, shares []string, masterPassword string) (*RestoredWallet, error) {
	code, err := vault.CombineRecoveryShares(shares)
	if err != nil {
		return nil, apperrors.ErrCorruptedRecoveryCode
	}
	return s.RestoreRecoveryCode(ctx, ownerID, code, masterPassword)
}

// RestoredWallet is the result of a recovery restore
type RestoredWallet struct {
	Wallet *types.WalletInfo `json:"wallet"`
}
