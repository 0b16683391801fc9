package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	apperrors "github.com/seipay/custody/pkg/errors"
	"github.com/seipay/custody/pkg/types"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations
const uniqueViolation = "23505"

// VaultRepository handles vault record operations
type VaultRepository struct {
	store *Store
}

// NewVaultRepository creates a new VaultRepository
func NewVaultRepository(store *Store) *VaultRepository {
	return &VaultRepository{store: store}
}

const vaultColumns = `
	id, owner_id, address, ciphertext, salt, nonce, auth_tag, key_fingerprint,
	kind, label, created_at, last_used_at, failed_unlock_attempts, is_locked,
	ai_enabled, ai_level, ai_daily_limit, ai_spent_today, ai_last_reset_at`

// Create inserts a new vault record. The insert is guarded by the per-owner
// wallet cap in the same statement, and the unique address index is the
// backstop for the duplicate-address invariant.
func (r *VaultRepository) Create(ctx context.Context, record *types.VaultRecord) error {
	query := `
		INSERT INTO custodial_wallets (
			id, owner_id, address, ciphertext, salt, nonce, auth_tag, key_fingerprint,
			kind, label, ai_enabled, ai_level, ai_daily_limit, ai_spent_today, ai_last_reset_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		WHERE (SELECT COUNT(*) FROM custodial_wallets WHERE owner_id = $2) < $16
		RETURNING created_at
	`

	var dailyLimit decimal.NullDecimal
	if record.Access.DailyLimit != nil {
		dailyLimit = decimal.NewNullDecimal(*record.Access.DailyLimit)
	}

	err := r.store.pool.QueryRow(ctx, query,
		record.ID,
		record.OwnerID,
		record.Address,
		record.Ciphertext,
		record.Salt,
		record.Nonce,
		record.AuthTag,
		record.KeyFingerprint,
		record.Kind,
		record.Label,
		record.Access.Enabled,
		record.Access.Level,
		dailyLimit,
		record.Access.SpentToday,
		record.Access.LastResetAt,
		types.MaxWalletsPerOwner,
	).Scan(&record.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrWalletLimitReached
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "label") {
			return apperrors.NewWithDetail(
				apperrors.ErrCodeDuplicateLabel,
				"Wallet label already exists",
				fmt.Sprintf("label: %s", derefLabel(record.Label)),
				409,
			)
		}
		return apperrors.ErrDuplicateAddress
	}
	if err != nil {
		return fmt.Errorf("failed to create vault record: %w", err)
	}

	return nil
}

// GetByID retrieves an owner's vault record. Returns nil when not found.
func (r *VaultRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*types.VaultRecord, error) {
	query := `SELECT ` + vaultColumns + ` FROM custodial_wallets WHERE id = $1 AND owner_id = $2`

	record, err := scanVaultRecord(r.store.pool.QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vault record: %w", err)
	}
	return record, nil
}

// GetByAddress retrieves a vault record by its public address, across all
// owners. Returns nil when not found.
func (r *VaultRepository) GetByAddress(ctx context.Context, address string) (*types.VaultRecord, error) {
	query := `SELECT ` + vaultColumns + ` FROM custodial_wallets WHERE address = $1`

	record, err := scanVaultRecord(r.store.pool.QueryRow(ctx, query, address))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vault record by address: %w", err)
	}
	return record, nil
}

// ListByOwner retrieves all of an owner's vault records
func (r *VaultRepository) ListByOwner(ctx context.Context, ownerID string) ([]*types.VaultRecord, error) {
	query := `SELECT ` + vaultColumns + ` FROM custodial_wallets WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.store.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vault records: %w", err)
	}
	defer rows.Close()

	var records []*types.VaultRecord
	for rows.Next() {
		record, err := scanVaultRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vault record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Delete removes an owner's vault record
func (r *VaultRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.store.pool.Exec(ctx,
		`DELETE FROM custodial_wallets WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete vault record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.WalletNotFound(id.String())
	}
	return nil
}

// RecordFailedUnlock applies one failed unlock attempt as a single atomic
// read-modify-write. Concurrent wrong attempts all count; the counter can
// never under-count to a last-write-wins race, and it saturates at the
// lockout threshold so attempts that raced past the locked short-circuit
// cannot push it higher. Returns the post-increment count and the
// persisted lock state.
func (r *VaultRepository) RecordFailedUnlock(ctx context.Context, id uuid.UUID) (int, bool, error) {
	query := `
		UPDATE custodial_wallets
		SET failed_unlock_attempts = LEAST(failed_unlock_attempts + 1, $2),
		    is_locked = is_locked OR failed_unlock_attempts + 1 >= $2
		WHERE id = $1
		RETURNING failed_unlock_attempts, is_locked
	`

	var attempts int
	var locked bool
	err := r.store.pool.QueryRow(ctx, query, id, types.LockoutThreshold).Scan(&attempts, &locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, apperrors.WalletNotFound(id.String())
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to record unlock attempt: %w", err)
	}
	return attempts, locked, nil
}

// ResetFailedUnlock clears the failed-attempt counter after a
// verified-correct unlock and stamps last_used_at
func (r *VaultRepository) ResetFailedUnlock(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	_, err := r.store.pool.Exec(ctx, `
		UPDATE custodial_wallets
		SET failed_unlock_attempts = 0, last_used_at = $2
		WHERE id = $1
	`, id, usedAt)
	if err != nil {
		return fmt.Errorf("failed to reset unlock attempts: %w", err)
	}
	return nil
}

// UpdateAgentAccess replaces a wallet's agent access policy, resetting the
// daily spend window
func (r *VaultRepository) UpdateAgentAccess(ctx context.Context, ownerID string, id uuid.UUID, access types.AgentAccess) error {
	var dailyLimit decimal.NullDecimal
	if access.DailyLimit != nil {
		dailyLimit = decimal.NewNullDecimal(*access.DailyLimit)
	}

	tag, err := r.store.pool.Exec(ctx, `
		UPDATE custodial_wallets
		SET ai_enabled = $3, ai_level = $4, ai_daily_limit = $5,
		    ai_spent_today = 0, ai_last_reset_at = $6
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID, access.Enabled, access.Level, dailyLimit, access.LastResetAt)
	if err != nil {
		return fmt.Errorf("failed to update agent access: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.WalletNotFound(id.String())
	}
	return nil
}

// ApplySpend commits one agent spend as a single conditional update: the
// daily window roll and the addition happen together, and the update only
// lands while the cap still holds. Zero rows affected means the cap was
// exceeded by a concurrent spend. Returns the new running total.
func (r *VaultRepository) ApplySpend(ctx context.Context, id uuid.UUID, amount decimal.Decimal, now time.Time) (decimal.Decimal, bool, error) {
	query := `
		UPDATE custodial_wallets
		SET ai_spent_today = CASE
			    WHEN ai_last_reset_at <= $2::timestamptz - INTERVAL '24 hours' THEN $3::numeric
			    ELSE ai_spent_today + $3::numeric
		    END,
		    ai_last_reset_at = CASE
			    WHEN ai_last_reset_at <= $2::timestamptz - INTERVAL '24 hours' THEN $2::timestamptz
			    ELSE ai_last_reset_at
		    END,
		    last_used_at = $2
		WHERE id = $1
		  AND ai_enabled
		  AND ai_level IN ('send_limited', 'full_access')
		  AND (ai_daily_limit IS NULL
		       OR (CASE
			           WHEN ai_last_reset_at <= $2::timestamptz - INTERVAL '24 hours' THEN $3::numeric
			           ELSE ai_spent_today + $3::numeric
		           END) <= ai_daily_limit)
		RETURNING ai_spent_today
	`

	var spent decimal.Decimal
	err := r.store.pool.QueryRow(ctx, query, id, now, amount).Scan(&spent)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to apply spend: %w", err)
	}
	return spent, true, nil
}

// scanVaultRecord scans one row into a VaultRecord
func scanVaultRecord(row pgx.Row) (*types.VaultRecord, error) {
	var record types.VaultRecord
	var dailyLimit decimal.NullDecimal

	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&record.Address,
		&record.Ciphertext,
		&record.Salt,
		&record.Nonce,
		&record.AuthTag,
		&record.KeyFingerprint,
		&record.Kind,
		&record.Label,
		&record.CreatedAt,
		&record.LastUsedAt,
		&record.FailedUnlockAttempts,
		&record.IsLocked,
		&record.Access.Enabled,
		&record.Access.Level,
		&dailyLimit,
		&record.Access.SpentToday,
		&record.Access.LastResetAt,
	)
	if err != nil {
		return nil, err
	}

	if dailyLimit.Valid {
		record.Access.DailyLimit = &dailyLimit.Decimal
	}
	return &record, nil
}

func derefLabel(label *string) string {
	if label == nil {
		return ""
	}
	return *label
}
