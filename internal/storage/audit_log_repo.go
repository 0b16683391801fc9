package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLogRepo handles wallet audit log operations
type AuditLogRepo struct {
	store *Store
}

// NewAuditLogRepo creates a new audit log repository
func NewAuditLogRepo(store *Store) *AuditLogRepo {
	return &AuditLogRepo{store: store}
}

// AuditLogEntry represents a wallet audit log entry. Entries never carry
// key material, passwords or envelope fields.
type AuditLogEntry struct {
	OwnerID  string                 `json:"owner_id"`
	WalletID uuid.UUID              `json:"wallet_id"`
	Action   string                 `json:"action"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Log appends an audit log entry
func (r *AuditLogRepo) Log(ctx context.Context, entry *AuditLogEntry) error {
	var metadataJSON []byte
	var err error
	if entry.Metadata != nil {
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return err
		}
	}

	_, err = r.store.pool.Exec(ctx, `
		INSERT INTO wallet_audit_logs (owner_id, wallet_id, action, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		entry.OwnerID,
		entry.WalletID,
		entry.Action,
		metadataJSON,
		time.Now().UTC(),
	)
	return err
}

// ListByOwner retrieves recent audit entries for an owner, newest first
func (r *AuditLogRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.store.pool.Query(ctx, `
		SELECT owner_id, wallet_id, action, COALESCE(metadata, 'null'::jsonb)
		FROM wallet_audit_logs
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*AuditLogEntry
	for rows.Next() {
		var entry AuditLogEntry
		var metadataJSON []byte
		if err := rows.Scan(&entry.OwnerID, &entry.WalletID, &entry.Action, &metadataJSON); err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			_ = json.Unmarshal(metadataJSON, &entry.Metadata)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Audit action constants
const (
	AuditActionWalletCreated    = "wallet_created"
	AuditActionWalletImported   = "wallet_imported"
	AuditActionWalletDeleted    = "wallet_deleted"
	AuditActionUnlockSucceeded  = "unlock_succeeded"
	AuditActionUnlockFailed     = "unlock_failed"
	AuditActionWalletLocked     = "wallet_locked"
	AuditActionAIAccessUpdated  = "ai_access_updated"
	AuditActionSpendAuthorized  = "spend_authorized"
	AuditActionSpendDenied      = "spend_denied"
	AuditActionSpendRecorded    = "spend_recorded"
	AuditActionRecoveryExported = "recovery_exported"
	AuditActionRecoveryRestored = "recovery_restored"
)
