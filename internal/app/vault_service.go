// Package app orchestrates the wallet lifecycle: generate, import, unlock,
// agent access policy and recovery, on top of the crypto, vault, policy and
// storage layers.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seipay/custody/internal/crypto"
	"github.com/seipay/custody/internal/keywrap"
	"github.com/seipay/custody/internal/logger"
	"github.com/seipay/custody/internal/metrics"
	"github.com/seipay/custody/internal/policy"
	"github.com/seipay/custody/internal/storage"
	"github.com/seipay/custody/internal/validation"
	"github.com/seipay/custody/internal/vault"
	apperrors "github.com/seipay/custody/pkg/errors"
	"github.com/seipay/custody/pkg/types"
)

// VaultStore is the persistence contract the service depends on. The
// counter operations must be atomic per wallet: concurrent failed unlocks
// and concurrent spends may never lose an update.
type VaultStore interface {
	Create(ctx context.Context, record *types.VaultRecord) error
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*types.VaultRecord, error)
	GetByAddress(ctx context.Context, address string) (*types.VaultRecord, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*types.VaultRecord, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	RecordFailedUnlock(ctx context.Context, id uuid.UUID) (attempts int, locked bool, err error)
	ResetFailedUnlock(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	UpdateAgentAccess(ctx context.Context, ownerID string, id uuid.UUID, access types.AgentAccess) error
	ApplySpend(ctx context.Context, id uuid.UUID, amount decimal.Decimal, now time.Time) (decimal.Decimal, bool, error)
}

// AuditLog appends and reads best-effort audit entries
type AuditLog interface {
	Log(ctx context.Context, entry *storage.AuditLogEntry) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*storage.AuditLogEntry, error)
}

// VaultService handles custodial wallet operations
type VaultService struct {
	vaults  VaultStore
	audit   AuditLog
	wrapper keywrap.Wrapper
	clock   func() time.Time
}

// NewVaultService creates a new vault service
func NewVaultService(vaults VaultStore, audit AuditLog, wrapper keywrap.Wrapper) *VaultService {
	if wrapper == nil {
		wrapper = keywrap.NoopWrapper{}
	}
	return &VaultService{
		vaults:  vaults,
		audit:   audit,
		wrapper: wrapper,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// GenerateRequest represents a request to generate a custodial wallet
type GenerateRequest struct {
	OwnerID  string
	Password string
	Label    string
}

// GenerateResponse includes the created wallet and the one-time recovery
// phrase. The phrase is returned exactly once and never persisted.
type GenerateResponse struct {
	Wallet         *types.WalletInfo `json:"wallet"`
	RecoveryPhrase string            `json:"recovery_phrase"`
}

// Generate creates a fresh custodial wallet encrypted under the owner's
// password. Weak passwords are rejected before any cryptographic work.
func (s *VaultService) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if err := validation.ValidateOwnerID(req.OwnerID); err != nil {
		return nil, apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Invalid owner", err.Error(), 400)
	}

	label, err := s.normalizeLabel(req.Label)
	if err != nil {
		return nil, err
	}

	if strength := validation.CheckPasswordStrength(req.Password); !strength.Valid {
		return nil, apperrors.WeakPassword(strength.FeedbackString())
	}

	generated, err := crypto.GenerateKey()
	if err != nil {
		return nil, apperrors.ErrInternalError
	}

	keyBytes := crypto.KeyBytes(generated.PrivateKey)
	defer crypto.Zero(keyBytes)

	record, err := s.sealRecord(ctx, keyBytes, req.Password, req.OwnerID, generated.Address, types.WalletKindGenerated, label)
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, record, storage.AuditActionWalletCreated, map[string]interface{}{
		"kind":    record.Kind,
		"address": record.Address,
	})
	metrics.WalletsCreated.WithLabelValues(string(types.WalletKindGenerated)).Inc()

	return &GenerateResponse{
		Wallet:         record.Info(),
		RecoveryPhrase: generated.Mnemonic,
	}, nil
}

// ImportRequest represents a request to import an existing private key
type ImportRequest struct {
	OwnerID     string
	KeyMaterial string
	Password    string
	Label       string
}

// Import encrypts and stores an owner-supplied private key. Malformed key
// material is rejected before any other work, leaving no partial state.
func (s *VaultService) Import(ctx context.Context, req *ImportRequest) (*types.WalletInfo, error) {
	if err := validation.ValidateOwnerID(req.OwnerID); err != nil {
		return nil, apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Invalid owner", err.Error(), 400)
	}

	privateKey, err := crypto.ParsePrivateKey(req.KeyMaterial)
	if err != nil {
		return nil, apperrors.ErrInvalidKeyFormat
	}

	label, err := s.normalizeLabel(req.Label)
	if err != nil {
		return nil, err
	}

	if strength := validation.CheckPasswordStrength(req.Password); !strength.Valid {
		return nil, apperrors.WeakPassword(strength.FeedbackString())
	}

	keyBytes := crypto.KeyBytes(privateKey)
	defer crypto.Zero(keyBytes)

	address := crypto.AddressFromKey(privateKey)
	record, err := s.sealRecord(ctx, keyBytes, req.Password, req.OwnerID, address, types.WalletKindImported, label)
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, record, storage.AuditActionWalletImported, map[string]interface{}{
		"kind":    record.Kind,
		"address": record.Address,
	})
	metrics.WalletsCreated.WithLabelValues(string(types.WalletKindImported)).Inc()

	return record.Info(), nil
}

// sealRecord runs the shared encryption path: seal the key under the
// password, wrap the ciphertext for at-rest storage, and persist the
// record with the creation invariants (duplicate address, wallet cap).
func (s *VaultService) sealRecord(ctx context.Context, keyBytes []byte, password, ownerID, address string, kind types.WalletKind, label *string) (*types.VaultRecord, error) {
	existing, err := s.vaults.GetByAddress(ctx, address)
	if err != nil {
		return nil, storeError(err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateAddress
	}

	env, err := vault.Seal(keyBytes, password)
	if err != nil {
		return nil, apperrors.ErrInternalError
	}

	wrapped, err := s.wrapper.Wrap(ctx, env.Ciphertext)
	if err != nil {
		return nil, apperrors.ErrInternalError
	}
	env.Ciphertext = wrapped

	now := s.clock()
	record := &types.VaultRecord{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Address:   address,
		Kind:      kind,
		Label:     label,
		CreatedAt: now,
		Access: types.AgentAccess{
			Enabled:     false,
			Level:       types.AccessLevelNone,
			SpentToday:  decimal.Zero,
			LastResetAt: now,
		},
	}
	env.ApplyTo(record)

	if err := s.vaults.Create(ctx, record); err != nil {
		return nil, storeError(err)
	}
	return record, nil
}

// Unlock decrypts a wallet's private key for one session. Locked wallets
// short-circuit before any key derivation; a failed attempt is counted with
// one atomic increment before the error is surfaced.
func (s *VaultService) Unlock(ctx context.Context, ownerID string, walletID uuid.UUID, password string) (*Signer, error) {
	record, err := s.vaults.GetByID(ctx, ownerID, walletID)
	if err != nil {
		return nil, storeError(err)
	}
	if record == nil {
		return nil, apperrors.WalletNotFound(walletID.String())
	}

	if record.IsLocked {
		metrics.UnlockAttempts.WithLabelValues(metrics.ResultLocked).Inc()
		return nil, apperrors.ErrWalletLocked
	}

	env, err := vault.FromRecord(record)
	if err != nil {
		logger.Error(ctx, "corrupted vault record", "wallet_id", walletID)
		return nil, apperrors.ErrInternalError
	}

	unwrapped, err := s.wrapper.Unwrap(ctx, env.Ciphertext)
	if err != nil {
		return nil, apperrors.ErrInternalError
	}
	env.Ciphertext = unwrapped

	keyBytes, err := env.Open(password)
	if err != nil {
		// AEAD failure and fingerprint mismatch take the identical path
		return nil, s.handleFailedUnlock(ctx, record)
	}
	defer crypto.Zero(keyBytes)

	privateKey, err := crypto.KeyFromBytes(keyBytes)
	if err != nil {
		return nil, s.handleFailedUnlock(ctx, record)
	}

	if err := s.vaults.ResetFailedUnlock(ctx, walletID, s.clock()); err != nil {
		return nil, storeError(err)
	}

	s.logAudit(ctx, record, storage.AuditActionUnlockSucceeded, nil)
	metrics.UnlockAttempts.WithLabelValues(metrics.ResultSuccess).Inc()

	return NewSigner(privateKey, record.Address, walletID), nil
}

// handleFailedUnlock applies the lockout policy after a failed unlock and
// chooses the surfaced error. The log line is identical for every failure
// mode.
func (s *VaultService) handleFailedUnlock(ctx context.Context, record *types.VaultRecord) error {
	attempts, locked, err := s.vaults.RecordFailedUnlock(ctx, record.ID)
	if err != nil {
		return storeError(err)
	}

	status := policy.EvaluateFailedAttempt(attempts)
	logger.Warn(ctx, "wallet unlock failed", "wallet_id", record.ID, "attempts", attempts)

	s.logAudit(ctx, record, storage.AuditActionUnlockFailed, map[string]interface{}{
		"attempts": attempts,
		"locked":   locked,
	})

	if locked || status.Locked {
		s.logAudit(ctx, record, storage.AuditActionWalletLocked, map[string]interface{}{
			"attempts": attempts,
		})
		metrics.UnlockAttempts.WithLabelValues(metrics.ResultLocked).Inc()
		metrics.Lockouts.Inc()
		return apperrors.ErrWalletLocked
	}

	metrics.UnlockAttempts.WithLabelValues(metrics.ResultWrongPassword).Inc()
	return apperrors.WrongPassword(status.AttemptsRemaining)
}

// GetWallet returns the metadata view of one wallet
func (s *VaultService) GetWallet(ctx context.Context, ownerID string, walletID uuid.UUID) (*types.WalletInfo, error) {
	record, err := s.vaults.GetByID(ctx, ownerID, walletID)
	if err != nil {
		return nil, storeError(err)
	}
	if record == nil {
		return nil, apperrors.WalletNotFound(walletID.String())
	}
	return record.Info(), nil
}

// ListWallets returns the metadata view of all of an owner's wallets,
// without envelope fields
func (s *VaultService) ListWallets(ctx context.Context, ownerID string) ([]*types.WalletInfo, error) {
	records, err := s.vaults.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError(err)
	}

	infos := make([]*types.WalletInfo, 0, len(records))
	for _, record := range records {
		infos = append(infos, record.Info())
	}
	return infos, nil
}

// Delete removes a wallet permanently
func (s *VaultService) Delete(ctx context.Context, ownerID string, walletID uuid.UUID) error {
	record, err := s.vaults.GetByID(ctx, ownerID, walletID)
	if err != nil {
		return storeError(err)
	}
	if record == nil {
		return apperrors.WalletNotFound(walletID.String())
	}

	if err := s.vaults.Delete(ctx, ownerID, walletID); err != nil {
		return storeError(err)
	}

	s.logAudit(ctx, record, storage.AuditActionWalletDeleted, map[string]interface{}{
		"address": record.Address,
	})
	return nil
}

// UpdateAccessRequest represents a change to a wallet's agent access policy
type UpdateAccessRequest struct {
	Enabled    bool
	Level      string
	DailyLimit *decimal.Decimal
}

// UpdateAgentAccess replaces the agent access policy and resets the daily
// spend window
func (s *VaultService) UpdateAgentAccess(ctx context.Context, ownerID string, walletID uuid.UUID, req *UpdateAccessRequest) error {
	if !types.ValidAccessLevel(req.Level) {
		return apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Invalid access level", req.Level, 400)
	}
	if req.DailyLimit != nil && !req.DailyLimit.IsPositive() {
		return apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Daily limit must be positive", req.DailyLimit.String(), 400)
	}

	record, err := s.vaults.GetByID(ctx, ownerID, walletID)
	if err != nil {
		return storeError(err)
	}
	if record == nil {
		return apperrors.WalletNotFound(walletID.String())
	}

	access := types.AgentAccess{
		Enabled:     req.Enabled,
		Level:       types.AccessLevel(req.Level),
		DailyLimit:  req.DailyLimit,
		SpentToday:  decimal.Zero,
		LastResetAt: s.clock(),
	}

	if err := s.vaults.UpdateAgentAccess(ctx, ownerID, walletID, access); err != nil {
		return storeError(err)
	}

	s.logAudit(ctx, record, storage.AuditActionAIAccessUpdated, map[string]interface{}{
		"enabled":     req.Enabled,
		"level":       req.Level,
		"daily_limit": limitString(req.DailyLimit),
	})
	return nil
}

// AuthorizeAgentSpend checks whether an agent may spend amount from a
// wallet. Read-only: the daily window roll is evaluated but not committed.
func (s *VaultService) AuthorizeAgentSpend(ctx context.Context, ownerID string, walletID uuid.UUID, amount decimal.Decimal) (policy.Decision, error) {
	if !amount.IsPositive() {
		return policy.Decision{}, apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Amount must be positive", amount.String(), 400)
	}

	record, err := s.vaults.GetByID(ctx, ownerID, walletID)
	if err != nil {
		return policy.Decision{}, storeError(err)
	}
	if record == nil {
		return policy.Decision{}, apperrors.WalletNotFound(walletID.String())
	}

	decision := policy.AuthorizeSpend(record.Access, amount, s.clock())
	if decision.Allowed {
		metrics.SpendDecisions.WithLabelValues(metrics.DecisionAllowed).Inc()
		s.logAudit(ctx, record, storage.AuditActionSpendAuthorized, map[string]interface{}{
			"amount": amount.String(),
		})
	} else {
		metrics.SpendDecisions.WithLabelValues(metrics.DecisionDenied).Inc()
		s.logAudit(ctx, record, storage.AuditActionSpendDenied, map[string]interface{}{
			"amount": amount.String(),
			"reason": decision.Reason,
		})
	}
	return decision, nil
}

// RecordAgentSpend commits an approved spend against the daily window as
// one atomic conditional update. A concurrent spend that would push the
// total over the cap makes the commit fail closed with SpendDenied.
func (s *VaultService) RecordAgentSpend(ctx context.Context, ownerID string, walletID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Amount must be positive", amount.String(), 400)
	}

	record, err := s.vaults.GetByID(ctx, ownerID, walletID)
	if err != nil {
		return decimal.Zero, storeError(err)
	}
	if record == nil {
		return decimal.Zero, apperrors.WalletNotFound(walletID.String())
	}

	now := s.clock()
	if decision := policy.AuthorizeSpend(record.Access, amount, now); !decision.Allowed {
		metrics.SpendDecisions.WithLabelValues(metrics.DecisionDenied).Inc()
		return decimal.Zero, apperrors.SpendDenied(decision.Reason)
	}

	spent, ok, err := s.vaults.ApplySpend(ctx, walletID, amount, now)
	if err != nil {
		return decimal.Zero, storeError(err)
	}
	if !ok {
		metrics.SpendDecisions.WithLabelValues(metrics.DecisionDenied).Inc()
		return decimal.Zero, apperrors.SpendDenied("daily limit exceeded")
	}

	s.logAudit(ctx, record, storage.AuditActionSpendRecorded, map[string]interface{}{
		"amount":      amount.String(),
		"spent_today": spent.String(),
	})
	return spent, nil
}

// AuditTrail returns an owner's recent audit entries, newest first
func (s *VaultService) AuditTrail(ctx context.Context, ownerID string, limit int) ([]*storage.AuditLogEntry, error) {
	if s.audit == nil {
		return nil, nil
	}
	entries, err := s.audit.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, storeError(err)
	}
	return entries, nil
}

// logAudit appends an audit entry best-effort; audit failures never block
// or fail the primary operation
func (s *VaultService) logAudit(ctx context.Context, record *types.VaultRecord, action string, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	entry := &storage.AuditLogEntry{
		OwnerID:  record.OwnerID,
		WalletID: record.ID,
		Action:   action,
		Metadata: metadata,
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		logger.Warn(ctx, "audit log write failed", "action", action, "error", err)
	}
}

func (s *VaultService) normalizeLabel(label string) (*string, error) {
	if label == "" {
		return nil, nil
	}
	clean, err := validation.NormalizeLabel(label)
	if err != nil {
		return nil, apperrors.NewWithDetail(apperrors.ErrCodeInvalidLabel, "Invalid wallet label", err.Error(), 400)
	}
	return &clean, nil
}

// storeError passes application errors through and wraps everything else
// as a storage failure, never conflating it with authentication failure
func storeError(err error) error {
	if _, ok := apperrors.IsAppError(err); ok {
		return err
	}
	return apperrors.StorageUnavailable(err)
}

func limitString(limit *decimal.Decimal) string {
	if limit == nil {
		return ""
	}
	return limit.String()
}
