// Package mocks provides in-memory test doubles for the storage layer. The
// mock store mirrors the SQL semantics exactly: the wallet cap is enforced
// inside Create, and the counter operations are atomic under the mutex.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seipay/custody/internal/policy"
	"github.com/seipay/custody/internal/storage"
	apperrors "github.com/seipay/custody/pkg/errors"
	"github.com/seipay/custody/pkg/types"
)

// VaultStore is an in-memory implementation of the service's store contract
type VaultStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*types.VaultRecord

	// FailCreate forces Create to return an error, for storage-failure tests
	FailCreate error
}

// NewVaultStore creates an empty in-memory store
func NewVaultStore() *VaultStore {
	return &VaultStore{records: make(map[uuid.UUID]*types.VaultRecord)}
}

func (s *VaultStore) Create(ctx context.Context, record *types.VaultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCreate != nil {
		return s.FailCreate
	}

	count := 0
	for _, r := range s.records {
		if r.Address == record.Address {
			return apperrors.ErrDuplicateAddress
		}
		if r.OwnerID == record.OwnerID {
			count++
			if record.Label != nil && r.Label != nil && *r.Label == *record.Label {
				return apperrors.NewWithDetail(apperrors.ErrCodeDuplicateLabel, "Wallet label already exists", *record.Label, 409)
			}
		}
	}
	if count >= types.MaxWalletsPerOwner {
		return apperrors.ErrWalletLimitReached
	}

	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *VaultStore) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*types.VaultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok || record.OwnerID != ownerID {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (s *VaultStore) GetByAddress(ctx context.Context, address string) (*types.VaultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Address == address {
			clone := *record
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *VaultStore) ListByOwner(ctx context.Context, ownerID string) ([]*types.VaultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*types.VaultRecord
	for _, record := range s.records {
		if record.OwnerID == ownerID {
			clone := *record
			records = append(records, &clone)
		}
	}
	return records, nil
}

func (s *VaultStore) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok || record.OwnerID != ownerID {
		return apperrors.WalletNotFound(id.String())
	}
	delete(s.records, id)
	return nil
}

func (s *VaultStore) RecordFailedUnlock(ctx context.Context, id uuid.UUID) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return 0, false, apperrors.WalletNotFound(id.String())
	}

	if record.FailedUnlockAttempts < types.LockoutThreshold {
		record.FailedUnlockAttempts++
	}
	if record.FailedUnlockAttempts >= types.LockoutThreshold {
		record.IsLocked = true
	}
	return record.FailedUnlockAttempts, record.IsLocked, nil
}

func (s *VaultStore) ResetFailedUnlock(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return apperrors.WalletNotFound(id.String())
	}
	record.FailedUnlockAttempts = 0
	record.LastUsedAt = &usedAt
	return nil
}

func (s *VaultStore) UpdateAgentAccess(ctx context.Context, ownerID string, id uuid.UUID, access types.AgentAccess) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok || record.OwnerID != ownerID {
		return apperrors.WalletNotFound(id.String())
	}
	access.SpentToday = decimal.Zero
	record.Access = access
	return nil
}

func (s *VaultStore) ApplySpend(ctx context.Context, id uuid.UUID, amount decimal.Decimal, now time.Time) (decimal.Decimal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return decimal.Zero, false, apperrors.WalletNotFound(id.String())
	}

	access := record.Access
	if !access.Enabled || (access.Level != types.AccessLevelSendLimited && access.Level != types.AccessLevelFullAccess) {
		return decimal.Zero, false, nil
	}

	spent := access.SpentToday
	resetAt := access.LastResetAt
	if policy.WindowElapsed(access.LastResetAt, now) {
		spent = decimal.Zero
		resetAt = now
	}

	newSpent := spent.Add(amount)
	if access.DailyLimit != nil && newSpent.GreaterThan(*access.DailyLimit) {
		return decimal.Zero, false, nil
	}

	record.Access.SpentToday = newSpent
	record.Access.LastResetAt = resetAt
	record.LastUsedAt = &now
	return newSpent, true, nil
}

// Record returns the live record for direct assertions in tests
func (s *VaultStore) Record(id uuid.UUID) *types.VaultRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

// AuditLog is an in-memory audit sink
type AuditLog struct {
	mu      sync.Mutex
	Entries []*storage.AuditLogEntry
}

// NewAuditLog creates an empty audit sink
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (a *AuditLog) Log(ctx context.Context, entry *storage.AuditLogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, entry)
	return nil
}

func (a *AuditLog) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*storage.AuditLogEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var entries []*storage.AuditLogEntry
	for i := len(a.Entries) - 1; i >= 0; i-- {
		if a.Entries[i].OwnerID != ownerID {
			continue
		}
		entries = append(entries, a.Entries[i])
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

// Actions returns the recorded action names in order
func (a *AuditLog) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	actions := make([]string, 0, len(a.Entries))
	for _, entry := range a.Entries {
		actions = append(actions, entry.Action)
	}
	return actions
}
