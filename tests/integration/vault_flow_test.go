//go:build integration

// Package integration verifies the storage layer against a real PostgreSQL
// instance.
//
// Run with: go test -v -tags=integration ./tests/integration/...
//
// Requirements:
// - PostgreSQL running with the migrations applied (POSTGRES_DSN env var)
package integration

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seipay/custody/internal/storage"
	"github.com/seipay/custody/internal/vault"
	apperrors "github.com/seipay/custody/pkg/errors"
	"github.com/seipay/custody/pkg/types"
)

func setupRepo(t *testing.T) *storage.VaultRepository {
	t.Helper()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}

	store, err := storage.New(dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return storage.NewVaultRepository(store)
}

func newRecord(t *testing.T, ownerID string) *types.VaultRecord {
	t.Helper()

	env, err := vault.Seal([]byte("thirty-two bytes of private key!"), "Correct-Horse-Battery-9!")
	require.NoError(t, err)

	record := &types.VaultRecord{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Address: fmt.Sprintf("0x%040x", time.Now().UnixNano()),
		Kind:    types.WalletKindGenerated,
		Access: types.AgentAccess{
			Level:       types.AccessLevelNone,
			SpentToday:  decimal.Zero,
			LastResetAt: time.Now().UTC(),
		},
	}
	env.ApplyTo(record)
	return record
}

func testOwnerAddress() string {
	return fmt.Sprintf("0x%040x", uuid.New().ID())
}

func TestCreateAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	owner := testOwnerAddress()

	record := newRecord(t, owner)
	require.NoError(t, repo.Create(ctx, record))
	t.Cleanup(func() { _ = repo.Delete(ctx, owner, record.ID) })

	got, err := repo.GetByID(ctx, owner, record.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record.Address, got.Address)
	assert.Equal(t, record.Ciphertext, got.Ciphertext)
	assert.Equal(t, record.KeyFingerprint, got.KeyFingerprint)

	// wrong owner sees nothing
	got, err = repo.GetByID(ctx, testOwnerAddress(), record.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDuplicateAddressRejected(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	owner := testOwnerAddress()

	record := newRecord(t, owner)
	require.NoError(t, repo.Create(ctx, record))
	t.Cleanup(func() { _ = repo.Delete(ctx, owner, record.ID) })

	dup := newRecord(t, owner)
	dup.Address = record.Address
	err := repo.Create(ctx, dup)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDuplicateAddress))
}

func TestWalletCapEnforcedInStore(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	owner := testOwnerAddress()

	for i := 0; i < types.MaxWalletsPerOwner; i++ {
		record := newRecord(t, owner)
		require.NoError(t, repo.Create(ctx, record))
		t.Cleanup(func() { _ = repo.Delete(ctx, owner, record.ID) })
	}

	err := repo.Create(ctx, newRecord(t, owner))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeWalletLimitReached))
}

func TestConcurrentFailedUnlockCounting(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	owner := testOwnerAddress()

	record := newRecord(t, owner)
	require.NoError(t, repo.Create(ctx, record))
	t.Cleanup(func() { _ = repo.Delete(ctx, owner, record.ID) })

	// more attempts than the threshold; the counter counts every attempt
	// up to the threshold and saturates there
	var wg sync.WaitGroup
	for i := 0; i < types.LockoutThreshold+3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = repo.RecordFailedUnlock(ctx, record.ID)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, owner, record.ID)
	require.NoError(t, err)
	assert.Equal(t, types.LockoutThreshold, got.FailedUnlockAttempts)
	assert.True(t, got.IsLocked)
}

func TestConcurrentSpendsRespectCap(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	owner := testOwnerAddress()

	record := newRecord(t, owner)
	require.NoError(t, repo.Create(ctx, record))
	t.Cleanup(func() { _ = repo.Delete(ctx, owner, record.ID) })

	limit := decimal.NewFromInt(10)
	require.NoError(t, repo.UpdateAgentAccess(ctx, owner, record.ID, types.AgentAccess{
		Enabled:     true,
		Level:       types.AccessLevelSendLimited,
		DailyLimit:  &limit,
		LastResetAt: time.Now().UTC(),
	}))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = repo.ApplySpend(ctx, record.ID, decimal.NewFromInt(4), time.Now().UTC())
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, owner, record.ID)
	require.NoError(t, err)
	assert.True(t, got.Access.SpentToday.LessThanOrEqual(limit),
		"spent %s exceeds the daily limit", got.Access.SpentToday)
}
