package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletKind indicates how a custodial wallet's key entered the vault
type WalletKind string

const (
	// WalletKindGenerated means the key was created inside the vault
	WalletKindGenerated WalletKind = "generated"
	// WalletKindImported means the key was supplied by the owner
	WalletKindImported WalletKind = "imported"
)

// AccessLevel is the tier of agent access granted on a wallet
type AccessLevel string

const (
	// AccessLevelNone grants no agent access
	AccessLevelNone AccessLevel = "none"
	// AccessLevelViewOnly allows reading balance and history only
	AccessLevelViewOnly AccessLevel = "view_only"
	// AccessLevelSendLimited allows sends up to the daily limit
	AccessLevelSendLimited AccessLevel = "send_limited"
	// AccessLevelFullAccess allows unrestricted sends (high-trust tier)
	AccessLevelFullAccess AccessLevel = "full_access"
)

// ValidAccessLevel reports whether s names a known access level
func ValidAccessLevel(s string) bool {
	switch AccessLevel(s) {
	case AccessLevelNone, AccessLevelViewOnly, AccessLevelSendLimited, AccessLevelFullAccess:
		return true
	}
	return false
}

const (
	// LockoutThreshold is the number of failed unlocks before a wallet locks
	LockoutThreshold = 5

	// MaxWalletsPerOwner caps the custodial wallets a single owner may hold
	MaxWalletsPerOwner = 5
)

// AgentAccess is the agent-spending policy embedded in a vault record
type AgentAccess struct {
	Enabled     bool             `json:"enabled"`
	Level       AccessLevel      `json:"level"`
	DailyLimit  *decimal.Decimal `json:"daily_limit,omitempty"`
	SpentToday  decimal.Decimal  `json:"spent_today"`
	LastResetAt time.Time        `json:"last_reset_at"`
}

// VaultRecord is the persisted encrypted envelope and metadata for one
// custodial wallet. The plaintext private key, the derived symmetric key
// and the password never appear in any field.
type VaultRecord struct {
	ID      uuid.UUID `json:"id"`
	OwnerID string    `json:"owner_id"`
	Address string    `json:"address"`

	// Envelope fields, base64 transport encoding. Mutated only as a whole
	// unit; rotation requires full re-creation.
	Ciphertext     string `json:"-"`
	Salt           string `json:"-"`
	Nonce          string `json:"-"`
	AuthTag        string `json:"-"`
	KeyFingerprint string `json:"-"`

	Kind       WalletKind `json:"kind"`
	Label      *string    `json:"label,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	FailedUnlockAttempts int  `json:"failed_unlock_attempts"`
	IsLocked             bool `json:"is_locked"`

	Access AgentAccess `json:"ai_access"`
}

// WalletInfo is the owner-facing view of a vault record, with the envelope
// fields stripped
type WalletInfo struct {
	ID         uuid.UUID   `json:"id"`
	Address    string      `json:"address"`
	Kind       WalletKind  `json:"kind"`
	Label      *string     `json:"label,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	LastUsedAt *time.Time  `json:"last_used_at,omitempty"`
	IsLocked   bool        `json:"is_locked"`
	Access     AgentAccess `json:"ai_access"`
}

// Info returns the metadata view of a record
func (r *VaultRecord) Info() *WalletInfo {
	return &WalletInfo{
		ID:         r.ID,
		Address:    r.Address,
		Kind:       r.Kind,
		Label:      r.Label,
		CreatedAt:  r.CreatedAt,
		LastUsedAt: r.LastUsedAt,
		IsLocked:   r.IsLocked,
		Access:     r.Access,
	}
}
