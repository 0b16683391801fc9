package policy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/seipay/custody/pkg/types"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestAuthorizeSpend(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		access      types.AgentAccess
		amount      string
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "disabled_denied",
			access:      types.AgentAccess{Enabled: false, Level: types.AccessLevelFullAccess},
			amount:      "1",
			wantAllowed: false,
			wantReason:  ReasonAccessDisabled,
		},
		{
			name:        "level_none_denied",
			access:      types.AgentAccess{Enabled: true, Level: types.AccessLevelNone},
			amount:      "1",
			wantAllowed: false,
			wantReason:  ReasonNoPermissions,
		},
		{
			name:        "view_only_denied",
			access:      types.AgentAccess{Enabled: true, Level: types.AccessLevelViewOnly},
			amount:      "1",
			wantAllowed: false,
			wantReason:  ReasonViewOnly,
		},
		{
			name:        "full_access_allowed_any_amount",
			access:      types.AgentAccess{Enabled: true, Level: types.AccessLevelFullAccess},
			amount:      "1000000",
			wantAllowed: true,
		},
		{
			name: "send_limited_no_limit_allowed",
			access: types.AgentAccess{
				Enabled: true,
				Level:   types.AccessLevelSendLimited,
			},
			amount:      "500",
			wantAllowed: true,
		},
		{
			name: "send_limited_within_limit",
			access: types.AgentAccess{
				Enabled:     true,
				Level:       types.AccessLevelSendLimited,
				DailyLimit:  decPtr("10"),
				SpentToday:  dec("7"),
				LastResetAt: now.Add(-1 * time.Hour),
			},
			amount:      "2",
			wantAllowed: true,
		},
		{
			name: "send_limited_exactly_at_limit",
			access: types.AgentAccess{
				Enabled:     true,
				Level:       types.AccessLevelSendLimited,
				DailyLimit:  decPtr("10"),
				SpentToday:  dec("7"),
				LastResetAt: now.Add(-1 * time.Hour),
			},
			amount:      "3",
			wantAllowed: true,
		},
		{
			name: "send_limited_over_limit",
			access: types.AgentAccess{
				Enabled:     true,
				Level:       types.AccessLevelSendLimited,
				DailyLimit:  decPtr("10"),
				SpentToday:  dec("7"),
				LastResetAt: now.Add(-1 * time.Hour),
			},
			amount:      "4",
			wantAllowed: false,
			wantReason:  "Transaction exceeds daily limit. Limit: 10 SEI, Already spent: 7 SEI",
		},
		{
			name: "window_rolled_spend_forgotten",
			access: types.AgentAccess{
				Enabled:     true,
				Level:       types.AccessLevelSendLimited,
				DailyLimit:  decPtr("10"),
				SpentToday:  dec("9"),
				LastResetAt: now.Add(-25 * time.Hour),
			},
			amount:      "8",
			wantAllowed: true,
		},
		{
			name: "window_not_yet_rolled",
			access: types.AgentAccess{
				Enabled:     true,
				Level:       types.AccessLevelSendLimited,
				DailyLimit:  decPtr("10"),
				SpentToday:  dec("9"),
				LastResetAt: now.Add(-23 * time.Hour),
			},
			amount:      "8",
			wantAllowed: false,
			wantReason:  "Transaction exceeds daily limit. Limit: 10 SEI, Already spent: 9 SEI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := AuthorizeSpend(tt.access, dec(tt.amount), now)
			assert.Equal(t, tt.wantAllowed, decision.Allowed)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, decision.Reason)
			}
		})
	}
}

func TestWindowElapsed(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.False(t, WindowElapsed(now.Add(-time.Hour), now))
	assert.False(t, WindowElapsed(now.Add(-24*time.Hour+time.Second), now))
	assert.True(t, WindowElapsed(now.Add(-24*time.Hour), now))
	assert.True(t, WindowElapsed(now.Add(-48*time.Hour), now))
}

func TestEffectiveSpent(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	fresh := types.AgentAccess{SpentToday: dec("5"), LastResetAt: now.Add(-time.Hour)}
	assert.True(t, EffectiveSpent(fresh, now).Equal(dec("5")))

	stale := types.AgentAccess{SpentToday: dec("5"), LastResetAt: now.Add(-25 * time.Hour)}
	assert.True(t, EffectiveSpent(stale, now).IsZero())
}
