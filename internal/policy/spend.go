package policy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seipay/custody/pkg/types"
)

// DailyWindow is the rolling spend window. The reset is evaluated lazily
// on each check and committed only together with the eventual spend.
const DailyWindow = 24 * time.Hour

// Denial reasons surfaced to agents
const (
	ReasonAccessDisabled = "AI access is disabled for this wallet"
	ReasonNoPermissions  = "AI has no transaction permissions"
	ReasonViewOnly       = "AI has view-only access"
)

// Decision is the outcome of a spend authorization check
type Decision struct {
	Allowed bool
	Reason  string
}

// Allowed is the single approving decision
var Allowed = Decision{Allowed: true}

// Denied constructs a denying decision
func Denied(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// WindowElapsed reports whether the daily window has rolled since the last
// reset
func WindowElapsed(lastResetAt time.Time, now time.Time) bool {
	return now.Sub(lastResetAt) >= DailyWindow
}

// EffectiveSpent returns the spend that counts against the current window:
// zero if the window has rolled, the recorded total otherwise.
func EffectiveSpent(access types.AgentAccess, now time.Time) decimal.Decimal {
	if WindowElapsed(access.LastResetAt, now) {
		return decimal.Zero
	}
	return access.SpentToday
}

// AuthorizeSpend decides whether an agent may spend amount from a wallet
// with the given access configuration. Rules are evaluated in order;
// full_access is allowed unconditionally.
func AuthorizeSpend(access types.AgentAccess, amount decimal.Decimal, now time.Time) Decision {
	if !access.Enabled {
		return Denied(ReasonAccessDisabled)
	}

	switch access.Level {
	case types.AccessLevelNone:
		return Denied(ReasonNoPermissions)
	case types.AccessLevelViewOnly:
		return Denied(ReasonViewOnly)
	case types.AccessLevelSendLimited:
		if access.DailyLimit == nil {
			return Allowed
		}
		spent := EffectiveSpent(access, now)
		if spent.Add(amount).GreaterThan(*access.DailyLimit) {
			return Denied(fmt.Sprintf(
				"Transaction exceeds daily limit. Limit: %s SEI, Already spent: %s SEI",
				access.DailyLimit.String(), spent.String(),
			))
		}
		return Allowed
	case types.AccessLevelFullAccess:
		return Allowed
	}

	return Denied(ReasonNoPermissions)
}
