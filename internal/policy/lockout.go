// Package policy implements the vault's two decision engines: the
// failed-unlock lockout policy and the agent spend policy. Both are pure
// functions; the atomic counter updates they depend on live in storage.
package policy

import "github.com/seipay/custody/pkg/types"

// LockoutStatus is the outcome of recording one failed unlock
type LockoutStatus struct {
	AttemptsRemaining int
	Locked            bool
}

// EvaluateFailedAttempt maps the post-increment failed-attempt count to a
// lockout decision. newCount must come from a store-atomic increment;
// locking is monotonic and terminal for unlock attempts.
func EvaluateFailedAttempt(newCount int) LockoutStatus {
	remaining := types.LockoutThreshold - newCount
	if remaining < 0 {
		remaining = 0
	}
	return LockoutStatus{
		AttemptsRemaining: remaining,
		Locked:            newCount >= types.LockoutThreshold,
	}
}
