package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateFailedAttempt(t *testing.T) {
	tests := []struct {
		name          string
		newCount      int
		wantRemaining int
		wantLocked    bool
	}{
		{name: "first_failure", newCount: 1, wantRemaining: 4, wantLocked: false},
		{name: "fourth_failure", newCount: 4, wantRemaining: 1, wantLocked: false},
		{name: "fifth_failure_locks", newCount: 5, wantRemaining: 0, wantLocked: true},
		{name: "beyond_threshold_stays_locked", newCount: 7, wantRemaining: 0, wantLocked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := EvaluateFailedAttempt(tt.newCount)
			assert.Equal(t, tt.wantRemaining, status.AttemptsRemaining)
			assert.Equal(t, tt.wantLocked, status.Locked)
		})
	}
}
