package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		wantValid  bool
		wantScore  int
		checkScore bool
	}{
		{
			name:       "strong_long_password",
			password:   "Tr0ub4dor&3 horse",
			wantValid:  true,
			wantScore:  5,
			checkScore: true,
		},
		{
			name:       "strong_minimum_length",
			password:   "Abcdef12!xyz",
			wantValid:  true,
			wantScore:  5,
			checkScore: true,
		},
		{
			name:      "too_short",
			password:  "Ab1!xyz",
			wantValid: false,
		},
		{
			name:      "all_lowercase",
			password:  "alllowercase12",
			wantValid: false,
		},
		{
			name:      "no_digits_or_symbols",
			password:  "OnlyLettersHere",
			wantValid: false,
		},
		{
			name:       "common_prefix_zeroes_score",
			password:   "Password123!longer",
			wantValid:  false,
			wantScore:  0,
			checkScore: true,
		},
		{
			name:       "qwerty_prefix",
			password:   "qwertyUIOP12!x",
			wantValid:  false,
			wantScore:  0,
			checkScore: true,
		},
		{
			name:       "repeated_run_penalized",
			password:   "Abcdefgh111!",
			wantValid:  true,
			wantScore:  4,
			checkScore: true,
		},
		{
			name:      "empty",
			password:  "",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckPasswordStrength(tt.password)
			assert.Equal(t, tt.wantValid, result.Valid)
			if tt.checkScore {
				assert.Equal(t, tt.wantScore, result.Score)
			}
			if !tt.wantValid {
				assert.NotEmpty(t, result.Feedback)
			}
		})
	}
}

func TestHasRepeatedRun(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{
			name:     "triple_run",
			password: "aaa",
			want:     true,
		},
		{
			name:     "run_in_middle",
			password: "Abc111def!xy",
			want:     true,
		},
		{
			name:     "long_run",
			password: "zzzzz",
			want:     true,
		},
		{
			name:     "pairs_only",
			password: "aabbccddee",
			want:     false,
		},
		{
			name:     "no_repeats",
			password: "abcdefg",
			want:     false,
		},
		{
			name:     "empty",
			password: "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasRepeatedRun(tt.password))
		})
	}
}

func TestFeedbackString(t *testing.T) {
	result := CheckPasswordStrength("short")
	assert.Contains(t, result.FeedbackString(), "at least 12 characters")
}
