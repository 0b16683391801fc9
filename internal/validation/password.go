// Package validation provides input validation for vault operations:
// password strength scoring and key, address and label format checks.
package validation

import (
	"regexp"
	"strings"
)

const (
	// MinPasswordLength is the absolute length floor for vault passwords
	MinPasswordLength = 12

	// RecommendedPasswordLength earns the full length score
	RecommendedPasswordLength = 16

	// minPasswordScore is the composite score required to accept a password
	minPasswordScore = 4

	// maxPasswordScore clamps the reported score
	maxPasswordScore = 5
)

var (
	lowercasePattern  = regexp.MustCompile(`[a-z]`)
	uppercasePattern  = regexp.MustCompile(`[A-Z]`)
	digitPattern      = regexp.MustCompile(`[0-9]`)
	symbolPattern     = regexp.MustCompile(`[^a-zA-Z0-9]`)
	weakPrefixPattern = regexp.MustCompile(`(?i)^(password|123456|qwerty)`)
)

// PasswordStrength is the result of scoring a candidate password. Feedback
// always lists every unmet criterion; it is the only UX signal a caller
// gets.
type PasswordStrength struct {
	Valid    bool
	Score    int
	Feedback []string
}

// CheckPasswordStrength scores a password on five axes (length, lowercase,
// uppercase, digit, symbol), penalizes repeated-character runs, and zeroes
// the score for known-weak prefixes. Pure, no side effects.
func CheckPasswordStrength(password string) PasswordStrength {
	var feedback []string
	score := 0

	switch {
	case len(password) < MinPasswordLength:
		feedback = append(feedback, "Password must be at least 12 characters long")
	case len(password) >= RecommendedPasswordLength:
		score += 2
	default:
		score++
	}

	if !lowercasePattern.MatchString(password) {
		feedback = append(feedback, "Include lowercase letters")
	} else {
		score++
	}

	if !uppercasePattern.MatchString(password) {
		feedback = append(feedback, "Include uppercase letters")
	} else {
		score++
	}

	if !digitPattern.MatchString(password) {
		feedback = append(feedback, "Include numbers")
	} else {
		score++
	}

	if !symbolPattern.MatchString(password) {
		feedback = append(feedback, "Include special characters")
	} else {
		score++
	}

	if hasRepeatedRun(password) {
		feedback = append(feedback, "Avoid repeating characters")
		score--
	}

	if weakPrefixPattern.MatchString(password) {
		feedback = append(feedback, "Avoid common passwords")
		score = 0
	}

	if score < 0 {
		score = 0
	}
	if score > maxPasswordScore {
		score = maxPasswordScore
	}

	return PasswordStrength{
		Valid:    score >= minPasswordScore && len(password) >= MinPasswordLength,
		Score:    score,
		Feedback: feedback,
	}
}

// hasRepeatedRun reports whether password contains a run of three or more
// identical consecutive bytes
func hasRepeatedRun(password string) bool {
	run := 1
	for i := 1; i < len(password); i++ {
		if password[i] != password[i-1] {
			run = 1
			continue
		}
		run++
		if run >= 3 {
			return true
		}
	}
	return false
}

// FeedbackString joins the unmet criteria for error details
func (s PasswordStrength) FeedbackString() string {
	return strings.Join(s.Feedback, ", ")
}
