package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application-level error with HTTP status code
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeBadRequest            = "bad_request"
	ErrCodeNotFound              = "not_found"
	ErrCodeInternalError         = "internal_error"
	ErrCodeWeakPassword          = "weak_password"
	ErrCodeInvalidKeyFormat      = "invalid_key_format"
	ErrCodeInvalidLabel          = "invalid_label"
	ErrCodeDuplicateAddress      = "duplicate_address"
	ErrCodeDuplicateLabel        = "duplicate_label"
	ErrCodeWalletLimitReached    = "wallet_limit_reached"
	ErrCodeWalletNotFound        = "wallet_not_found"
	ErrCodeWrongPassword         = "wrong_password"
	ErrCodeWalletLocked          = "wallet_locked"
	ErrCodeSpendDenied           = "spend_denied"
	ErrCodeChecksumMismatch      = "checksum_mismatch"
	ErrCodeCorruptedRecoveryCode = "corrupted_recovery_code"
	ErrCodeStorageUnavailable    = "storage_unavailable"
)

// Predefined errors
var (
	ErrBadRequest = &AppError{
		Code:       ErrCodeBadRequest,
		Message:    "Invalid request parameters",
		StatusCode: http.StatusBadRequest,
	}

	ErrNotFound = &AppError{
		Code:       ErrCodeNotFound,
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrInternalError = &AppError{
		Code:       ErrCodeInternalError,
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrInvalidKeyFormat = &AppError{
		Code:       ErrCodeInvalidKeyFormat,
		Message:    "Invalid private key format",
		StatusCode: http.StatusBadRequest,
	}

	ErrDuplicateAddress = &AppError{
		Code:       ErrCodeDuplicateAddress,
		Message:    "Wallet with this address already exists",
		StatusCode: http.StatusConflict,
	}

	ErrWalletLimitReached = &AppError{
		Code:       ErrCodeWalletLimitReached,
		Message:    "Maximum number of custodial wallets reached",
		StatusCode: http.StatusConflict,
	}

	ErrWalletLocked = &AppError{
		Code:       ErrCodeWalletLocked,
		Message:    "Wallet is locked due to too many failed attempts",
		StatusCode: http.StatusLocked,
	}

	ErrChecksumMismatch = &AppError{
		Code:       ErrCodeChecksumMismatch,
		Message:    "Recovery code checksum verification failed",
		StatusCode: http.StatusBadRequest,
	}

	ErrCorruptedRecoveryCode = &AppError{
		Code:       ErrCodeCorruptedRecoveryCode,
		Message:    "Recovery code is malformed or corrupted",
		StatusCode: http.StatusBadRequest,
	}
)

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewWithDetail creates a new AppError with additional detail
func NewWithDetail(code, message, detail string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Detail:     detail,
		StatusCode: statusCode,
	}
}

// WeakPassword creates a weak password error carrying the unmet criteria
func WeakPassword(feedback string) *AppError {
	return &AppError{
		Code:       ErrCodeWeakPassword,
		Message:    "Password does not meet strength requirements",
		Detail:     feedback,
		StatusCode: http.StatusBadRequest,
	}
}

// WrongPassword creates an unlock failure error. The message is deliberately
// generic; attemptsRemaining is the only detail a caller gets.
func WrongPassword(attemptsRemaining int) *AppError {
	return &AppError{
		Code:       ErrCodeWrongPassword,
		Message:    "Invalid password or corrupted data",
		Detail:     fmt.Sprintf("attempts_remaining: %d", attemptsRemaining),
		StatusCode: http.StatusUnauthorized,
	}
}

// WalletNotFound creates a wallet not found error
func WalletNotFound(walletID string) *AppError {
	return &AppError{
		Code:       ErrCodeWalletNotFound,
		Message:    "Wallet not found",
		Detail:     fmt.Sprintf("wallet_id: %s", walletID),
		StatusCode: http.StatusNotFound,
	}
}

// SpendDenied creates a spend denied error with the policy reason
func SpendDenied(reason string) *AppError {
	return &AppError{
		Code:       ErrCodeSpendDenied,
		Message:    "Agent spend denied",
		Detail:     reason,
		StatusCode: http.StatusForbidden,
	}
}

// StorageUnavailable wraps a store-level failure. Never conflated with
// authentication failure.
func StorageUnavailable(err error) *AppError {
	return &AppError{
		Code:       ErrCodeStorageUnavailable,
		Message:    "Storage unavailable",
		Detail:     err.Error(),
		StatusCode: http.StatusServiceUnavailable,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError with the given code
func IsCode(err error, code string) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == code
}
