package domain

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MinUsernameLength        = 8
	MaxUsernameLength        = 64
	MinPasswordLength        = 8
	MaxPasswordLength        = 64
	MaxDescriptionLength     = 64
	MaxTransactionsPageSize  = 10
	DefaultTransactionsLimit = 10
)

var usernameDisallowed = regexp.MustCompile(`[^a-zA-Z0-9 \n.]`)

// SanitizeUsername strips characters outside letters, digits, space, newline and dot.
func SanitizeUsername(username string) string {
	return usernameDisallowed.ReplaceAllString(username, "")
}

// ValidateCredentials validates an already sanitized username and a password.
func ValidateCredentials(username, password string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return fmt.Errorf("%w: username must be between %d and %d characters", ErrValidation, MinUsernameLength, MaxUsernameLength)
	}
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be between %d and %d characters", ErrValidation, MinPasswordLength, MaxPasswordLength)
	}
	return nil
}

// SwapLimits bounds the value a single swap may move out of a currency.
type SwapLimits struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Check rejects values outside [Min, Max]. A zero Max disables the upper bound.
func (l SwapLimits) Check(value decimal.Decimal, currency Currency) error {
	if value.Sign() <= 0 {
		return fmt.Errorf("%w: value must be positive", ErrValidation)
	}
	if value.LessThan(l.Min) {
		return fmt.Errorf("%w: minimum swap is %s %s", ErrValidation, l.Min, currency)
	}
	if l.Max.Sign() > 0 && value.GreaterThan(l.Max) {
		return fmt.Errorf("%w: maximum swap is %s %s", ErrValidation, l.Max, currency)
	}
	return nil
}

// ValidateDescription bounds invoice memos.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}
	return nil
}

// TruncateDescription shortens an externally supplied memo to MaxDescriptionLength
// bytes without splitting a UTF-8 sequence.
func TruncateDescription(description string) string {
	if len(description) <= MaxDescriptionLength {
		return description
	}
	cut := 0
	for i := range description {
		if i > MaxDescriptionLength {
			break
		}
		cut = i
	}
	return description[:cut]
}

// ValidatePagination normalizes offset and rejects limits above the page cap.
func ValidatePagination(offset, limit int) (int, int, error) {
	if offset < 0 {
		return 0, 0, fmt.Errorf("%w: offset must not be negative", ErrValidation)
	}
	if limit <= 0 {
		limit = DefaultTransactionsLimit
	}
	if limit > MaxTransactionsPageSize {
		return 0, 0, fmt.Errorf("%w: limit must be at most %d", ErrValidation, MaxTransactionsPageSize)
	}
	return offset, limit, nil
}
