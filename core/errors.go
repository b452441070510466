package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrAuthRequired is returned when an authenticated partner endpoint is
	// called without a valid session token
	ErrAuthRequired = errors.New("authentication required")

	// ErrNotFound is returned when a durable store item does not exist
	ErrNotFound = errors.New("item not found")

	// ErrCancelled is the cancellation signal: the user backed out of the
	// onboarding flow. It is matched with errors.Is and recovered at the
	// workflow runner boundary, never surfaced to the caller as a failure.
	ErrCancelled = errors.New("user cancelled")
)

// CancelledError carries a human-readable reason for a user cancellation.
// It matches ErrCancelled under errors.Is.
type CancelledError struct {
	Reason string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("user cancelled: %s", e.Reason)
}

// Is reports whether target is the cancellation signal
func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

// Cancelled creates a cancellation signal with the given reason
func Cancelled(reason string) error {
	return &CancelledError{Reason: reason}
}

// IsCancelled reports whether err is the cancellation signal
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// ProviderErrorKind enumerates the business-rule failures a quote request
// can produce
type ProviderErrorKind string

const (
	KindAmountTypeUnsupported ProviderErrorKind = "amountTypeUnsupported"
	KindAssetUnsupported      ProviderErrorKind = "assetUnsupported"
	KindRegionRestricted      ProviderErrorKind = "regionRestricted"
	KindFiatUnsupported       ProviderErrorKind = "fiatUnsupported"
	KindPaymentUnsupported    ProviderErrorKind = "paymentUnsupported"
	KindUnderLimit            ProviderErrorKind = "underLimit"
	KindOverLimit             ProviderErrorKind = "overLimit"
)

// ProviderError is a typed business-rule failure from quote validation.
// It carries enough context for a specific user-facing message.
type ProviderError struct {
	ProviderID   string
	Kind         ProviderErrorKind
	Amount       decimal.Decimal // limit amount for under/over limit errors
	CurrencyCode string
}

func (e *ProviderError) Error() string {
	switch e.Kind {
	case KindUnderLimit:
		return fmt.Sprintf("%s: minimum amount is %s %s", e.ProviderID, e.Amount, e.CurrencyCode)
	case KindOverLimit:
		return fmt.Sprintf("%s: maximum amount is %s %s", e.ProviderID, e.Amount, e.CurrencyCode)
	default:
		return fmt.Sprintf("%s: %s", e.ProviderID, e.Kind)
	}
}

// KycError is a non-retryable terminal outcome of identity verification
type KycError struct {
	Status KycStatus
}

func (e *KycError) Error() string {
	return fmt.Sprintf("identity verification ended with status %s", e.Status)
}
