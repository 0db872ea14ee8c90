package rateshop

import (
	"errors"
	"fmt"
)

// ProviderError represents an error from a carrier rate provider.
type ProviderError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ProviderError.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewProviderError creates a new ProviderError.
func NewProviderError(carrier, code, message string) *ProviderError {
	return &ProviderError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *ProviderError) WithCause(err error) *ProviderError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ProviderError) WithStatusCode(code int) *ProviderError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *ProviderError) WithRetryable(retryable bool) *ProviderError {
	e.Retryable = retryable
	return e
}

// Sentinel errors for common rate-shopping scenarios.
var (
	// ErrUnknownCarrier indicates the requested carrier is not registered.
	ErrUnknownCarrier = errors.New("unknown carrier")

	// ErrServiceUnavailable indicates the rate provider is temporarily unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrNoRatesForLane indicates the carrier does not serve the requested lane.
	ErrNoRatesForLane = errors.New("no rates for lane")

	// ErrRateExpired indicates the selected rate has expired and cannot be booked.
	ErrRateExpired = errors.New("rate has expired")

	// ErrAuthenticationFailed indicates provider authentication failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrRateLimitExceeded indicates the provider rate limit was exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrRateLimitExceeded)
}
