package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIdentityRequired is returned when a mutation is attempted without an account and signer
	ErrIdentityRequired = errors.New("identity required")

	// ErrListingNotFound is returned when a token has no live listing on the seller account
	ErrListingNotFound = errors.New("listing not found")

	// ErrTokenNotFound is returned when a token cannot be resolved from ledger history
	ErrTokenNotFound = errors.New("token not found")
)

// ValidationError reports bad input caught before any network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Submission failure reasons that are not ledger result codes
const (
	SubmissionReasonTimeout   = "timeout"
	SubmissionReasonMalformed = "malformed"
	SubmissionReasonTransport = "transport"
	SubmissionReasonRejected  = "rejected"
)

// SubmissionError reports a transaction the ledger did not accept.
// Reason is the most specific result code available.
type SubmissionError struct {
	Reason  string
	Codes   []string
	Message string
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("submission failed: %s", e.Reason)
	if len(e.Codes) > 0 {
		msg += fmt.Sprintf(" [%s]", strings.Join(e.Codes, ", "))
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// ResolutionError is returned when no metadata gateway produced a usable document
type ResolutionError struct {
	CID   string
	Cause error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve metadata %s: %v", e.CID, e.Cause)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// ScanError is returned when the history window cannot be fetched
type ScanError struct {
	Scope string
	Cause error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to scan %s history: %v", e.Scope, e.Cause)
}

func (e *ScanError) Unwrap() error {
	return e.Cause
}

// IsValidationError reports whether err carries a ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
