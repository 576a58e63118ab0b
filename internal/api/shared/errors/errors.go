package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/signer"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest         ErrorCode = "bad_request"
	ErrCodeNotFound           ErrorCode = "not_found"
	ErrCodeValidationFailed   ErrorCode = "validation_failed"
	ErrCodeUnauthorized       ErrorCode = "unauthorized"
	ErrCodePreconditionFailed ErrorCode = "precondition_failed"
	ErrCodeSubmissionFailed   ErrorCode = "submission_failed"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeUpstreamError ErrorCode = "upstream_error"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewPreconditionError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodePreconditionFailed,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewSubmissionError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeSubmissionFailed,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewUpstreamError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUpstreamError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// FromError maps a domain error to its HTTP status and API error
func FromError(err error) (int, *APIError) {
	var (
		validationErr *domain.ValidationError
		submissionErr *domain.SubmissionError
		scanErr       *domain.ScanError
		resolutionErr *domain.ResolutionError
		signerErr     *signer.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, NewValidationError(validationErr.Error())
	case errors.Is(err, domain.ErrIdentityRequired):
		return http.StatusUnauthorized, NewUnauthorizedError("Identity required")
	case errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound, NewNotFoundError("Listing not found")
	case errors.Is(err, domain.ErrTokenNotFound):
		return http.StatusUnprocessableEntity, NewPreconditionError("Token not found", err.Error())
	case errors.As(err, &submissionErr):
		switch submissionErr.Reason {
		case domain.SubmissionReasonTimeout, domain.SubmissionReasonTransport:
			return http.StatusBadGateway, NewUpstreamError("Ledger unavailable", submissionErr.Error())
		}
		return http.StatusUnprocessableEntity, NewSubmissionError("Transaction rejected", submissionErr.Error())
	case errors.As(err, &signerErr):
		return http.StatusUnprocessableEntity, NewPreconditionError("Signing failed", signerErr.Error())
	case errors.As(err, &scanErr), errors.As(err, &resolutionErr):
		return http.StatusBadGateway, NewUpstreamError("Upstream request failed", err.Error())
	}

	return http.StatusInternalServerError, NewInternalError("Internal server error")
}
