// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation    = "VALIDATION_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeInvalidAmount = "INVALID_AMOUNT"

	// Business rule violations (422)
	CodeBusinessRule               = "BUSINESS_RULE_VIOLATION"
	CodeAllocationExceedsRemaining = "ALLOCATION_EXCEEDS_REMAINING"
	CodePaymentExhausted           = "PAYMENT_EXHAUSTED"
	CodeCreditLimitBlocked         = "CREDIT_LIMIT_BLOCKED"
	CodeDocumentPosted             = "DOCUMENT_ALREADY_POSTED"
	CodeDocumentCancelled          = "DOCUMENT_CANCELLED"
	CodeConcurrentModification     = "CONCURRENT_MODIFICATION"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict    = "CONFLICT"
	CodeDuplicate   = "DUPLICATE_ENTRY"
	CodeIdempotency = "IDEMPOTENCY_CONFLICT"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, amounts, limits, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidAmount creates an error for a non-positive amount where a positive
// amount is required. Rejected before any mutation.
func NewInvalidAmount(field, amount string) *AppError {
	return &AppError{
		Code:       CodeInvalidAmount,
		Message:    "Amount must be positive",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": field, "amount": amount},
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewAllocationExceedsRemaining is returned when an allocation would push a
// document's paid amount above its total.
func NewAllocationExceedsRemaining(documentID any, requested, remaining string) *AppError {
	return &AppError{
		Code:       CodeAllocationExceedsRemaining,
		Message:    "Allocation exceeds document remaining amount",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"document_id": documentID,
			"requested":   requested,
			"remaining":   remaining,
		},
	}
}

// NewPaymentExhausted is returned when cumulative manual allocations exceed
// the payment amount.
func NewPaymentExhausted(paymentID any, paymentAmount, requested string) *AppError {
	return &AppError{
		Code:       CodePaymentExhausted,
		Message:    "Allocations exceed payment amount",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"payment_id":     paymentID,
			"payment_amount": paymentAmount,
			"requested":      requested,
		},
	}
}

// NewCreditLimitBlocked is returned when a confirmation would breach the
// account credit limit and no override was supplied.
func NewCreditLimitBlocked(accountID any, projected, limit string) *AppError {
	return &AppError{
		Code:       CodeCreditLimitBlocked,
		Message:    "Credit limit exceeded",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"account_id": accountID,
			"projected":  projected,
			"limit":      limit,
		},
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewIdempotencyConflict creates error when operation is already in progress
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Operation already in progress or completed",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewIdempotencyMismatch is returned when the same idempotency key is reused for
// a different request (different user/operation/body hash).
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Idempotency key mismatch",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewDocumentPosted is returned when a mutation targets an already posted document.
func NewDocumentPosted(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeDocumentPosted,
		Message:    fmt.Sprintf("%s is already posted", entity),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewDocumentCancelled is returned when a mutation targets a cancelled document.
func NewDocumentCancelled(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeDocumentCancelled,
		Message:    fmt.Sprintf("%s is cancelled and immutable", entity),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsConcurrentModification checks if error is CodeConcurrentModification
func IsConcurrentModification(err error) bool {
	return hasCode(err, CodeConcurrentModification)
}

// IsInvalidAmount checks if error is CodeInvalidAmount
func IsInvalidAmount(err error) bool {
	return hasCode(err, CodeInvalidAmount)
}

// IsAllocationExceedsRemaining checks if error is CodeAllocationExceedsRemaining
func IsAllocationExceedsRemaining(err error) bool {
	return hasCode(err, CodeAllocationExceedsRemaining)
}

// IsPaymentExhausted checks if error is CodePaymentExhausted
func IsPaymentExhausted(err error) bool {
	return hasCode(err, CodePaymentExhausted)
}

func hasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
