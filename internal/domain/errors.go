// Package domain holds the circulation model: catalog records, patron
// loans, fee rules and the errors they produce. Errors carry an ErrorKind
// and a sentinel; adapters map them to HTTP statuses or CLI exit codes.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: no such book or fee.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the operation contradicts current circulation state.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates business rule validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable: the payment gateway could not be reached.
	ErrUnavailable = errors.New("unavailable")

	// ErrStorage indicates the data access gateway failed.
	ErrStorage = errors.New("storage failure")

	// ErrPaymentDeclined indicates the payment gateway refused a charge or refund.
	ErrPaymentDeclined = errors.New("payment declined")
)

// ErrorKind is the machine-checkable category of a domain error.
type ErrorKind string

// Error kinds surfaced by the circulation engine.
const (
	KindValidation           ErrorKind = "validation"
	KindInvalidPatronID      ErrorKind = "invalid_patron_id"
	KindInvalidTransactionID ErrorKind = "invalid_transaction_id"
	KindInvalidAmount        ErrorKind = "invalid_amount"
	KindAmountExceedsCap     ErrorKind = "amount_exceeds_cap"

	KindBookNotFound   ErrorKind = "book_not_found"
	KindFeeUnavailable ErrorKind = "fee_unavailable"

	KindDuplicateISBN       ErrorKind = "duplicate_isbn"
	KindBookUnavailable     ErrorKind = "book_unavailable"
	KindAlreadyBorrowed     ErrorKind = "already_borrowed"
	KindBorrowLimitExceeded ErrorKind = "borrow_limit_exceeded"
	KindNotBorrowed         ErrorKind = "not_borrowed"
	KindNoFeeDue            ErrorKind = "no_fee_due"

	KindStorage ErrorKind = "storage_error"

	KindPaymentDeclined     ErrorKind = "payment_declined"
	KindRefundFailed        ErrorKind = "refund_failed"
	KindPaymentGatewayError ErrorKind = "payment_gateway_error"

	KindUnknown ErrorKind = "unknown"
)

type kinded interface {
	error
	ErrorKind() ErrorKind
}

// KindOf returns the kind of the first typed domain error in err's chain.
// It returns KindUnknown for nil or foreign errors.
func KindOf(err error) ErrorKind {
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}

	return KindUnknown
}

// Describe returns the message of the first typed domain error in err's
// chain, without the wrapping added on the way up. Foreign errors are
// returned as-is.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var k kinded
	if errors.As(err, &k) {
		return k.Error()
	}

	return err.Error()
}

// NotFoundError reports a missing book or fee record.
type NotFoundError struct {
	Entity string
	ID     string
	Kind   ErrorKind
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func (e *NotFoundError) ErrorKind() ErrorKind {
	return e.Kind
}

func NewNotFoundError(kind ErrorKind, entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id, Kind: kind}
}

// ConflictError reports an operation the current loan state forbids.
type ConflictError struct {
	Entity  string
	Reason  string
	Details string
	Kind    ErrorKind
}

func (e *ConflictError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s conflict: %s (%s)", e.Entity, e.Reason, e.Details)
	}

	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

func (e *ConflictError) ErrorKind() ErrorKind {
	return e.Kind
}

func NewConflictError(kind ErrorKind, entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason, Kind: kind}
}

// NewConflictErrorWithDetails creates a conflict error with additional details.
func NewConflictErrorWithDetails(kind ErrorKind, entity, reason, details string) error {
	return &ConflictError{Entity: entity, Reason: reason, Details: details, Kind: kind}
}

// ValidationError reports malformed input. Value holds the rejected input
// when it is safe to echo back.
type ValidationError struct {
	Field   string
	Message string
	Value   any
	Kind    ErrorKind
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ErrorKind implements kinded. A zero Kind reports KindValidation.
func (e *ValidationError) ErrorKind() ErrorKind {
	if e.Kind == "" {
		return KindValidation
	}

	return e.Kind
}

// NewValidationError creates a generic validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message, Kind: KindValidation}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(kind ErrorKind, field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value, Kind: kind}
}

// StorageError wraps a failure reported by the data access gateway.
type StorageError struct {
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage %s failed: %v", e.Operation, e.Cause)
	}

	return fmt.Sprintf("storage %s failed", e.Operation)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *StorageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrStorage}
	}

	return []error{ErrStorage, e.Cause}
}

func (e *StorageError) ErrorKind() ErrorKind {
	return KindStorage
}

// NewStorageError creates a storage error for the named operation.
func NewStorageError(operation string, cause error) error {
	return &StorageError{Operation: operation, Cause: cause}
}

// PaymentDeclinedError reports a charge or refund refused by the gateway.
type PaymentDeclinedError struct {
	Message string
	Kind    ErrorKind
}

func (e *PaymentDeclinedError) Error() string {
	if e.Kind == KindRefundFailed {
		return "refund failed: " + e.Message
	}

	return "payment failed: " + e.Message
}

func (e *PaymentDeclinedError) Unwrap() error {
	return ErrPaymentDeclined
}

func (e *PaymentDeclinedError) ErrorKind() ErrorKind {
	return e.Kind
}

// NewPaymentDeclinedError creates a declined-charge error.
func NewPaymentDeclinedError(message string) error {
	return &PaymentDeclinedError{Message: message, Kind: KindPaymentDeclined}
}

// NewRefundFailedError creates a declined-refund error.
func NewRefundFailedError(message string) error {
	return &PaymentDeclinedError{Message: message, Kind: KindRefundFailed}
}

// UnavailableError reports an unreachable payment gateway.
type UnavailableError struct {
	Service string
	Reason  string
	Kind    ErrorKind
}

func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

func (e *UnavailableError) ErrorKind() ErrorKind {
	return e.Kind
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason, Kind: KindPaymentGatewayError}
}

// IsNotFound and the helpers below match on the sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsPaymentDeclined checks if an error is a declined charge or refund.
func IsPaymentDeclined(err error) bool {
	return errors.Is(err, ErrPaymentDeclined)
}
