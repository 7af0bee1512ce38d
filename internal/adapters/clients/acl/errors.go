package acl

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/jsamuelsen/library-circulation/internal/adapters/clients"
	"github.com/jsamuelsen/library-circulation/internal/domain"
)

// json is the codec for everything crossing the payment wire.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse represents an error body returned by the payment gateway.
// It supports both nested format (error.code/message) and flat format (code/message).
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail contains error information from the gateway.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// GetCode returns the error code from either nested or top-level format.
func (e *ErrorResponse) GetCode() string {
	if e.Error.Code != "" {
		return e.Error.Code
	}

	return e.Code
}

// GetMessage returns the error message from either nested or top-level format.
func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// Gateway error codes with a meaning beyond "something went wrong".
const (
	// ExternalCodeDeclined marks a refusal: insufficient funds, blocked card, refund not allowed.
	ExternalCodeDeclined = "DECLINED"
	// ExternalCodeUnauthorized indicates the API key was rejected.
	ExternalCodeUnauthorized = "UNAUTHORIZED"
	// ExternalCodeValidation indicates the gateway rejected the request shape.
	ExternalCodeValidation = "VALIDATION_ERROR"
)

// ParseErrorResponse attempts to parse an error response body.
// Returns nil if the body is empty or cannot be parsed.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetCode() == "" && errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// IsDecline reports whether a non-2xx answer is a refusal rather than a failure.
// Gateways answer a refusal with 402, or with a DECLINED code on any 4xx.
func IsDecline(status int, errResp *ErrorResponse) bool {
	if status == http.StatusPaymentRequired {
		return true
	}

	return status >= http.StatusBadRequest && status < http.StatusInternalServerError &&
		errResp != nil && errResp.GetCode() == ExternalCodeDeclined
}

// DeclineMessage picks the human-readable reason for a refusal.
func DeclineMessage(errResp *ErrorResponse) string {
	if errResp != nil && errResp.GetMessage() != "" {
		return errResp.GetMessage()
	}

	return "declined by payment gateway"
}

// MapHTTPError maps a failed gateway exchange to a domain error.
// Every mapped error has kind payment_gateway_error: from the caller's point of
// view the gateway either answered (approved or declined) or it did not.
//
// Parameters:
//   - resp: The HTTP response (may be nil for transport errors)
//   - clientErr: Any error from the HTTP client (may be nil)
//   - serviceName: Name of the gateway for error context
//   - operation: The operation being performed (e.g., "charge", "refund")
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var errResp *ErrorResponse
	if resp.Body != nil {
		errResp = ParseErrorResponse(resp.Body)
	}

	return mapStatusCode(resp.StatusCode, errResp, serviceName, operation)
}

// mapClientError translates client-level errors to domain errors.
func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("circuit breaker open during %s", operation))

	case errors.Is(err, clients.ErrNotReplayable):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s outcome unknown, not retried", operation))

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("max retries exceeded during %s", operation))

	default:
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed: %v", operation, err))
	}
}

// mapStatusCode translates a non-2xx status to a domain error.
func mapStatusCode(status int, errResp *ErrorResponse, serviceName, operation string) error {
	message := defaultMessageForStatus(status, operation)
	if errResp != nil && errResp.GetMessage() != "" {
		message = errResp.GetMessage()
	}

	if errResp != nil && errResp.GetCode() != "" {
		return MapExternalCode(errResp.GetCode(), message, serviceName, operation)
	}

	return domain.NewUnavailableError(serviceName, message)
}

// defaultMessageForStatus returns a default message for an HTTP status.
func defaultMessageForStatus(status int, operation string) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return operation + " rejected as invalid"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "authentication rejected"
	case http.StatusNotFound:
		return operation + " endpoint not found"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}

// MapExternalCode maps a gateway error code to a domain error.
func MapExternalCode(code, message, serviceName, operation string) error {
	switch code {
	case ExternalCodeUnauthorized:
		return domain.NewUnavailableError(serviceName, "authentication rejected")
	case ExternalCodeValidation:
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s rejected as invalid: %s", operation, message))
	default:
		return domain.NewUnavailableError(serviceName, message)
	}
}
