// Package dto holds the JSON shapes of the circulation API and the mapping
// from domain errors to error responses.
package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
)

// Gin context keys.
const (
	// TraceIDKey is where an upstream middleware may put the trace ID.
	TraceIDKey = "trace_id"

	// RequestIDKey is where the request ID middleware stores the request ID.
	RequestIDKey = "request_id"

	// ErrorKindKey holds the circulation error kind of a failed request for
	// the logging middleware.
	ErrorKindKey = "error_kind"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail names what went wrong. Code is coarse and stable, Kind is the
// circulation error kind when one applies, and Details maps fields to
// messages for validation failures.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Kind    string            `json:"kind,omitempty"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

const (
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeConflict        = "CONFLICT"
	ErrorCodeValidation      = "VALIDATION_ERROR"
	ErrorCodePaymentDeclined = "PAYMENT_DECLINED"
	ErrorCodeUnavailable     = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal        = "INTERNAL_ERROR"
	ErrorCodeTimeout         = "TIMEOUT"
	ErrorCodeBadRequest      = "BAD_REQUEST"

	// ErrorCodePayloadTooLarge: body over server.max_request_size.
	ErrorCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// WithKind tags the error response with a circulation error kind.
func (e *ErrorResponse) WithKind(kind domain.ErrorKind) *ErrorResponse {
	if kind != domain.KindUnknown {
		e.Error.Kind = string(kind)
	}

	return e
}

// HTTPStatusFromCode is the status every response with code is sent with.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodePaymentDeclined:
		return http.StatusPaymentRequired
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrorCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// MapDomainError maps a domain error to an HTTP status code and error response.
// Storage and unknown errors become 500 with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	kind := domain.KindOf(err)
	message := domain.Describe(err)

	var code string

	switch {
	case domain.IsNotFound(err):
		code = ErrorCodeNotFound
	case domain.IsConflict(err):
		code = ErrorCodeConflict
	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, message).WithKind(kind)

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp
	case domain.IsPaymentDeclined(err):
		code = ErrorCodePaymentDeclined
	case domain.IsUnavailable(err):
		code = ErrorCodeUnavailable
	case domain.IsStorage(err):
		return http.StatusInternalServerError,
			NewErrorResponse(ErrorCodeInternal, "a storage error occurred").WithKind(kind)
	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}

	return HTTPStatusFromCode(code), NewErrorResponse(code, message).WithKind(kind)
}

// GetTraceID returns the trace ID for the request: an explicit context value,
// then the active span, then the request ID.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(TraceIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}

		return ""
	}

	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}

	return c.GetHeader("X-Request-ID")
}

// HandleError writes the mapped error response for err. 5xx responses are
// logged with the full error chain.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.WithTraceID(GetTraceID(c))

	kind := domain.KindOf(err)
	if kind != domain.KindUnknown {
		c.Set(ErrorKindKey, string(kind))
	}

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			slog.Int("status", status),
			slog.String("kind", string(kind)),
			slog.Any("error", err),
			slog.String(logging.KeyTraceID, resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// RespondWithCode writes an error response for adapter-level failures that
// do not originate from the domain, such as malformed bodies or unknown routes.
func RespondWithCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithValidationErrors writes a 400 response with field-level binding errors.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	c.JSON(http.StatusBadRequest, NewErrorResponseWithDetails(
		ErrorCodeValidation,
		"request validation failed",
		fieldErrors,
	).WithTraceID(GetTraceID(c)))
}

// HandleBindError responds to a failed BindAndValidate or BindQueryAndValidate.
func HandleBindError(c *gin.Context, err error) {
	if IsValidationError(err) {
		RespondWithValidationErrors(c, ValidationErrors(err))
		return
	}

	RespondWithCode(c, ErrorCodeBadRequest, "malformed request: "+err.Error())
}
