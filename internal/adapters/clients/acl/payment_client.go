package acl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/library-circulation/internal/adapters/clients"
	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
)

// Gateway endpoints.
const (
	chargePath = "/v1/charges"
	refundPath = "/v1/refunds"
	healthPath = "/health"

	// IdempotencyKeyHeader lets the gateway deduplicate a retried charge or
	// refund. Without it the client never replays a POST.
	IdempotencyKeyHeader = clients.HeaderIdempotencyKey

	// DefaultCurrency is the only currency late fees are billed in.
	DefaultCurrency = "USD"

	statusApproved = "approved"
	statusDeclined = "declined"
)

// PaymentClientConfig contains configuration for the payment client.
type PaymentClientConfig struct {
	// Client is the HTTP client to use for requests.
	// The client's BaseURL should be set to the gateway's root.
	Client *clients.Client

	// Name identifies the gateway in errors and health checks.
	Name string

	// Logger is the structured logger.
	Logger *slog.Logger

	// NewIdempotencyKey returns the key sent with each charge or refund.
	// Defaults to a random UUID.
	NewIdempotencyKey func() string
}

// PaymentClient implements ports.PaymentGateway against a remote HTTP payment
// gateway. Gateway DTOs stay inside this file; callers see domain results.
type PaymentClient struct {
	client *clients.Client
	name   string
	logger *slog.Logger
	newKey func() string
}

// NewPaymentClient creates a payment gateway adapter.
// Panics if Client is nil.
func NewPaymentClient(cfg PaymentClientConfig) *PaymentClient {
	if cfg.Client == nil {
		panic("PaymentClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = "payment-gateway"
	}

	newKey := cfg.NewIdempotencyKey
	if newKey == nil {
		newKey = uuid.NewString
	}

	return &PaymentClient{
		client: cfg.Client,
		name:   name,
		logger: logger.With(slog.String("component", "acl.PaymentClient")),
		newKey: newKey,
	}
}

// BearerAuth returns a clients.Config AuthFunc sending apiKey as a bearer token.
func BearerAuth(apiKey string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

// chargeRequest is the gateway's charge body. Amounts travel as decimal strings.
type chargeRequest struct {
	CustomerID  string `json:"customer_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type chargeResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type refundRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
}

type refundResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Charge bills the patron. Implements ports.PaymentGateway.
func (c *PaymentClient) Charge(ctx context.Context, patronID string, amount decimal.Decimal, description string) (domain.ChargeResult, error) {
	c.logger.DebugContext(ctx, "charging patron",
		slog.String(logging.KeyPatronID, patronID),
		slog.String("amount", amount.StringFixed(2)))

	body, err := json.Marshal(chargeRequest{
		CustomerID:  patronID,
		Amount:      amount.StringFixed(2),
		Currency:    DefaultCurrency,
		Description: description,
	})
	if err != nil {
		return domain.ChargeResult{}, fmt.Errorf("encoding charge request: %w", err)
	}

	var ext chargeResponse

	declined, err := c.post(ctx, chargePath, "charge", body, &ext)
	if err != nil {
		return domain.ChargeResult{}, err
	}

	if declined != "" {
		return domain.ChargeResult{Approved: false, Message: declined}, nil
	}

	return c.translateCharge(&ext)
}

// Refund returns money against an earlier charge. Implements ports.PaymentGateway.
func (c *PaymentClient) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (domain.RefundResult, error) {
	c.logger.DebugContext(ctx, "refunding payment",
		slog.String(logging.KeyTransactionID, transactionID),
		slog.String("amount", amount.StringFixed(2)))

	body, err := json.Marshal(refundRequest{
		TransactionID: transactionID,
		Amount:        amount.StringFixed(2),
		Currency:      DefaultCurrency,
	})
	if err != nil {
		return domain.RefundResult{}, fmt.Errorf("encoding refund request: %w", err)
	}

	var ext refundResponse

	declined, err := c.post(ctx, refundPath, "refund", body, &ext)
	if err != nil {
		return domain.RefundResult{}, err
	}

	if declined != "" {
		return domain.RefundResult{Approved: false, Message: declined}, nil
	}

	return c.translateRefund(&ext)
}

// post sends body and decodes a 2xx answer into out. A refusal is returned
// as a non-empty decline message with a nil error.
func (c *PaymentClient) post(ctx context.Context, path, operation string, body []byte, out any) (string, error) {
	headers := http.Header{}
	headers.Set(IdempotencyKeyHeader, c.newKey())

	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))

	resp, err := c.client.Post(ctx, path, body, headers)
	if err != nil {
		c.logger.WarnContext(ctx, "payment gateway request failed",
			slog.String("operation", operation),
			slog.Any("error", err))

		return "", MapHTTPError(nil, err, c.name, operation)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		errResp := ParseErrorResponse(resp.Body)
		if IsDecline(resp.StatusCode, errResp) {
			return DeclineMessage(errResp), nil
		}

		c.logger.WarnContext(ctx, "payment gateway error",
			slog.String("operation", operation),
			slog.Int("status_code", resp.StatusCode))

		return "", mapStatusCode(resp.StatusCode, errResp, c.name, operation)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", domain.NewUnavailableError(c.name,
			fmt.Sprintf("unreadable %s response: %v", operation, err))
	}

	return "", nil
}

// translateCharge converts the gateway DTO to a domain ChargeResult.
func (c *PaymentClient) translateCharge(ext *chargeResponse) (domain.ChargeResult, error) {
	switch strings.ToLower(ext.Status) {
	case statusApproved:
		if !domain.IsValidTransactionID(ext.ID) {
			return domain.ChargeResult{}, domain.NewUnavailableError(c.name,
				fmt.Sprintf("approved charge carried unrecognised transaction id %q", ext.ID))
		}

		return domain.ChargeResult{Approved: true, TransactionID: ext.ID, Message: ext.Message}, nil
	case statusDeclined:
		return domain.ChargeResult{Approved: false, Message: declineText(ext.Message)}, nil
	default:
		return domain.ChargeResult{}, domain.NewUnavailableError(c.name,
			fmt.Sprintf("unknown charge status %q", ext.Status))
	}
}

// translateRefund converts the gateway DTO to a domain RefundResult.
func (c *PaymentClient) translateRefund(ext *refundResponse) (domain.RefundResult, error) {
	switch strings.ToLower(ext.Status) {
	case statusApproved:
		return domain.RefundResult{Approved: true, Message: ext.Message}, nil
	case statusDeclined:
		return domain.RefundResult{Approved: false, Message: declineText(ext.Message)}, nil
	default:
		return domain.RefundResult{}, domain.NewUnavailableError(c.name,
			fmt.Sprintf("unknown refund status %q", ext.Status))
	}
}

func declineText(message string) string {
	if message == "" {
		return DeclineMessage(nil)
	}

	return message
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *PaymentClient) Name() string {
	return c.name
}

// Optional implements ports.Optional. Loans keep working while the gateway
// is down.
func (c *PaymentClient) Optional() bool {
	return true
}

// Check calls the gateway's health endpoint. An open circuit fails fast.
// Implements ports.HealthChecker.
func (c *PaymentClient) Check(ctx context.Context) error {
	if c.client.CircuitState() == clients.StateOpen {
		return clients.ErrCircuitOpen
	}

	resp, err := c.client.Get(ctx, healthPath)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	return nil
}
