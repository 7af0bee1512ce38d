package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/library-circulation/internal/app/reqctx"
	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

const gatewayService = "payment-gateway"

// PaymentService bills late fees and refunds them through a payment gateway.
// The gateway is an argument of each operation; the service never picks one.
type PaymentService struct {
	circulation *CirculationService
	store       ports.LibraryStore
	exec        *Executor
	metrics     *Metrics
	logger      *slog.Logger
}

// PaymentServiceConfig contains the dependencies of the payment service.
type PaymentServiceConfig struct {
	Circulation *CirculationService
	Store       ports.LibraryStore
	Metrics     *Metrics
	Logger      *slog.Logger
}

// NewPaymentService creates a payment service. It panics without its
// circulation service or store.
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	if cfg.Circulation == nil || cfg.Store == nil {
		panic("app: payment service requires a circulation service and a library store")
	}

	logger := defaultLogger(cfg.Logger, "app.PaymentService")

	return &PaymentService{
		circulation: cfg.Circulation,
		store:       cfg.Store,
		exec:        NewExecutor(logger),
		metrics:     cfg.Metrics,
		logger:      logger,
	}
}

// PaymentReceipt describes a successful late fee charge.
type PaymentReceipt struct {
	TransactionID string
	Amount        decimal.Decimal
	Title         string
	Message       string
}

// RefundReceipt describes a successful refund.
type RefundReceipt struct {
	TransactionID string
	Amount        decimal.Decimal
	Message       string
}

type payRequest struct {
	patronID string
	bookID   int64
	gateway  ports.PaymentGateway

	fee   decimal.Decimal
	title string
}

// PayLateFees charges the late fee owed on a patron's outstanding loan.
//
// The gateway is not called when the patron id is invalid, no fee can be
// quoted, nothing is owed or the book is gone. A gateway failure or panic
// becomes payment_gateway_error; a refusal becomes payment_declined.
func (s *PaymentService) PayLateFees(ctx context.Context, patronID string, bookID int64, gateway ports.PaymentGateway) (receipt PaymentReceipt, err error) {
	defer func() { s.metrics.recordFeePayment(ctx, err) }()
	defer recoverStorage("pay late fees", &err)

	ctx, _ = reqctx.Ensure(ctx)

	op := Operation[*payRequest, domain.ChargeResult, PaymentReceipt]{
		Name:     "pay_late_fees",
		Validate: s.validatePayment,
		Perform: func(ctx context.Context, req *payRequest) (domain.ChargeResult, error) {
			return charge(ctx, req.gateway, req.patronID, req.fee, domain.LateFeeDescription(req.title))
		},
		Verify: func(_ context.Context, _ *payRequest, res domain.ChargeResult) error {
			if !res.Approved {
				return domain.NewPaymentDeclinedError(res.Message)
			}

			if res.TransactionID == "" {
				return domain.NewUnavailableError(gatewayService, "approved charge carried no transaction id")
			}

			return nil
		},
		Respond: func(_ context.Context, req *payRequest, res domain.ChargeResult) (PaymentReceipt, error) {
			return PaymentReceipt{
				TransactionID: res.TransactionID,
				Amount:        req.fee,
				Title:         req.title,
				Message:       "Payment successful! " + res.Message,
			}, nil
		},
		OnPanic: gatewayPanic,
	}

	return Execute(ctx, s.exec, op, &payRequest{patronID: patronID, bookID: bookID, gateway: gateway})
}

func (s *PaymentService) validatePayment(ctx context.Context, req *payRequest) error {
	if err := domain.ValidatePatronID(req.patronID); err != nil {
		return err
	}

	quote, err := s.circulation.QuoteLateFee(ctx, req.patronID, req.bookID)
	if err != nil {
		if domain.IsStorage(err) {
			return err
		}

		return domain.NewNotFoundError(domain.KindFeeUnavailable, "late fee", "")
	}

	if !quote.Amount.IsPositive() {
		return domain.NewConflictError(domain.KindNoFeeDue, "late fee", "no late fees to pay for this book")
	}

	book, err := lookupBook(ctx, s.store, req.bookID)
	if err != nil {
		return err
	}

	if req.gateway == nil {
		return domain.NewUnavailableError(gatewayService, "no payment gateway configured")
	}

	req.fee = quote.Amount
	req.title = book.Title

	return nil
}

type refundRequest struct {
	transactionID string
	amount        decimal.Decimal
	gateway       ports.PaymentGateway
}

// RefundLateFeePayment returns amount against a prior late fee charge.
// Checks run before the gateway is called: transaction id, positive
// amount, amount within the fee cap.
func (s *PaymentService) RefundLateFeePayment(ctx context.Context, transactionID string, amount decimal.Decimal, gateway ports.PaymentGateway) (receipt RefundReceipt, err error) {
	defer func() { s.metrics.recordRefund(ctx, err) }()

	op := Operation[refundRequest, domain.RefundResult, RefundReceipt]{
		Name: "refund_late_fee_payment",
		Validate: func(_ context.Context, req refundRequest) error {
			if err := domain.ValidateRefund(req.transactionID, req.amount); err != nil {
				return err
			}

			if req.gateway == nil {
				return domain.NewUnavailableError(gatewayService, "no payment gateway configured")
			}

			return nil
		},
		Perform: func(ctx context.Context, req refundRequest) (domain.RefundResult, error) {
			return refund(ctx, req.gateway, req.transactionID, req.amount)
		},
		Verify: func(_ context.Context, _ refundRequest, res domain.RefundResult) error {
			if !res.Approved {
				return domain.NewRefundFailedError(res.Message)
			}

			return nil
		},
		Respond: func(_ context.Context, req refundRequest, res domain.RefundResult) (RefundReceipt, error) {
			return RefundReceipt{
				TransactionID: req.transactionID,
				Amount:        req.amount,
				Message:       res.Message,
			}, nil
		},
		OnPanic: gatewayPanic,
	}

	return Execute(ctx, s.exec, op, refundRequest{transactionID: transactionID, amount: amount, gateway: gateway})
}

// charge calls the gateway, converting errors to payment_gateway_error.
func charge(ctx context.Context, gw ports.PaymentGateway, patronID string, amount decimal.Decimal, description string) (domain.ChargeResult, error) {
	res, err := gw.Charge(ctx, patronID, amount, description)
	if err != nil {
		return domain.ChargeResult{}, gatewayFailure(err)
	}

	return res, nil
}

// refund calls the gateway, converting errors to payment_gateway_error.
func refund(ctx context.Context, gw ports.PaymentGateway, transactionID string, amount decimal.Decimal) (domain.RefundResult, error) {
	res, err := gw.Refund(ctx, transactionID, amount)
	if err != nil {
		return domain.RefundResult{}, gatewayFailure(err)
	}

	return res, nil
}

// gatewayPanic keeps a misbehaving gateway from taking the request down.
func gatewayPanic(recovered any) error {
	return domain.NewUnavailableError(gatewayService, fmt.Sprintf("payment processing error: %v", recovered))
}

func gatewayFailure(err error) error {
	if domain.KindOf(err) == domain.KindPaymentGatewayError {
		return err
	}

	return fmt.Errorf("%w: %w", domain.NewUnavailableError(gatewayService, "payment processing error: "+err.Error()), err)
}
