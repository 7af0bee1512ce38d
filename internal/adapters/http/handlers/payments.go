package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-circulation/internal/adapters/http/dto"
	"github.com/jsamuelsen/library-circulation/internal/app"
	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

// PaymentHandler serves late fee payments and refunds through the gateway
// chosen at startup.
type PaymentHandler struct {
	payments *app.PaymentService
	gateway  ports.PaymentGateway
}

// NewPaymentHandler creates a payment handler.
func NewPaymentHandler(payments *app.PaymentService, gateway ports.PaymentGateway) *PaymentHandler {
	return &PaymentHandler{payments: payments, gateway: gateway}
}

// Pay handles POST /api/v1/payments.
//
// @Summary Pay the late fee on an outstanding loan
// @Tags payments
// @Accept json
// @Produce json
// @Param loan body dto.LoanRequest true "Patron and book"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/payments [post]
func (h *PaymentHandler) Pay(c *gin.Context) {
	var req dto.LoanRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	receipt, err := h.payments.PayLateFees(c.Request.Context(), req.PatronID, req.BookID, h.gateway)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaymentResponse(receipt))
}

// Refund handles POST /api/v1/refunds.
//
// @Summary Refund a late fee payment
// @Tags payments
// @Accept json
// @Produce json
// @Param refund body dto.RefundRequest true "Transaction and amount"
// @Success 200 {object} dto.RefundResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/refunds [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	var req dto.RefundRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	amount, err := domain.ParseRefundAmount(req.TransactionID, req.Amount)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	receipt, err := h.payments.RefundLateFeePayment(c.Request.Context(), req.TransactionID, amount, h.gateway)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRefundResponse(receipt))
}

// RegisterRoutes registers payment routes on rg.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", h.Pay)
	rg.POST("/refunds", h.Refund)
}
