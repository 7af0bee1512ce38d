package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-circulation/internal/adapters/http/dto"
	"github.com/jsamuelsen/library-circulation/internal/app"
)

// CirculationHandler serves borrowing, returns and patron status.
type CirculationHandler struct {
	circulation *app.CirculationService
	reports     *app.ReportService
}

// NewCirculationHandler creates a circulation handler.
func NewCirculationHandler(circulation *app.CirculationService, reports *app.ReportService) *CirculationHandler {
	return &CirculationHandler{circulation: circulation, reports: reports}
}

// Borrow handles POST /api/v1/borrow.
//
// @Summary Borrow a book
// @Tags circulation
// @Accept json
// @Produce json
// @Param loan body dto.LoanRequest true "Patron and book"
// @Success 201 {object} dto.BorrowResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/borrow [post]
func (h *CirculationHandler) Borrow(c *gin.Context) {
	var req dto.LoanRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	receipt, err := h.circulation.Borrow(c.Request.Context(), req.PatronID, req.BookID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBorrowResponse(receipt))
}

// Return handles POST /api/v1/return.
//
// @Summary Return a borrowed book
// @Tags circulation
// @Accept json
// @Produce json
// @Param loan body dto.LoanRequest true "Patron and book"
// @Success 200 {object} dto.ReturnResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/return [post]
func (h *CirculationHandler) Return(c *gin.Context) {
	var req dto.LoanRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	receipt, err := h.circulation.Return(c.Request.Context(), req.PatronID, req.BookID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReturnResponse(receipt))
}

// Report handles GET /api/v1/patrons/:id/report.
//
// @Summary Patron status report
// @Tags patrons
// @Produce json
// @Param id path string true "Six-digit patron ID"
// @Success 200 {object} dto.ReportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/patrons/{id}/report [get]
func (h *CirculationHandler) Report(c *gin.Context) {
	report, err := h.reports.StatusReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReportResponse(report))
}

// LateFee handles GET /api/v1/patrons/:id/books/:bookId/late-fee.
//
// @Summary Quote the late fee on an outstanding loan
// @Tags patrons
// @Produce json
// @Param id path string true "Six-digit patron ID"
// @Param bookId path int true "Book ID"
// @Success 200 {object} dto.FeeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/patrons/{id}/books/{bookId}/late-fee [get]
func (h *CirculationHandler) LateFee(c *gin.Context) {
	bookID, ok := int64Param(c, "bookId")
	if !ok {
		return
	}

	quote, err := h.circulation.QuoteLateFee(c.Request.Context(), c.Param("id"), bookID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewFeeResponse(quote))
}

// RegisterRoutes registers circulation routes on rg.
func (h *CirculationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/borrow", h.Borrow)
	rg.POST("/return", h.Return)

	patrons := rg.Group("/patrons/:id")
	patrons.GET("/report", h.Report)
	patrons.GET("/books/:bookId/late-fee", h.LateFee)
}
