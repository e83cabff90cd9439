package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
)

// PaymentHandler handles the payment ledger of an invoice
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// List handles listing an invoice's payments, oldest first
func (h *PaymentHandler) List(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "invoiceId")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), userID, companyID, invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved successfully", payments)
}

// Record handles appending a payment. The response carries the invoice's new
// status and balance.
// @Summary Record Payment
// @Tags payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param companyId path string true "Company ID"
// @Param invoiceId path string true "Invoice ID"
// @Param Idempotency-Key header string false "Replay key for retries"
// @Param request body request.RecordPaymentRequest true "Payment"
// @Success 201 {object} response.APIResponse
// @Router /companies/{companyId}/invoices/{invoiceId}/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "invoiceId")
	if !ok {
		return
	}

	var req request.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	state, err := h.paymentService.RecordPayment(c.Request.Context(), &service.RecordPaymentInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		InvoiceID:   invoiceID,
		PaymentInput: service.PaymentInput{
			Amount: req.Amount,
			PaidOn: req.PaidOn.Time,
			Notes:  req.Notes,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", state)
}

// Delete handles removing a payment and recomputing the invoice status
func (h *PaymentHandler) Delete(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "invoiceId")
	if !ok {
		return
	}
	paymentID, ok := pathID(c, "paymentId")
	if !ok {
		return
	}

	state, err := h.paymentService.DeletePayment(c.Request.Context(), userID, companyID, invoiceID, paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment deleted successfully", state)
}
