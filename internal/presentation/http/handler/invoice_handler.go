package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/optional"
)

// InvoiceHandler handles invoice HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func dateOf(d request.Date) time.Time { return d.Time }

// List handles listing invoices
// @Summary List Invoices
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param companyId path string true "Company ID"
// @Param status query string false "Unpaid, Partial or Paid"
// @Param client_id query string false "Client ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Success 200 {object} response.APIResponse
// @Router /companies/{companyId}/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	input := &service.ListInvoicesInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		Pagination:  q.Pagination(),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
	}
	if q.Status != "" {
		status, err := enum.ParseInvoiceStatus(q.Status)
		if err != nil {
			response.Error(c, apperror.NewFieldError("status", err.Error()))
			return
		}
		input.Status = &status
	}
	if input.ClientID, ok = queryID(c, "client_id", q.ClientID); !ok {
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// Create handles creating an invoice. The number is allocated from the
// company's invoice counter and the status starts as Unpaid.
// @Summary Create Invoice
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param companyId path string true "Company ID"
// @Param Idempotency-Key header string false "Replay key for retries"
// @Param request body request.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} response.APIResponse
// @Router /companies/{companyId}/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}

	var req request.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	clientID, ok := bodyID(c, "client_id", req.ClientID)
	if !ok {
		return
	}
	items, ok := lineItems(c, req.Items)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		ClientID:    clientID,
		IssueDate:   req.IssueDate.Time,
		DueDate:     req.DueDate.Time,
		Notes:       req.Notes,
		Items:       items,
		Notify:      req.Notify,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Get handles getting a single invoice with its items and payments
func (h *InvoiceHandler) Get(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "invoiceId")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), userID, companyID, invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Update handles a partial invoice update
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "invoiceId")
	if !ok {
		return
	}

	var req request.UpdateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateInvoiceInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		InvoiceID:   invoiceID,
		IssueDate:   optional.Map(req.IssueDate, dateOf),
		DueDate:     optional.Map(req.DueDate, dateOf),
		Notes:       req.Notes,
	}
	if raw, set := req.ClientID.Get(); set {
		clientID, ok := bodyID(c, "client_id", raw)
		if !ok {
			return
		}
		input.ClientID = optional.Some(clientID)
	}
	if rows, set := req.Items.Get(); set {
		items, ok := lineItems(c, rows)
		if !ok {
			return
		}
		input.Items = optional.Some(items)
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// Delete handles deleting an invoice together with its items and payments
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "invoiceId")
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), userID, companyID, invoiceID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Send handles emailing the "invoice ready" notice to the client. A 502 means
// the invoice is intact and only the delivery failed.
func (h *InvoiceHandler) Send(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "invoiceId")
	if !ok {
		return
	}

	if err := h.invoiceService.SendInvoice(c.Request.Context(), userID, companyID, invoiceID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice sent successfully", nil)
}
