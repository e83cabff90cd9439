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

// EstimateHandler handles estimate HTTP requests
type EstimateHandler struct {
	estimateService *service.EstimateService
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(estimateService *service.EstimateService) *EstimateHandler {
	return &EstimateHandler{estimateService: estimateService}
}

func (h *EstimateHandler) List(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	input := &service.ListEstimatesInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		Pagination:  q.Pagination(),
	}
	if q.Status != "" {
		status, err := enum.ParseEstimateStatus(q.Status)
		if err != nil {
			response.Error(c, apperror.NewFieldError("status", err.Error()))
			return
		}
		input.Status = &status
	}
	if input.ClientID, ok = queryID(c, "client_id", q.ClientID); !ok {
		return
	}

	result, err := h.estimateService.ListEstimates(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Estimates retrieved successfully", result)
}

// Create handles creating an estimate. Each line keeps the product price at
// the time it was written.
func (h *EstimateHandler) Create(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}

	var req request.CreateEstimateRequest
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

	estimate, err := h.estimateService.CreateEstimate(c.Request.Context(), &service.CreateEstimateInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		ClientID:    clientID,
		IssueDate:   req.IssueDate.Time,
		ExpiryDate:  req.ExpiryDate.Ptr(),
		Notes:       req.Notes,
		Status:      req.Status,
		Items:       items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Estimate created successfully", estimate)
}

func (h *EstimateHandler) Get(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	estimateID, ok := pathID(c, "estimateId")
	if !ok {
		return
	}

	estimate, err := h.estimateService.GetEstimate(c.Request.Context(), userID, companyID, estimateID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Estimate retrieved successfully", estimate)
}

func (h *EstimateHandler) Update(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	estimateID, ok := pathID(c, "estimateId")
	if !ok {
		return
	}

	var req request.UpdateEstimateRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateEstimateInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		EstimateID:  estimateID,
		IssueDate:   optional.Map(req.IssueDate, dateOf),
		ExpiryDate:  optional.Map(req.ExpiryDate, func(d request.Date) *time.Time { return d.Ptr() }),
		Notes:       req.Notes,
		Status:      req.Status,
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

	estimate, err := h.estimateService.UpdateEstimate(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Estimate updated successfully", estimate)
}

// UpdateStatus handles moving an estimate between Draft, Sent, Accepted and
// Declined. Any transition is allowed.
func (h *EstimateHandler) UpdateStatus(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	estimateID, ok := pathID(c, "estimateId")
	if !ok {
		return
	}

	var req request.UpdateEstimateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	estimate, err := h.estimateService.UpdateEstimateStatus(c.Request.Context(), userID, companyID, estimateID, *req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Estimate status updated successfully", estimate)
}

func (h *EstimateHandler) Delete(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	estimateID, ok := pathID(c, "estimateId")
	if !ok {
		return
	}

	if err := h.estimateService.DeleteEstimate(c.Request.Context(), userID, companyID, estimateID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Convert handles turning an estimate into a new invoice priced at current
// product prices. The estimate itself is left as it is.
// @Summary Convert Estimate
// @Tags estimates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param companyId path string true "Company ID"
// @Param estimateId path string true "Estimate ID"
// @Param request body request.ConvertEstimateRequest true "Invoice dates"
// @Success 201 {object} response.APIResponse
// @Router /companies/{companyId}/estimates/{estimateId}/convert [post]
func (h *EstimateHandler) Convert(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	estimateID, ok := pathID(c, "estimateId")
	if !ok {
		return
	}

	var req request.ConvertEstimateRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.estimateService.ConvertToInvoice(c.Request.Context(), &service.ConvertEstimateInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		EstimateID:  estimateID,
		IssueDate:   req.IssueDate.Time,
		DueDate:     req.DueDate.Time,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created from estimate", invoice)
}
