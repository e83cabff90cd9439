package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
)

// CompanyHandler handles company HTTP requests. Every company is owned by the
// user who created it.
type CompanyHandler struct {
	companyService *service.CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// List handles listing the principal's companies
// @Summary List Companies
// @Tags companies
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}

	companies, err := h.companyService.ListCompanies(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Companies retrieved successfully", companies)
}

// Create handles creating a company
// @Summary Create Company
// @Tags companies
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateCompanyRequest true "Company"
// @Success 201 {object} response.APIResponse
// @Router /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}

	var req request.CreateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), &service.CreateCompanyInput{
		PrincipalID: userID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		TaxNumber:   req.TaxNumber,
		Currency:    req.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Company created successfully", company)
}

// Get handles getting a single company
func (h *CompanyHandler) Get(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), userID, companyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Company retrieved successfully", company)
}

// Update handles a partial company update
func (h *CompanyHandler) Update(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}

	var req request.UpdateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), &service.UpdateCompanyInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		TaxNumber:   req.TaxNumber,
		Currency:    req.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Company updated successfully", company)
}
