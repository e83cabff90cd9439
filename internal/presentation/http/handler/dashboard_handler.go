package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats handles getting a company's income and invoice status summary
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetDashboard(c.Request.Context(), userID, companyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}
