package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List handles listing a company's clients
// @Summary List Clients
// @Tags clients
// @Security BearerAuth
// @Produce json
// @Param companyId path string true "Company ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Param search query string false "Name or email contains"
// @Success 200 {object} response.APIResponse
// @Router /companies/{companyId}/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	result, err := h.clientService.ListClients(c.Request.Context(), &service.ListClientsInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		Pagination:  q.Pagination(),
		Search:      q.Search,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Clients retrieved successfully", result)
}

// Create handles creating a client
func (h *ClientHandler) Create(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}

	var req request.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), &service.CreateClientInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client created successfully", client)
}

// Get handles getting a single client
func (h *ClientHandler) Get(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), userID, companyID, clientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}

// Update handles a partial client update
func (h *ClientHandler) Update(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}

	var req request.UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), &service.UpdateClientInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		ClientID:    clientID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client updated successfully", client)
}

// Delete handles deleting a client that no document references
func (h *ClientHandler) Delete(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), userID, companyID, clientID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
