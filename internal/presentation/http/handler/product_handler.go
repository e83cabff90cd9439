package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing products
// @Summary List Products
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param companyId path string true "Company ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Param search query string false "Name contains"
// @Success 200 {object} response.APIResponse
// @Router /companies/{companyId}/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	result, err := h.productService.ListProducts(c.Request.Context(), &service.ListProductsInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		Pagination:  q.Pagination(),
		Search:      q.Search,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}

	var req request.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), userID, companyID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Update handles a partial product update. A new price applies to invoices
// from now on; estimates keep the price they were written with.
func (h *ProductHandler) Update(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), &service.UpdateProductInput{
		PrincipalID: userID,
		CompanyID:   companyID,
		ProductID:   productID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	userID, companyID, ok := companyScope(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), userID, companyID, productID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
