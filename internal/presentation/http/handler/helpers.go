package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicer-api/internal/presentation/http/middleware"
	"github.com/sangkips/invoicer-api/pkg/apperror"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserEmail extracts the user email from the Gin context
func GetUserEmail(c *gin.Context) string {
	return c.GetString(middleware.UserEmailKey)
}

// principal returns the authenticated user id, writing a 401 when missing.
func principal(c *gin.Context) (uuid.UUID, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, false
	}
	return *userID, true
}

// pathID parses a UUID path parameter, writing a 400 when malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := request.ParseID(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// companyScope resolves the principal and the :companyId parameter.
func companyScope(c *gin.Context) (userID, companyID uuid.UUID, ok bool) {
	if userID, ok = principal(c); !ok {
		return
	}
	companyID, ok = pathID(c, "companyId")
	return
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, io.EOF) {
			response.BadRequest(c, "Request body is required")
			return false
		}
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func bindQuery(c *gin.Context) (*request.ListQuery, bool) {
	var q request.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return nil, false
	}
	return &q, true
}

// bodyID parses a UUID carried in the request body under field.
func bodyID(c *gin.Context, field, value string) (uuid.UUID, bool) {
	id, err := request.ParseID(value)
	if err != nil {
		response.Error(c, apperror.NewFieldError(field, err.Error()))
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional UUID filter. Empty means no filter.
func queryID(c *gin.Context, field, value string) (*uuid.UUID, bool) {
	if value == "" {
		return nil, true
	}
	id, ok := bodyID(c, field, value)
	if !ok {
		return nil, false
	}
	return &id, true
}

func lineItems(c *gin.Context, rows []request.LineItemRequest) ([]service.LineItemInput, bool) {
	items, err := request.LineItems(rows)
	if err != nil {
		response.Error(c, apperror.NewFieldError("items", err.Error()))
		return nil, false
	}
	return items, true
}
