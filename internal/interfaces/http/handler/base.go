// Package handler contains the gin handlers of the storefront REST API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/boutique/storefront/internal/infrastructure/logger"
	"github.com/boutique/storefront/internal/interfaces/http/dto"
	"github.com/boutique/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// List sends a list response with its length in meta
func List[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, dto.NewListResponse(items))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 invalid request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeInvalidRequest, message)
}

// HandleError converts domain errors to HTTP responses. Anything that is not a
// DomainError is logged and reported as a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, domainErr.Code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	logger.GetGinLogger(c).Error("request failed", zap.Error(err))
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bindJSON binds and validates the body, writing the validation response on failure
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds and validates query parameters
func bindQuery(c *gin.Context, dest any) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// pathID parses a positive integer path parameter
func (h *BaseHandler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
