package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/logger"
	"github.com/sitestock/backend/internal/interfaces/http/dto"
	"github.com/sitestock/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(logger.GinRequestIDKey)
}

// page returns the page and page size a list was served with
func page(p, size int) (int, int) {
	f := shared.Filter{Page: p, PageSize: size}.Normalize()
	return f.Page, f.PageSize
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(message, data))
}

// SuccessWithMeta sends one page of a list
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, message string, data any, total int64, p, size int) {
	p, size = page(p, size)
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(message, data, total, p, size))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(message, data))
}

// Error sends an error response with an explicit status
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponse(code, message, getRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// BindError reports a request that failed to bind. Validator failures list
// every field; anything else is a malformed body.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", getRequestID(c), details))
		return
	}
	h.BadRequest(c, "Malformed request: "+err.Error())
}

// HandleError maps err to a response. Domain errors keep their code and
// message; anything else is logged and hidden behind a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	var failure *shared.ValidationFailure
	if errors.As(err, &failure) && len(failure.Errors) > 1 {
		details := make([]dto.ValidationDetail, 0, len(failure.Errors))
		for _, fe := range failure.Errors {
			details = append(details, dto.ValidationDetail{Field: fe.Field, Message: fe.Message})
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(failure.Error(), requestID, details))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.FromDomainCode(domainErr.Code)
		if code != dto.ErrCodeInternal {
			resp := dto.NewErrorResponse(code, domainErr.Message, requestID)
			if domainErr.Field != "" {
				resp.Error.Details = []dto.ValidationDetail{{Field: domainErr.Field, Message: domainErr.Message}}
			}
			c.JSON(dto.GetHTTPStatus(code), resp)
			return
		}
	}

	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}

// actor returns the authenticated caller or writes a 401
func (h *BaseHandler) actor(c *gin.Context) (middleware.Actor, bool) {
	a, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
	}
	return a, ok
}

// pathID parses the :id path parameter or writes a 400
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}

// pathNumber reads the :number path parameter or writes a 400
func (h *BaseHandler) pathNumber(c *gin.Context) (string, bool) {
	var req dto.NumberRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return "", false
	}
	return req.Number, true
}
