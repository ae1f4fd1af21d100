package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	requisitionapp "github.com/sitestock/backend/internal/application/requisition"
)

// MaterialRequestHandler serves the request and approval workflow
type MaterialRequestHandler struct {
	BaseHandler
	service *requisitionapp.Service
}

// NewMaterialRequestHandler creates a new MaterialRequestHandler
func NewMaterialRequestHandler(service *requisitionapp.Service) *MaterialRequestHandler {
	return &MaterialRequestHandler{service: service}
}

// Create raises a request for the caller
func (h *MaterialRequestHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req requisitionapp.CreateMaterialRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	mr, err := h.service.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Material request created", mr)
}

// Approve approves a pending request as the caller
func (h *MaterialRequestHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	mr, err := h.service.Approve(c.Request.Context(), actor.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Material request approved", mr)
}

// Delete removes a pending request
func (h *MaterialRequestHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor.UserID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Material request deleted", nil)
}

// Get returns one request
func (h *MaterialRequestHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	mr, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Material request retrieved", mr)
}

// GetByNumber returns the request with a request number
func (h *MaterialRequestHandler) GetByNumber(c *gin.Context) {
	number, ok := h.pathNumber(c)
	if !ok {
		return
	}
	mr, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Material request retrieved", mr)
}

type requestLister func(*gin.Context, uuid.UUID, requisitionapp.MaterialRequestListFilter) ([]requisitionapp.MaterialRequestResponse, int64, error)

func (h *MaterialRequestHandler) list(c *gin.Context, message string, fn requestLister) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter requisitionapp.MaterialRequestListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	list, total, err := fn(c, actor.UserID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, message, list, total, filter.Page, filter.PageSize)
}

// ListForReview lists requests the caller's role reviews
func (h *MaterialRequestHandler) ListForReview(c *gin.Context) {
	h.list(c, "Material requests retrieved", func(c *gin.Context, userID uuid.UUID, f requisitionapp.MaterialRequestListFilter) ([]requisitionapp.MaterialRequestResponse, int64, error) {
		return h.service.ListForReviewer(c.Request.Context(), userID, f)
	})
}

// ListApproved lists approved requests the caller's role reviews
func (h *MaterialRequestHandler) ListApproved(c *gin.Context) {
	h.list(c, "Approved material requests retrieved", func(c *gin.Context, userID uuid.UUID, f requisitionapp.MaterialRequestListFilter) ([]requisitionapp.MaterialRequestResponse, int64, error) {
		return h.service.ListApproved(c.Request.Context(), userID, f)
	})
}

// ListMine lists the caller's own requests
func (h *MaterialRequestHandler) ListMine(c *gin.Context) {
	h.list(c, "Material requests retrieved", func(c *gin.Context, userID uuid.UUID, f requisitionapp.MaterialRequestListFilter) ([]requisitionapp.MaterialRequestResponse, int64, error) {
		return h.service.ListMine(c.Request.Context(), userID, f)
	})
}

// ApprovedWithoutPO lists approved requests no purchase order covers yet
func (h *MaterialRequestHandler) ApprovedWithoutPO(c *gin.Context) {
	h.list(c, "Approved material requests without purchase order", func(c *gin.Context, _ uuid.UUID, f requisitionapp.MaterialRequestListFilter) ([]requisitionapp.MaterialRequestResponse, int64, error) {
		return h.service.ApprovedWithoutPO(c.Request.Context(), f)
	})
}

type siteQuery struct {
	SiteID  string `form:"siteId" binding:"omitempty,uuid"`
	Central bool   `form:"central"`
}

func (q siteQuery) site() *uuid.UUID {
	if q.SiteID == "" {
		return nil
	}
	id := uuid.MustParse(q.SiteID)
	return &id
}

// IssueStatus compares approved quantities with what was issued, per item,
// for one site or the central warehouse when siteId is absent
func (h *MaterialRequestHandler) IssueStatus(c *gin.Context) {
	var q siteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	lines, err := h.service.IssueStatus(c.Request.Context(), q.site())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Issue status retrieved", lines)
}
