package handler

import (
	"github.com/gin-gonic/gin"
	logisticsapp "github.com/sitestock/backend/internal/application/logistics"
)

// MaterialIssueHandler serves material issues and the transfer orders they
// spawn
type MaterialIssueHandler struct {
	BaseHandler
	issues    *logisticsapp.MaterialIssueService
	transfers *logisticsapp.TransferOrderService
}

// NewMaterialIssueHandler creates a new MaterialIssueHandler
func NewMaterialIssueHandler(issues *logisticsapp.MaterialIssueService, transfers *logisticsapp.TransferOrderService) *MaterialIssueHandler {
	return &MaterialIssueHandler{issues: issues, transfers: transfers}
}

// Create issues stock from the caller's location
func (h *MaterialIssueHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req logisticsapp.CreateMaterialIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.issues.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Material issue created", result)
}

// Update changes shipment details and line quantities
func (h *MaterialIssueHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req logisticsapp.UpdateMaterialIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	mi, err := h.issues.Update(c.Request.Context(), actor.UserID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Material issue updated", mi)
}

// Get returns one issue
func (h *MaterialIssueHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	mi, err := h.issues.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Material issue retrieved", mi)
}

// GetByNumber returns the issue with an issue number
func (h *MaterialIssueHandler) GetByNumber(c *gin.Context) {
	number, ok := h.pathNumber(c)
	if !ok {
		return
	}
	mi, err := h.issues.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Material issue retrieved", mi)
}

// ListMine lists the issues the caller made
func (h *MaterialIssueHandler) ListMine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter logisticsapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	list, total, err := h.issues.ListMine(c.Request.Context(), actor.UserID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "Material issues retrieved", list, total, filter.Page, filter.PageSize)
}

// List lists every issue
func (h *MaterialIssueHandler) List(c *gin.Context) {
	var filter logisticsapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	list, total, err := h.issues.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "Material issues retrieved", list, total, filter.Page, filter.PageSize)
}

// GetTransfer returns one transfer order
func (h *MaterialIssueHandler) GetTransfer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	to, err := h.transfers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Transfer order retrieved", to)
}

// GetTransferByReference returns the newest transfer order for an MI or PO
// number
func (h *MaterialIssueHandler) GetTransferByReference(c *gin.Context) {
	number, ok := h.pathNumber(c)
	if !ok {
		return
	}
	to, err := h.transfers.GetByReference(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Transfer order retrieved", to)
}

// ListTransfers lists transfer orders
func (h *MaterialIssueHandler) ListTransfers(c *gin.Context) {
	var filter logisticsapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	list, total, err := h.transfers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "Transfer orders retrieved", list, total, filter.Page, filter.PageSize)
}

// ApproveTransfer approves a pending transfer order
func (h *MaterialIssueHandler) ApproveTransfer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	to, err := h.transfers.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Transfer order approved", to)
}

// DeleteTransfer removes a pending transfer order
func (h *MaterialIssueHandler) DeleteTransfer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.transfers.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Transfer order deleted", nil)
}
