package handler

import (
	"github.com/gin-gonic/gin"
	procurementapp "github.com/sitestock/backend/internal/application/procurement"
)

// PurchaseOrderHandler serves the purchase order lifecycle
type PurchaseOrderHandler struct {
	BaseHandler
	service *procurementapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(service *procurementapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

// Create raises an order against an approved material request
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req procurementapp.PurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.service.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Purchase order created", result)
}

// Update replaces an unapproved order's header and lines
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req procurementapp.PurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	po, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Purchase order updated", po)
}

// Approve approves an order as the caller
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	po, err := h.service.Approve(c.Request.Context(), actor.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Purchase order approved", po)
}

// Close stops further receipts against an order
func (h *PurchaseOrderHandler) Close(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	po, err := h.service.Close(c.Request.Context(), actor.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Purchase order closed", po)
}

// Delete removes a batch of orders; the batch succeeds or fails as a whole
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	var req procurementapp.DeletePurchaseOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), req.IDs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Purchase orders deleted", gin.H{"deleted": len(req.IDs)})
}

// Get returns one order
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	po, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Purchase order retrieved", po)
}

// GetByNumber returns the order with an order number
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	number, ok := h.pathNumber(c)
	if !ok {
		return
	}
	po, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Purchase order retrieved", po)
}

// List returns a page of orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter procurementapp.PurchaseOrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	list, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "Purchase orders retrieved", list, total, filter.Page, filter.PageSize)
}

// ItemsStatus lists order lines with their receipt progress
func (h *PurchaseOrderHandler) ItemsStatus(c *gin.Context) {
	var q siteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	lines, err := h.service.ItemsStatus(c.Request.Context(), q.site(), q.Central)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Item status retrieved", lines)
}
