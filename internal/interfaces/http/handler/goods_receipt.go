package handler

import (
	"github.com/gin-gonic/gin"
	receivingapp "github.com/sitestock/backend/internal/application/receiving"
)

// GoodsReceiptHandler serves goods receipt notes
type GoodsReceiptHandler struct {
	BaseHandler
	service *receivingapp.GoodsReceiptService
}

// NewGoodsReceiptHandler creates a new GoodsReceiptHandler
func NewGoodsReceiptHandler(service *receivingapp.GoodsReceiptService) *GoodsReceiptHandler {
	return &GoodsReceiptHandler{service: service}
}

// Create records a receipt against a purchase order or material issue
func (h *GoodsReceiptHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req receivingapp.GoodsReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.service.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Goods receipt created", result)
}

// Update reverts a receipt's stock effects and applies the new quantities
func (h *GoodsReceiptHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req receivingapp.GoodsReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.service.Update(c.Request.Context(), actor.UserID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Goods receipt updated", result)
}

// Delete reverts and removes a receipt
func (h *GoodsReceiptHandler) Delete(c *gin.Context) {
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
	h.Success(c, "Goods receipt deleted", nil)
}

// Get returns one receipt
func (h *GoodsReceiptHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	grn, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Goods receipt retrieved", grn)
}

// GetByNumber returns the receipt with a GRN number
func (h *GoodsReceiptHandler) GetByNumber(c *gin.Context) {
	number, ok := h.pathNumber(c)
	if !ok {
		return
	}
	grn, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Goods receipt retrieved", grn)
}

// List returns a page of receipts
func (h *GoodsReceiptHandler) List(c *gin.Context) {
	var filter receivingapp.GoodsReceiptListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	list, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "Goods receipts retrieved", list, total, filter.Page, filter.PageSize)
}
