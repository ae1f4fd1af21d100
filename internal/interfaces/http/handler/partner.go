package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/sitestock/backend/internal/application/partner"
)

// PartnerHandler serves sites and suppliers
type PartnerHandler struct {
	BaseHandler
	siteService     *partnerapp.SiteService
	supplierService *partnerapp.SupplierService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(siteService *partnerapp.SiteService, supplierService *partnerapp.SupplierService) *PartnerHandler {
	return &PartnerHandler{siteService: siteService, supplierService: supplierService}
}

// CreateSite registers a site or the central warehouse
func (h *PartnerHandler) CreateSite(c *gin.Context) {
	var req partnerapp.CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	site, err := h.siteService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Site created", site)
}

// GetSite returns one site
func (h *PartnerHandler) GetSite(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	site, err := h.siteService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Site retrieved", site)
}

// ListSites returns a page of sites
func (h *PartnerHandler) ListSites(c *gin.Context) {
	var filter partnerapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	sites, total, err := h.siteService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "Sites retrieved", sites, total, filter.Page, filter.PageSize)
}

// CreateSupplier registers a supplier
func (h *PartnerHandler) CreateSupplier(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Supplier created", supplier)
}

// GetSupplier returns one supplier
func (h *PartnerHandler) GetSupplier(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Supplier retrieved", supplier)
}

// ListSuppliers returns a page of suppliers
func (h *PartnerHandler) ListSuppliers(c *gin.Context) {
	var filter partnerapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	suppliers, total, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "Suppliers retrieved", suppliers, total, filter.Page, filter.PageSize)
}
