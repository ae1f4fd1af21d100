package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/partner"
)

// CreateSiteRequest represents a request to create a site
type CreateSiteRequest struct {
	SiteName    string `json:"siteName" binding:"required,max=200"`
	ProjectCode string `json:"projectCode" binding:"required,max=50"`
	Address     string `json:"address" binding:"omitempty,max=500"`
	City        string `json:"city" binding:"omitempty,max=100"`
	State       string `json:"state" binding:"omitempty,max=100"`
	StateCode   string `json:"stateCode" binding:"omitempty,max=10"`
	GSTIN       string `json:"gstin" binding:"omitempty,len=15"`
	Email       string `json:"email" binding:"omitempty,email"`
	Hierarchy   string `json:"hierarchy" binding:"omitempty,oneof='Central Ware House' Site"`
}

// SiteResponse represents a site in API responses
type SiteResponse struct {
	ID          uuid.UUID `json:"id"`
	SiteName    string    `json:"siteName"`
	ProjectCode string    `json:"projectCode"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	StateCode   string    `json:"stateCode,omitempty"`
	GSTIN       string    `json:"gstin,omitempty"`
	Email       string    `json:"email,omitempty"`
	Hierarchy   string    `json:"hierarchy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	SupplierName  string `json:"supplierName" binding:"required,max=200"`
	ContactPerson string `json:"contactPerson" binding:"omitempty,max=100"`
	Phone         string `json:"phone" binding:"omitempty,len=10,numeric"`
	Email         string `json:"email" binding:"required,email"`
	Address       string `json:"address" binding:"omitempty,max=500"`
	City          string `json:"city" binding:"omitempty,max=100"`
	State         string `json:"state" binding:"omitempty,max=100"`
	GSTIN         string `json:"gstin" binding:"omitempty,len=15"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	SupplierName  string    `json:"supplierName"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	GSTIN         string    `json:"gstin,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ListFilter represents filter options for site and supplier listings
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// ToSiteResponse converts a domain site to a response
func ToSiteResponse(s *partner.Site) SiteResponse {
	return SiteResponse{
		ID:          s.ID,
		SiteName:    s.SiteName,
		ProjectCode: s.ProjectCode,
		Address:     s.Address,
		City:        s.City,
		State:       s.State,
		StateCode:   s.StateCode,
		GSTIN:       s.GSTIN,
		Email:       s.Email,
		Hierarchy:   string(s.Hierarchy),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToSupplierResponse converts a domain supplier to a response
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		SupplierName:  s.SupplierName,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		City:          s.City,
		State:         s.State,
		GSTIN:         s.GSTIN,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
