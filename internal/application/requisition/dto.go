package requisition

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/catalog"
	"github.com/sitestock/backend/internal/domain/requisition"
)

// CreateMaterialRequestRequest represents a request to raise a material request
type CreateMaterialRequestRequest struct {
	Items []MaterialRequestItemInput `json:"items" binding:"required,min=1,dive"`
}

// MaterialRequestItemInput is one requested line
type MaterialRequestItemInput struct {
	ItemID       uuid.UUID       `json:"itemId" binding:"required"`
	RequestedQty decimal.Decimal `json:"requestedQty" binding:"required"`
}

// MaterialRequestResponse represents a material request in API responses
type MaterialRequestResponse struct {
	ID            uuid.UUID                     `json:"id"`
	RequestNo     string                        `json:"requestNo"`
	RequestedBy   uuid.UUID                     `json:"requestedBy"`
	RequesterRole string                        `json:"requesterRole"`
	RequestedTo   *uuid.UUID                    `json:"requestedTo,omitempty"`
	ApproverRole  string                        `json:"approverRole"`
	SiteID        *uuid.UUID                    `json:"siteId,omitempty"`
	Status        string                        `json:"status"`
	Items         []MaterialRequestItemResponse `json:"items"`
	ApprovedBy    *uuid.UUID                    `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time                    `json:"approvedAt,omitempty"`
	CreatedAt     time.Time                     `json:"createdAt"`
	UpdatedAt     time.Time                     `json:"updatedAt"`
	Version       int                           `json:"version"`
}

// MaterialRequestItemResponse represents a requested line
type MaterialRequestItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ItemID       uuid.UUID       `json:"itemId"`
	ItemCode     string          `json:"itemCode,omitempty"`
	Description  string          `json:"description,omitempty"`
	UOM          string          `json:"uom,omitempty"`
	RequestedQty decimal.Decimal `json:"requestedQty"`
}

// MaterialRequestListFilter represents filter options for request listings
type MaterialRequestListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending approved"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// IssueStatusResponse aggregates approved requests against issues for one item
type IssueStatusResponse struct {
	ItemID       uuid.UUID       `json:"itemId"`
	ItemCode     string          `json:"itemCode"`
	Description  string          `json:"description"`
	UOM          string          `json:"uom"`
	RequestedQty decimal.Decimal `json:"requestedQty"`
	IssuedQty    decimal.Decimal `json:"issuedQty"`
	PendingQty   decimal.Decimal `json:"pendingQty"`
}

// ToMaterialRequestResponse converts a domain request to a response. items
// may be nil, in which case item attributes are left empty.
func ToMaterialRequestResponse(mr *requisition.MaterialRequest, items map[uuid.UUID]*catalog.Item) MaterialRequestResponse {
	lines := make([]MaterialRequestItemResponse, len(mr.Items))
	for i, it := range mr.Items {
		line := MaterialRequestItemResponse{
			ID:           it.ID,
			ItemID:       it.ItemID,
			RequestedQty: it.RequestedQty,
		}
		if item, ok := items[it.ItemID]; ok {
			line.ItemCode = item.ItemCode
			line.Description = item.Description
			line.UOM = item.UOM
		}
		lines[i] = line
	}
	return MaterialRequestResponse{
		ID:            mr.ID,
		RequestNo:     mr.RequestNo,
		RequestedBy:   mr.RequestedBy,
		RequesterRole: mr.RequesterRole.String(),
		RequestedTo:   mr.RequestedTo,
		ApproverRole:  mr.ApproverRole.String(),
		SiteID:        mr.SiteID,
		Status:        string(mr.Status),
		Items:         lines,
		ApprovedBy:    mr.ApprovedBy,
		ApprovedAt:    mr.ApprovedAt,
		CreatedAt:     mr.CreatedAt,
		UpdatedAt:     mr.UpdatedAt,
		Version:       mr.Version,
	}
}
