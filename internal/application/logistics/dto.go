package logistics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/logistics"
)

// CreateMaterialIssueRequest represents a request to issue materials to a site
type CreateMaterialIssueRequest struct {
	IssuedTo     uuid.UUID                `json:"issuedTo" binding:"required"`
	Items        []MaterialIssueItemInput `json:"items" binding:"required,min=1,dive"`
	VehicleNo    string                   `json:"vehicleNo" binding:"max=50"`
	ExitDateTime *time.Time               `json:"exitDateTime"`
	Destination  string                   `json:"destination" binding:"max=200"`
}

// MaterialIssueItemInput is one issued line
type MaterialIssueItemInput struct {
	ItemID   uuid.UUID       `json:"itemId" binding:"required"`
	IssueQty decimal.Decimal `json:"issueQty" binding:"required"`
}

// UpdateMaterialIssueRequest amends shipment details and quantities
type UpdateMaterialIssueRequest struct {
	VehicleNo    string                         `json:"vehicleNo" binding:"max=50"`
	ExitDateTime *time.Time                     `json:"exitDateTime"`
	Destination  string                         `json:"destination" binding:"max=200"`
	Items        []UpdateMaterialIssueItemInput `json:"items" binding:"omitempty,dive"`
}

// UpdateMaterialIssueItemInput amends the quantity of one line by item code
type UpdateMaterialIssueItemInput struct {
	ItemCode string          `json:"itemCode" binding:"required"`
	IssueQty decimal.Decimal `json:"issueQty" binding:"required"`
}

// MaterialIssueResponse represents a material issue in API responses
type MaterialIssueResponse struct {
	ID              uuid.UUID                   `json:"id"`
	IssueNumber     string                      `json:"issueNumber"`
	IssuedBy        uuid.UUID                   `json:"issuedBy"`
	IssuerRole      string                      `json:"issuerRole"`
	FromSiteID      *uuid.UUID                  `json:"fromSiteId,omitempty"`
	IssuedTo        uuid.UUID                   `json:"issuedTo"`
	Items           []MaterialIssueItemResponse `json:"items"`
	ShipmentDetails ShipmentResponse            `json:"shipmentDetails"`
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
	Version         int                         `json:"version"`
}

// MaterialIssueItemResponse represents an issued line
type MaterialIssueItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ItemID      uuid.UUID       `json:"itemId"`
	ItemCode    string          `json:"itemCode"`
	Description string          `json:"description"`
	UOM         string          `json:"uom"`
	Category    string          `json:"category"`
	IssueQty    decimal.Decimal `json:"issueQty"`
}

// ShipmentResponse represents transport details
type ShipmentResponse struct {
	TransferNo           string     `json:"transferNo,omitempty"`
	VehicleNo            string     `json:"vehicleNo,omitempty"`
	ExitDateTime         *time.Time `json:"exitDateTime,omitempty"`
	Destination          string     `json:"destination,omitempty"`
	MaterialInwardStatus string     `json:"materialInwardStatus"`
	TransferOrderID      *uuid.UUID `json:"transferOrderId,omitempty"`
}

// CreateMaterialIssueResponse carries the issue and its optional transfer order
type CreateMaterialIssueResponse struct {
	MaterialIssue MaterialIssueResponse  `json:"materialIssue"`
	TransferOrder *TransferOrderResponse `json:"transferOrder,omitempty"`
}

// TransferOrderResponse represents a transfer order in API responses
type TransferOrderResponse struct {
	ID              uuid.UUID  `json:"id"`
	TransferNo      string     `json:"transferNo"`
	Type            string     `json:"type"`
	ReferenceNo     string     `json:"referenceNo"`
	MaterialIssueID *uuid.UUID `json:"materialIssueId,omitempty"`
	PurchaseOrderID *uuid.UUID `json:"purchaseOrderId,omitempty"`
	From            *uuid.UUID `json:"from,omitempty"`
	To              *uuid.UUID `json:"to,omitempty"`
	VehicleNumber   string     `json:"vehicleNumber,omitempty"`
	ExitDateTime    *time.Time `json:"exitDateTime,omitempty"`
	RequestedBy     uuid.UUID  `json:"requestedBy"`
	Status          string     `json:"status"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ListFilter represents paging options for issue and transfer listings
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// ToMaterialIssueResponse converts a domain issue to a response
func ToMaterialIssueResponse(mi *logistics.MaterialIssue) MaterialIssueResponse {
	items := make([]MaterialIssueItemResponse, len(mi.Items))
	for i, it := range mi.Items {
		items[i] = MaterialIssueItemResponse{
			ID:          it.ID,
			ItemID:      it.ItemID,
			ItemCode:    it.ItemCode,
			Description: it.Description,
			UOM:         it.UOM,
			Category:    it.Category,
			IssueQty:    it.IssueQty,
		}
	}
	return MaterialIssueResponse{
		ID:          mi.ID,
		IssueNumber: mi.IssueNumber,
		IssuedBy:    mi.IssuedBy,
		IssuerRole:  mi.IssuerRole.String(),
		FromSiteID:  mi.FromSiteID,
		IssuedTo:    mi.IssuedTo,
		Items:       items,
		ShipmentDetails: ShipmentResponse{
			TransferNo:           mi.Shipment.TransferNo,
			VehicleNo:            mi.Shipment.VehicleNo,
			ExitDateTime:         mi.Shipment.ExitDateTime,
			Destination:          mi.Shipment.Destination,
			MaterialInwardStatus: string(mi.Shipment.MaterialInwardStatus),
			TransferOrderID:      mi.Shipment.TransferOrderID,
		},
		CreatedAt: mi.CreatedAt,
		UpdatedAt: mi.UpdatedAt,
		Version:   mi.Version,
	}
}

// ToTransferOrderResponse converts a domain transfer order to a response
func ToTransferOrderResponse(t *logistics.TransferOrder) TransferOrderResponse {
	return TransferOrderResponse{
		ID:              t.ID,
		TransferNo:      t.TransferNo,
		Type:            string(t.Type),
		ReferenceNo:     t.ReferenceNo,
		MaterialIssueID: t.MaterialIssueID,
		PurchaseOrderID: t.PurchaseOrderID,
		From:            t.From,
		To:              t.To,
		VehicleNumber:   t.VehicleNumber,
		ExitDateTime:    t.ExitDateTime,
		RequestedBy:     t.RequestedBy,
		Status:          string(t.Status),
		ApprovedAt:      t.ApprovedAt,
		CreatedAt:       t.CreatedAt,
	}
}
