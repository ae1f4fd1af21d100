package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/procurement"
)

// PurchaseOrderRequest creates or replaces a purchase order
type PurchaseOrderRequest struct {
	MaterialRequestNo string                   `json:"materialRequestNo" binding:"required"`
	BillTo            *uuid.UUID               `json:"billTo"`
	ShipTo            *uuid.UUID               `json:"shipTo"`
	DeliveryDate      *time.Time               `json:"deliveryDate"`
	Items             []PurchaseOrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// PurchaseOrderItemInput is one ordered line
type PurchaseOrderItemInput struct {
	ItemCode     string          `json:"itemCode" binding:"required"`
	RequestedQty decimal.Decimal `json:"requestedQty"`
	PurchaseQty  decimal.Decimal `json:"purchaseQty" binding:"required"`
	Supplier     uuid.UUID       `json:"supplier" binding:"required"`
	Price        decimal.Decimal `json:"price"`
	GST          decimal.Decimal `json:"gst"`
}

// DeletePurchaseOrdersRequest deletes several orders at once
type DeletePurchaseOrdersRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                uuid.UUID                   `json:"id"`
	PurchaseOrderNo   string                      `json:"purchaseOrderNo"`
	MaterialRequestNo string                      `json:"materialRequestNo"`
	BillTo            *uuid.UUID                  `json:"billTo,omitempty"`
	ShipTo            *uuid.UUID                  `json:"shipTo,omitempty"`
	DeliveryDate      *time.Time                  `json:"deliveryDate,omitempty"`
	CreatedBy         uuid.UUID                   `json:"createdBy"`
	Items             []PurchaseOrderItemResponse `json:"items"`
	TotalAmount       decimal.Decimal             `json:"totalAmount"`
	IGST              decimal.Decimal             `json:"igst"`
	SGST              decimal.Decimal             `json:"sgst"`
	CGST              decimal.Decimal             `json:"cgst"`
	GrandTotalIncGST  decimal.Decimal             `json:"grandTotalIncGst"`
	Status            string                      `json:"status"`
	ApprovedBy        *uuid.UUID                  `json:"approvedBy,omitempty"`
	ApprovedAt        *time.Time                  `json:"approvedAt,omitempty"`
	ClosedAt          *time.Time                  `json:"closedAt,omitempty"`
	PDFLink           string                      `json:"pdfLink,omitempty"`
	CreatedAt         time.Time                   `json:"createdAt"`
	UpdatedAt         time.Time                   `json:"updatedAt"`
	Version           int                         `json:"version"`
}

// PurchaseOrderItemResponse represents an order line
type PurchaseOrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ItemID       uuid.UUID       `json:"itemId"`
	ItemCode     string          `json:"itemCode"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	UOM          string          `json:"uom"`
	RequestedQty decimal.Decimal `json:"requestedQty"`
	PurchaseQty  decimal.Decimal `json:"purchaseQty"`
	ReceivedQty  decimal.Decimal `json:"receivedQty"`
	PendingQty   decimal.Decimal `json:"pendingQty"`
	Price        decimal.Decimal `json:"price"`
	GST          decimal.Decimal `json:"gst"`
	Amount       decimal.Decimal `json:"amount"`
	Supplier     uuid.UUID       `json:"supplier"`
	Status       string          `json:"status"`
}

// CreatePurchaseOrderResponse carries the order and its supply transfer order
type CreatePurchaseOrderResponse struct {
	PurchaseOrder   PurchaseOrderResponse `json:"purchaseOrder"`
	TransferOrderID uuid.UUID             `json:"transferOrderId"`
	TransferNo      string                `json:"transferNo"`
}

// ItemStatusResponse is one order line of the items-status view
type ItemStatusResponse struct {
	PurchaseOrderNo string                    `json:"purchaseOrderNo"`
	ShipTo          *uuid.UUID                `json:"shipTo,omitempty"`
	Item            PurchaseOrderItemResponse `json:"item"`
}

// PurchaseOrderListFilter represents filter options for order listings
type PurchaseOrderListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=Pending Approved Closed Completed 'partially received'"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// ToPurchaseOrderResponse converts a domain order to a response
func ToPurchaseOrderResponse(o *procurement.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(o.Items))
	for i := range o.Items {
		items[i] = toItemResponse(o.Items[i])
	}
	return PurchaseOrderResponse{
		ID:                o.ID,
		PurchaseOrderNo:   o.PurchaseOrderNo,
		MaterialRequestNo: o.MaterialRequestNo,
		BillTo:            o.BillTo,
		ShipTo:            o.ShipTo,
		DeliveryDate:      o.DeliveryDate,
		CreatedBy:         o.CreatedBy,
		Items:             items,
		TotalAmount:       o.TotalAmount,
		IGST:              o.IGST,
		SGST:              o.SGST,
		CGST:              o.CGST,
		GrandTotalIncGST:  o.GrandTotalIncGST,
		Status:            string(o.Status),
		ApprovedBy:        o.ApprovedBy,
		ApprovedAt:        o.ApprovedAt,
		ClosedAt:          o.ClosedAt,
		PDFLink:           o.PDFLink,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

func toItemResponse(it procurement.PurchaseOrderItem) PurchaseOrderItemResponse {
	return PurchaseOrderItemResponse{
		ID:           it.ID,
		ItemID:       it.ItemID,
		ItemCode:     it.ItemCode,
		Category:     it.Category,
		Description:  it.Description,
		UOM:          it.UOM,
		RequestedQty: it.RequestedQty,
		PurchaseQty:  it.PurchaseQty,
		ReceivedQty:  it.ReceivedQty,
		PendingQty:   it.PendingQty,
		Price:        it.Price,
		GST:          it.GSTPercent,
		Amount:       it.Amount,
		Supplier:     it.SupplierID,
		Status:       string(it.Status),
	}
}
