package receiving

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/receiving"
)

// GoodsReceiptRequest creates or replaces a goods receipt
type GoodsReceiptRequest struct {
	Type            string                  `json:"type" binding:"required,oneof=Transferred Supplied"`
	SubType         string                  `json:"subType" binding:"omitempty,oneof=Challan Invoice"`
	MaterialIssueNo string                  `json:"materialIssueNo"`
	PurchaseOrderNo string                  `json:"purchaseOrderNo"`
	TransferNo      string                  `json:"transferNo"`
	VehicleNo       string                  `json:"vehicleNo"`
	ExitDateTime    *time.Time              `json:"exitDateTime"`
	ChallanNo       string                  `json:"challanNo"`
	ChallanDate     *time.Time              `json:"challanDate"`
	InvoiceNo       string                  `json:"invoiceNo"`
	InvoiceDate     *time.Time              `json:"invoiceDate"`
	ReceivedBy      string                  `json:"receivedBy"`
	SupplierID      *uuid.UUID              `json:"supplierId"`
	Items           []GoodsReceiptItemInput `json:"items" binding:"required,min=1,dive"`
}

// GoodsReceiptItemInput is one received line
type GoodsReceiptItemInput struct {
	ItemID      *uuid.UUID      `json:"itemId"`
	ItemCode    string          `json:"itemCode" binding:"required"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	UOM         string          `json:"uom"`
	BalanceQty  decimal.Decimal `json:"balanceQty"`
	ReceiveQty  decimal.Decimal `json:"receiveQty"`
	SupplierID  *uuid.UUID      `json:"supplierId"`
}

// GoodsReceiptResponse represents a goods receipt in API responses
type GoodsReceiptResponse struct {
	ID              uuid.UUID                  `json:"id"`
	GRNNo           string                     `json:"grnNo"`
	Type            string                     `json:"type"`
	SubType         string                     `json:"subType,omitempty"`
	MaterialIssueNo string                     `json:"materialIssueNo,omitempty"`
	PurchaseOrderNo string                     `json:"purchaseOrderNo,omitempty"`
	TransferNo      string                     `json:"transferNo,omitempty"`
	VehicleNo       string                     `json:"vehicleNo,omitempty"`
	ExitDateTime    *time.Time                 `json:"exitDateTime,omitempty"`
	ChallanNo       string                     `json:"challanNo,omitempty"`
	ChallanDate     *time.Time                 `json:"challanDate,omitempty"`
	InvoiceNo       string                     `json:"invoiceNo,omitempty"`
	InvoiceDate     *time.Time                 `json:"invoiceDate,omitempty"`
	ReceivedBy      string                     `json:"receivedBy"`
	ReceiverID      uuid.UUID                  `json:"receiverId"`
	ReceiverRole    string                     `json:"receiverRole"`
	ReceiverSiteID  *uuid.UUID                 `json:"receiverSiteId,omitempty"`
	SupplierID      *uuid.UUID                 `json:"supplierId,omitempty"`
	SupplierName    string                     `json:"supplierName,omitempty"`
	Items           []GoodsReceiptItemResponse `json:"items"`
	IsReceived      bool                       `json:"isReceived"`
	PDFLink         string                     `json:"pdfLink,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
	Version         int                        `json:"version"`
}

// GoodsReceiptItemResponse represents a received line
type GoodsReceiptItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ItemID      uuid.UUID       `json:"itemId"`
	ItemCode    string          `json:"itemCode"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	UOM         string          `json:"uom"`
	BalanceQty  decimal.Decimal `json:"balanceQty"`
	ReceiveQty  decimal.Decimal `json:"receiveQty"`
	PendingQty  decimal.Decimal `json:"pendingQty"`
	SupplierID  *uuid.UUID      `json:"supplierId,omitempty"`
}

// ReceiptResult carries the receipt and the state it cascaded into
type ReceiptResult struct {
	GoodsReceipt         GoodsReceiptResponse `json:"goodsReceipt"`
	PurchaseOrderStatus  string               `json:"purchaseOrderStatus,omitempty"`
	MaterialInwardStatus string               `json:"materialInwardStatus,omitempty"`
	TransferOrderStatus  string               `json:"transferOrderStatus,omitempty"`
}

// GoodsReceiptListFilter represents filter options for receipt listings
type GoodsReceiptListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type" binding:"omitempty,oneof=Transferred Supplied"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// ToGoodsReceiptResponse converts a domain receipt to a response
func ToGoodsReceiptResponse(g *receiving.GoodsReceipt) GoodsReceiptResponse {
	items := make([]GoodsReceiptItemResponse, len(g.Items))
	for i, it := range g.Items {
		items[i] = GoodsReceiptItemResponse{
			ID:          it.ID,
			ItemID:      it.ItemID,
			ItemCode:    it.ItemCode,
			Category:    it.Category,
			Description: it.Description,
			UOM:         it.UOM,
			BalanceQty:  it.BalanceQty,
			ReceiveQty:  it.ReceiveQty,
			PendingQty:  it.PendingQty,
			SupplierID:  it.SupplierID,
		}
	}
	return GoodsReceiptResponse{
		ID:              g.ID,
		GRNNo:           g.GRNNo,
		Type:            string(g.Type),
		SubType:         string(g.SubType),
		MaterialIssueNo: g.MaterialIssueNo,
		PurchaseOrderNo: g.PurchaseOrderNo,
		TransferNo:      g.TransferNo,
		VehicleNo:       g.VehicleNo,
		ExitDateTime:    g.ExitDateTime,
		ChallanNo:       g.ChallanNo,
		ChallanDate:     g.ChallanDate,
		InvoiceNo:       g.InvoiceNo,
		InvoiceDate:     g.InvoiceDate,
		ReceivedBy:      g.ReceivedBy,
		ReceiverID:      g.ReceiverID,
		ReceiverRole:    g.ReceiverRole.String(),
		ReceiverSiteID:  g.ReceiverSite,
		SupplierID:      g.SupplierID,
		SupplierName:    g.SupplierName,
		Items:           items,
		IsReceived:      g.IsReceived,
		PDFLink:         g.PDFLink,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
		Version:         g.Version,
	}
}

func toDetails(req GoodsReceiptRequest, supplierName string) receiving.Details {
	items := make([]receiving.ReceiptItem, len(req.Items))
	for i, in := range req.Items {
		it := receiving.ReceiptItem{
			ItemCode:    in.ItemCode,
			Category:    in.Category,
			Description: in.Description,
			UOM:         in.UOM,
			BalanceQty:  in.BalanceQty,
			ReceiveQty:  in.ReceiveQty,
			SupplierID:  in.SupplierID,
		}
		if in.ItemID != nil {
			it.ItemID = *in.ItemID
		}
		items[i] = it
	}
	return receiving.Details{
		Type:            receiving.ReceiptType(req.Type),
		SubType:         receiving.SubType(req.SubType),
		MaterialIssueNo: req.MaterialIssueNo,
		PurchaseOrderNo: req.PurchaseOrderNo,
		TransferNo:      req.TransferNo,
		VehicleNo:       req.VehicleNo,
		ExitDateTime:    req.ExitDateTime,
		ChallanNo:       req.ChallanNo,
		ChallanDate:     req.ChallanDate,
		InvoiceNo:       req.InvoiceNo,
		InvoiceDate:     req.InvoiceDate,
		SupplierID:      req.SupplierID,
		SupplierName:    supplierName,
		Items:           items,
	}
}
