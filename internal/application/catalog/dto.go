package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/catalog"
)

// CreateItemsRequest adds one or more items
type CreateItemsRequest struct {
	Items []ItemInput `json:"items" binding:"required,min=1,max=500,dive"`
}

// ItemInput carries the attributes of one item. ItemCode is optional;
// empty codes are assigned from the ITEM sequence.
type ItemInput struct {
	ItemCode          string          `json:"itemCode" binding:"omitempty,max=50"`
	Description       string          `json:"description" binding:"required,max=500"`
	UOM               string          `json:"uom" binding:"required,max=20"`
	Category          string          `json:"category" binding:"required,max=100"`
	SubCategory       string          `json:"subCategory" binding:"omitempty,max=100"`
	GST               decimal.Decimal `json:"gst"`
	OpeningStock      decimal.Decimal `json:"openingStock"`
	LastPurchasePrice decimal.Decimal `json:"lastPurchasePrice"`
}

// UpdateItemRequest replaces the mutable attributes of an item
type UpdateItemRequest struct {
	Description       string          `json:"description" binding:"required,max=500"`
	UOM               string          `json:"uom" binding:"required,max=20"`
	Category          string          `json:"category" binding:"required,max=100"`
	SubCategory       string          `json:"subCategory" binding:"omitempty,max=100"`
	GST               decimal.Decimal `json:"gst"`
	OpeningStock      decimal.Decimal `json:"openingStock"`
	LastPurchasePrice decimal.Decimal `json:"lastPurchasePrice"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ItemCode          string          `json:"itemCode"`
	Description       string          `json:"description"`
	UOM               string          `json:"uom"`
	Category          string          `json:"category"`
	SubCategory       string          `json:"subCategory,omitempty"`
	GST               decimal.Decimal `json:"gst"`
	OpeningStock      decimal.Decimal `json:"openingStock"`
	LastPurchasePrice decimal.Decimal `json:"lastPurchasePrice"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ItemListFilter represents filter options for item listings
type ItemListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// ToItemResponse converts a domain item to a response
func ToItemResponse(i *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:                i.ID,
		ItemCode:          i.ItemCode,
		Description:       i.Description,
		UOM:               i.UOM,
		Category:          i.Category,
		SubCategory:       i.SubCategory,
		GST:               i.GSTPercent,
		OpeningStock:      i.OpeningStock,
		LastPurchasePrice: i.LastPurchasePrice,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

func (in ItemInput) attributes() catalog.ItemAttributes {
	return catalog.ItemAttributes{
		Description:       in.Description,
		UOM:               in.UOM,
		Category:          in.Category,
		SubCategory:       in.SubCategory,
		GSTPercent:        in.GST,
		OpeningStock:      in.OpeningStock,
		LastPurchasePrice: in.LastPurchasePrice,
	}
}

func (r UpdateItemRequest) attributes() catalog.ItemAttributes {
	return catalog.ItemAttributes{
		Description:       r.Description,
		UOM:               r.UOM,
		Category:          r.Category,
		SubCategory:       r.SubCategory,
		GSTPercent:        r.GST,
		OpeningStock:      r.OpeningStock,
		LastPurchasePrice: r.LastPurchasePrice,
	}
}
