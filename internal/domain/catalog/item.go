package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/shared"
)

// Item represents a stocked material
// It is the aggregate root for the catalog context
type Item struct {
	shared.BaseAggregateRoot
	ItemCode          string // Unique; assigned from the ITEM sequence when left empty
	Description       string
	UOM               string
	Category          string
	SubCategory       string
	GSTPercent        decimal.Decimal
	OpeningStock      decimal.Decimal
	LastPurchasePrice decimal.Decimal
}

// ItemAttributes carries the mutable attributes of an item
type ItemAttributes struct {
	Description       string
	UOM               string
	Category          string
	SubCategory       string
	GSTPercent        decimal.Decimal
	OpeningStock      decimal.Decimal
	LastPurchasePrice decimal.Decimal
}

// NewItem creates a new item. code may be empty and assigned later.
func NewItem(code string, attrs ItemAttributes) (*Item, error) {
	if err := validateAttributes(attrs); err != nil {
		return nil, err
	}

	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemCode:          strings.ToUpper(strings.TrimSpace(code)),
	}
	item.setAttributes(attrs)
	item.AddDomainEvent(NewItemCreatedEvent(item))
	return item, nil
}

// AssignCode sets a generated code on an item created without one
func (i *Item) AssignCode(code string) error {
	if i.ItemCode != "" {
		return shared.NewDomainError(shared.CodeInvalidState, "Item code already assigned")
	}
	if strings.TrimSpace(code) == "" {
		return shared.NewValidationError("itemCode", "itemCode is required")
	}
	i.ItemCode = code
	return nil
}

// Update replaces the mutable attributes; the code never changes
func (i *Item) Update(attrs ItemAttributes) error {
	if err := validateAttributes(attrs); err != nil {
		return err
	}
	i.setAttributes(attrs)
	i.Touch()
	return nil
}

// RecordPurchasePrice remembers the latest unit price paid
func (i *Item) RecordPurchasePrice(price decimal.Decimal) {
	if price.IsPositive() {
		i.LastPurchasePrice = price
	}
}

func (i *Item) setAttributes(attrs ItemAttributes) {
	i.Description = strings.TrimSpace(attrs.Description)
	i.UOM = strings.TrimSpace(attrs.UOM)
	i.Category = strings.TrimSpace(attrs.Category)
	i.SubCategory = strings.TrimSpace(attrs.SubCategory)
	i.GSTPercent = attrs.GSTPercent
	i.OpeningStock = attrs.OpeningStock
	i.LastPurchasePrice = attrs.LastPurchasePrice
}

func validateAttributes(attrs ItemAttributes) error {
	var errs shared.ValidationErrors
	if strings.TrimSpace(attrs.Description) == "" {
		errs.Add("description", "description is required")
	}
	if strings.TrimSpace(attrs.UOM) == "" {
		errs.Add("uom", "uom is required")
	}
	if strings.TrimSpace(attrs.Category) == "" {
		errs.Add("category", "category is required")
	}
	if attrs.GSTPercent.IsNegative() || attrs.GSTPercent.GreaterThan(decimal.NewFromInt(100)) {
		errs.Add("gst", "gst must be between 0 and 100")
	}
	if attrs.OpeningStock.IsNegative() {
		errs.Add("openingStock", "openingStock cannot be negative")
	}
	if attrs.LastPurchasePrice.IsNegative() {
		errs.Add("lastPurchasePrice", "lastPurchasePrice cannot be negative")
	}
	return errs.Err()
}
