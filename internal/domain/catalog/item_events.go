package catalog

import "github.com/sitestock/backend/internal/domain/shared"

// Aggregate type constant
const AggregateTypeItem = "Item"

// Event type constants
const (
	EventTypeItemCreated = "ItemCreated"
)

// ItemCreatedEvent is published when a new item is created
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	Description string `json:"description"`
	Category    string `json:"category"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *Item) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID),
		Description:     item.Description,
		Category:        item.Category,
	}
}
