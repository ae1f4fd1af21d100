package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_TypedAndWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newTestHandler()
	wildcard := newTestHandler()

	registry.Register(typed, "MaterialIssueCreated", "GoodsReceiptCreated")
	registry.Register(wildcard)

	handlers := registry.GetHandlers("MaterialIssueCreated")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])

	handlers = registry.GetHandlers("PurchaseOrderCreated")
	assert.Len(t, handlers, 1)
	assert.Same(t, wildcard, handlers[0])
}

func TestHandlerRegistry_RegisterTwiceIsNoop(t *testing.T) {
	registry := NewHandlerRegistry()
	h := newTestHandler()

	registry.Register(h, "StockMoved")
	registry.Register(h, "StockMoved")
	registry.Register(h)
	registry.Register(h)

	assert.Len(t, registry.GetHandlers("StockMoved"), 2)
	assert.Len(t, registry.GetAllHandlers(), 1)
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	h1 := newTestHandler()
	h2 := newTestHandler()
	registry.Register(h1, "StockMoved", "ItemCreated")
	registry.Register(h2, "StockMoved")
	registry.Register(h1)

	registry.Unregister(h1)

	assert.Len(t, registry.GetHandlers("ItemCreated"), 0)
	handlers := registry.GetHandlers("StockMoved")
	assert.Len(t, handlers, 1)
	assert.Same(t, h2, handlers[0])
	assert.Len(t, registry.GetAllHandlers(), 1)
}
