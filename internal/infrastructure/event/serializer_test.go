package event

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/catalog"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/receiving"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemCreated() *catalog.ItemCreatedEvent {
	item := &catalog.Item{Description: "OPC cement 53 grade", Category: "Civil"}
	item.ID = uuid.New()
	return catalog.NewItemCreatedEvent(item)
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewDomainSerializer()
	ev := itemCreated()

	data, err := s.Serialize(ev)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, catalog.EventTypeItemCreated, env.EventType)
	assert.Equal(t, ev.AggregateID(), env.AggregateID)
	assert.Equal(t, catalog.AggregateTypeItem, env.AggregateType)

	decoded, err := s.Deserialize(data)
	require.NoError(t, err)
	got, ok := decoded.(*catalog.ItemCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, ev.EventID(), got.EventID())
	assert.Equal(t, "OPC cement 53 grade", got.Description)
	assert.Equal(t, "Civil", got.Category)
}

func TestEventSerializer_UnknownType(t *testing.T) {
	s := NewEventSerializer()
	data, err := s.Serialize(itemCreated())
	require.NoError(t, err)

	_, err = s.Deserialize(data)
	assert.ErrorContains(t, err, "unknown event type")

	_, err = s.Deserialize([]byte("{"))
	assert.Error(t, err)
}

func TestNewDomainSerializer_KnowsDomainEvents(t *testing.T) {
	s := NewDomainSerializer()
	for _, eventType := range []string{
		inventory.EventTypeStockMoved,
		receiving.EventTypeGoodsReceiptCreated,
		receiving.EventTypeGoodsReceiptUpdated,
		receiving.EventTypeGoodsReceiptDeleted,
	} {
		assert.True(t, s.IsRegistered(eventType), eventType)
	}
	types := s.RegisteredTypes()
	assert.Len(t, types, 13)
	assert.IsIncreasing(t, types)
}
