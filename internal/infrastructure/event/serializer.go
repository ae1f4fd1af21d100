package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/catalog"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/procurement"
	"github.com/sitestock/backend/internal/domain/receiving"
	"github.com/sitestock/backend/internal/domain/requisition"
	"github.com/sitestock/backend/internal/domain/shared"
)

// Envelope is the wire form of a domain event
type Envelope struct {
	EventID       uuid.UUID       `json:"eventId"`
	EventType     string          `json:"eventType"`
	AggregateID   uuid.UUID       `json:"aggregateId"`
	AggregateType string          `json:"aggregateType"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

// EventSerializer converts domain events to envelopes and back
type EventSerializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type
}

// NewEventSerializer creates a serializer with no registered types
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{registry: make(map[string]reflect.Type)}
}

// NewDomainSerializer creates a serializer knowing every event the domain
// publishes
func NewDomainSerializer() *EventSerializer {
	s := NewEventSerializer()
	s.Register(catalog.EventTypeItemCreated, &catalog.ItemCreatedEvent{})
	s.Register(identity.EventTypeUserCreated, &identity.UserCreatedEvent{})
	s.Register(inventory.EventTypeStockMoved, &inventory.StockMovedEvent{})
	s.Register(requisition.EventTypeMaterialRequestCreated, &requisition.MaterialRequestCreatedEvent{})
	s.Register(requisition.EventTypeMaterialRequestApproved, &requisition.MaterialRequestApprovedEvent{})
	s.Register(logistics.EventTypeMaterialIssueCreated, &logistics.MaterialIssueCreatedEvent{})
	s.Register(logistics.EventTypeMaterialIssueInwardChanged, &logistics.MaterialIssueInwardChangedEvent{})
	s.Register(procurement.EventTypePurchaseOrderCreated, &procurement.PurchaseOrderCreatedEvent{})
	s.Register(procurement.EventTypePurchaseOrderReceived, &procurement.PurchaseOrderReceivedEvent{})
	s.Register(procurement.EventTypePurchaseOrderStatusChanged, &procurement.PurchaseOrderStatusChangedEvent{})
	for _, t := range []string{
		receiving.EventTypeGoodsReceiptCreated,
		receiving.EventTypeGoodsReceiptUpdated,
		receiving.EventTypeGoodsReceiptDeleted,
	} {
		s.Register(t, &receiving.GoodsReceiptRecordedEvent{})
	}
	return s
}

// Register binds eventType to the concrete type of instance
func (s *EventSerializer) Register(eventType string, instance shared.DomainEvent) {
	t := reflect.TypeOf(instance)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.mu.Lock()
	s.registry[eventType] = t
	s.mu.Unlock()
}

// Serialize wraps ev in an envelope and encodes it
func (s *EventSerializer) Serialize(ev shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.EventType(), err)
	}
	return json.Marshal(Envelope{
		EventID:       ev.EventID(),
		EventType:     ev.EventType(),
		AggregateID:   ev.AggregateID(),
		AggregateType: ev.AggregateType(),
		OccurredAt:    ev.OccurredAt().UTC(),
		Payload:       payload,
	})
}

// Deserialize decodes an envelope back into its registered event type
func (s *EventSerializer) Deserialize(data []byte) (shared.DomainEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	s.mu.RLock()
	t, ok := s.registry[env.EventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", env.EventType)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(env.Payload, ptr); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.EventType, err)
	}
	ev, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("%s does not implement DomainEvent", t)
	}
	return ev, nil
}

// IsRegistered reports whether eventType can be deserialized
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[eventType]
	return ok
}

// RegisteredTypes returns the registered event types, sorted
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	types := make([]string, 0, len(s.registry))
	for t := range s.registry {
		types = append(types, t)
	}
	s.mu.RUnlock()
	sort.Strings(types)
	return types
}
