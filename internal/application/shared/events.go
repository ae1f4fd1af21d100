package shared

import (
	"context"

	domainshared "github.com/sitestock/backend/internal/domain/shared"
)

// EventCollector gathers domain events raised inside a transaction so they
// are published only after commit
type EventCollector struct {
	events []domainshared.DomainEvent
}

// Collect drains the pending events of aggregates
func (c *EventCollector) Collect(aggregates ...domainshared.AggregateRoot) {
	for _, a := range aggregates {
		if a == nil {
			continue
		}
		c.events = append(c.events, a.PullDomainEvents()...)
	}
}

// Add appends standalone events
func (c *EventCollector) Add(events ...domainshared.DomainEvent) {
	c.events = append(c.events, events...)
}

// Reset drops collected events, e.g. after a rolled back attempt
func (c *EventCollector) Reset() {
	c.events = nil
}

// Publish sends the collected events; publish errors are logged by the bus
func (c *EventCollector) Publish(ctx context.Context, publisher domainshared.EventPublisher) {
	if publisher == nil || len(c.events) == 0 {
		return
	}
	_ = publisher.Publish(ctx, c.events...)
	c.events = nil
}

// Events returns the collected events
func (c *EventCollector) Events() []domainshared.DomainEvent {
	return c.events
}
