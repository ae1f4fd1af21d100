package event

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultStream is the Redis stream domain events are relayed to
const DefaultStream = "sitestock:events"

// StreamWriter is the part of a Redis client the relay uses
type StreamWriter interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamRelay is a wildcard handler that appends every domain event to
// a capped Redis stream for consumers outside this process.
type RedisStreamRelay struct {
	client     StreamWriter
	serializer *EventSerializer
	stream     string
	maxLen     int64
	logger     *zap.Logger
}

// NewRedisStreamRelay creates a relay. An empty stream uses DefaultStream;
// maxLen <= 0 leaves the stream uncapped.
func NewRedisStreamRelay(client StreamWriter, serializer *EventSerializer, stream string, maxLen int64, log *zap.Logger) *RedisStreamRelay {
	if stream == "" {
		stream = DefaultStream
	}
	if serializer == nil {
		serializer = NewDomainSerializer()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStreamRelay{
		client:     client,
		serializer: serializer,
		stream:     stream,
		maxLen:     maxLen,
		logger:     log.Named("event_relay"),
	}
}

// EventTypes is empty: the relay receives every event
func (r *RedisStreamRelay) EventTypes() []string {
	return nil
}

// Handle appends ev to the stream
func (r *RedisStreamRelay) Handle(ctx context.Context, ev shared.DomainEvent) error {
	data, err := r.serializer.Serialize(ev)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"type":    ev.EventType(),
			"id":      ev.EventID().String(),
			"payload": string(data),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("relay %s to %s: %w", ev.EventType(), r.stream, err)
	}
	logger.Enrich(ctx, r.logger).Debug("Event relayed",
		zap.String("event_type", ev.EventType()),
		zap.String("stream_id", id),
	)
	return nil
}

var _ shared.EventHandler = (*RedisStreamRelay)(nil)
