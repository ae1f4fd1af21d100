package shared

import (
	"context"
	"time"
)

// Cache stores JSON-encodable read models
type Cache interface {
	// Get loads key into dest and reports whether it was present
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// DeletePrefix drops every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NoopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (NoopCache) DeletePrefix(context.Context, string) error { return nil }

var _ Cache = NoopCache{}
