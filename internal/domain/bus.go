package domain

import (
	"context"
	"io"
	"time"
)

// SignalBus publishes raw payloads to named channels and allows subscribing
// to them. The serve path uses it to mirror tick snapshots and alerts to
// out-of-process consumers.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// AlertStore persists emitted alerts for durable history beyond the bounded
// in-memory log. The in-memory log remains authoritative for API reads;
// the store is write-behind.
type AlertStore interface {
	Insert(ctx context.Context, alert Alert) error
	ListRecent(ctx context.Context, limit int) ([]Alert, error)
	ListBefore(ctx context.Context, before time.Time) ([]Alert, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// BlobWriter uploads an object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// RateLimiter enforces a sliding-window request limit per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
