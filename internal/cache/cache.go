// Package cache is the shared store for rendered widget descriptors.
//
// The store is deliberately narrow: Set with a TTL and Get. Entry
// presence is the session-validity signal for the JSON endpoint, so
// eviction is left entirely to the backend's expiration policy and no
// explicit delete is ever issued.
//
// In multi-machine deployments the redis backend must be used; the
// memory backend only sees widgets rendered by its own process.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}
