package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"TomSelectAPI/internal/cache"
	"TomSelectAPI/internal/logger"

	"github.com/google/uuid"
)

// Registry stores widget descriptors in the shared cache under
// prefix+uuid and hands out signed field ids. Descriptors are written
// on every render (idempotent overwrite) and only ever read back; they
// disappear when the cache TTL runs out.
type Registry struct {
	cache  cache.Cache
	signer *Signer
	prefix string
	ttl    time.Duration
}

func NewRegistry(c cache.Cache, signer *Signer, prefix string, ttl time.Duration) *Registry {
	return &Registry{cache: c, signer: signer, prefix: prefix, ttl: ttl}
}

// Put stores the descriptor under a fresh random identifier and
// returns the signed field id the client embeds in its data attributes.
func (r *Registry) Put(ctx context.Context, d *Descriptor) (string, error) {
	if d.Model != "" && len(d.SearchFields) == 0 {
		return "", ErrMissingSearchFields
	}
	if d.MaxResults <= 0 {
		d.MaxResults = DefaultMaxResults
	}

	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("widget: descriptor not serializable: %w", err)
	}

	id := uuid.NewString()
	if err := r.cache.Set(ctx, r.prefix+id, data, r.ttl); err != nil {
		return "", fmt.Errorf("widget: cache write failed: %w", err)
	}
	logger.Debug("descriptor_stored", map[string]any{
		"id":    id,
		"model": d.Model,
		"ttl":   r.ttl.String(),
	})
	return r.signer.Sign(id), nil
}

// Get verifies the signed field id and loads the descriptor. A cache
// miss and a bad signature both come back as ErrNotFound.
func (r *Registry) Get(ctx context.Context, fieldID string) (*Descriptor, error) {
	id, err := r.signer.Verify(fieldID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	data, err := r.cache.Get(ctx, r.prefix+id)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("widget: cache read failed: %w", err)
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("widget: corrupt descriptor for %s: %w", id, err)
	}
	return &d, nil
}
