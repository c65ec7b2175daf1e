package loader

import (
	"context"
	"sync"

	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

// LoadFunc loads a model from a source at a precision.
type LoadFunc func(ctx context.Context, source whisper.Source, precision whisper.Precision) (whisper.Model, error)

// Cache is a single-slot model cache keyed by resolved source. Repeated
// requests for the same source reuse the loaded model; a different source
// replaces the slot. The mutex is held across the load, so concurrent callers
// never receive a model that mismatches their requested source.
type Cache struct {
	load LoadFunc

	mu     sync.Mutex
	source whisper.Source
	model  whisper.Model
}

// NewCache builds a cache delegating misses to load.
func NewCache(load LoadFunc) *Cache {
	return &Cache{load: load}
}

// Get returns the cached model when the slot matches the requested source,
// loading and replacing the slot otherwise. Only a fully initialized model
// is ever stored or returned; a failed load leaves the previous slot intact.
func (c *Cache) Get(ctx context.Context, source whisper.Source, precision whisper.Precision) (whisper.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != nil && c.source == source {
		return c.model, nil
	}

	model, err := c.load(ctx, source, precision)
	if err != nil {
		return nil, err
	}

	c.source = source
	c.model = model
	return model, nil
}

// Cached returns the currently cached source, if any, without loading.
func (c *Cache) Cached() (whisper.Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source, c.model != nil
}

// Clear drops the cached model.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = ""
	c.model = nil
}
