package catalog

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned when a fetch finished after a fetch for a
// different query of the same view had started. Its result is dropped.
var ErrSuperseded = errors.New("result superseded by a newer request")

// View keeps the last result shown for one screen. Fetches for the same
// query share a generation; a fetch for a new query bumps it, so late results
// of older queries never overwrite newer ones.
type View[T any] struct {
	mu      sync.Mutex
	gen     uint64
	query   string
	current T
	loaded  bool
}

func (v *View[T]) begin(query string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if query != v.query || v.gen == 0 {
		v.gen++
		v.query = query
	}
	return v.gen
}

// Refresh runs fetch and commits its result unless it went stale meanwhile.
// A failed fetch leaves the previous result in place.
func (v *View[T]) Refresh(ctx context.Context, query string, fetch func(ctx context.Context) (T, error)) (T, error) {
	gen := v.begin(query)
	result, err := fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		var zero T
		return zero, ErrSuperseded
	}
	if err != nil {
		var zero T
		return zero, err
	}
	v.current = result
	v.loaded = true
	return result, nil
}

// Current returns the last committed result.
func (v *View[T]) Current() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.loaded
}
