// Package cache keeps the derived seat map. The store stays the source of truth:
// every implementation can be dropped and rebuilt from it at any time.
package cache

import (
	"context"
	"maps"
	"sync"

	"github.com/yeremiapane/cafe-venue/protocol"
)

// Loader builds the seat map from the record store.
type Loader func(ctx context.Context) (protocol.SeatMap, error)

type SeatCache interface {
	// Snapshot returns the cached map, loading it on a miss.
	Snapshot(ctx context.Context) (protocol.SeatMap, error)
	// Rebuild reloads from the store; called after every seat mutation.
	Rebuild(ctx context.Context) (protocol.SeatMap, error)
}

type Memory struct {
	load  Loader
	mu    sync.RWMutex
	seats protocol.SeatMap
}

func NewMemory(load Loader) *Memory {
	return &Memory{load: load}
}

func (m *Memory) Snapshot(ctx context.Context) (protocol.SeatMap, error) {
	m.mu.RLock()
	seats := m.seats
	m.mu.RUnlock()
	if seats != nil {
		return maps.Clone(seats), nil
	}
	return m.Rebuild(ctx)
}

func (m *Memory) Rebuild(ctx context.Context) (protocol.SeatMap, error) {
	seats, err := m.load(ctx)
	if err != nil {
		m.mu.Lock()
		m.seats = nil
		m.mu.Unlock()
		return nil, err
	}

	m.mu.Lock()
	m.seats = seats
	m.mu.Unlock()
	return maps.Clone(seats), nil
}
