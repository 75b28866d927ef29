// Package store implements the session-scoped result stores the item
// machines commit to.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/harrison/mchat/internal/models"
)

// ErrNilResult is returned when Put is called without a result.
var ErrNilResult = errors.New("result cannot be nil")

// Memory is a map-backed store. Results are deep-copied on the way in and
// out, so callers never share a ledger with the store.
type Memory struct {
	mu      sync.RWMutex
	results map[int]*models.ItemResult
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{results: make(map[int]*models.ItemResult)}
}

// Get returns the result stored under itemID, or nil when there is none.
func (m *Memory) Get(ctx context.Context, itemID int) (*models.ItemResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.results[itemID].Clone(), nil
}

// Put replaces the result stored under itemID.
func (m *Memory) Put(ctx context.Context, itemID int, result *models.ItemResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result == nil {
		return ErrNilResult
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[itemID] = result.Clone()
	return nil
}

// Delete removes the result stored under itemID. Deleting a missing key is not an error.
func (m *Memory) Delete(ctx context.Context, itemID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.results, itemID)
	return nil
}

// Keys returns the stored item ids in ascending order.
func (m *Memory) Keys(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]int, 0, len(m.results))
	for id := range m.results {
		keys = append(keys, id)
	}
	sort.Ints(keys)
	return keys, nil
}

// Close is a no-op; it lets Memory satisfy Store.
func (m *Memory) Close() error { return nil }
