// Package store provides tasks.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/fieldpulse/finance-engine/tasks"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	items []tasks.ActionItem
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) LoadAll(_ context.Context) ([]tasks.ActionItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]tasks.ActionItem(nil), m.items...), nil
}

func (m *Memory) Get(_ context.Context, id string) (tasks.ActionItem, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.ID == id {
			return item, true, nil
		}
	}
	return tasks.ActionItem{}, false, nil
}

func (m *Memory) Append(_ context.Context, item tasks.ActionItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

func (m *Memory) UpdateStatus(_ context.Context, id string, status tasks.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
