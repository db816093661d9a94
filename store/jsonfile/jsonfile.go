/*
Package jsonfile persists action items as one JSON document rewritten
whole on every change.

PURPOSE:
  The simplest store that survives restarts: a single array of action
  items. Matches the external task-store contract - read the whole file,
  modify in memory, write the whole file back.

GUARANTEES:
  - A missing or empty file reads as an empty store.
  - A file that exists but fails to decode surfaces
    tasks.ErrStoreCorrupted; the store never resets it to empty.
  - Writes go to a temp file in the same directory and are renamed into
    place, so readers never observe a partial document.
  - A mutex serializes read-modify-write cycles within this process.
    Multiple processes writing the same path will still clobber each
    other; use the SQLite store for that.

SEE ALSO:
  - tasks/store.go: interface and error contract
  - store/sqlite:   database-backed alternative
*/
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fieldpulse/finance-engine/tasks"
)

// Store implements tasks.Store over a single JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) LoadAll(_ context.Context) ([]tasks.ActionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) Get(_ context.Context, id string) (tasks.ActionItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return tasks.ActionItem{}, false, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, true, nil
		}
	}
	return tasks.ActionItem{}, false, nil
}

func (s *Store) Append(_ context.Context, item tasks.ActionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return err
	}
	return s.write(append(items, item))
}

func (s *Store) UpdateStatus(_ context.Context, id string, status tasks.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].ID == id {
			items[i].Status = status
			return true, s.write(items)
		}
	}
	// Not found: no write at all.
	return false, nil
}

func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].ID == id {
			return true, s.write(append(items[:i], items[i+1:]...))
		}
	}
	return false, nil
}

// read loads the whole document. Missing/empty file = empty store;
// undecodable file = corruption, surfaced, never repaired here.
func (s *Store) read() ([]tasks.ActionItem, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task store: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var items []tasks.ActionItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", tasks.ErrStoreCorrupted, s.path, err)
	}
	return items, nil
}

// write rewrites the whole document atomically (temp file + rename).
func (s *Store) write(items []tasks.ActionItem) error {
	if items == nil {
		items = []tasks.ActionItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode task store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create task store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".action_items-*.json")
	if err != nil {
		return fmt.Errorf("write task store: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write task store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write task store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write task store: %w", err)
	}
	return nil
}
