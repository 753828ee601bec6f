package store

import (
	"context"
	"sort"
	"sync"

	"todoapi/app/models"
)

// MemoryStore keeps items in a map. It backs the test suite and the
// "memory" driver.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[int64]models.TodoItem
	nextID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[int64]models.TodoItem)}
}

func (s *MemoryStore) NewContext() Context {
	return &memoryContext{store: s}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Reset drops every item. The id sequence keeps counting so ids are never reused.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int64]models.TodoItem)
}

type memoryContext struct {
	changeSet
	store *MemoryStore
}

func (c *memoryContext) List(ctx context.Context) ([]models.TodoItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, persistenceError("list", err)
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	items := make([]models.TodoItem, 0, len(c.store.items))
	for _, item := range c.store.items {
		items = append(items, item.Clone())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (c *memoryContext) Find(ctx context.Context, id int64) (*models.TodoItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, persistenceError("find", err)
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	item, ok := c.store.items[id]
	if !ok {
		return nil, nil
	}
	found := item.Clone()
	return &found, nil
}

func (c *memoryContext) Commit(ctx context.Context) error {
	pending := c.take()
	if len(pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return persistenceError("commit", err)
	}

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Apply against a copy so a failing change leaves the store untouched.
	next := make(map[int64]models.TodoItem, len(s.items)+len(pending))
	for id, item := range s.items {
		next[id] = item
	}
	nextID := s.nextID
	assigned := make(map[*models.TodoItem]int64)

	for _, ch := range pending {
		switch ch.kind {
		case changeAdd:
			nextID++
			stored := ch.item.Clone()
			stored.ID = nextID
			next[nextID] = stored
			assigned[ch.item] = nextID
		case changeUpdate:
			if _, ok := next[ch.item.ID]; !ok {
				return persistenceError("commit", ErrNotFound)
			}
			next[ch.item.ID] = ch.item.Clone()
		case changeRemove:
			if _, ok := next[ch.item.ID]; !ok {
				return persistenceError("commit", ErrNotFound)
			}
			delete(next, ch.item.ID)
		}
	}

	s.items = next
	s.nextID = nextID
	for item, id := range assigned {
		item.ID = id
	}
	return nil
}
