package store

import (
	"context"
	"testing"

	"todoapi/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AddAssignsIDOnCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	sc := s.NewContext()

	item := &models.TodoItem{Title: "Todo 1", Description: models.StringPtr("Description 1")}
	sc.Add(item)
	assert.Zero(t, item.ID, "id must not be assigned before commit")

	items, err := s.NewContext().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "staged item must not be visible before commit")

	require.NoError(t, sc.Commit(ctx))
	assert.Equal(t, int64(1), item.ID)

	found, err := s.NewContext().Find(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Todo 1", found.Title)
	assert.Equal(t, "Description 1", *found.Description)
}

func TestMemoryStore_FindMissing(t *testing.T) {
	found, err := NewMemoryStore().NewContext().Find(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMemoryStore_ReturnedItemsDoNotAlias(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	sc := s.NewContext()
	item := &models.TodoItem{Title: "a", Description: models.StringPtr("b")}
	sc.Add(item)
	require.NoError(t, sc.Commit(ctx))

	*item.Description = "changed"
	found, err := s.NewContext().Find(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", *found.Description)

	found.Title = "mutated"
	again, err := s.NewContext().Find(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Title)
}

func TestMemoryStore_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	sc := s.NewContext()
	item := &models.TodoItem{Title: "a"}
	sc.Add(item)
	require.NoError(t, sc.Commit(ctx))

	item.Title = "b"
	sc.Update(item)
	require.NoError(t, sc.Commit(ctx))
	found, err := s.NewContext().Find(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", found.Title)

	sc.Remove(item)
	require.NoError(t, sc.Commit(ctx))
	found, err = s.NewContext().Find(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMemoryStore_CommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	sc := s.NewContext()

	sc.Add(&models.TodoItem{Title: "kept out"})
	sc.Remove(&models.TodoItem{ID: 42})
	err := sc.Commit(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "commit", pe.Op)

	items, err := s.NewContext().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	// The failed batch is discarded.
	assert.NoError(t, sc.Commit(ctx))
}

func TestMemoryStore_IDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	sc := s.NewContext()
	first := &models.TodoItem{Title: "first"}
	sc.Add(first)
	require.NoError(t, sc.Commit(ctx))

	s.Reset()
	second := &models.TodoItem{Title: "second"}
	sc.Add(second)
	require.NoError(t, sc.Commit(ctx))
	assert.Greater(t, second.ID, first.ID)

	items, err := s.NewContext().List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "second", items[0].Title)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	_, err := s.NewContext().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	sc := s.NewContext()
	sc.Add(&models.TodoItem{Title: "x"})
	assert.ErrorIs(t, sc.Commit(ctx), context.Canceled)
	assert.Error(t, s.Ping(ctx))
}
