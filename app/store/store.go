// Package store is the persistence gateway for todo items. A Store hands out
// short-lived Contexts; each Context stages changes and applies them in a
// single Commit.
package store

import (
	"context"
	"errors"
	"fmt"

	"todoapi/app/models"
)

// ErrNotFound reports that a staged update or removal targeted a missing row.
var ErrNotFound = errors.New("todo item not found")

// PersistenceError wraps any failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// Store opens units of work against a backend.
type Store interface {
	NewContext() Context
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Context is a unit of work. Reads go straight to the backend; writes are
// staged and only become visible after Commit succeeds.
type Context interface {
	List(ctx context.Context) ([]models.TodoItem, error)
	// Find returns nil and no error when no item has the given id.
	Find(ctx context.Context, id int64) (*models.TodoItem, error)
	Add(item *models.TodoItem)
	Update(item *models.TodoItem)
	Remove(item *models.TodoItem)
	Commit(ctx context.Context) error
}

type changeKind int

const (
	changeAdd changeKind = iota
	changeUpdate
	changeRemove
)

func (k changeKind) String() string {
	switch k {
	case changeAdd:
		return "add"
	case changeUpdate:
		return "update"
	case changeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

type change struct {
	kind changeKind
	item *models.TodoItem
}

// changeSet is embedded by every backend's Context.
type changeSet struct {
	pending []change
}

func (c *changeSet) Add(item *models.TodoItem) {
	c.pending = append(c.pending, change{kind: changeAdd, item: item})
}

func (c *changeSet) Update(item *models.TodoItem) {
	c.pending = append(c.pending, change{kind: changeUpdate, item: item})
}

func (c *changeSet) Remove(item *models.TodoItem) {
	c.pending = append(c.pending, change{kind: changeRemove, item: item})
}

// take returns the staged changes and clears them.
func (c *changeSet) take() []change {
	pending := c.pending
	c.pending = nil
	return pending
}
