package services

import (
	"context"
	"errors"

	"todoapi/app/models"
	"todoapi/app/store"

	"github.com/sirupsen/logrus"
)

// OutcomeObserver is notified of every operation's outcome.
type OutcomeObserver interface {
	ObserveOutcome(operation, kind string)
}

// TodoService implements the todo operations over a store. It keeps no
// state between calls; every operation opens its own store context.
type TodoService struct {
	store    store.Store
	logger   *logrus.Logger
	observer OutcomeObserver
}

// NewTodoService creates a new instance of TodoService.
func NewTodoService(s store.Store, logger *logrus.Logger) *TodoService {
	if logger == nil {
		logger = logrus.New()
	}
	return &TodoService{store: s, logger: logger}
}

// WithObserver sets the outcome observer and returns the service.
func (s *TodoService) WithObserver(obs OutcomeObserver) *TodoService {
	s.observer = obs
	return s
}

func (s *TodoService) finish(op string, id int64, out Outcome) Outcome {
	if s.observer != nil {
		s.observer.ObserveOutcome(op, out.Kind.String())
	}
	if out.Kind == KindError {
		s.logger.WithFields(logrus.Fields{
			"operation": op,
			"id":        id,
		}).WithError(out.Err).Error("todo operation failed")
	}
	return out
}

// List returns every todo item.
func (s *TodoService) List(ctx context.Context) Outcome {
	items, err := s.store.NewContext().List(ctx)
	if err != nil {
		return s.finish("list", 0, Failed(err))
	}
	return s.finish("list", 0, OkList(items))
}

// Get returns the item with the given id.
func (s *TodoService) Get(ctx context.Context, id int64) Outcome {
	item, err := s.store.NewContext().Find(ctx, id)
	if err != nil {
		return s.finish("get", id, Failed(err))
	}
	if item == nil {
		return s.finish("get", id, NotFound())
	}
	return s.finish("get", id, Ok(item))
}

// Create persists a new item. Any id in the payload is ignored.
func (s *TodoService) Create(ctx context.Context, payload models.TodoItem) Outcome {
	item := payload.Clone()
	item.ID = 0

	sc := s.store.NewContext()
	sc.Add(&item)
	if err := sc.Commit(ctx); err != nil {
		return s.finish("create", 0, Failed(err))
	}
	s.logger.WithField("id", item.ID).Debug("todo item created")
	return s.finish("create", item.ID, Created(&item))
}

// Update overwrites the mutable fields of the item with the given id.
// The payload must carry the same id.
func (s *TodoService) Update(ctx context.Context, id int64, payload models.TodoItem) Outcome {
	if payload.ID != id {
		return s.finish("update", id, BadRequest())
	}

	sc := s.store.NewContext()
	existing, err := sc.Find(ctx, id)
	if err != nil {
		return s.finish("update", id, Failed(err))
	}
	if existing == nil {
		return s.finish("update", id, NotFound())
	}

	existing.Title = payload.Title
	existing.Description = payload.Clone().Description
	sc.Update(existing)
	if err := sc.Commit(ctx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.finish("update", id, NotFound())
		}
		return s.finish("update", id, Failed(err))
	}
	return s.finish("update", id, NoContent())
}

// Delete removes the item with the given id.
func (s *TodoService) Delete(ctx context.Context, id int64) Outcome {
	sc := s.store.NewContext()
	existing, err := sc.Find(ctx, id)
	if err != nil {
		return s.finish("delete", id, Failed(err))
	}
	if existing == nil {
		return s.finish("delete", id, NotFound())
	}

	sc.Remove(existing)
	if err := sc.Commit(ctx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.finish("delete", id, NotFound())
		}
		return s.finish("delete", id, Failed(err))
	}
	return s.finish("delete", id, NoContent())
}
