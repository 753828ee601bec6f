package store

import (
	"context"
	"time"
)

// CommitObserver receives the timing and result of every commit.
type CommitObserver interface {
	ObserveCommit(backend string, d time.Duration, err error)
}

// Instrument wraps a Store so that every Commit is reported to obs.
func Instrument(s Store, backend string, obs CommitObserver) Store {
	if obs == nil {
		return s
	}
	return &instrumentedStore{Store: s, backend: backend, obs: obs}
}

type instrumentedStore struct {
	Store
	backend string
	obs     CommitObserver
}

func (s *instrumentedStore) NewContext() Context {
	return &instrumentedContext{Context: s.Store.NewContext(), store: s}
}

type instrumentedContext struct {
	Context
	store *instrumentedStore
}

func (c *instrumentedContext) Commit(ctx context.Context) error {
	start := time.Now()
	err := c.Context.Commit(ctx)
	c.store.obs.ObserveCommit(c.store.backend, time.Since(start), err)
	return err
}
