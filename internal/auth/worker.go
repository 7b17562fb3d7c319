package auth

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Spawner runs per-connection workers. The protocol code only sees this
// interface, so the concurrency policy can change without touching it.
type Spawner interface {
	// Go runs fn in a new worker. It may block until capacity is available
	// and returns ctx's error if ctx ends first; fn is then not run.
	Go(ctx context.Context, fn func()) error
	// Wait blocks until every worker started by Go has returned.
	Wait()
}

// NewSpawner returns one goroutine per connection when workers <= 0, and
// a pool capped at workers concurrent connections otherwise.
func NewSpawner(workers int) Spawner {
	if workers <= 0 {
		return &unboundedSpawner{}
	}
	return &boundedSpawner{sem: semaphore.NewWeighted(int64(workers))}
}

type unboundedSpawner struct{ wg sync.WaitGroup }

func (s *unboundedSpawner) Go(_ context.Context, fn func()) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return nil
}

func (s *unboundedSpawner) Wait() { s.wg.Wait() }

type boundedSpawner struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func (s *boundedSpawner) Go(ctx context.Context, fn func()) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sem.Release(1)
		fn()
	}()
	return nil
}

func (s *boundedSpawner) Wait() { s.wg.Wait() }
