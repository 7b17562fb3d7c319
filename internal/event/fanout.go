package event

import "sync"

// TargetID identifies one registration with a dispatcher.
type TargetID uint64

type member[T any] struct {
	id TargetID
	t  T
}

// fanout is the concurrency-safe, insertion-ordered target set shared by
// Dispatcher and ClientDispatcher.
type fanout[T any] struct {
	mu      sync.RWMutex
	next    TargetID
	targets map[TargetID]T
	order   []TargetID
}

func (f *fanout[T]) add(t T) TargetID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.targets == nil {
		f.targets = make(map[TargetID]T)
	}
	f.next++
	id := f.next
	f.targets[id] = t
	f.order = append(f.order, id)
	return id
}

func (f *fanout[T]) remove(id TargetID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.targets[id]; !ok {
		return false
	}
	delete(f.targets, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i:i], f.order[i+1:]...)
			break
		}
	}
	return true
}

func (f *fanout[T]) present(id TargetID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.targets[id]
	return ok
}

func (f *fanout[T]) len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.targets)
}

// snapshot copies the current members in insertion order. Delivery walks
// the copy, so registrations may change while it runs.
func (f *fanout[T]) snapshot() []member[T] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]member[T], 0, len(f.order))
	for _, id := range f.order {
		out = append(out, member[T]{id: id, t: f.targets[id]})
	}
	return out
}
