package registry

import (
	"sync"

	"github.com/rs/zerolog"

	"komd/pkg/types"
)

type entry struct {
	name      string
	impl      string
	classpath []string
	mod       Module
	state     State
}

// Registry is the name-keyed directory of running modules. It is written
// mostly during bootstrap but stays safe for concurrent Register/Lookup.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	order     []string // registration order
	factories Factories
	log       zerolog.Logger
}

// New constructs an empty Registry that builds modules from factories.
func New(log zerolog.Logger, factories Factories) *Registry {
	if factories == nil {
		factories = Factories{}
	}
	return &Registry{
		entries:   make(map[string]*entry),
		factories: factories,
		log:       log,
	}
}

// Register adds an already running module under name. It fails with a
// duplicate-name error and leaves the existing registration untouched if
// the name is taken.
func (r *Registry) Register(name string, m Module) error {
	return r.register(&entry{name: name, mod: m})
}

func (r *Registry) register(e *entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.name]; ok {
		return ErrDuplicateModuleName(e.name)
	}
	e.state = StateRunning
	r.entries[e.name] = e
	r.order = append(r.order, e.name)
	modulesRunning.Inc()
	return nil
}

// Lookup returns the module registered under name. It never waits for a
// module to come up.
func (r *Registry) Lookup(name string) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, ErrModuleNotFound(name)
	}
	return e.mod, nil
}

// State reports the lifecycle state of name. Names that were never
// registered (including modules whose Start failed) are StateNotStarted.
func (r *Registry) State(name string) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[name]; ok {
		return e.state
	}
	return StateNotStarted
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Snapshot lists registered modules in registration order.
func (r *Registry) Snapshot() []types.ModuleStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ModuleStatus, 0, len(r.order))
	for _, n := range r.order {
		e := r.entries[n]
		out = append(out, types.ModuleStatus{
			Name:           e.name,
			Implementation: e.impl,
			State:          string(e.state),
			Classpath:      append([]string(nil), e.classpath...),
		})
	}
	return out
}

func (r *Registry) has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// running returns running entries in registration order.
func (r *Registry) running() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entry, 0, len(r.order))
	for _, n := range r.order {
		if e := r.entries[n]; e.state == StateRunning {
			out = append(out, e)
		}
	}
	return out
}

func (r *Registry) markStopped(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.state == StateRunning {
		e.state = StateStopped
		modulesRunning.Dec()
	}
}
