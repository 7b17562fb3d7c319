package registry

import (
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"komd/pkg/types"
)

var errBind = errors.New("bind: address already in use")

// fakeModule records lifecycle calls into a shared journal.
type fakeModule struct {
	name     string
	startErr error
	panicMsg string
	journal  *journal
	block    chan struct{} // when non-nil Join waits for it to close

	mu     sync.Mutex
	params map[string]string
	stops  int
	joins  int
}

func (f *fakeModule) Start(params map[string]string) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.mu.Lock()
	f.params = params
	f.mu.Unlock()
	f.journal.add("start:" + f.name)
	return f.startErr
}

func (f *fakeModule) Stop() {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
	f.journal.add("stop:" + f.name)
}

func (f *fakeModule) Join() {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.joins++
	f.mu.Unlock()
	f.journal.add("join:" + f.name)
}

type journal struct {
	mu    sync.Mutex
	lines []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.lines = append(j.lines, s)
	j.mu.Unlock()
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.lines...)
}

// harness wires a Registry whose "fake" implementation hands out modules
// configured per definition name.
type harness struct {
	reg     *Registry
	journal *journal
	mods    map[string]*fakeModule
}

func newHarness(configure func(name string, m *fakeModule)) *harness {
	h := &harness{journal: &journal{}, mods: map[string]*fakeModule{}}
	factories := Factories{
		"fake": func(env Env) Module {
			m := &fakeModule{name: env.Name, journal: h.journal}
			if configure != nil {
				configure(env.Name, m)
			}
			h.mods[env.Name] = m
			return m
		},
	}
	h.reg = New(zerolog.New(io.Discard), factories)
	return h
}

func defs(names ...string) []types.ModuleDefinition {
	out := make([]types.ModuleDefinition, 0, len(names))
	for _, n := range names {
		out = append(out, types.ModuleDefinition{Name: n, Implementation: "fake", Parameters: map[string]string{"id": n}})
	}
	return out
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
