package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"komd/internal/event"
	"komd/internal/registry"
	"komd/pkg/types"
)

// Impl is the implementation identifier of the admin module.
const Impl = "admin.http"

const shutdownTimeout = 5 * time.Second

// Install adds the admin module implementation to f. Broadcasts go to disp.
func Install(f registry.Factories, disp *event.Dispatcher) {
	f[Impl] = func(env registry.Env) registry.Module {
		return NewModule(env.Name, &runtimeService{reg: env.Registry, disp: disp, self: env.Name}, env.Logger)
	}
}

// runtimeService backs the admin API with the live registry and dispatcher.
type runtimeService struct {
	reg  *registry.Registry
	disp *event.Dispatcher
	self string
}

func (s *runtimeService) Modules() []types.ModuleStatus { return s.reg.Snapshot() }

// Ready reports whether any module besides the admin module is running.
func (s *runtimeService) Ready() bool {
	for _, m := range s.reg.Snapshot() {
		if m.Name != s.self && m.State == string(registry.StateRunning) {
			return true
		}
	}
	return false
}

func (s *runtimeService) Broadcast(message string) int {
	if s.disp == nil {
		return 0
	}
	return s.disp.Dispatch(event.NewBroadcastMessage(event.SystemUser, "", message))
}

// Module serves the admin API on its own listener.
type Module struct {
	name string
	svc  Service
	log  zerolog.Logger

	mu           sync.Mutex
	srv          *http.Server
	ln           net.Listener
	serveDone    chan struct{}
	shutdownDone chan struct{}
	stopOnce     sync.Once
}

func NewModule(name string, svc Service, log zerolog.Logger) *Module {
	return &Module{name: name, svc: svc, log: log}
}

// Start listens on params["addr"] and serves in the background.
// params["cors_origins"] is an optional comma-separated origin list.
func (m *Module) Start(params map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.srv != nil {
		return fmt.Errorf("admin module %s already started", m.name)
	}
	p := types.Params(params)
	addr := p.Get("addr", DefaultAddr)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		m.log.Error().Err(err).Str("addr", addr).Msg("admin bind failed")
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	handler := NewMux(m.svc, Options{Logger: m.log, CORSOrigins: splitCSV(p.Get("cors_origins", ""))})
	m.ln = ln
	m.srv = &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	m.serveDone = make(chan struct{})
	m.shutdownDone = make(chan struct{})
	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error().Err(err).Msg("admin server error")
		}
	}(m.srv, m.serveDone)
	m.log.Info().Str("addr", ln.Addr().String()).Msg("admin listening")
	return nil
}

// Addr returns the bound address, or nil before Start.
func (m *Module) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln == nil {
		return nil
	}
	return m.ln.Addr()
}

// Stop begins a graceful shutdown without waiting for it.
func (m *Module) Stop() {
	m.mu.Lock()
	srv, done := m.srv, m.shutdownDone
	m.mu.Unlock()
	if srv == nil {
		return
	}
	m.stopOnce.Do(func() {
		go func() {
			defer close(done)
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				m.log.Warn().Err(err).Msg("graceful shutdown error")
			}
		}()
	})
}

// Join waits until the server has stopped serving and drained.
func (m *Module) Join() {
	m.mu.Lock()
	serveDone, shutdownDone := m.serveDone, m.shutdownDone
	m.mu.Unlock()
	if serveDone == nil {
		return
	}
	<-serveDone
	<-shutdownDone
}

var _ registry.Module = (*Module)(nil)
