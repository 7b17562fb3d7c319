package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"komd/internal/registry"
	"komd/pkg/types"
)

// DefaultBackend is the registry name the gateway resolves its
// Authenticator under unless the "backend" parameter overrides it.
const DefaultBackend = "authenticator"

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Locator resolves modules by name. *registry.Registry implements it.
type Locator interface {
	Lookup(name string) (registry.Module, error)
}

// Gateway is the network-facing authentication module. Each accepted
// connection gets its own worker; the backend is looked up by name on
// every exchange, so it may come and go independently of the gateway.
type Gateway struct {
	name    string
	locator Locator
	log     zerolog.Logger
	listen  func(network, address string) (net.Listener, error)

	backend     string
	readTimeout time.Duration
	spawner     Spawner

	mu       sync.Mutex
	ln       net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	loopDone chan struct{}
	stopping atomic.Bool
	stopOnce sync.Once
}

// NewGateway returns an unstarted gateway.
func NewGateway(name string, locator Locator, log zerolog.Logger) *Gateway {
	return &Gateway{
		name:    name,
		locator: locator,
		log:     log,
		listen:  net.Listen,
		backend: DefaultBackend,
	}
}

// Start binds the listening socket and launches the accept loop.
//
// Parameters: port (required, 0 picks a free port), host, backend,
// workers (0 = one goroutine per connection), read_timeout (Go duration,
// empty = none).
func (g *Gateway) Start(params map[string]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ln != nil {
		return fmt.Errorf("gateway %s already started", g.name)
	}
	portStr, ok := params["port"]
	if !ok || portStr == "" {
		return fmt.Errorf("missing required parameter %q", "port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", portStr)
	}
	workers := 0
	if v := params["workers"]; v != "" {
		if workers, err = strconv.Atoi(v); err != nil || workers < 0 {
			return fmt.Errorf("invalid workers %q", v)
		}
	}
	if v := params["read_timeout"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid read_timeout %q", v)
		}
		g.readTimeout = d
	}
	p := types.Params(params)
	g.backend = p.Get("backend", DefaultBackend)

	addr := net.JoinHostPort(p.Get("host", ""), strconv.Itoa(port))
	ln, err := g.listen("tcp", addr)
	if err != nil {
		g.log.Error().Err(err).Str("addr", addr).Msg("gateway bind failed")
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	g.ln = ln
	g.spawner = NewSpawner(workers)
	g.ctx, g.cancel = context.WithCancel(context.Background())
	g.loopDone = make(chan struct{})
	go g.acceptLoop(ln)
	g.log.Info().Str("addr", ln.Addr().String()).Str("backend", g.backend).Int("workers", workers).Msg("gateway listening")
	return nil
}

// Addr returns the bound address, or nil before Start.
func (g *Gateway) Addr() net.Addr {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ln == nil {
		return nil
	}
	return g.ln.Addr()
}

// Stop cancels in-flight backend calls and closes the listener so that a
// blocked Accept returns. Workers parked in a read are not interrupted.
func (g *Gateway) Stop() {
	g.mu.Lock()
	ln, cancel := g.ln, g.cancel
	g.mu.Unlock()
	if ln == nil {
		return
	}
	g.stopOnce.Do(func() {
		g.stopping.Store(true)
		cancel()
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			g.log.Warn().Err(err).Msg("close listener")
		}
	})
}

// Join waits for the accept loop and every in-flight worker to finish.
func (g *Gateway) Join() {
	g.mu.Lock()
	done, sp := g.loopDone, g.spawner
	g.mu.Unlock()
	if done == nil {
		return
	}
	<-done
	sp.Wait()
}

func (g *Gateway) acceptLoop(ln net.Listener) {
	defer close(g.loopDone)
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if g.stopping.Load() {
				return
			}
			if errors.Is(err, net.ErrClosed) {
				g.log.Error().Err(err).Msg("listener closed unexpectedly")
				return
			}
			acceptErrorsTotal.Inc()
			if delay == 0 {
				delay = minAcceptDelay
			} else if delay *= 2; delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			g.log.Warn().Err(err).Dur("retry_in", delay).Msg("accept failed")
			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-g.ctx.Done():
				t.Stop()
				return
			}
			continue
		}
		delay = 0
		connectionsTotal.Inc()
		if err := g.spawner.Go(g.ctx, func() { g.serve(conn) }); err != nil {
			// Only a canceled context refuses work: we are stopping.
			_ = conn.Close()
			return
		}
	}
}

var _ registry.Module = (*Gateway)(nil)
