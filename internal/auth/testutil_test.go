package auth

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"komd/internal/registry"
)

// mapLocator is a fixed name -> module table.
type mapLocator map[string]registry.Module

func (m mapLocator) Lookup(name string) (registry.Module, error) {
	if mod, ok := m[name]; ok {
		return mod, nil
	}
	return nil, registry.ErrModuleNotFound(name)
}

// funcBackend adapts a function to an Authenticator module.
type funcBackend func(ctx context.Context, user, password string) (Ticket, error)

func (f funcBackend) Authenticate(ctx context.Context, user, password string) (Ticket, error) {
	return f(ctx, user, password)
}
func (funcBackend) Start(map[string]string) error { return nil }
func (funcBackend) Stop()                         {}
func (funcBackend) Join()                         {}

// notAuthenticator is a module that cannot mint tickets.
type notAuthenticator struct{}

func (notAuthenticator) Start(map[string]string) error { return nil }
func (notAuthenticator) Stop()                         {}
func (notAuthenticator) Join()                         {}

func aliceBackend() *MemoryBackend {
	b := NewMemoryBackend(zerolog.New(io.Discard))
	b.SetUser("alice", "correct-pw")
	return b
}

// startGateway starts a gateway on a free loopback port and stops it on
// cleanup.
func startGateway(t *testing.T, loc Locator, params map[string]string) *Gateway {
	t.Helper()
	g := NewGateway("gateway", loc, zerolog.New(io.Discard))
	return startPrepared(t, g, params)
}

func startPrepared(t *testing.T, g *Gateway, params map[string]string) *Gateway {
	t.Helper()
	p := map[string]string{"host": "127.0.0.1", "port": "0"}
	for k, v := range params {
		p[k] = v
	}
	if err := g.Start(p); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		g.Stop()
		g.Join()
	})
	return g
}

// roundTrip sends the raw payload, half-closes the write side and returns
// everything the server wrote before closing.
func roundTrip(t *testing.T, addr net.Addr, payload string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr.String(), 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := io.WriteString(conn, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}
	b, err := io.ReadAll(conn)
	// A server that hangs up with unread input resets the connection.
	if err != nil && !errors.Is(err, syscall.ECONNRESET) {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}

var errTransient = errors.New("accept: too many open files")

// flakyListener fails the first n Accept calls with errTransient.
type flakyListener struct {
	net.Listener
	mu       sync.Mutex
	failures int
}

func (l *flakyListener) Accept() (net.Conn, error) {
	l.mu.Lock()
	if l.failures > 0 {
		l.failures--
		l.mu.Unlock()
		return nil, errTransient
	}
	l.mu.Unlock()
	return l.Listener.Accept()
}
