package e2e

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"komd/internal/auth"
	"komd/internal/config"
	"komd/internal/event"
	"komd/internal/httpapi"
	"komd/internal/registry"
)

// runtime is a fully booted komd process, minus signal handling.
type runtime struct {
	reg  *registry.Registry
	disp *event.Dispatcher
}

// bootFromYAML writes body to a temp config file, loads it and starts
// every module with the built-in catalog.
func bootFromYAML(t *testing.T, body string) *runtime {
	t.Helper()
	p := filepath.Join(t.TempDir(), "komd.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(p)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	log := zerolog.New(io.Discard)
	disp := event.NewDispatcher(log)
	f := registry.Factories{}
	auth.Install(f)
	httpapi.Install(f, disp)
	reg := registry.New(log, f)
	if errs := reg.StartAll(cfg.Modules); len(errs) != 0 {
		t.Fatalf("start modules: %v", errs)
	}
	return &runtime{reg: reg, disp: disp}
}

func (rt *runtime) stop(t *testing.T) {
	t.Helper()
	if err := rt.reg.StopAll(registry.StopOptions{JoinTimeout: 5 * time.Second}); err != nil {
		t.Fatalf("stop modules: %v", err)
	}
}

func (rt *runtime) gatewayAddr(t *testing.T, name string) string {
	t.Helper()
	m, err := rt.reg.Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return m.(*auth.Gateway).Addr().String()
}

func (rt *runtime) adminURL(t *testing.T, name string) string {
	t.Helper()
	m, err := rt.reg.Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return "http://" + m.(*httpapi.Module).Addr().String()
}

// login performs one gateway exchange and returns the raw response.
func login(t *testing.T, addr, user, password string) string {
	t.Helper()
	resp, err := tryLogin(addr, user, password)
	if err != nil {
		t.Fatalf("login %s: %v", user, err)
	}
	return resp
}

func tryLogin(addr, user, password string) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := io.WriteString(conn, user+"\r\n"+password+"\r\n"); err != nil {
		return "", err
	}
	b, err := io.ReadAll(conn)
	return string(b), err
}

func ticketOf(t *testing.T, resp string) auth.Ticket {
	t.Helper()
	if !strings.HasPrefix(resp, "OK:") || !strings.HasSuffix(resp, "\r\n") {
		t.Fatalf("expected OK response, got %q", resp)
	}
	return auth.Ticket(strings.TrimSuffix(strings.TrimPrefix(resp, "OK:"), "\r\n"))
}

var httpClient = &http.Client{Timeout: 5 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// sessionTarget stands in for a connected client session.
type sessionTarget struct {
	event.NopTarget
	user      event.UserID
	broadcast chan string
	chats     chan string
}

func newSessionTarget(user event.UserID) *sessionTarget {
	return &sessionTarget{user: user, broadcast: make(chan string, 4), chats: make(chan string, 4)}
}

func (s *sessionTarget) OnBroadcastMessage(e event.BroadcastMessageEvent) error {
	s.broadcast <- e.Message()
	return nil
}

func (s *sessionTarget) OnChatMessage(e event.ChatMessageEvent) error {
	if e.IsFor(s.user) {
		s.chats <- e.Message()
	}
	return nil
}
