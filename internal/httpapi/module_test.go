package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"komd/internal/event"
	"komd/internal/registry"
	"komd/pkg/types"
)

// countingTarget counts broadcasts it receives.
type countingTarget struct {
	event.NopTarget
	got chan string
}

func (c *countingTarget) OnBroadcastMessage(e event.BroadcastMessageEvent) error {
	c.got <- e.Message()
	return nil
}

func TestModule_ServesThroughRegistry(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	disp := event.NewDispatcher(zerolog.New(io.Discard))
	target := &countingTarget{got: make(chan string, 1)}
	disp.Register(target)

	f := registry.Factories{}
	Install(f, disp)
	reg := registry.New(zerolog.New(io.Discard), f)
	if errs := reg.StartAll([]types.ModuleDefinition{
		{Name: "admin", Implementation: Impl, Parameters: map[string]string{"addr": "127.0.0.1:0"}},
	}); len(errs) != 0 {
		t.Fatalf("StartAll: %v", errs)
	}
	m, err := reg.Lookup("admin")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	base := "http://" + m.(*Module).Addr().String()
	client := &http.Client{Timeout: 2 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}

	// Only the admin module runs: not ready yet.
	resp, err := client.Get(base + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}

	resp, err = client.Get(base + "/modules")
	if err != nil {
		t.Fatalf("modules: %v", err)
	}
	var mods types.ModulesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mods); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(mods.Modules) != 1 || mods.Modules[0].Implementation != Impl || mods.Modules[0].State != "running" {
		t.Fatalf("modules=%+v", mods)
	}

	resp, err = client.Post(base+"/broadcast", "application/json", bytes.NewBufferString(`{"message":"hello sessions"}`))
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	var br types.BroadcastResponse
	_ = json.NewDecoder(resp.Body).Decode(&br)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted || br.Targets != 1 {
		t.Fatalf("broadcast status=%d targets=%d", resp.StatusCode, br.Targets)
	}
	select {
	case msg := <-target.got:
		if msg != "hello sessions" {
			t.Fatalf("msg=%q", msg)
		}
	default:
		t.Fatalf("target did not receive the broadcast")
	}

	if err := reg.StopAll(registry.StopOptions{JoinTimeout: 3 * time.Second}); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	client.CloseIdleConnections()
}

func TestModule_BindFailureAndIdleLifecycle(t *testing.T) {
	m := NewModule("admin", &mockService{}, zerolog.New(io.Discard))
	m.Stop()
	m.Join()
	if m.Addr() != nil {
		t.Fatalf("unstarted module has an address")
	}
	if err := m.Start(map[string]string{"addr": "256.0.0.1:80"}); err == nil {
		t.Fatalf("expected listen error")
	}
}

func TestRuntimeService_Ready(t *testing.T) {
	reg := registry.New(zerolog.New(io.Discard), nil)
	svc := &runtimeService{reg: reg, self: "admin"}
	if svc.Ready() {
		t.Fatalf("empty registry should not be ready")
	}
	_ = reg.Register("admin", NewModule("admin", svc, zerolog.New(io.Discard)))
	if svc.Ready() {
		t.Fatalf("admin alone should not be ready")
	}
	_ = reg.Register("gateway", NewModule("x", svc, zerolog.New(io.Discard)))
	if !svc.Ready() {
		t.Fatalf("expected ready with another running module")
	}
	if svc.Broadcast("x") != 0 {
		t.Fatalf("broadcast without dispatcher should reach nobody")
	}
}
