package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

const yamlConfig = `log_level: debug
log_format: console
shutdown:
  order: forward
  join_timeout: 3s
modules:
  - name: authenticator
    implementation: auth.memory
    parameters:
      users: "alice:pw"
  - name: gateway
    implementation: auth.gateway
    classpath: [lib/gateway.jar, lib/common.jar]
    parameters:
      port: "1701"
`

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", yamlConfig)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "console" || cfg.Shutdown.Order != OrderForward {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.Modules) != 2 {
		t.Fatalf("modules len=%d", len(cfg.Modules))
	}
	gw := cfg.Modules[1]
	if gw.Name != "gateway" || gw.Implementation != "auth.gateway" || gw.Parameters["port"] != "1701" {
		t.Fatalf("unexpected gateway def: %+v", gw)
	}
	if len(gw.Classpath) != 2 || gw.Classpath[0] != "lib/gateway.jar" {
		t.Fatalf("classpath not preserved in order: %v", gw.Classpath)
	}
	jt, err := cfg.Shutdown.JoinTimeoutDuration()
	if err != nil || jt != 3*time.Second {
		t.Fatalf("join timeout=%v err=%v", jt, err)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"log_level":"warn","modules":[{"name":"gw","implementation":"auth.gateway","parameters":{"port":"0"}}]}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" || len(cfg.Modules) != 1 || cfg.Modules[0].Parameters.Get("port", "") != "0" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "log_level=\"error\"\n[shutdown]\norder=\"reverse\"\n[[modules]]\nname=\"admin\"\nimplementation=\"admin.http\"\n[modules.parameters]\naddr=\"127.0.0.1:0\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "error" || len(cfg.Modules) != 1 || cfg.Modules[0].Parameters["addr"] != "127.0.0.1:0" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestParamDefault(t *testing.T) {
	p := writeTempFile(t, t.TempDir(), "cfg.yaml", "modules:\n  - name: a\n    implementation: x\n    parameters:\n      host: \"\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Modules[0].Parameters.Get("host", "0.0.0.0"); got != "0.0.0.0" {
		t.Fatalf("blank param should fall back to default, got %q", got)
	}
	if got := cfg.Modules[0].Parameters.Get("missing", "d"); got != "d" {
		t.Fatalf("missing param should fall back to default, got %q", got)
	}
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "komd.example.yaml"))
	if err != nil {
		t.Fatalf("example config: %v", err)
	}
	if len(cfg.Modules) != 3 || cfg.Modules[1].Implementation != "auth.gateway" {
		t.Fatalf("unexpected modules: %+v", cfg.Modules)
	}
	if d, err := cfg.Shutdown.JoinTimeoutDuration(); err != nil || d.Seconds() != 10 {
		t.Fatalf("join timeout = %v, %v", d, err)
	}
}
