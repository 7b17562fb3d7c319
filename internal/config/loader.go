package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"komd/internal/common/fsutil"
	"komd/pkg/types"
)

// Shutdown orderings accepted in shutdown.order.
const (
	OrderReverse = "reverse"
	OrderForward = "forward"
)

// Config holds runtime parameters for the server process.
// Zero values mean "unspecified" and are replaced by defaults in main.
type Config struct {
	LogLevel  string                   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string                   `json:"log_format" yaml:"log_format" toml:"log_format"`
	Shutdown  Shutdown                 `json:"shutdown" yaml:"shutdown" toml:"shutdown"`
	Modules   []types.ModuleDefinition `json:"modules" yaml:"modules" toml:"modules"`
}

// Shutdown controls how the registry stops modules.
type Shutdown struct {
	// Order is "reverse" (default) or "forward" relative to start order.
	Order string `json:"order" yaml:"order" toml:"order"`
	// JoinTimeout is a Go duration string; empty waits forever.
	JoinTimeout string `json:"join_timeout" yaml:"join_timeout" toml:"join_timeout"`
}

// JoinTimeoutDuration parses JoinTimeout. An empty value yields zero.
func (s Shutdown) JoinTimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(s.JoinTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.JoinTimeout)
	if err != nil {
		return 0, fmt.Errorf("shutdown.join_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("shutdown.join_timeout: negative duration %s", d)
	}
	return d, nil
}

// Load reads a configuration file based on its extension and validates it.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the process-wide settings. Module definitions are not
// rejected here: the registry skips a bad definition at startup and the
// remaining modules still run. Use Problems to list them up front.
func (c Config) Validate() error {
	switch strings.ToLower(c.Shutdown.Order) {
	case "", OrderReverse, OrderForward:
	default:
		return fmt.Errorf("shutdown.order: unknown value %q", c.Shutdown.Order)
	}
	if _, err := c.Shutdown.JoinTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// Problems lists module definitions that will be skipped at startup:
// empty names, empty implementations and repeated names. The first
// definition of a name is the one that runs.
func (c Config) Problems() []string {
	var out []string
	seen := make(map[string]int, len(c.Modules))
	for i, d := range c.Modules {
		if strings.TrimSpace(d.Name) == "" {
			out = append(out, fmt.Sprintf("modules[%d]: empty name", i))
			continue
		}
		if strings.TrimSpace(d.Implementation) == "" {
			out = append(out, fmt.Sprintf("modules[%d] %q: empty implementation", i, d.Name))
		}
		if j, ok := seen[d.Name]; ok {
			out = append(out, fmt.Sprintf("modules[%d]: duplicate module name %q (first at modules[%d])", i, d.Name, j))
			continue
		}
		seen[d.Name] = i
	}
	return out
}
