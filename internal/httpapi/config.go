package httpapi

import (
	"strings"

	"github.com/rs/zerolog"
)

// defaultMaxBodyBytes bounds JSON request bodies when Options leaves it unset.
const defaultMaxBodyBytes int64 = 1 << 20

// DefaultAddr is where the admin module listens without an "addr" parameter.
const DefaultAddr = "127.0.0.1:8089"

// Options configures the admin router.
type Options struct {
	Logger zerolog.Logger
	// MaxBodyBytes limits request bodies; <= 0 selects 1 MiB.
	MaxBodyBytes int64
	// CORSOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSOrigins []string
}

func (o Options) maxBody() int64 {
	if o.MaxBodyBytes <= 0 {
		return defaultMaxBodyBytes
	}
	return o.MaxBodyBytes
}

// splitCSV splits a comma-separated list, dropping blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
