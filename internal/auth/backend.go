package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

// Ticket is an opaque bearer credential minted by a backend.
type Ticket string

// ErrAuthenticationFailed is returned by backends for bad credentials.
// The gateway maps it to the FAIL response; every other error is internal.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Authenticator mints tickets for valid credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, user, password string) (Ticket, error)
}

// backendUnavailableError signals that the configured backend module could
// not be used (missing from the registry or of the wrong kind).
type backendUnavailableError struct {
	name  string
	cause error
}

func (e backendUnavailableError) Error() string {
	return fmt.Sprintf("auth backend %q unavailable: %v", e.name, e.cause)
}

func (e backendUnavailableError) Unwrap() error { return e.cause }

// ErrBackendUnavailable constructs a backendUnavailableError.
func ErrBackendUnavailable(name string, cause error) error {
	return backendUnavailableError{name: name, cause: cause}
}

// IsBackendUnavailable reports whether err indicates an unusable backend.
func IsBackendUnavailable(err error) bool {
	var e backendUnavailableError
	return errors.As(err, &e)
}

// parseUsers reads "alice:pw,bob:pw2". Whitespace around entries is
// ignored; the password is everything after the first colon.
func parseUsers(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, pw, ok := strings.Cut(item, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid user entry %q (want name:password)", item)
		}
		out[name] = pw
	}
	return out, nil
}

func passwordsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
