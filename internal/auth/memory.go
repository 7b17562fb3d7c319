package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"komd/internal/registry"
)

// MemoryBackend is an Authenticator module over a fixed user table taken
// from the "users" parameter. Issued tickets live until the process exits.
type MemoryBackend struct {
	log zerolog.Logger

	mu      sync.RWMutex
	users   map[string]string
	tickets map[Ticket]string
}

func NewMemoryBackend(log zerolog.Logger) *MemoryBackend {
	return &MemoryBackend{log: log, users: map[string]string{}, tickets: map[Ticket]string{}}
}

// Start loads users from params["users"] ("alice:pw,bob:pw2").
func (b *MemoryBackend) Start(params map[string]string) error {
	users, err := parseUsers(params["users"])
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.users = users
	b.mu.Unlock()
	b.log.Info().Int("users", len(users)).Msg("memory backend ready")
	return nil
}

func (b *MemoryBackend) Stop() {}
func (b *MemoryBackend) Join() {}

// SetUser adds or replaces a user.
func (b *MemoryBackend) SetUser(name, password string) {
	b.mu.Lock()
	b.users[name] = password
	b.mu.Unlock()
}

func (b *MemoryBackend) Authenticate(ctx context.Context, user, password string) (Ticket, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.RLock()
	want, ok := b.users[user]
	b.mu.RUnlock()
	if !ok || !passwordsEqual(want, password) {
		return "", ErrAuthenticationFailed
	}
	t := Ticket(uuid.NewString())
	b.mu.Lock()
	b.tickets[t] = user
	b.mu.Unlock()
	return t, nil
}

// Validate returns the user a ticket was issued to.
func (b *MemoryBackend) Validate(t Ticket) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.tickets[t]
	return u, ok
}

var (
	_ registry.Module = (*MemoryBackend)(nil)
	_ Authenticator   = (*MemoryBackend)(nil)
)
