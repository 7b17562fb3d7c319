package registry

import "github.com/rs/zerolog"

// State is the lifecycle state of a hosted module.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateStopped    State = "stopped"
)

// Module is implemented by every hosted subsystem. Start must return only
// once the module is running (or has failed); background work it spawns is
// owned by the module and must be finished when Join returns.
type Module interface {
	// Start brings the module up using its definition parameters.
	Start(params map[string]string) error
	// Stop signals the module to terminate. It must not block.
	Stop()
	// Join blocks until all background activity has exited.
	Join()
}

// Env is what a Factory receives to build a module instance.
type Env struct {
	Name     string
	Registry *Registry
	Logger   zerolog.Logger
}

// Factory constructs an unstarted module.
type Factory func(env Env) Module

// Factories maps implementation identifiers to constructors.
type Factories map[string]Factory
