package auth

import "komd/internal/registry"

// Implementation identifiers accepted in module definitions.
const (
	ImplGateway = "auth.gateway"
	ImplMemory  = "auth.memory"
	ImplSQLite  = "auth.sqlite"
)

// Install adds the auth module implementations to f.
func Install(f registry.Factories) {
	f[ImplGateway] = func(env registry.Env) registry.Module {
		return NewGateway(env.Name, env.Registry, env.Logger)
	}
	f[ImplMemory] = func(env registry.Env) registry.Module {
		return NewMemoryBackend(env.Logger)
	}
	f[ImplSQLite] = func(env registry.Env) registry.Module {
		return NewSQLiteBackend(env.Logger)
	}
}
