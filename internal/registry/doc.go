// Package registry hosts the process's modules: independently started and
// stopped subsystems registered under unique names.
//
//   - module.go: the Module capability, lifecycle State, Env and Factories.
//   - registry.go: the name-keyed directory (Register, Lookup, State, Snapshot).
//   - bootstrap.go: StartAll/StopAll driven by module definitions.
//   - errors.go: error types and helpers (IsModuleNotFound, IsDuplicateModuleName, ...).
//   - metrics.go: running-module gauge.
//
// A Registry is handed to every module at construction through Env; there
// is no package-level locator. Lookups never block: a module that failed to
// start is simply absent.
package registry
