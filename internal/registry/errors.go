package registry

import "errors"

var errEmptyName = errors.New("module definition has no name")

// moduleNotFoundError is returned by Lookup for unregistered names.
type moduleNotFoundError struct{ name string }

func (e moduleNotFoundError) Error() string { return "module not found: " + e.name }

// ErrModuleNotFound constructs the lookup-miss error for name.
func ErrModuleNotFound(name string) error { return moduleNotFoundError{name: name} }

// IsModuleNotFound reports whether err (or anything it wraps) is a lookup miss.
func IsModuleNotFound(err error) bool {
	var e moduleNotFoundError
	return errors.As(err, &e)
}

type duplicateModuleNameError struct{ name string }

func (e duplicateModuleNameError) Error() string { return "duplicate module name: " + e.name }

// ErrDuplicateModuleName constructs the error returned when name is taken.
func ErrDuplicateModuleName(name string) error { return duplicateModuleNameError{name: name} }

// IsDuplicateModuleName reports whether err indicates a name collision.
func IsDuplicateModuleName(err error) bool {
	var e duplicateModuleNameError
	return errors.As(err, &e)
}

type unknownImplementationError struct{ impl string }

func (e unknownImplementationError) Error() string { return "unknown module implementation: " + e.impl }

// ErrUnknownImplementation constructs the error for a definition whose
// implementation has no factory.
func ErrUnknownImplementation(impl string) error { return unknownImplementationError{impl: impl} }

// IsUnknownImplementation reports whether err indicates a missing factory.
func IsUnknownImplementation(err error) bool {
	var e unknownImplementationError
	return errors.As(err, &e)
}

// moduleStartupError wraps the cause of a failed Start.
type moduleStartupError struct {
	name  string
	cause error
}

func (e moduleStartupError) Error() string {
	return "module " + e.name + " failed to start: " + e.cause.Error()
}

func (e moduleStartupError) Unwrap() error { return e.cause }

// ErrModuleStartup wraps cause as a startup failure of module name.
func ErrModuleStartup(name string, cause error) error {
	return moduleStartupError{name: name, cause: cause}
}

// IsModuleStartup reports whether err is a module startup failure.
func IsModuleStartup(err error) bool {
	var e moduleStartupError
	return errors.As(err, &e)
}

type joinTimeoutError struct{ name string }

func (e joinTimeoutError) Error() string { return "module " + e.name + " did not stop in time" }

// IsJoinTimeout reports whether err indicates a module that did not finish
// within the configured join timeout.
func IsJoinTimeout(err error) bool {
	var e joinTimeoutError
	return errors.As(err, &e)
}
