package types

// ModuleDefinition describes one hosted module as read from the process
// configuration. It is immutable once loaded; the registry only reads it.
type ModuleDefinition struct {
	// Unique name the module is registered under.
	Name string `json:"name" yaml:"name" toml:"name"`
	// Implementation identifier resolved against the factory catalog.
	Implementation string `json:"implementation" yaml:"implementation" toml:"implementation"`
	// Ordered resource locations. Opaque to the registry, which only
	// records and reports them.
	Classpath []string `json:"classpath,omitempty" yaml:"classpath,omitempty" toml:"classpath,omitempty"`
	// Free-form string parameters handed to Start.
	Parameters Params `json:"parameters,omitempty" yaml:"parameters,omitempty" toml:"parameters,omitempty"`
}

// Params holds a module's string parameters.
type Params map[string]string

// Get returns the named parameter, or def when it is unset or blank.
func (p Params) Get(key, def string) string {
	if v, ok := p[key]; ok && v != "" {
		return v
	}
	return def
}
