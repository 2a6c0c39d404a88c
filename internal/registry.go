package internal

import (
	"sync"

	"github.com/mitchellh/mapstructure"
)

// Registry maps type names to factories producing fresh component values.
// Class-based actions, action providers, and class-based filters are all
// instantiated through a registry, then initialized from the declarative
// property map of their configuration entry.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]func() any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func() any)}
}

// Register binds a type name to a factory. Registering an existing name
// replaces the previous factory.
func (r *Registry) Register(name string, factory func() any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Registered reports whether a type name is known.
func (r *Registry) Registered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// New produces a fresh instance of the named type with the property map
// applied. Unknown type names and unrecognized properties are configuration
// errors, not silently ignored.
func (r *Registry) New(name string, props map[string]any) (any, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, NewConfigError("registry", "unknown type %q", name)
	}

	v := factory()
	if len(props) == 0 {
		return v, nil
	}
	if err := decodeProps(props, v); err != nil {
		return nil, NewConfigError("registry", "type %q: %v", name, err)
	}
	return v, nil
}

// decodeProps applies a free-form property map onto a typed component.
// ErrorUnused makes a property without a matching field a decode error.
func decodeProps(props map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(props)
}
