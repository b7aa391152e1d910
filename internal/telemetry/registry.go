// Package telemetry implements the flat named-scalar parameter/telemetry
// surface of §6: a registry of read/write bindings the core's fields are
// registered into once, decoupled from the control core itself (§9's design
// note — "abstract as a registry of named scalar bindings"). The registry
// also hosts the prometheus metrics, websocket streaming, and chi HTTP
// surface an external telemetry task reads from.
package telemetry

import "sync"

// Binding is one named scalar the registry exposes. Get/Set operate on the
// field by reference (a closure over the owning struct's field), matching
// §9's "the core exposes its fields by reference-of-field."
type Binding struct {
	Name string
	Get  func() any
	Set  func(any) bool // returns false if the value's type/range is invalid
}

// Registry is the flat namespace of runtime-tunable parameters and
// read-only telemetry fields. Writes from telemetry to parameter fields are
// single-scalar and observed on the next tick (§5); the registry itself
// only guards its own map, never the underlying field.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{bindings: make(map[string]Binding)}
}

// Register adds one named binding. Registering the same name twice replaces
// the prior binding — callers are expected to register each field exactly
// once at startup.
func (r *Registry) Register(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[b.Name] = b
}

// Get reads a named field's current value.
func (r *Registry) Get(name string) (any, bool) {
	r.mu.RLock()
	b, ok := r.bindings[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return b.Get(), true
}

// Set writes a named parameter field. Read-only telemetry fields (those
// registered with a nil Set) reject the write.
func (r *Registry) Set(name string, v any) bool {
	r.mu.RLock()
	b, ok := r.bindings[name]
	r.mu.RUnlock()
	if !ok || b.Set == nil {
		return false
	}
	return b.Set(v)
}

// Snapshot returns every binding's current value, keyed by name — used by
// the HTTP surface and the websocket broadcaster.
func (r *Registry) Snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]any, len(r.bindings))
	for name, b := range r.bindings {
		out[name] = b.Get()
	}
	return out
}

// Names returns every registered binding name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	return names
}

// Float64 is a small helper for registering a *float64 field as both a
// readable and writable binding.
func Float64(name string, field *float64) Binding {
	return Binding{
		Name: name,
		Get:  func() any { return *field },
		Set: func(v any) bool {
			f, ok := v.(float64)
			if !ok {
				return false
			}
			*field = f
			return true
		},
	}
}

// Bool is the bool-field equivalent of Float64.
func Bool(name string, field *bool) Binding {
	return Binding{
		Name: name,
		Get:  func() any { return *field },
		Set: func(v any) bool {
			b, ok := v.(bool)
			if !ok {
				return false
			}
			*field = b
			return true
		},
	}
}

// ReadOnly wraps a getter with no setter, for telemetry-only fields such as
// actuatorThrust or state.position.
func ReadOnly(name string, get func() any) Binding {
	return Binding{Name: name, Get: get}
}
