package block

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sylvim/inkblock/internal/logger"
)

// ErrNotRegistered is returned when a type tag has no registered behavior.
// Callers that construct through the registry still receive a usable node
// of the fallback type alongside this error.
var ErrNotRegistered = errors.New("block type not registered")

// Registry maps type tags to behaviors. Each engine instance owns its own
// registry; independent editors never share mutable type tables.
type Registry struct {
	mu       sync.RWMutex
	types    map[string]Type
	fallback string
}

// NewRegistry creates an empty registry with the given fallback type tag.
// The fallback type must be registered before the registry is used.
func NewRegistry(fallback string) *Registry {
	return &Registry{
		types:    make(map[string]Type),
		fallback: fallback,
	}
}

// Register adds or replaces a type behavior. Registering over an existing
// tag is allowed so hosts can shadow built-ins.
func (r *Registry) Register(t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Name()] = t
	logger.DebugTagf("registry", "Registered block type %q", t.Name())
}

// Fallback returns the default type tag used when a request names an
// unregistered type.
func (r *Registry) Fallback() string {
	return r.fallback
}

// Lookup returns the behavior for a tag, or ErrNotRegistered.
func (r *Registry) Lookup(name string) (Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return t, nil
}

// Has reports whether a tag is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok
}

// Construct builds a fresh node of the named type. An unregistered name
// falls back to the default type and surfaces ErrNotRegistered so the
// caller can tell; the returned node is always usable.
func (r *Registry) Construct(name string, initial Data) (*Node, error) {
	t, err := r.Lookup(name)
	if err != nil {
		logger.Warnf("Registry: unknown block type %q, falling back to %q", name, r.fallback)
		fb, fbErr := r.Lookup(r.fallback)
		if fbErr != nil {
			// Registry without its fallback type is a wiring bug.
			return nil, fmt.Errorf("fallback type %q missing: %w", r.fallback, fbErr)
		}
		return &Node{ID: NewID(), Type: fb.Name(), Payload: fb.Construct(initial)}, err
	}
	return &Node{ID: NewID(), Type: t.Name(), Payload: t.Construct(initial)}, nil
}

// Extract returns the node's content as data via its type behavior.
func (r *Registry) Extract(n *Node) (Data, error) {
	t, err := r.Lookup(n.Type)
	if err != nil {
		return nil, err
	}
	return t.Extract(n.Payload), nil
}

// Update applies a partial data patch to the node in place.
func (r *Registry) Update(n *Node, partial Data) error {
	t, err := r.Lookup(n.Type)
	if err != nil {
		return err
	}
	t.Update(n.Payload, partial)
	return nil
}

// Reinterpret converts the node to newType in place, carrying content over
// where the source type declares it meaningful. Extra data, if non-nil,
// is applied on top of the carried data. The node keeps its id.
func (r *Registry) Reinterpret(n *Node, newType string, extra Data) error {
	target, err := r.Lookup(newType)
	if err != nil {
		return err
	}
	source, err := r.Lookup(n.Type)
	if err != nil {
		return err
	}

	carried := source.Carry(n.Payload, newType)
	if carried == nil {
		carried = Data{}
	}
	for k, v := range extra {
		carried[k] = v
	}

	n.Type = target.Name()
	n.Payload = target.Construct(carried)
	return nil
}
