// Package activation provides the scoped dependency-resolution container
// activities are instantiated through. It is the concrete counterpart of
// the spec's abstract ServiceProvider/Scope port: fx wires the process-level
// singletons (store, logger, event bus) in cmd/workflow-runtime, but fx has
// no notion of a request-scoped child container, so activity instantiation
// uses this minimal typed registry instead.
package activation

import (
	"fmt"
	"sync"
)

// Factory constructs one activity instance by type name.
type Factory func() (any, error)

// Provider is a process-wide registry of activity factories, analogous to
// the teacher's fx.Provide calls but keyed by a runtime type name rather
// than a Go type, since activity types are data (ActivityDefinition.Type),
// not static Go types.
type Provider struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewProvider builds an empty provider.
func NewProvider() *Provider {
	return &Provider{factories: map[string]Factory{}}
}

// Register associates a type name with a factory. Re-registering a type
// name overwrites the previous factory, matching the teacher's tolerant
// "overwrite existing" registration style (see ngnhng-diy-temporal's
// RegisterWorkflowType).
func (p *Provider) Register(typeName string, factory Factory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factories[typeName] = factory
}

// NewScope acquires a fresh resolution scope. The caller must Close it on
// every exit path (normal, fault, cancellation) to release scope-local
// state deterministically.
func (p *Provider) NewScope() *Scope {
	return &Scope{provider: p, instances: map[string]any{}}
}

// Scope resolves activity instances for the lifetime of one drain-loop
// burst or one canExecute call. Instances are cached per scope so repeated
// resolution of the same type within a burst returns the same instance,
// matching the DI-container idiom the teacher relies on for request-scoped
// services.
type Scope struct {
	provider  *Provider
	mu        sync.Mutex
	instances map[string]any
	closed    bool
}

// Resolve returns the cached instance for typeName, constructing it via the
// registered factory on first use.
func (s *Scope) Resolve(typeName string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("activation: scope closed, cannot resolve %q", typeName)
	}
	if inst, ok := s.instances[typeName]; ok {
		return inst, nil
	}
	s.provider.mu.RLock()
	factory, ok := s.provider.factories[typeName]
	s.provider.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("activation: no factory registered for activity type %q", typeName)
	}
	inst, err := factory()
	if err != nil {
		return nil, fmt.Errorf("activation: constructing %q: %w", typeName, err)
	}
	s.instances[typeName] = inst
	return inst, nil
}

// Close releases the scope. Resolve on a closed scope fails; Close itself
// is idempotent so it is safe to call from a defer alongside an earlier
// explicit call on an error path.
func (s *Scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.instances = nil
	return nil
}
