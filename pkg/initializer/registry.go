package initializer

import (
	"fmt"
	"sync"

	"github.com/wehubfusion/Talaria/pkg/dag"
	errs "github.com/wehubfusion/Talaria/pkg/errors"
)

// Creator constructs an initializer instance for one input descriptor.
type Creator func(descriptor dag.InputDescriptor) (Initializer, error)

// Registry maps initializer names to creator functions. It replaces
// reflective class loading: implementations are registered explicitly at
// configuration-load time and resolved by the name carried in the
// descriptor.
type Registry struct {
	mu       sync.RWMutex
	creators map[string]Creator
}

// NewRegistry creates an empty initializer registry.
func NewRegistry() *Registry {
	return &Registry{
		creators: make(map[string]Creator),
	}
}

// Register registers a creator for an initializer name. Registering the
// same name twice replaces the earlier creator.
func (r *Registry) Register(name string, creator Creator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creators[name] = creator
}

// Create constructs the initializer named by the descriptor. An unknown
// name or a failing creator is a construction error.
func (r *Registry) Create(name string, descriptor dag.InputDescriptor) (Initializer, error) {
	r.mu.RLock()
	creator, ok := r.creators[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errs.NewError("INITIALIZER_NOT_FOUND",
			fmt.Sprintf("no initializer registered with name %q", name),
			errs.ErrInitializerNotFound)
	}

	init, err := creator(descriptor)
	if err != nil {
		return nil, errs.NewError("CONSTRUCTION_FAILED",
			fmt.Sprintf("failed to create input initializer %q: %v", name, err),
			errs.ErrConstructionFailed)
	}
	if init == nil {
		return nil, errs.NewError("CONSTRUCTION_FAILED",
			fmt.Sprintf("creator for initializer %q returned nil", name),
			errs.ErrConstructionFailed)
	}
	return init, nil
}

// HasCreator checks if a creator exists for an initializer name.
func (r *Registry) HasCreator(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.creators[name]
	return ok
}

// RegisteredNames returns all registered initializer names.
func (r *Registry) RegisteredNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.creators))
	for name := range r.creators {
		names = append(names, name)
	}
	return names
}
