package render

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var (
	// ErrUnnamedRenderer is returned for nil renderers or empty names.
	ErrUnnamedRenderer = errors.New("render: renderer needs a name")
	// ErrDuplicateRenderer is returned when a name is registered twice.
	ErrDuplicateRenderer = errors.New("render: renderer already registered")
	// ErrUnknownRenderer is returned by Get for names nobody registered.
	ErrUnknownRenderer = errors.New("render: unknown renderer")
)

// Registry maps renderer names ("vanilla", "tui") to renderers. Lookups with
// an empty name resolve the first renderer registered.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Renderer
	primary string
}

// NewRegistry registers renderers in order; the first one is the default.
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	reg := &Registry{byName: map[string]Renderer{}}
	for _, renderer := range renderers {
		if err := reg.Register(renderer); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil || renderer.Name() == "" {
		return ErrUnnamedRenderer
	}
	name := renderer.Name()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateRenderer, name)
	}
	r.byName[name] = renderer
	if r.primary == "" {
		r.primary = name
	}
	return nil
}

func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.primary
	}
	if renderer, ok := r.byName[name]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownRenderer, name, slices.Sorted(maps.Keys(r.byName)))
}

// List returns the registered names in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byName))
}

func (r *Registry) Has(name string) bool {
	_, err := r.Get(name)
	return name != "" && err == nil
}
