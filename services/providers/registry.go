package providers

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	ErrProviderNotFound          = errors.New("provider not found")
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
	ErrInvalidModelID            = errors.New("model identifier must be of the form provider/model")
)

// Registry maps provider names to providers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds p under p.Name(). Names are unique.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return errors.New("provider cannot be nil")
	}
	name := p.Name()
	if name == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.providers[name]; dup {
		return fmt.Errorf("%w: %s", ErrProviderAlreadyRegistered, name)
	}
	r.providers[name] = p
	return nil
}

func (r *Registry) Lookup(name string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.providers))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Resolve returns the provider named by a "provider/model" identifier and
// the model name the provider expects.
func (r *Registry) Resolve(modelID string) (Provider, string, error) {
	name, model, err := ParseModelID(modelID)
	if err != nil {
		return nil, "", err
	}
	p, err := r.Lookup(name)
	if err != nil {
		return nil, "", err
	}
	return p, model, nil
}

// ParseModelID splits at the first slash, so model names may contain
// slashes of their own ("ollama/library/llama3").
func ParseModelID(modelID string) (provider, model string, err error) {
	provider, model, ok := strings.Cut(strings.TrimSpace(modelID), "/")
	if !ok || provider == "" || model == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidModelID, modelID)
	}
	return provider, model, nil
}
