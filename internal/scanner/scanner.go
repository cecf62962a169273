package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"NewsCredibility/internal/domain"
)

// ErrUnknownProvider is returned when a configured provider name is not registered.
var ErrUnknownProvider = errors.New("unknown news provider")

// MaxPageSize caps how many articles a single provider call may return.
const MaxPageSize = 100

// Request carries all parameters required to query a news provider.
type Request struct {
	Query    string
	Country  string
	Category string
	Max      int
}

// Limit returns the effective page size for the request.
func (r Request) Limit() int {
	if r.Max <= 0 || r.Max > MaxPageSize {
		return MaxPageSize
	}
	return r.Max
}

// Provider captures a single news source implementation (NewsAPI, Google News, etc.).
type Provider interface {
	Name() string
	Related(ctx context.Context, req Request) ([]domain.Article, error)
	Headlines(ctx context.Context, req Request) ([]domain.Article, error)
}

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(provider Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	r.providers[provider.Name()] = provider
}

// Resolve returns a provider by name or ErrUnknownProvider if it is absent.
func (r *Registry) Resolve(name string) (Provider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("provider %s: %w", name, ErrUnknownProvider)
}

// Names lists the registered providers alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
