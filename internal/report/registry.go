// Package report addresses the individual Canvas report fetchers by name.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// Request carries all parameters required to run one report.
type Request struct {
	Week domain.Week
}

// Fetcher captures a single report implementation (ROI, conversion, etc.).
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.Row, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc struct {
	ReportName string
	Fn         func(ctx context.Context, req Request) ([]domain.Row, error)
}

// Name identifies the report inside the registry.
func (f FetcherFunc) Name() string { return f.ReportName }

// Fetch runs the wrapped function.
func (f FetcherFunc) Fetch(ctx context.Context, req Request) ([]domain.Row, error) {
	return f.Fn(ctx, req)
}

// Registry keeps a mapping from report names to their implementations.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[string]Fetcher{}}
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(fetcher Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[string]Fetcher{}
	}
	r.fetchers[fetcher.Name()] = fetcher
}

// Resolve returns a fetcher by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Fetcher, error) {
	if fetcher, ok := r.fetchers[name]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("report %s is not registered", name)
}

// Names lists registered reports alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fetchers))
	for name := range r.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
