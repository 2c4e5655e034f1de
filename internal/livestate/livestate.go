// Package livestate exposes the package manager's own source registry.
//
// The registry is owned by the package manager, not by gem-sources. It is read
// through CurrentSources and changed only through AddSource and RemoveSource,
// both of which are idempotent.
package livestate

import "context"

//go:generate mockgen -destination=mocks/mock_livestate.go -package=mocks -source=livestate.go LiveState

// LiveState is the package manager's set of registered sources
type LiveState interface {
	// CurrentSources returns a deduplicated, sorted snapshot of the registered sources
	CurrentSources(ctx context.Context) ([]string, error)

	// AddSource registers a source. Registering a present source succeeds.
	AddSource(ctx context.Context, url string) error

	// RemoveSource unregisters a source. Removing an absent source succeeds.
	RemoveSource(ctx context.Context, url string) error
}
