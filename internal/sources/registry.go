package sources

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/stacklok/gem-sources/internal/probe"
)

var (
	// ErrOverlap is returned when a URL would be both active and inactive
	ErrOverlap = errors.New("source is listed as both active and inactive")

	// ErrEmptyURL is returned for an empty source URL
	ErrEmptyURL = errors.New("source URL must not be empty")
)

// Registry is the active/inactive partition of known sources.
// It is not safe for concurrent mutation.
type Registry struct {
	active   map[string]struct{}
	inactive map[string]struct{}
}

// New creates a registry from the given collections without probing anything.
// Duplicates within one collection collapse; a URL present in both is rejected.
func New(active, inactive []string) (*Registry, error) {
	r := &Registry{
		active:   make(map[string]struct{}, len(active)),
		inactive: make(map[string]struct{}, len(inactive)),
	}
	for _, url := range active {
		if url == "" {
			return nil, fmt.Errorf("active: %w", ErrEmptyURL)
		}
		r.active[url] = struct{}{}
	}
	for _, url := range inactive {
		if url == "" {
			return nil, fmt.Errorf("inactive: %w", ErrEmptyURL)
		}
		if _, ok := r.active[url]; ok {
			return nil, fmt.Errorf("%w: %s", ErrOverlap, url)
		}
		r.inactive[url] = struct{}{}
	}
	return r, nil
}

// Empty returns a registry with no sources
func Empty() *Registry {
	r, _ := New(nil, nil)
	return r
}

// Active returns the active sources in sorted order
func (r *Registry) Active() []string {
	return sortedKeys(r.active)
}

// Inactive returns the inactive sources in sorted order
func (r *Registry) Inactive() []string {
	return sortedKeys(r.inactive)
}

// All returns every known source, active or not, in sorted order
func (r *Registry) All() []string {
	all := make([]string, 0, r.Size())
	all = append(all, r.Active()...)
	all = append(all, r.Inactive()...)
	slices.Sort(all)
	return all
}

// Size is the number of known sources
func (r *Registry) Size() int {
	return len(r.active) + len(r.inactive)
}

// Contains reports whether the URL is known in either set
func (r *Registry) Contains(url string) bool {
	_, active := r.active[url]
	_, inactive := r.inactive[url]
	return active || inactive
}

// IsActive reports whether the URL is in the active set
func (r *Registry) IsActive(url string) bool {
	_, ok := r.active[url]
	return ok
}

// Add probes a new URL once and files it as active or inactive.
// It returns false without probing when the URL is already known.
func (r *Registry) Add(ctx context.Context, prober probe.Prober, url string) (bool, error) {
	if url == "" {
		return false, ErrEmptyURL
	}
	if r.Contains(url) {
		return false, nil
	}
	r.classify(url, prober.IsAvailable(ctx, url))
	return true, nil
}

// Remove deletes the URL from whichever set holds it and reports whether it was known
func (r *Registry) Remove(url string) bool {
	if !r.Contains(url) {
		return false
	}
	delete(r.active, url)
	delete(r.inactive, url)
	return true
}

// Merge copies every source of other that r does not know yet, keeping the
// classification other gives it. Sources already known to r are left as they are.
// It returns the number of sources added.
func (r *Registry) Merge(other *Registry) int {
	if other == nil {
		return 0
	}
	added := 0
	for url := range other.active {
		if !r.Contains(url) {
			r.active[url] = struct{}{}
			added++
		}
	}
	for url := range other.inactive {
		if !r.Contains(url) {
			r.inactive[url] = struct{}{}
			added++
		}
	}
	return added
}

// Clone returns an independent copy of the registry
func (r *Registry) Clone() *Registry {
	return &Registry{
		active:   maps.Clone(r.active),
		inactive: maps.Clone(r.inactive),
	}
}

func (r *Registry) classify(url string, available bool) {
	if available {
		delete(r.inactive, url)
		r.active[url] = struct{}{}
		return
	}
	delete(r.active, url)
	r.inactive[url] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
