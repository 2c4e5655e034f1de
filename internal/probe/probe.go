// Package probe answers whether a package source currently responds.
//
// A probe never fails outward: DNS errors, refused connections, timeouts and
// non-success statuses all classify the source as unavailable. There are no
// retries; callers probe again on a later run.
package probe

import (
	"context"

	"github.com/stacklok/gem-sources/internal/httpclient"
	"github.com/stacklok/gem-sources/internal/logger"
)

//go:generate mockgen -destination=mocks/mock_prober.go -package=mocks -source=probe.go Prober

// Prober reports the reachability of a source URL
type Prober interface {
	// IsAvailable reports whether the source responded successfully to a single request
	IsAvailable(ctx context.Context, url string) bool
}

// Func adapts an ordinary function to the Prober interface
type Func func(ctx context.Context, url string) bool

// IsAvailable calls f(ctx, url)
func (f Func) IsAvailable(ctx context.Context, url string) bool {
	return f(ctx, url)
}

// HTTPProber probes sources with a single HTTP GET
type HTTPProber struct {
	client httpclient.Client
}

// NewHTTPProber creates a prober backed by the given HTTP client.
// The client's timeout bounds every probe.
func NewHTTPProber(client httpclient.Client) *HTTPProber {
	return &HTTPProber{client: client}
}

// IsAvailable implements Prober
func (p *HTTPProber) IsAvailable(ctx context.Context, url string) bool {
	if err := p.client.Probe(ctx, url); err != nil {
		logger.Debugw("Source unavailable", "url", url, "reason", err.Error())
		return false
	}
	logger.Debugw("Source available", "url", url)
	return true
}
