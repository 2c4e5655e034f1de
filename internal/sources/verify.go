package sources

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/gem-sources/internal/logger"
	"github.com/stacklok/gem-sources/internal/otel"
	"github.com/stacklok/gem-sources/internal/probe"
)

// DefaultConcurrency is the number of probes Verify runs in parallel unless told otherwise
const DefaultConcurrency = 8

// VerifyOption configures a Verify call
type VerifyOption func(*verifyConfig)

type verifyConfig struct {
	concurrency int
	tracer      trace.Tracer
}

// WithConcurrency bounds the number of probes in flight. Values below 1 mean sequential.
func WithConcurrency(n int) VerifyOption {
	return func(c *verifyConfig) {
		c.concurrency = n
	}
}

// WithTracer records a span around the verification
func WithTracer(tracer trace.Tracer) VerifyOption {
	return func(c *verifyConfig) {
		c.tracer = tracer
	}
}

// VerifyResult describes how a Verify call changed the partition
type VerifyResult struct {
	// Activated lists sources that moved from inactive to active
	Activated []string
	// Deactivated lists sources that moved from active to inactive
	Deactivated []string
	// Probed is the number of probes issued, always the registry size
	Probed int
}

// Changed reports whether any source moved between the sets
func (v *VerifyResult) Changed() bool {
	return len(v.Activated) > 0 || len(v.Deactivated) > 0
}

// Verify probes every known source exactly once and rebuilds the partition from the results.
// No source is added or dropped.
func (r *Registry) Verify(ctx context.Context, prober probe.Prober, opts ...VerifyOption) *VerifyResult {
	cfg := &verifyConfig{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, span := otel.StartSpan(ctx, cfg.tracer, "sources.Verify",
		trace.WithAttributes(otel.AttrSourceCount.Int(r.Size())))
	defer span.End()

	all := r.All()
	active, inactive := Partition(ctx, prober, all, cfg.concurrency)

	result := &VerifyResult{Probed: len(all)}
	for _, url := range active {
		if !r.IsActive(url) {
			result.Activated = append(result.Activated, url)
		}
	}
	for _, url := range inactive {
		if r.IsActive(url) {
			result.Deactivated = append(result.Deactivated, url)
		}
	}

	nextActive := make(map[string]struct{}, len(active))
	for _, url := range active {
		nextActive[url] = struct{}{}
	}
	nextInactive := make(map[string]struct{}, len(inactive))
	for _, url := range inactive {
		nextInactive[url] = struct{}{}
	}
	r.active, r.inactive = nextActive, nextInactive

	span.SetAttributes(
		otel.AttrActiveCount.Int(len(active)),
		otel.AttrInactiveCount.Int(len(inactive)),
	)
	logger.Debugf("Verified %d sources: %d active, %d inactive", len(all), len(active), len(inactive))
	return result
}

// Partition probes each URL once, with at most concurrency probes in flight, and
// splits the input by the outcome. Both outputs keep the input order.
func Partition(ctx context.Context, prober probe.Prober, urls []string, concurrency int) (active, inactive []string) {
	if concurrency < 1 {
		concurrency = 1
	}

	available := make([]bool, len(urls))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, url := range urls {
		g.Go(func() error {
			available[i] = prober.IsAvailable(ctx, url)
			return nil
		})
	}
	// Probes never return errors
	_ = g.Wait()

	active = make([]string, 0, len(urls))
	inactive = make([]string, 0, len(urls))
	for i, url := range urls {
		if available[i] {
			active = append(active, url)
		} else {
			inactive = append(inactive, url)
		}
	}
	return active, inactive
}
