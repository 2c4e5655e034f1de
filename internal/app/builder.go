package app

import (
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/gem-sources/internal/config"
	"github.com/stacklok/gem-sources/internal/httpclient"
	"github.com/stacklok/gem-sources/internal/livestate"
	"github.com/stacklok/gem-sources/internal/probe"
	"github.com/stacklok/gem-sources/internal/sources"
	"github.com/stacklok/gem-sources/internal/storage"
	pkgsync "github.com/stacklok/gem-sources/internal/sync"
)

// ManagerOption is a function that configures the manager builder
type ManagerOption func(*managerConfig) error

// managerConfig collects the manager's dependencies.
// Components left nil are built from config.
type managerConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	store  storage.Store
	live   livestate.LiveState
	prober probe.Prober
	syncer pkgsync.Manager

	tracer      trace.Tracer
	concurrency int
}

func baseConfig(opts ...ManagerOption) (*managerConfig, error) {
	cfg := &managerConfig{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewManager creates a Manager, building any component not injected from the configuration
func NewManager(opts ...ManagerOption) (*Manager, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.config == nil && (cfg.store == nil || cfg.live == nil || cfg.prober == nil) {
		return nil, fmt.Errorf("config is required unless store, live state and prober are all provided")
	}

	if cfg.store == nil {
		cfg.store = storage.NewFileStore(cfg.config.SourcesFile)
	}
	if cfg.live == nil {
		cfg.live = livestate.NewGemCLI(cfg.config.GemCommand)
	}
	if cfg.prober == nil {
		cfg.prober = probe.NewHTTPProber(httpclient.NewDefaultClient(cfg.config.ProbeTimeout))
	}
	if cfg.syncer == nil {
		cfg.syncer = pkgsync.NewManager(cfg.live, pkgsync.WithTracer(cfg.tracer))
	}
	if cfg.concurrency == 0 {
		cfg.concurrency = sources.DefaultConcurrency
		if cfg.config != nil {
			cfg.concurrency = cfg.config.ProbeConcurrency
		}
	}

	return &Manager{
		components: &Components{
			Store:  cfg.store,
			Live:   cfg.live,
			Prober: cfg.prober,
			Syncer: cfg.syncer,
		},
		tracer:      cfg.tracer,
		concurrency: cfg.concurrency,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) ManagerOption {
	return func(cfg *managerConfig) error {
		if c == nil {
			return fmt.Errorf("config cannot be nil")
		}
		cfg.config = c
		return nil
	}
}

// WithStore sets the persistence adapter
func WithStore(s storage.Store) ManagerOption {
	return func(cfg *managerConfig) error {
		cfg.store = s
		return nil
	}
}

// WithLiveState sets the live-state adapter
func WithLiveState(l livestate.LiveState) ManagerOption {
	return func(cfg *managerConfig) error {
		cfg.live = l
		return nil
	}
}

// WithProber sets the reachability prober
func WithProber(p probe.Prober) ManagerOption {
	return func(cfg *managerConfig) error {
		cfg.prober = p
		return nil
	}
}

// WithSyncManager sets the sync manager. By default one is built around the live state.
func WithSyncManager(m pkgsync.Manager) ManagerOption {
	return func(cfg *managerConfig) error {
		cfg.syncer = m
		return nil
	}
}

// WithTracer records spans for every run
func WithTracer(t trace.Tracer) ManagerOption {
	return func(cfg *managerConfig) error {
		cfg.tracer = t
		return nil
	}
}

// WithConcurrency sets the number of probes in flight during verification
func WithConcurrency(n int) ManagerOption {
	return func(cfg *managerConfig) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		cfg.concurrency = n
		return nil
	}
}
