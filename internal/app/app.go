// Package app composes the registry, persistence, live state and sync into the
// user-facing intents: init, check, add, remove and list.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/gem-sources/internal/logger"
	"github.com/stacklok/gem-sources/internal/otel"
	"github.com/stacklok/gem-sources/internal/sources"
	"github.com/stacklok/gem-sources/internal/storage"
	pkgsync "github.com/stacklok/gem-sources/internal/sync"
)

// ErrDiverged is joined into errors raised after live sources were changed but
// before the sources file recorded the change
var ErrDiverged = errors.New("live sources were changed but the sources file was not updated")

// Options is one invocation's set of requested intents.
// Intents compose in a fixed order: init or load, check, adds, removes, sync, dump.
type Options struct {
	// Init builds the registry from the live sources instead of loading it
	Init bool

	// Check re-probes every known source
	Check bool

	// Add lists sources to add, in order
	Add []string

	// Remove lists sources to remove, in order
	Remove []string

	// DryRun probes and plans but neither syncs nor writes the file
	DryRun bool

	// Args are positional arguments forwarded unchanged by the command line
	Args []string
}

// needsSync reports whether the run changes membership and so must sync
func (o Options) needsSync() bool {
	return len(o.Add) > 0 || len(o.Remove) > 0
}

// Report describes what a run did
type Report struct {
	// Registry is the registry as it was dumped, or would have been on a dry run
	Registry *sources.Registry

	// Merged is the number of live sources merged into an existing file on init
	Merged int

	// Verify is set when the run verified the registry
	Verify *sources.VerifyResult

	// Added lists sources newly recorded in the registry
	Added []string

	// Removed lists sources dropped from the registry
	Removed []string

	// Plan is the pending sync on a dry run
	Plan *pkgsync.Plan

	// Sync is the applied sync, possibly partial when the run failed
	Sync *pkgsync.Result

	// Saved reports whether the sources file was written
	Saved bool
}

// Manager runs intents against its components
type Manager struct {
	components  *Components
	tracer      trace.Tracer
	concurrency int
}

// Components returns the manager's collaborators
func (m *Manager) Components() *Components {
	return m.components
}

// Init builds the registry from the live sources, verifies it and writes it
func (m *Manager) Init(ctx context.Context) (*Report, error) {
	return m.Run(ctx, Options{Init: true})
}

// Check loads the registry, re-probes every source and writes it back without syncing
func (m *Manager) Check(ctx context.Context) (*Report, error) {
	return m.Run(ctx, Options{Check: true})
}

// Add records the sources, syncs and writes the registry
func (m *Manager) Add(ctx context.Context, urls ...string) (*Report, error) {
	return m.Run(ctx, Options{Add: urls})
}

// Remove drops the sources, syncs and writes the registry
func (m *Manager) Remove(ctx context.Context, urls ...string) (*Report, error) {
	return m.Run(ctx, Options{Remove: urls})
}

// Run executes the requested intents as one linear pipeline.
// The file is written last, so a failure anywhere leaves it untouched.
func (m *Manager) Run(ctx context.Context, opts Options) (*Report, error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "app.Run")
	defer span.End()

	report, err := m.run(ctx, opts)
	if err != nil {
		otel.RecordError(span, err)
	}
	return report, err
}

func (m *Manager) run(ctx context.Context, opts Options) (*Report, error) {
	if len(opts.Args) > 0 {
		logger.Warnf("Ignoring arguments: %v", opts.Args)
	}

	report := &Report{}
	reg, err := m.obtain(ctx, opts.Init, report)
	if err != nil {
		return report, err
	}
	report.Registry = reg

	if opts.Init || opts.Check {
		report.Verify = reg.Verify(ctx, m.components.Prober,
			sources.WithConcurrency(m.concurrency), sources.WithTracer(m.tracer))
		for _, url := range report.Verify.Activated {
			logger.Infof("Source %s is reachable again", url)
		}
		for _, url := range report.Verify.Deactivated {
			logger.Warnf("Source %s is unreachable, marking inactive", url)
		}
	}

	for _, url := range opts.Add {
		added, err := reg.Add(ctx, m.components.Prober, url)
		if err != nil {
			return report, fmt.Errorf("add %q: %w", url, err)
		}
		if !added {
			logger.Infof("Source %s is already known", url)
			continue
		}
		if !reg.IsActive(url) {
			logger.Warnf("Source %s is unreachable, recorded as inactive", url)
		}
		report.Added = append(report.Added, url)
	}

	for _, url := range opts.Remove {
		if !reg.Remove(url) {
			logger.Infof("Source %s is not known", url)
			continue
		}
		report.Removed = append(report.Removed, url)
	}

	if opts.DryRun {
		if opts.needsSync() {
			plan, err := m.components.Syncer.Preview(ctx, reg)
			if err != nil {
				return report, err
			}
			report.Plan = plan
		}
		logger.Infof("Dry run, not writing %s", m.components.Store.Path())
		return report, nil
	}

	if opts.needsSync() {
		report.Sync, err = m.components.Syncer.Sync(ctx, reg)
		if err != nil {
			if report.Sync.Changed() {
				return report, errors.Join(err, ErrDiverged)
			}
			return report, err
		}
	}

	if err := m.components.Store.Dump(ctx, reg); err != nil {
		if report.Sync.Changed() {
			return report, errors.Join(err, ErrDiverged)
		}
		return report, err
	}
	report.Saved = true
	logger.Debugf("Wrote %d sources to %s", reg.Size(), m.components.Store.Path())

	return report, nil
}

// obtain loads the registry, or on init builds it from the live sources.
// An existing file is kept on init and the live sources are merged into it.
func (m *Manager) obtain(ctx context.Context, initialize bool, report *Report) (*sources.Registry, error) {
	if !initialize {
		return m.components.Store.Load(ctx)
	}

	live, err := m.components.Live.CurrentSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list live sources: %w", err)
	}
	fromLive, err := sources.New(live, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid live sources: %w", err)
	}

	if !m.components.Store.Exists() {
		return fromLive, nil
	}

	reg, err := m.components.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	report.Merged = reg.Merge(fromLive)
	logger.Infof("Merged %d live sources into existing %s", report.Merged, m.components.Store.Path())
	return reg, nil
}

// Entry is one row of the list output
type Entry struct {
	URL    string
	Active bool
	Live   bool
}

// State is the entry's classification as printed
func (e Entry) State() string {
	if e.Active {
		return "active"
	}
	return "inactive"
}

// List loads the registry and reports each source's state and whether the package manager has it.
// Live sources unknown to the registry are not listed.
func (m *Manager) List(ctx context.Context) ([]Entry, error) {
	reg, err := m.components.Store.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w, run with --init first", err)
		}
		return nil, err
	}

	live, err := m.components.Live.CurrentSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list live sources: %w", err)
	}

	entries := make([]Entry, 0, reg.Size())
	for _, url := range reg.All() {
		entries = append(entries, Entry{
			URL:    url,
			Active: reg.IsActive(url),
			Live:   slices.Contains(live, url),
		})
	}
	return entries, nil
}
