package sync

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/gem-sources/internal/livestate"
	"github.com/stacklok/gem-sources/internal/logger"
	"github.com/stacklok/gem-sources/internal/otel"
	"github.com/stacklok/gem-sources/internal/sources"
)

// Operation names used in errors and spans
const (
	OpList   = "list"
	OpAdd    = "add"
	OpRemove = "remove"
)

// Result contains the outcome of a sync
type Result struct {
	// Added lists sources registered with the package manager, in order
	Added []string
	// Removed lists sources unregistered from the package manager, in order
	Removed []string
}

// Changed reports whether the live state was modified
func (r *Result) Changed() bool {
	return r != nil && (len(r.Added) > 0 || len(r.Removed) > 0)
}

// Error is a live-state failure during sync
type Error struct {
	Op  string
	URL string
	Err error
}

func (e *Error) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("sync %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("sync %s %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Manager reconciles a registry with the live state
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/stacklok/gem-sources/internal/sync Manager
type Manager interface {
	// Preview computes the plan against the current live state without applying it
	Preview(ctx context.Context, reg *sources.Registry) (*Plan, error)

	// Sync computes the plan and applies it, adds first, then removes
	Sync(ctx context.Context, reg *sources.Registry) (*Result, error)
}

// Option configures the default manager
type Option func(*defaultManager)

// WithTracer records spans for sync operations
func WithTracer(tracer trace.Tracer) Option {
	return func(m *defaultManager) {
		m.tracer = tracer
	}
}

type defaultManager struct {
	live   livestate.LiveState
	tracer trace.Tracer
}

// NewManager creates a Manager driving the given live state
func NewManager(live livestate.LiveState, opts ...Option) Manager {
	m := &defaultManager{live: live}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *defaultManager) Preview(ctx context.Context, reg *sources.Registry) (*Plan, error) {
	live, err := m.live.CurrentSources(ctx)
	if err != nil {
		return nil, &Error{Op: OpList, Err: err}
	}
	return ComputePlan(reg, live), nil
}

func (m *defaultManager) Sync(ctx context.Context, reg *sources.Registry) (*Result, error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.Sync")
	defer span.End()

	plan, err := m.Preview(ctx, reg)
	if err != nil {
		otel.RecordError(span, err)
		return &Result{}, err
	}
	span.SetAttributes(
		otel.AttrSyncAddCount.Int(len(plan.ToAdd)),
		otel.AttrSyncRemoveCount.Int(len(plan.ToRemove)),
	)

	if plan.Empty() {
		logger.Debugf("Live sources already match the registry")
		return &Result{}, nil
	}

	result, err := m.apply(ctx, span, plan)
	if err != nil {
		var syncErr *Error
		if errors.As(err, &syncErr) {
			span.SetAttributes(
				otel.AttrSyncOperation.String(syncErr.Op),
				otel.AttrSourceURL.String(syncErr.URL),
			)
		}
		otel.RecordError(span, err)
	}
	return result, err
}

func (m *defaultManager) apply(ctx context.Context, span trace.Span, plan *Plan) (*Result, error) {
	result := &Result{}
	for _, url := range plan.ToAdd {
		if err := m.live.AddSource(ctx, url); err != nil {
			return result, &Error{Op: OpAdd, URL: url, Err: err}
		}
		recordApplied(span, OpAdd, url)
		logger.Infof("Added source %s", url)
		result.Added = append(result.Added, url)
	}
	for _, url := range plan.ToRemove {
		if err := m.live.RemoveSource(ctx, url); err != nil {
			return result, &Error{Op: OpRemove, URL: url, Err: err}
		}
		recordApplied(span, OpRemove, url)
		logger.Infof("Removed source %s", url)
		result.Removed = append(result.Removed, url)
	}
	return result, nil
}

// recordApplied adds one span event per live-state write
func recordApplied(span trace.Span, op, url string) {
	span.AddEvent("sync.applied", trace.WithAttributes(
		otel.AttrSyncOperation.String(op),
		otel.AttrSourceURL.String(url),
	))
}
