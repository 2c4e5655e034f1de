package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/gem-sources/internal/livestate"
	"github.com/stacklok/gem-sources/internal/livestate/mocks"
	"github.com/stacklok/gem-sources/internal/sources"
)

const (
	activeURL   = "http://active.example.com"
	inactiveURL = "http://inactive.example.com"
)

func newTestRegistry(t *testing.T) *sources.Registry {
	t.Helper()
	reg, err := sources.New([]string{activeURL}, []string{inactiveURL})
	require.NoError(t, err)
	return reg
}

func TestManager_Sync_AddsActiveAndRemovesInactive(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	live := mocks.NewMockLiveState(ctrl)
	live.EXPECT().CurrentSources(gomock.Any()).Return([]string{inactiveURL}, nil)
	live.EXPECT().AddSource(gomock.Any(), activeURL).Return(nil).Times(1)
	live.EXPECT().RemoveSource(gomock.Any(), inactiveURL).Return(nil).Times(1)

	result, err := NewManager(live).Sync(context.Background(), newTestRegistry(t))

	require.NoError(t, err)
	assert.Equal(t, []string{activeURL}, result.Added)
	assert.Equal(t, []string{inactiveURL}, result.Removed)
	assert.True(t, result.Changed())
}

func TestManager_Sync_Scenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg, err := sources.New([]string{"A"}, []string{"B"})
	require.NoError(t, err)
	live := livestate.NewMemory("B")

	_, err = NewManager(live).Sync(ctx, reg)
	require.NoError(t, err)

	assert.Equal(t, []livestate.Operation{
		{Op: livestate.OpAdd, URL: "A"},
		{Op: livestate.OpRemove, URL: "B"},
	}, live.Operations())

	current, err := live.CurrentSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, current)
}

func TestManager_Sync_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg, err := sources.New([]string{"A", "C"}, []string{"B", "D"})
	require.NoError(t, err)
	live := livestate.NewMemory("B", "U")
	manager := NewManager(live)

	first, err := manager.Sync(ctx, reg)
	require.NoError(t, err)
	assert.True(t, first.Changed())
	opsAfterFirst := len(live.Operations())

	second, err := manager.Sync(ctx, reg)
	require.NoError(t, err)
	assert.False(t, second.Changed())
	assert.Len(t, live.Operations(), opsAfterFirst)

	current, err := live.CurrentSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "U"}, current, "unknown live source U must survive")
}

func TestManager_Sync_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg, err := sources.New([]string{"A", "B", "C"}, []string{"D"})
	require.NoError(t, err)

	boom := errors.New("bad response Not Found 404")
	live := livestate.NewMemory("D")
	live.FailOn(livestate.OpAdd, "B", boom)

	result, err := NewManager(live).Sync(ctx, reg)

	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	var syncErr *Error
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, OpAdd, syncErr.Op)
	assert.Equal(t, "B", syncErr.URL)
	assert.Contains(t, err.Error(), "sync add B failed")

	// A was applied before the failure and stays applied; C and D were never attempted
	assert.Equal(t, []string{"A"}, result.Added)
	assert.Empty(t, result.Removed)
	assert.Equal(t, []livestate.Operation{{Op: livestate.OpAdd, URL: "A"}}, live.Operations())
}

func TestManager_Sync_RemoveFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	live := mocks.NewMockLiveState(ctrl)
	boom := errors.New("permission denied")
	gomock.InOrder(
		live.EXPECT().CurrentSources(gomock.Any()).Return([]string{inactiveURL}, nil),
		live.EXPECT().AddSource(gomock.Any(), activeURL).Return(nil),
		live.EXPECT().RemoveSource(gomock.Any(), inactiveURL).Return(boom),
	)

	result, err := NewManager(live).Sync(context.Background(), newTestRegistry(t))

	var syncErr *Error
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, OpRemove, syncErr.Op)
	assert.Equal(t, inactiveURL, syncErr.URL)
	assert.Equal(t, []string{activeURL}, result.Added)
}

func TestManager_Sync_ListFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	live := mocks.NewMockLiveState(ctrl)
	live.EXPECT().CurrentSources(gomock.Any()).Return(nil, errors.New("gem: not found"))

	result, err := NewManager(live).Sync(context.Background(), newTestRegistry(t))

	var syncErr *Error
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, OpList, syncErr.Op)
	assert.Equal(t, "sync list failed: gem: not found", err.Error())
	assert.False(t, result.Changed())
}

func TestManager_Preview_DoesNotApply(t *testing.T) {
	t.Parallel()

	live := livestate.NewMemory(inactiveURL)

	plan, err := NewManager(live).Preview(context.Background(), newTestRegistry(t))

	require.NoError(t, err)
	assert.Equal(t, []string{activeURL}, plan.ToAdd)
	assert.Equal(t, []string{inactiveURL}, plan.ToRemove)
	assert.Empty(t, live.Operations())
}

func TestManager_Sync_RecordsSpan(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	live := livestate.NewMemory()
	live.FailOn(livestate.OpAdd, activeURL, errors.New("boom"))

	_, err := NewManager(live, WithTracer(tp.Tracer("test"))).Sync(context.Background(), newTestRegistry(t))
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "sync.Sync", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, OpAdd, attrs["sync.operation"])
	assert.Equal(t, activeURL, attrs["source.url"])
}

func TestManager_Sync_RecordsAppliedEvents(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	live := livestate.NewMemory(inactiveURL)

	_, err := NewManager(live, WithTracer(tp.Tracer("test"))).Sync(context.Background(), newTestRegistry(t))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 2)

	var applied [][2]string
	for _, ev := range spans[0].Events {
		assert.Equal(t, "sync.applied", ev.Name)
		var op, url string
		for _, kv := range ev.Attributes {
			switch kv.Key {
			case "sync.operation":
				op = kv.Value.AsString()
			case "source.url":
				url = kv.Value.AsString()
			}
		}
		applied = append(applied, [2]string{op, url})
	}
	assert.Equal(t, [][2]string{{OpAdd, activeURL}, {OpRemove, inactiveURL}}, applied)
}
