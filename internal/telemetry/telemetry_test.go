package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "fms", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())

	// No-op spans carry no ids.
	spanCtx, span := StartTreeSpan(ctx, "create", ItemID("x"))
	defer span.End()
	assert.Empty(t, TraceID(spanCtx))
	assert.Empty(t, SpanID(spanCtx))
}

func TestHelpersAreSafeWithoutSpan(t *testing.T) {
	ctx := context.Background()
	require.NotPanics(t, func() {
		AddEvent(ctx, "event", Path("a/b"))
		RecordError(ctx, errors.New("boom"))
		RecordError(ctx, nil)
		SetAttributes(ctx, Size(3))
	})
}

func TestSpansAreRecorded(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	setTracer(provider.Tracer(instrumentationName), true)
	t.Cleanup(func() { _, _ = Init(context.Background(), DefaultConfig()) })

	ctx, span := StartTreeSpan(context.Background(), "move", ItemID("i1"))
	assert.NotEmpty(t, TraceID(ctx))
	assert.NotEmpty(t, SpanID(ctx))

	_, child := StartStorageSpan(ctx, "fs", "move_or_rename", OldPath("a"), NewPath("b"))
	child.End()
	RecordError(ctx, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "storage.move_or_rename", ended[0].Name())
	assert.Equal(t, "tree.move", ended[1].Name())
	assert.Equal(t, ended[1].SpanContext().TraceID(), ended[0].Parent().TraceID())
	assert.Len(t, ended[1].Events(), 1)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOn")
	assert.Contains(t, sampler(0).Description(), "AlwaysOff")
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
}

func TestParseProfileType(t *testing.T) {
	for name := range profileTypes {
		_, err := parseProfileType(name)
		assert.NoError(t, err, name)
		assert.True(t, ValidProfileType(name))
	}
	_, err := parseProfileType("heap")
	assert.Error(t, err)
	assert.False(t, ValidProfileType("heap"))
}

func TestInitProfilingDisabled(t *testing.T) {
	stop, err := InitProfiling(ProfilingConfig{})
	require.NoError(t, err)
	require.NoError(t, stop())
	assert.False(t, IsProfilingEnabled())
}

func TestInitProfilingRejectsUnknownType(t *testing.T) {
	_, err := InitProfiling(ProfilingConfig{Enabled: true, ProfileTypes: []string{"nope"}})
	assert.Error(t, err)
	assert.False(t, IsProfilingEnabled())
}
