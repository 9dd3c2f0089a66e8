package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewWithWriter_ServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("consulting19", "info", &buf)
	l.Info("hello")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "consulting19", entry["service"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("svc", "warn", &buf)
	l.Info("dropped")
	assert.Empty(t, buf.String())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestWithContext_AddsIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter("svc", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "corr-1")
	ctx = WithVisitorID(ctx, "visitor-9")

	traceID, _ := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	spanID, _ := trace.SpanIDFromHex("b7ad6b7169203331")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx = trace.ContextWithSpanContext(ctx, sc)

	WithContext(ctx, base).Info("enriched")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "corr-1", entry["correlation_id"])
	assert.Equal(t, "visitor-9", entry["visitor_id"])
	assert.Equal(t, traceID.String(), entry["trace_id"])
	assert.Equal(t, spanID.String(), entry["span_id"])
}

func TestFromContext_DefaultWhenMissing(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	l := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}
