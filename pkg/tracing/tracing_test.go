package tracing

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracer_DisabledInstallsPropagator(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), Config{ServiceName: "consulting19"})
	if err != nil {
		t.Fatalf("InitTracer(disabled) returned error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown(disabled) returned error: %v", err)
	}

	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected traceparent in propagator fields, got %v", fields)
	}
}

func TestInitTracer_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := InitTracer(context.Background(), Config{
		ServiceName:  "consulting19",
		Environment:  "test",
		OTLPEndpoint: "127.0.0.1:1",
		SampleRate:   0.5,
		Enabled:      true,
	})
	if err != nil {
		t.Fatalf("InitTracer(enabled) returned error: %v", err)
	}

	_, span := Tracer("test").Start(context.Background(), "op")
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestSampler(t *testing.T) {
	cases := map[float64]string{
		1:    "AlwaysOnSampler",
		2:    "AlwaysOnSampler",
		0:    "AlwaysOffSampler",
		-1:   "AlwaysOffSampler",
		0.25: "TraceIDRatioBased",
	}
	for rate, want := range cases {
		desc := Sampler(rate).Description()
		if !strings.HasPrefix(desc, "ParentBased") || !strings.Contains(desc, want) {
			t.Errorf("Sampler(%v) = %q, want ParentBased with %s", rate, desc, want)
		}
	}
}
