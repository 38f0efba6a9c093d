package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/oshxona/go-food-backend/internal/config"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func tracingConfig(enabled bool) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     enabled,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: "food-backend-test",
		SampleRatio: 1.0,
	}
}

func TestSetupDisabledIsNoOp(t *testing.T) {
	restoreGlobals(t)

	prev := otel.GetTracerProvider()
	shutdown, err := Setup(context.Background(), tracingConfig(false), "v0")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Fatalf("disabled setup replaced the tracer provider")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
}

func TestSetupInstallsProviderAndPropagator(t *testing.T) {
	restoreGlobals(t)

	shutdown, err := Setup(context.Background(), tracingConfig(true), "v1")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("expected sdk tracer provider, got %T", otel.GetTracerProvider())
	}

	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	span.End()
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if len(carrier) == 0 {
		t.Fatalf("propagator injected nothing")
	}
}

func TestSetupTLSBranch(t *testing.T) {
	restoreGlobals(t)

	cfg := tracingConfig(true)
	cfg.Insecure = false
	shutdown, err := Setup(context.Background(), cfg, "v1")
	if err != nil {
		t.Fatalf("Setup with TLS: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestSetupExporterFailureLeavesGlobalsAlone(t *testing.T) {
	restoreGlobals(t)

	orig := newExporter
	defer func() { newExporter = orig }()
	newExporter = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, errors.New("collector unreachable")
	}

	prevTP := otel.GetTracerProvider()
	if _, err := Setup(context.Background(), tracingConfig(true), "v1"); err == nil {
		t.Fatalf("expected exporter error")
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatalf("failed setup replaced the tracer provider")
	}
}
