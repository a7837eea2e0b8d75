package tracing

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const defaultServiceName = "tron-balance-bot"

var newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

type settings struct {
	enabled     bool
	endpoint    string
	serviceName string
	sampleRatio float64
}

// settingsFromEnv reads TRACING_ENABLED, OTEL_EXPORTER_OTLP_ENDPOINT,
// OTEL_SERVICE_NAME and TRACING_SAMPLE_RATIO.
func settingsFromEnv() settings {
	s := settings{
		enabled:     !strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "false"),
		endpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		serviceName: strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")),
		sampleRatio: 1,
	}
	if s.endpoint == "" {
		s.endpoint = "localhost:4317"
	}
	if s.serviceName == "" {
		s.serviceName = defaultServiceName
	}
	if v := strings.TrimSpace(os.Getenv("TRACING_SAMPLE_RATIO")); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r >= 0 && r <= 1 {
			s.sampleRatio = r
		}
	}
	return s
}

// InitTracer installs the global tracer provider. With TRACING_ENABLED=false
// spans are recorded in-process only and nothing is exported.
func InitTracer(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
	s := settingsFromEnv()
	if !s.enabled {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, tp.Tracer(s.serviceName), nil
	}

	exporter, err := newTraceExporter(ctx, s.endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp exporter for %s: %w", s.endpoint, err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(s.serviceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.sampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, tp.Tracer(s.serviceName), nil
}
