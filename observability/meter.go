package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/interviewd/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds metric instruments for interview service observability.
type Metrics struct {
	sessionTotal        metric.Int64Counter
	sessionActive       metric.Int64UpDownCounter
	turnTotal           metric.Int64Counter
	adapterCallTotal    metric.Int64Counter
	adapterCallDuration metric.Float64Histogram
	errorTotal          metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	sessionTotal, err := meter.Int64Counter("session.total",
		metric.WithDescription("Total number of interview sessions by final status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session.total counter: %w", err)
	}

	sessionActive, err := meter.Int64UpDownCounter("session.active",
		metric.WithDescription("Number of currently running interview sessions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session.active gauge: %w", err)
	}

	turnTotal, err := meter.Int64Counter("turn.total",
		metric.WithDescription("Total number of completed question/answer turns"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating turn.total counter: %w", err)
	}

	adapterCallTotal, err := meter.Int64Counter("adapter.call.total",
		metric.WithDescription("Total number of upstream adapter calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating adapter.call.total counter: %w", err)
	}

	adapterCallDuration, err := meter.Float64Histogram("adapter.call.duration",
		metric.WithDescription("Duration of upstream adapter calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating adapter.call.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		sessionTotal:        sessionTotal,
		sessionActive:       sessionActive,
		turnTotal:           turnTotal,
		adapterCallTotal:    adapterCallTotal,
		adapterCallDuration: adapterCallDuration,
		errorTotal:          errorTotal,
	}, nil
}

// RecordSessionStart increments the active session count.
func (m *Metrics) RecordSessionStart(ctx context.Context) {
	m.sessionActive.Add(ctx, 1)
}

// RecordSessionEnd decrements active sessions and records the session by final status.
func (m *Metrics) RecordSessionEnd(ctx context.Context, status string) {
	m.sessionActive.Add(ctx, -1)
	m.sessionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordTurn records a completed question/answer turn.
func (m *Metrics) RecordTurn(ctx context.Context) {
	m.turnTotal.Add(ctx, 1)
}

// RecordAdapterCall records an upstream adapter call.
func (m *Metrics) RecordAdapterCall(ctx context.Context, service, operation, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.adapterCallTotal.Add(ctx, 1, attrs)
	m.adapterCallDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
