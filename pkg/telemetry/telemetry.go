// Package telemetry wires up the Prometheus and OpenTelemetry exporters
// and the console counters.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sitemap-console/pkg/config"
	"sitemap-console/pkg/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Telemetry holds telemetry providers and exporters
type Telemetry struct {
	cfg                *config.TelemetryConfig
	meterProvider      metric.MeterProvider
	tracerProvider     trace.TracerProvider
	prometheusExporter *prometheus.Exporter
	prometheusServer   *http.Server
	logger             *logging.Logger
}

// Metrics holds all console metrics
type Metrics struct {
	// Setting activity
	SettingsEdits      metric.Int64Counter
	SettingsRejected   metric.Int64Counter
	ValidationFailures metric.Int64Counter

	// Console activity
	Saves           metric.Int64Counter
	SiteSwitches    metric.Int64Counter
	DocumentReloads metric.Int64Counter

	// API metrics
	APIRequests         metric.Int64Counter
	APIRequestDuration  metric.Float64Histogram
	RateLimitViolations metric.Int64Counter

	// Storage metrics
	RevisionsStored metric.Int64Counter
}

// New creates a new telemetry instance
func New(ctx context.Context, cfg *config.TelemetryConfig, logger *logging.Logger) (*Telemetry, error) {
	if !cfg.Enabled {
		logger.Info("Telemetry disabled")
		return &Telemetry{
			cfg:            cfg,
			meterProvider:  noop.NewMeterProvider(),
			tracerProvider: tracenoop.NewTracerProvider(),
			logger:         logger,
		}, nil
	}

	t := &Telemetry{
		cfg:    cfg,
		logger: logger,
	}

	// Create resource with service information
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Setup metrics
	if err := t.setupMetrics(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to setup metrics: %w", err)
	}

	// Setup tracing if enabled
	if cfg.TracingEnabled {
		if err := t.setupTracing(ctx, res); err != nil {
			return nil, fmt.Errorf("failed to setup tracing: %w", err)
		}
	} else {
		t.tracerProvider = tracenoop.NewTracerProvider()
	}

	logger.Info("Telemetry initialized",
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"prometheus", cfg.PrometheusEnabled,
		"tracing", cfg.TracingEnabled,
	)

	return t, nil
}

// setupMetrics initializes the metrics provider
func (t *Telemetry) setupMetrics(ctx context.Context, res *resource.Resource) error {
	if t.cfg.PrometheusEnabled {
		// Create Prometheus exporter
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		// Store the exporter for use in HTTP handler
		t.prometheusExporter = exporter

		// Create meter provider
		provider := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		t.meterProvider = provider
		otel.SetMeterProvider(provider)

		// Start Prometheus HTTP server
		if err := t.startPrometheusServer(); err != nil {
			return fmt.Errorf("failed to start prometheus server: %w", err)
		}

		t.logger.Info("Prometheus metrics enabled", "port", t.cfg.PrometheusPort)
	} else {
		t.meterProvider = noop.NewMeterProvider()
	}

	return nil
}

// setupTracing initializes the tracer provider
func (t *Telemetry) setupTracing(ctx context.Context, res *resource.Resource) error {
	// For now, we'll use a no-op tracer
	// In production, you would configure OTLP exporter here
	t.tracerProvider = tracenoop.NewTracerProvider()
	otel.SetTracerProvider(t.tracerProvider)

	t.logger.Info("Tracing enabled", "endpoint", t.cfg.TracingEndpoint)
	return nil
}

// startPrometheusServer starts the Prometheus metrics HTTP server
func (t *Telemetry) startPrometheusServer() error {
	mux := http.NewServeMux()

	// Use promhttp.Handler() to serve Prometheus metrics
	// This works with the OpenTelemetry Prometheus exporter
	mux.Handle("/metrics", promhttp.Handler())

	t.prometheusServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.cfg.PrometheusPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
	}

	go func() {
		if err := t.prometheusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.logger.Error("Prometheus server failed", "error", err)
		}
	}()

	return nil
}

type counterSpec struct {
	dst         *metric.Int64Counter
	name        string
	description string
}

// InitMetrics initializes and returns all console metrics
func (t *Telemetry) InitMetrics() (*Metrics, error) {
	meter := t.meterProvider.Meter("sitemap-console")
	m := &Metrics{}

	counters := []counterSpec{
		{&m.SettingsEdits, "console.settings.edits", "Number of accepted setting edits"},
		{&m.SettingsRejected, "console.settings.rejected", "Number of setting edits rejected by a rule or the control"},
		{&m.ValidationFailures, "console.validation.failures", "Number of edits that failed validation"},
		{&m.Saves, "console.saves", "Number of pages saved"},
		{&m.SiteSwitches, "console.site.switches", "Number of site switches"},
		{&m.DocumentReloads, "console.document.reloads", "Number of settings document reloads"},
		{&m.APIRequests, "console.api.requests", "Number of API requests"},
		{&m.RateLimitViolations, "rate_limit.violations", "Number of API requests refused by the rate limiter"},
		{&m.RevisionsStored, "storage.revisions.stored", "Number of document revisions recorded"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.dst = counter
	}

	duration, err := meter.Float64Histogram(
		"console.api.duration",
		metric.WithDescription("API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api duration histogram: %w", err)
	}
	m.APIRequestDuration = duration

	return m, nil
}

// MeterProvider returns the meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// TracerProvider returns the tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// SettingEdited counts an accepted edit of the setting called name.
func (m *Metrics) SettingEdited(name string) {
	if m != nil && m.SettingsEdits != nil {
		m.SettingsEdits.Add(context.Background(), 1, metric.WithAttributes(attribute.String("setting", name)))
	}
}

// InputRejected counts an edit refused by a rule or a control.
func (m *Metrics) InputRejected(name string) {
	if m != nil && m.SettingsRejected != nil {
		m.SettingsRejected.Add(context.Background(), 1, metric.WithAttributes(attribute.String("setting", name)))
	}
}

// ValidationFailed counts an edit that failed validation.
func (m *Metrics) ValidationFailed(name string) {
	if m != nil && m.ValidationFailures != nil {
		m.ValidationFailures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("setting", name)))
	}
}

// SiteSwitched counts a site switch.
func (m *Metrics) SiteSwitched() {
	if m != nil && m.SiteSwitches != nil {
		m.SiteSwitches.Add(context.Background(), 1)
	}
}

// PageSaved counts a save of page.
func (m *Metrics) PageSaved(page string) {
	if m != nil && m.Saves != nil {
		m.Saves.Add(context.Background(), 1, metric.WithAttributes(attribute.String("page", page)))
	}
}

// DocumentReloaded counts a reload of the settings document.
func (m *Metrics) DocumentReloaded() {
	if m != nil && m.DocumentReloads != nil {
		m.DocumentReloads.Add(context.Background(), 1)
	}
}

// RecordRequest records one API request.
func (m *Metrics) RecordRequest(ctx context.Context, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Int("status", status),
	)
	if m.APIRequests != nil {
		m.APIRequests.Add(ctx, 1, attrs)
	}
	if m.APIRequestDuration != nil {
		m.APIRequestDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}
}

// RateLimited counts a request refused by the rate limiter.
func (m *Metrics) RateLimited(ctx context.Context) {
	if m != nil && m.RateLimitViolations != nil {
		m.RateLimitViolations.Add(ctx, 1)
	}
}

// RevisionStored counts a recorded document revision.
func (m *Metrics) RevisionStored(ctx context.Context) {
	if m != nil && m.RevisionsStored != nil {
		m.RevisionsStored.Add(ctx, 1)
	}
}

// Shutdown gracefully shuts down telemetry
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	// Shutdown Prometheus server
	if t.prometheusServer != nil {
		if err := t.prometheusServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("prometheus server shutdown: %w", err))
		}
	}

	// Shutdown meter provider if it's the SDK implementation
	if provider, ok := t.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}

	t.logger.Info("Telemetry shut down")
	return nil
}
