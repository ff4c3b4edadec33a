package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"sitemap-console/pkg/config"
	"sitemap-console/pkg/logging"
)

func TestNew(t *testing.T) {
	logger := logging.NewDefault()

	tests := []struct {
		cfg     *config.TelemetryConfig
		name    string
		wantErr bool
	}{
		{
			name: "disabled telemetry",
			cfg:  &config.TelemetryConfig{Enabled: false},
		},
		{
			name: "prometheus enabled",
			cfg: &config.TelemetryConfig{
				Enabled:           true,
				ServiceName:       "test-service",
				ServiceVersion:    "1.0.0",
				PrometheusEnabled: true,
				PrometheusPort:    9093,
			},
		},
		{
			name: "only metrics",
			cfg: &config.TelemetryConfig{
				Enabled:        true,
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				TracingEnabled: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tel, err := New(context.Background(), tt.cfg, logger)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tel)
			assert.NotNil(t, tel.MeterProvider())
			assert.NotNil(t, tel.TracerProvider())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, tel.Shutdown(ctx))
		})
	}
}

func TestInitMetricsWithNoopProvider(t *testing.T) {
	tel, err := New(context.Background(), &config.TelemetryConfig{}, logging.NewDefault())
	require.NoError(t, err)

	m, err := tel.InitMetrics()
	require.NoError(t, err)
	assert.NotNil(t, m.SettingsEdits)
	assert.NotNil(t, m.APIRequestDuration)

	// recording against the noop provider must not panic
	m.SettingEdited("max_url_in_memory")
	m.RecordRequest(context.Background(), "GET", 200, time.Millisecond)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SettingEdited("x")
		m.InputRejected("x")
		m.ValidationFailed("x")
		m.SiteSwitched()
		m.PageSaved("web")
		m.DocumentReloaded()
		m.RateLimited(context.Background())
		m.RevisionStored(context.Background())
		m.RecordRequest(context.Background(), "GET", 200, time.Second)
	})
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[md.Name] += dp.Value
			}
		}
	}
	return totals
}

func TestConsoleCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	tel := &Telemetry{
		cfg:           &config.TelemetryConfig{},
		meterProvider: provider,
		logger:        logging.NewDefault(),
	}
	m, err := tel.InitMetrics()
	require.NoError(t, err)

	m.SettingEdited("max_url_in_memory")
	m.SettingEdited("file_name")
	m.InputRejected("remote_access")
	m.ValidationFailed("max_url_in_memory")
	m.PageSaved("site")
	m.SiteSwitched()
	m.DocumentReloaded()
	m.RecordRequest(context.Background(), "PUT", 200, 3*time.Millisecond)
	m.RateLimited(context.Background())
	m.RevisionStored(context.Background())

	totals := collect(t, reader)
	assert.Equal(t, int64(2), totals["console.settings.edits"])
	assert.Equal(t, int64(1), totals["console.settings.rejected"])
	assert.Equal(t, int64(1), totals["console.validation.failures"])
	assert.Equal(t, int64(1), totals["console.saves"])
	assert.Equal(t, int64(1), totals["console.site.switches"])
	assert.Equal(t, int64(1), totals["console.document.reloads"])
	assert.Equal(t, int64(1), totals["console.api.requests"])
	assert.Equal(t, int64(1), totals["rate_limit.violations"])
	assert.Equal(t, int64(1), totals["storage.revisions.stored"])
}
