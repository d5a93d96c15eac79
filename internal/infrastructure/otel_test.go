package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(config.Default().OTel, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider, "tracing is off by default")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelDisabled(t *testing.T) {
	cfg := config.Default().OTel
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordConversionMetrics(context.Background(), metrics, ConversionObservation{Source: "heuristic", Outcome: "success"})
}

func TestOTelUnsupportedExporter(t *testing.T) {
	cfg := config.Default().OTel
	cfg.MetricExporter = "statsd"
	_, err := InitializeOTel(cfg, quietLogger())
	assert.ErrorContains(t, err, "unsupported metric exporter")

	cfg = config.Default().OTel
	cfg.EnableTracing = true
	cfg.TraceExporter = "jaeger"
	_, err = InitializeOTel(cfg, quietLogger())
	assert.ErrorContains(t, err, "unsupported trace exporter")
}

func TestTraceCorrelation(t *testing.T) {
	cfg := config.Default().OTel
	cfg.EnableTracing = true
	cfg.TraceExporter = "stdout"
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.Len(t, traceID, 32)
	assert.True(t, span.IsRecording())

	AddSpanEvent(ctx, "checkpoint")
	RecordError(ctx, errors.New("boom"))
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(config.Default().OTel, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	RecordConversionMetrics(context.Background(), metrics, ConversionObservation{
		Source:   "heuristic",
		Outcome:  "success",
		Duration: 250 * time.Millisecond,
		Tables:   2,
		Records:  7,
		Bytes:    4096,
	})
	RecordExtractionError(context.Background(), metrics, "llamaparse")

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "documents_processed_total")
	assert.Contains(t, body, "records_extracted_total")
	assert.Contains(t, body, "extraction_errors_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestRecordConversionMetricsNil(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordConversionMetrics(context.Background(), nil, ConversionObservation{})
		RecordExtractionError(context.Background(), nil, "gemini")
	})
}
