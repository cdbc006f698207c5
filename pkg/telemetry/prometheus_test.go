package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/datatable"
)

func TestPrometheusCountsEventsByResource(t *testing.T) {
	reg := prometheus.NewRegistry()
	var buf bytes.Buffer
	logger := NewLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	rec, err := NewPrometheus(PrometheusOptions{Registerer: reg, Next: logger})
	require.NoError(t, err)

	ctx := context.Background()
	rec.Record(ctx, "admin.query", map[string]any{"resource": "shopify-orders"})
	rec.Record(ctx, "admin.query", map[string]any{"resource": "shopify-orders"})
	rec.Record(ctx, "admin.export", map[string]any{"resource": "pinterest-pins", "format": "csv"})
	rec.Record(ctx, "cards.created", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.Counter().WithLabelValues("admin.query", "shopify-orders")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Counter().WithLabelValues("admin.export", "pinterest-pins")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Counter().WithLabelValues("cards.created", "")))
	assert.Contains(t, buf.String(), "telemetry admin.export")
	assert.Contains(t, buf.String(), "format=csv")
}

func TestPrometheusReusesRegisteredCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheus(PrometheusOptions{Registerer: reg})
	require.NoError(t, err)
	second, err := NewPrometheus(PrometheusOptions{Registerer: reg})
	require.NoError(t, err)

	first.Record(context.Background(), "admin.seed", map[string]any{"resource": "design-library"})
	assert.Equal(t, 1.0, testutil.ToFloat64(second.Counter().WithLabelValues("admin.seed", "design-library")))
}

func TestPrometheusAsServiceTelemetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheus(PrometheusOptions{Registerer: reg})
	require.NoError(t, err)

	svc := admin.NewService(admin.Options{Telemetry: rec})
	require.NoError(t, svc.Seed(context.Background(), admin.DesignLibrary, []datatable.Entity{{"id": "d1"}}))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Counter().WithLabelValues("admin.seed", "design-library")))
}
