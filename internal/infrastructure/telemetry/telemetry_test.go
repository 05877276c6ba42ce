package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/ceemowww/comtrack2/internal/infrastructure/telemetry"
		"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{Enabled: false}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := telemetry.NewLoggerProvider(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, lp.Core(zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestStartServiceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	paymentID := uuid.New()
	_, span := telemetry.StartServiceSpan(context.Background(), "allocation", "allocate",
		telemetry.SpanAttrPaymentID, paymentID,
		telemetry.SpanAttrAmount, decimal.RequireFromString("12.50"),
	)
	telemetry.RecordError(span, errors.New("exceeds balance"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "allocation.allocate", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, paymentID.String(), attrs[telemetry.SpanAttrPaymentID])
	assert.Equal(t, "12.5", attrs[telemetry.SpanAttrAmount])
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewLedgerMetrics(nil)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Equal(t, "NewLedgerMetrics: meter cannot be nil", err.Error())
}

func TestLedgerMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := telemetry.NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	m.RecordAllocation(ctx, tenantID, "partially_allocated", decimal.RequireFromString("40"))
	m.RecordAllocation(ctx, tenantID, "fully_allocated", decimal.RequireFromString("60"))
	m.RecordPayment(ctx, tenantID)
	m.RecordRejection(ctx, tenantID, "ALLOCATION_EXCEEDS_BALANCE")
	m.ObserveAllocation(ctx, "manual", 20*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	found := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			found[metric.Name] = metric.Data
		}
	}

	allocations, ok := found["comtrack_allocations_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	var count int64
	for _, dp := range allocations.DataPoints {
		count += dp.Value
	}
	assert.Equal(t, int64(2), count)

	amount, ok := found["comtrack_allocated_amount_total"].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, amount.DataPoints, 1)
	assert.InDelta(t, 100.0, amount.DataPoints[0].Value, 0.0001)

	assert.Contains(t, found, "comtrack_payments_recorded_total")
	assert.Contains(t, found, "comtrack_allocation_rejections_total")
	assert.Contains(t, found, "comtrack_allocation_duration_seconds")
}

func TestLedgerMetrics_NoopMeter(t *testing.T) {
	m, err := telemetry.NewLedgerMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordAllocation(context.Background(), uuid.New(), "unallocated", decimal.Zero)
	})
}

func TestInstrumentDB_SkippedWhenDisabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, telemetry.InstrumentDB(db, config.TelemetryConfig{Enabled: true, DBTraceEnabled: false}))
	assert.Empty(t, db.Config.Plugins)

	require.NoError(t, telemetry.InstrumentDB(db, config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}))
	assert.Len(t, db.Config.Plugins, 1)
}
