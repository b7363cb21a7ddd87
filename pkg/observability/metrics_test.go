package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestAuthMetrics_Record(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := NewAuthMetrics(provider.Meter("test"))
	require.NoError(t, err)

	m.Record(ctx, "password_login", OutcomeSuccess, time.Now())
	m.Record(ctx, "password_login", "invalid_credentials", time.Now())
	m.Record(ctx, "password_login", "invalid_credentials", time.Now())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.NotEmpty(t, rm.ScopeMetrics)

	var counted int64
	for _, metrics := range rm.ScopeMetrics[0].Metrics {
		sum, ok := metrics.Data.(metricdata.Sum[int64])
		if !ok {
			continue
		}
		for _, dp := range sum.DataPoints {
			counted += dp.Value
		}
	}
	assert.Equal(t, int64(3), counted)
}

func TestAuthMetrics_NilIsNoop(t *testing.T) {
	var m *AuthMetrics
	assert.NotPanics(t, func() {
		m.Record(context.Background(), "flow", OutcomeSuccess, time.Now())
	})
}

func TestPrometheusHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	_, handler, err := InitTelemetry()
	require.NoError(t, err)

	router := gin.New()
	router.GET("/metrics", PrometheusHandler(handler))
	router.GET("/missing", PrometheusHandler(nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
