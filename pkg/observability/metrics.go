package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// Outcome label used for successful authentication calls.
const OutcomeSuccess = "success"

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler == nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
			return
		}
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// AuthMetrics counts authentication outcomes per flow. A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	outcomes otelmetric.Int64Counter
	latency  otelmetric.Float64Histogram
}

// NewAuthMetrics registers the authentication instruments on meter.
func NewAuthMetrics(meter otelmetric.Meter) (*AuthMetrics, error) {
	outcomes, err := meter.Int64Counter("identity.auth.outcomes",
		otelmetric.WithDescription("Authentication and session checks by flow and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outcome counter: %w", err)
	}

	latency, err := meter.Float64Histogram("identity.auth.duration",
		otelmetric.WithDescription("Duration of authentication calls"),
		otelmetric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &AuthMetrics{outcomes: outcomes, latency: latency}, nil
}

// Record adds one observation for flow with the given outcome label.
func (m *AuthMetrics) Record(ctx context.Context, flow, outcome string, started time.Time) {
	if m == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("outcome", outcome),
	)
	m.outcomes.Add(ctx, 1, attrs)
	m.latency.Record(ctx, time.Since(started).Seconds(), attrs)
}
