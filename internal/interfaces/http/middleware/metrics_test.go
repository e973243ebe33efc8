package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estatehub/backend/internal/infrastructure/config"
	"github.com/estatehub/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func newMeteredRouter(t *testing.T, enabled bool) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProvider(context.Background(), config.TelemetryConfig{
		MetricsEnabled: enabled,
		ServiceName:    "estatehub-test",
	}, zaptest.NewLogger(t), telemetry.WithMetricReader(reader))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(HTTPMetrics(mp))
	router.GET("/properties/:id", func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	})
	return router, reader
}

func TestHTTPMetrics_RecordsPerRouteTemplate(t *testing.T) {
	router, reader := newMeteredRouter(t, true)
	for _, path := range []string{"/properties/a", "/properties/b", "/properties/missing", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	var durations int
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "http_server_request_total":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
					status, _ := dp.Attributes.Value(telemetry.AttrHTTPStatusCode)
					counts[route.AsString()+" "+status.Emit()] += dp.Value
				}
			case "http_server_request_duration_seconds":
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				durations = len(hist.DataPoints)
			}
		}
	}

	assert.Equal(t, map[string]int64{
		"/properties/:id 200": 2,
		"/properties/:id 404": 1,
		"unknown 404":         1,
	}, counts)
	assert.Equal(t, 2, durations)
}

func TestHTTPMetrics_DisabledPassesThrough(t *testing.T) {
	router, reader := newMeteredRouter(t, false)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties/a", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var rm metricdata.ResourceMetrics
	// the reader was never registered with a provider
	assert.Error(t, reader.Collect(context.Background(), &rm))
}
