package telemetry

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
)

// GinMiddleware starts a server span per request. Health checks are not traced.
func GinMiddleware(serviceName string, tp *TracerProvider) gin.HandlerFunc {
	if !tp.IsEnabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(serviceName,
		otelgin.WithTracerProvider(tp.Provider()),
		otelgin.WithPropagators(otel.GetTextMapPropagator()),
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			return c.FullPath() != "/health"
		}),
	)
}
