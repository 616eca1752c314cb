package middleware

import (
	"time"

	ct "thingstodo/pkg/context"
	"thingstodo/pkg/logger"
	"thingstodo/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func LoggingMiddleware(log *logger.LokiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		ctx := c.Request.Context()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", ct.RequestID(ctx)),
			zap.String("service", log.ServiceName),
			zap.String("trace_id", tracing.GetTraceID(ctx)),
			zap.String("span_id", tracing.GetSpanID(ctx)),
		}

		log.Logger.Ctx(ctx).Info("HTTP Request", fields...)

		if log.PushEnabled() {
			go log.Push(trace.SpanContextFromContext(ctx), zapcore.InfoLevel, "HTTP Request", fields)
		}
	}
}
