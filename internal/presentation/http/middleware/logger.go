package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/metrics"
	"github.com/sangkips/invoicer-api/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// LoggerMiddleware tags each request with an id, puts a request-scoped logger
// in the request context and writes one access log line per request.
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(logger.WithLogger(ctx, log))

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		// c.Request carries the user id once AuthMiddleware has run.
		reqLog := log.WithContext(c.Request.Context())
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
		}

		switch {
		case len(c.Errors) > 0:
			reqLog.Errorw("request failed", append(fields, "errors", c.Errors.String())...)
		case status >= 500:
			reqLog.Errorw("request failed", fields...)
		default:
			reqLog.Infow("request", fields...)
		}
	}
}
