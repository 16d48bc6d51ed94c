package middleware

import (
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/logger"

	"github.com/gin-gonic/gin"
)

// Logger logs one line per request and wraps it in a span when tracing
// is enabled. Detailed logging adds the route, query and response size.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := logger.StartSpan(c.Request.Context(), c.Request.Method+" "+c.FullPath())
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if logger.IsDebugEnabled() {
			args = append(args, "route", c.FullPath(), "query", c.Request.URL.RawQuery, "bytes", c.Writer.Size())
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error(ctx, "request", args...)
		case c.Writer.Status() >= 400:
			logger.Warn(ctx, "request", args...)
		default:
			logger.Info(ctx, "request", args...)
		}
	}
}
