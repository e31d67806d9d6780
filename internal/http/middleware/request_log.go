package middleware

import (
	"log/slog"
	"time"

	"github.com/benisnotitdog/task-manager-api/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs HTTP request/response metadata.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.String("client_ip", c.ClientIP()),
			slog.String("latency", time.Since(start).String()),
		}
		if uid, ok := c.Get("user_id"); ok {
			attrs = append(attrs, slog.Any("user_id", uid))
		}

		log := logger.WithContext(c.Request.Context())
		if status >= 500 {
			log.Error("http request", attrs...)
			return
		}
		log.Info("http request", attrs...)
	}
}
