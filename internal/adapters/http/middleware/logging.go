package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-circulation/internal/adapters/http/dto"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
)

// probePrefix marks health and metrics routes, which are never logged.
const probePrefix = "/-/"

// Logging returns middleware that logs every API request on start and
// completion. Failed requests carry the circulation error kind set by
// dto.HandleError.
func Logging(logger *slog.Logger) gin.HandlerFunc {
	return LoggingWithSkipPaths(logger, nil)
}

// LoggingWithSkipPaths is Logging with extra exact paths left unlogged.
func LoggingWithSkipPaths(_ *slog.Logger, skipPaths []string) gin.HandlerFunc {
	skipMap := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skipMap[path] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, skip := skipMap[path]; skip || strings.HasPrefix(path, probePrefix) {
			c.Next()
			return
		}

		start := time.Now()

		if c.Request.URL.RawQuery != "" {
			path += "?" + c.Request.URL.RawQuery
		}

		// Enriched with request_id and correlation_id by the ID middleware.
		ctxLogger := logging.FromContext(c.Request.Context())

		ctxLogger.Info("request started",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int64("latency_ms", latency.Milliseconds()),
			slog.Int("bytes", c.Writer.Size()),
		}

		if kind := c.GetString(dto.ErrorKindKey); kind != "" {
			attrs = append(attrs, slog.String("error_kind", kind))
		}

		ctxLogger.Log(c.Request.Context(), levelForStatus(status), "request completed", attrs...)
	}
}

// levelForStatus logs 5xx at error, 4xx at warn and the rest at info.
func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
