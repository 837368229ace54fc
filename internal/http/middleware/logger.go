package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Logger(l zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		// Provider callbacks identify the lead by query string; keep it on the line
		// so request logs can be joined with call sids.
		leadID := c.Query("customer_id")
		if leadID == "" {
			leadID = c.Query("cid")
		}

		evt := l.Info()
		if status >= 500 {
			evt = l.Error()
		}
		rid := c.GetString(RequestIDHeader)
		evt.
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("lead_id", leadID).
			Int("status", status).
			Dur("latency", latency).
			Msg("request")
	}
}
