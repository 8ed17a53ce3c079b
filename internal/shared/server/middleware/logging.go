package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		taskID, _ := c.Get("taskId")
		phase := ""
		if raw, ok := c.Get("analysisPhase"); ok {
			if s, ok := raw.(string); ok {
				phase = s
			}
		}

		telemetry.Info("request.complete", map[string]any{
			"request_id":     RequestIDFromContext(c),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"status":         c.Writer.Status(),
			"duration_ms":    float64(latency.Microseconds()) / 1000.0,
			"task_id":        taskID,
			"analysis_phase": phase,
			"client_ip":      c.ClientIP(),
			"user_agent":     c.Request.UserAgent(),
		})
	}
}
