package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/shared/server/respond"
	"sentiment-dashboard/internal/shared/telemetry"
)

const pagePanicText = "Внутренняя ошибка сервера"

// Recovery turns a handler panic into a 500. API routes get the error envelope;
// pages get a plain text message. The log line carries the analysis context.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			}
			if taskID, ok := c.Get("taskId"); ok {
				fields["task_id"] = taskID
			}
			if phase, ok := c.Get("analysisPhase"); ok {
				fields["analysis_phase"] = phase
			}
			telemetry.Error("panic", fields)

			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
			} else {
				c.String(http.StatusInternalServerError, pagePanicText)
			}
			c.Abort()
		}()
		c.Next()
	}
}
