package respond

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestJSONHelpersAreUncacheable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		write  func(*gin.Context)
		status int
		body   string
	}{
		{name: "ok", write: func(c *gin.Context) { OK(c, gin.H{"ok": true}) }, status: http.StatusOK, body: `{"ok":true}`},
		{name: "accepted", write: func(c *gin.Context) { Accepted(c, gin.H{"phase": "polling"}) }, status: http.StatusAccepted, body: `{"phase":"polling"}`},
		{name: "no content", write: NoContent, status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", tt.write)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
			if got := resp.Header().Get("Cache-Control"); got != "no-store" {
				t.Fatalf("expected no-store, got %q", got)
			}
			if resp.Body.String() != tt.body {
				t.Fatalf("unexpected body %q", resp.Body.String())
			}
		})
	}
}
