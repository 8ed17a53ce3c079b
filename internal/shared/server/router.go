package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/shared/config"
	"sentiment-dashboard/internal/shared/metrics"
	"sentiment-dashboard/internal/shared/server/middleware"
	"sentiment-dashboard/internal/shared/server/respond"
	"sentiment-dashboard/internal/web"
)

// PageHandler serves HTML routes.
type PageHandler interface {
	RegisterPages(r gin.IRoutes)
}

// APIHandler serves JSON routes under /api/v1.
type APIHandler interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config config.Config
	Pages  []PageHandler
	APIs   []APIHandler
}

// DefaultRateLimits throttles uploads harder than status polling.
var DefaultRateLimits = map[string]middleware.RateLimitRule{
	middleware.RateGroupUpload:  {Rate: 0.5, Burst: 5},
	middleware.RateGroupStatus:  {Rate: 5, Burst: 20},
	middleware.RateGroupDefault: {Rate: 20, Burst: 60},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    DefaultRateLimits,
			GroupFor: middleware.GroupForRoute,
		}),
	)

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", web.Static())
	r.GET("/metrics", metrics.Handler())

	for _, h := range deps.Pages {
		if h != nil {
			h.RegisterPages(r)
		}
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	for _, h := range deps.APIs {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r, nil
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
