package notify

import (
	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/shared/server/respond"
)

// Handler exposes the feed to the page script.
type Handler struct {
	Feed *Feed
}

func NewHandler(feed *Feed) *Handler {
	return &Handler{Feed: feed}
}

// RegisterRoutes attaches the JSON routes to the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.drain)
}

func (h *Handler) drain(c *gin.Context) {
	respond.OK(c, gin.H{"notifications": h.Feed.Drain()})
}
