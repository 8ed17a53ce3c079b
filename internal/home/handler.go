package home

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/state"
	"sentiment-dashboard/internal/web"
)

// View is the landing page model.
type View struct {
	HasResults bool
	TaskID     string
}

type Handler struct {
	Store *state.Store
}

func NewHandler(store *state.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterPages(r gin.IRoutes) {
	r.GET("/", h.page)
}

func (h *Handler) page(c *gin.Context) {
	snap := h.Store.Snapshot()
	web.Render(c, http.StatusOK, "home.html", "Главная", "home", View{HasResults: snap.HasResults(), TaskID: snap.TaskID})
}
