package dashboard

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/shared/server/respond"
	"sentiment-dashboard/internal/state"
	"sentiment-dashboard/internal/web"
)

// Handler serves the dashboard page, its charts and JSON summary.
type Handler struct {
	Store *state.Store
}

// NewHandler constructs a Handler.
func NewHandler(store *state.Store) *Handler {
	return &Handler{Store: store}
}

// RegisterPages attaches the HTML and chart routes.
func (h *Handler) RegisterPages(r gin.IRoutes) {
	r.GET("/dashboard", h.page)
	r.GET("/dashboard/charts/sentiment.png", h.sentimentChart)
	r.GET("/dashboard/charts/sources.png", h.sourcesChart)
}

// RegisterRoutes attaches the JSON routes to the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.summary)
}

func (h *Handler) page(c *gin.Context) {
	web.Render(c, http.StatusOK, "dashboard.html", "Дашборд", "dashboard", Summarize(h.Store.Snapshot()))
}

func (h *Handler) summary(c *gin.Context) {
	respond.OK(c, Summarize(h.Store.Snapshot()))
}

func (h *Handler) sentimentChart(c *gin.Context) {
	summary := Summarize(h.Store.Snapshot())
	var buf bytes.Buffer
	writePNG(c, &buf, RenderSentimentPie(&buf, summary.Slices))
}

func (h *Handler) sourcesChart(c *gin.Context) {
	summary := Summarize(h.Store.Snapshot())
	var buf bytes.Buffer
	writePNG(c, &buf, RenderSourcesBar(&buf, summary.Sources))
}

func writePNG(c *gin.Context, buf *bytes.Buffer, err error) {
	if err != nil {
		if errors.Is(err, ErrNoChartData) {
			respond.Error(c, http.StatusNotFound, "no_data", "no results to chart", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "chart_failed", "failed to render chart", err.Error())
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
