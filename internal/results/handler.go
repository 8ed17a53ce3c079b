package results

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/backend"
	"sentiment-dashboard/internal/shared/server/respond"
	"sentiment-dashboard/internal/shared/telemetry"
	"sentiment-dashboard/internal/state"
	"sentiment-dashboard/internal/web"
)

// Downloader streams a task's results CSV.
type Downloader interface {
	Download(ctx context.Context, taskID string, w io.Writer) error
}

// Handler serves the results table and the CSV download proxy.
type Handler struct {
	Store      *state.Store
	Downloader Downloader
}

// NewHandler constructs a Handler.
func NewHandler(store *state.Store, downloader Downloader) *Handler {
	return &Handler{Store: store, Downloader: downloader}
}

// RegisterPages attaches the HTML routes.
func (h *Handler) RegisterPages(r gin.IRoutes) {
	r.GET("/results", h.page)
	r.GET("/results/download", h.download)
}

// RegisterRoutes attaches the JSON routes to the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/results", h.list)
}

func (h *Handler) page(c *gin.Context) {
	view := BuildView(h.Store.Snapshot(), ParseQuery(c.Request.URL.Query()))
	web.Render(c, http.StatusOK, "results.html", "Результаты", "results", view)
}

func (h *Handler) list(c *gin.Context) {
	snap := h.Store.Snapshot()
	if snap.TaskID != "" {
		c.Set("taskId", snap.TaskID)
	}
	respond.OK(c, BuildView(snap, ParseQuery(c.Request.URL.Query())))
}

func (h *Handler) download(c *gin.Context) {
	taskID := h.Store.Snapshot().TaskID
	if taskID == "" {
		respond.Error(c, http.StatusNotFound, "not_found", "no analysis to download", nil)
		return
	}
	c.Set("taskId", taskID)

	out := &attachmentWriter{w: c.Writer, fileName: "results.csv"}
	err := h.Downloader.Download(c.Request.Context(), taskID, out)
	if err == nil {
		out.start()
		return
	}
	if out.started {
		telemetry.Warn("results.download_interrupted", map[string]any{"task_id": taskID, "error": err.Error()})
		return
	}

	var httpErr *backend.HTTPError
	switch {
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound:
		respond.Error(c, http.StatusNotFound, "not_ready", backend.Detail(err), nil)
	default:
		respond.Error(c, http.StatusBadGateway, "download_failed", "failed to download results", err.Error())
	}
}

// attachmentWriter sends CSV attachment headers on the first write so an
// upstream failure can still produce an error response.
type attachmentWriter struct {
	w        gin.ResponseWriter
	fileName string
	started  bool
}

func (a *attachmentWriter) start() {
	if a.started {
		return
	}
	a.started = true
	h := a.w.Header()
	h.Set("Content-Type", "text/csv; charset=utf-8")
	h.Set("Content-Disposition", `attachment; filename="`+a.fileName+`"`)
	a.w.WriteHeader(http.StatusOK)
}

func (a *attachmentWriter) Write(p []byte) (int, error) {
	a.start()
	return a.w.Write(p)
}
