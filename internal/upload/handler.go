package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sentiment-dashboard/internal/analysis"
	"sentiment-dashboard/internal/notify"
	"sentiment-dashboard/internal/shared/server/respond"
	"sentiment-dashboard/internal/shared/telemetry"
	"sentiment-dashboard/internal/state"
	"sentiment-dashboard/internal/web"
)

const (
	msgUploadTitle = "Ошибка загрузки"
	msgMissingDesc = "Выберите файл для загрузки"
)

// Flow is the analysis lifecycle the upload view drives.
type Flow interface {
	Start(ctx context.Context, fileName string, r io.Reader) (analysis.Status, error)
	Status() analysis.Status
	Reset()
}

// Notifier receives user-visible messages.
type Notifier interface {
	Error(title, description string) notify.Notification
}

// View is the upload page model.
type View struct {
	Status      analysis.Status
	MaxUploadMB int64
}

// Handler serves the upload page, the analysis API and the state endpoints.
type Handler struct {
	Flow           Flow
	Store          *state.Store
	Notes          Notifier
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(flow Flow, store *state.Store, notes Notifier, maxUploadBytes int64) *Handler {
	return &Handler{Flow: flow, Store: store, Notes: notes, MaxUploadBytes: maxUploadBytes}
}

// RegisterPages attaches the HTML routes.
func (h *Handler) RegisterPages(r gin.IRoutes) {
	r.GET("/upload", h.page)
	r.POST("/upload", h.submit)
	r.POST("/reset", h.resetPage)
}

// RegisterRoutes attaches the JSON routes to the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.create)
	rg.GET("/analyses/current", h.current)
	rg.GET("/state", h.state)
	rg.DELETE("/state", h.reset)
}

func (h *Handler) page(c *gin.Context) {
	view := View{Status: h.Flow.Status(), MaxUploadMB: h.MaxUploadBytes >> 20}
	web.Render(c, http.StatusOK, "upload.html", "Анализ", "upload", view)
}

func (h *Handler) submit(c *gin.Context) {
	_, err := h.start(c)
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/upload?started=1")
		return
	case errors.Is(err, web.ErrFileTooLarge), errors.Is(err, web.ErrFileMissing):
		h.Notes.Error(msgUploadTitle, uploadErrorText(err, h.MaxUploadBytes))
	}
	c.Redirect(http.StatusSeeOther, "/upload")
}

func (h *Handler) create(c *gin.Context) {
	status, err := h.start(c)
	if err != nil {
		switch {
		case errors.Is(err, web.ErrFileTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
		case errors.Is(err, web.ErrFileMissing):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, analysis.ErrInvalidFileType):
			respond.Error(c, http.StatusBadRequest, "invalid_file_type", "only .csv files are accepted", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "upload_failed", status.Error, err.Error())
		}
		return
	}
	respond.Accepted(c, status)
}

func (h *Handler) start(c *gin.Context) (analysis.Status, error) {
	file, header, err := web.FormFile(c, h.MaxUploadBytes)
	if err != nil {
		return analysis.Status{}, err
	}
	defer file.Close()

	uploadID := uuid.NewString()
	telemetry.Info("upload.received", map[string]any{
		"upload_id":  uploadID,
		"file":       header.Filename,
		"size_bytes": header.Size,
	})

	status, err := h.Flow.Start(c.Request.Context(), header.Filename, file)
	tag(c, status)
	if err != nil {
		telemetry.Warn("upload.rejected", map[string]any{"upload_id": uploadID, "error": err.Error()})
	}
	return status, err
}

func (h *Handler) current(c *gin.Context) {
	status := h.Flow.Status()
	tag(c, status)
	respond.OK(c, status)
}

func (h *Handler) state(c *gin.Context) {
	snap := h.Store.Snapshot()
	if snap.TaskID != "" {
		c.Set("taskId", snap.TaskID)
	}
	respond.OK(c, snap)
}

func (h *Handler) reset(c *gin.Context) {
	h.Flow.Reset()
	respond.NoContent(c)
}

func (h *Handler) resetPage(c *gin.Context) {
	h.Flow.Reset()
	c.Redirect(http.StatusSeeOther, "/")
}

func tag(c *gin.Context, status analysis.Status) {
	if status.TaskID != "" {
		c.Set("taskId", status.TaskID)
	}
	c.Set("analysisPhase", string(status.Phase))
}

func uploadErrorText(err error, maxBytes int64) string {
	if errors.Is(err, web.ErrFileTooLarge) {
		return "Максимальный размер файла: " + strconv.FormatInt(maxBytes>>20, 10) + " МБ"
	}
	return msgMissingDesc
}
