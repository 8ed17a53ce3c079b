package validation

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/backend"
	"sentiment-dashboard/internal/notify"
	"sentiment-dashboard/internal/shared/metrics"
	"sentiment-dashboard/internal/shared/server/respond"
	"sentiment-dashboard/internal/shared/telemetry"
	"sentiment-dashboard/internal/shared/util"
	"sentiment-dashboard/internal/web"
)

const (
	msgInvalidFileTitle = "Неверный формат файла"
	msgInvalidFileDesc  = "Пожалуйста, загрузите CSV файл"
	msgDoneTitle        = "Валидация завершена"
	msgFailedTitle      = "Ошибка валидации"
	msgFailedDesc       = "Проверьте формат файла"
)

// Validator scores labeled data against the model.
type Validator interface {
	Validate(ctx context.Context, fileName string, r io.Reader) (backend.ValidationMetrics, error)
}

// Notifier receives user-visible messages.
type Notifier interface {
	Info(title, description string) notify.Notification
	Error(title, description string) notify.Notification
}

// View is the validation page model. Report is nil until a run succeeds.
type View struct {
	FileName string
	Report   *Report
	Error    string
}

// Handler serves the validation page and API. Results are never stored.
type Handler struct {
	Validator      Validator
	Notes          Notifier
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(v Validator, notes Notifier, maxUploadBytes int64) *Handler {
	return &Handler{Validator: v, Notes: notes, MaxUploadBytes: maxUploadBytes}
}

// RegisterPages attaches the HTML routes.
func (h *Handler) RegisterPages(r gin.IRoutes) {
	r.GET("/validation", h.page)
	r.POST("/validation", h.submit)
}

// RegisterRoutes attaches the JSON routes to the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/validation", h.create)
}

type failure struct {
	status  int
	code    string
	message string
}

func (h *Handler) page(c *gin.Context) {
	web.Render(c, http.StatusOK, "validation.html", "Валидация", "validation", View{})
}

func (h *Handler) submit(c *gin.Context) {
	report, fileName, fail := h.run(c)
	if fail != nil {
		web.Render(c, fail.status, "validation.html", "Валидация", "validation", View{FileName: fileName, Error: fail.message})
		return
	}
	web.Render(c, http.StatusOK, "validation.html", "Валидация", "validation", View{FileName: fileName, Report: &report})
}

func (h *Handler) create(c *gin.Context) {
	report, _, fail := h.run(c)
	if fail != nil {
		respond.Error(c, fail.status, fail.code, fail.message, nil)
		return
	}
	respond.OK(c, report)
}

func (h *Handler) run(c *gin.Context) (Report, string, *failure) {
	file, header, err := web.FormFile(c, h.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, web.ErrFileTooLarge) {
			return Report{}, "", &failure{status: http.StatusRequestEntityTooLarge, code: "file_too_large", message: err.Error()}
		}
		return Report{}, "", &failure{status: http.StatusBadRequest, code: "validation_error", message: err.Error()}
	}
	defer file.Close()

	name := header.Filename
	if !util.HasExtension(name, ".csv") {
		h.Notes.Error(msgInvalidFileTitle, msgInvalidFileDesc)
		return Report{}, name, &failure{status: http.StatusBadRequest, code: "invalid_file_type", message: msgInvalidFileDesc}
	}
	if clean, err := util.SanitizeFileName(name); err == nil {
		name = clean
	}

	m, err := h.Validator.Validate(c.Request.Context(), name, file)
	if err != nil {
		detail := backend.Detail(err)
		if detail == "" {
			detail = msgFailedDesc
		}
		metrics.IncValidation(true)
		telemetry.Warn("validation.failed", map[string]any{"file": name, "error": err.Error()})
		h.Notes.Error(msgFailedTitle, detail)
		return Report{}, name, &failure{status: http.StatusBadGateway, code: "validation_failed", message: detail}
	}

	report := BuildReport(m)
	metrics.IncValidation(false)
	telemetry.Info("validation.completed", map[string]any{"file": name, "macro_f1": m.MacroF1})
	h.Notes.Info(msgDoneTitle, "Macro-F1: "+report.Score)
	return report, name, nil
}
