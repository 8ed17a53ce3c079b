package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/analysis"
	"sentiment-dashboard/internal/backend"
	"sentiment-dashboard/internal/notify"
	"sentiment-dashboard/internal/state"
	"sentiment-dashboard/internal/web"
)

type fakeFlow struct {
	status   analysis.Status
	err      error
	fileName string
	body     string
	resets   int
}

func (f *fakeFlow) Start(_ context.Context, fileName string, r io.Reader) (analysis.Status, error) {
	f.fileName = fileName
	b, _ := io.ReadAll(r)
	f.body = string(b)
	return f.status, f.err
}

func (f *fakeFlow) Status() analysis.Status { return f.status }

func (f *fakeFlow) Reset() { f.resets++ }

func newTestRouter(t *testing.T, flow Flow, maxBytes int64) (*gin.Engine, *state.Store, *notify.Feed) {
	t.Helper()
	store, err := state.Open(context.Background(), state.NewMemoryPersister())
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tmpl, err := web.Templates()
	if err != nil {
		t.Fatalf("web.Templates: %v", err)
	}
	r.SetHTMLTemplate(tmpl)
	feed := notify.NewFeed(10)
	h := NewHandler(flow, store, feed, maxBytes)
	h.RegisterPages(r)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, store, feed
}

func multipartRequest(t *testing.T, path, fileName, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return resp.Error.Code
}

func TestCreateStartsAnalysis(t *testing.T) {
	flow := &fakeFlow{status: analysis.Status{Phase: analysis.PhasePolling, TaskID: "task-1", Loading: true}}
	r, _, _ := newTestRouter(t, flow, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/analyses", "reviews.csv", "text,src\nхорошо,web\n"))

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var got analysis.Status
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TaskID != "task-1" || got.Phase != analysis.PhasePolling || !got.Loading {
		t.Fatalf("unexpected status %+v", got)
	}
	if flow.fileName != "reviews.csv" || flow.body != "text,src\nхорошо,web\n" {
		t.Fatalf("unexpected forwarded file %q %q", flow.fileName, flow.body)
	}
}

func TestCreateMapsErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "invalid type", err: analysis.ErrInvalidFileType, wantCode: http.StatusBadRequest, wantErr: "invalid_file_type"},
		{
			name:     "upload failed",
			err:      fmt.Errorf("%w: %w", analysis.ErrUploadFailed, &backend.HTTPError{StatusCode: 400, Detail: "CSV must contain 'text' column"}),
			wantCode: http.StatusBadGateway,
			wantErr:  "upload_failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := &fakeFlow{err: tt.err, status: analysis.Status{Phase: analysis.PhaseFailed, Error: "CSV must contain 'text' column"}}
			r, _, _ := newTestRouter(t, flow, 1<<20)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, "/api/v1/analyses", "reviews.csv", "x"))

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if code := decodeError(t, w.Body.Bytes()); code != tt.wantErr {
				t.Fatalf("expected %s, got %s", tt.wantErr, code)
			}
		})
	}
}

func TestCreateRequiresFile(t *testing.T) {
	flow := &fakeFlow{}
	r, _, _ := newTestRouter(t, flow, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader("")))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if flow.fileName != "" {
		t.Fatalf("flow should not start without a file")
	}
}

func TestSubmitRedirectsToUpload(t *testing.T) {
	flow := &fakeFlow{status: analysis.Status{Phase: analysis.PhasePolling, TaskID: "task-1"}}
	r, _, feed := newTestRouter(t, flow, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/upload", "reviews.csv", "text\n"))

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/upload?started=1" {
		t.Fatalf("expected redirect to /upload?started=1, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if feed.Pending() != 0 {
		t.Fatalf("handler should not add notifications on success")
	}
}

func TestSubmitWithoutFileNotifies(t *testing.T) {
	r, _, feed := newTestRouter(t, &fakeFlow{}, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("")))

	notes := feed.Drain()
	if w.Code != http.StatusSeeOther || len(notes) != 1 || notes[0].Description != msgMissingDesc {
		t.Fatalf("unexpected response %d with notifications %+v", w.Code, notes)
	}
}

func TestCurrentReportsStatus(t *testing.T) {
	flow := &fakeFlow{status: analysis.Status{
		Phase:    analysis.PhaseDone,
		TaskID:   "task-1",
		Progress: state.Progress{Current: 10, Total: 10},
		Percent:  100,
		Redirect: analysis.ResultsPath,
	}}
	r, _, _ := newTestRouter(t, flow, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/current", nil))

	var got analysis.Status
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Redirect != "/results" || got.Percent != 100 {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestStateEndpoints(t *testing.T) {
	flow := &fakeFlow{}
	r, store, _ := newTestRouter(t, flow, 1<<20)
	store.SetTaskID("task-9")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	var snap state.AppState
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.TaskID != "task-9" {
		t.Fatalf("expected task-9, got %q", snap.TaskID)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/state", nil))
	if w.Code != http.StatusNoContent || flow.resets != 1 {
		t.Fatalf("expected reset with 204, got %d resets=%d", w.Code, flow.resets)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reset", nil))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" || flow.resets != 2 {
		t.Fatalf("expected redirect home after reset, got %d", w.Code)
	}
}

func TestPageRendersStatus(t *testing.T) {
	flow := &fakeFlow{status: analysis.Status{
		Phase:    analysis.PhasePolling,
		TaskID:   "task-1",
		Loading:  true,
		Progress: state.Progress{Current: 4, Total: 10},
		Percent:  40,
	}}
	r, _, _ := newTestRouter(t, flow, 50<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upload", nil))

	body := w.Body.String()
	for _, want := range []string{"Загрузка данных", "4 / 10 (40%)", "50 МБ"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in upload page", want)
		}
	}
}
