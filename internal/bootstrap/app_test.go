package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/bootstrap"
	"sentiment-dashboard/internal/shared/config"
)

type fakeInference struct {
	polls atomic.Int32
}

func (f *fakeInference) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/analyze":
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"task_id":"task-1","message":"Analysis started"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/results/task-1":
		w.Header().Set("Content-Type", "application/json")
		if f.polls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"status":"processing","progress":1,"total":2}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"completed","data":[
			{"text":"Отличный сервис","src":"web","label":2,"confidence":0.9},
			{"text":"Ужасно","src":"app","label":0,"confidence":0.8}
		],"stats":{"total":2,"negative":1,"neutral":0,"positive":1}}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/results/task-1/download":
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("text,src,label,confidence\n"))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
	}
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		BackendBaseURL:  baseURL + "/api",
		BackendTimeout:  5 * time.Second,
		PollInterval:    5 * time.Millisecond,
		PollRetryDelay:  5 * time.Millisecond,
		PollMaxFailures: 3,
		PollMaxDuration: 5 * time.Second,
		MaxUploadBytes:  1 << 20,
		StateBackend:    config.StateBackendMemory,
	}
}

func uploadRequest(t *testing.T) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "reviews.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("text,src\nОтличный сервис,web\nУжасно,app\n")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func runAnalysis(t *testing.T, app *bootstrap.App) {
	t.Helper()
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, uploadRequest(t))
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", resp.Code, resp.Body.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Orchestrator.Wait(ctx); err != nil {
		t.Fatalf("wait for analysis: %v", err)
	}
}

func TestUploadPollResultsFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(&fakeInference{})
	defer srv.Close()

	app, err := bootstrap.Build(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close(context.Background())

	runAnalysis(t, app)

	statusResp := httptest.NewRecorder()
	app.Router.ServeHTTP(statusResp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/current", nil))
	var status struct {
		Phase    string `json:"phase"`
		TaskID   string `json:"taskId"`
		Loading  bool   `json:"isLoading"`
		Redirect string `json:"redirect"`
	}
	if err := json.NewDecoder(statusResp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Phase != "done" || status.TaskID != "task-1" || status.Loading || status.Redirect != "/results" {
		t.Fatalf("unexpected status %+v", status)
	}

	resultsResp := httptest.NewRecorder()
	app.Router.ServeHTTP(resultsResp, httptest.NewRequest(http.MethodGet, "/api/v1/results", nil))
	var view struct {
		Total int `json:"total"`
		Rows  []struct {
			Text string `json:"text"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(resultsResp.Body).Decode(&view); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if view.Total != 2 || len(view.Rows) != 2 || view.Rows[0].Text != "Отличный сервис" {
		t.Fatalf("unexpected results %+v", view)
	}

	dlResp := httptest.NewRecorder()
	app.Router.ServeHTTP(dlResp, httptest.NewRequest(http.MethodGet, "/results/download", nil))
	if dlResp.Code != http.StatusOK || !strings.HasPrefix(dlResp.Body.String(), "text,src") {
		t.Fatalf("unexpected download %d %q", dlResp.Code, dlResp.Body.String())
	}

	notesResp := httptest.NewRecorder()
	app.Router.ServeHTTP(notesResp, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))
	var notes struct {
		Notifications []struct {
			Title string `json:"title"`
		} `json:"notifications"`
	}
	if err := json.NewDecoder(notesResp.Body).Decode(&notes); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if len(notes.Notifications) != 2 || notes.Notifications[1].Title != "Анализ завершён" {
		t.Fatalf("unexpected notifications %+v", notes.Notifications)
	}
}

func TestFileStateSurvivesRestart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(&fakeInference{})
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.StateBackend = config.StateBackendFile
	cfg.StateDir = t.TempDir()

	app, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	runAnalysis(t, app)
	if err := app.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	restarted, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("bootstrap rebuild: %v", err)
	}
	defer restarted.Close(context.Background())

	snap := restarted.Store.Snapshot()
	if snap.TaskID != "task-1" || len(snap.Results) != 2 || snap.Stats == nil || snap.Stats.Total != 2 {
		t.Fatalf("unexpected rehydrated state %+v", snap)
	}
	if snap.IsLoading || snap.Progress.Total != 0 {
		t.Fatalf("volatile fields should start empty, got %+v", snap)
	}
}

func TestResetClearsState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(&fakeInference{})
	defer srv.Close()

	app, err := bootstrap.Build(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close(context.Background())
	runAnalysis(t, app)

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/v1/state", nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if snap := app.Store.Snapshot(); snap.TaskID != "" || snap.HasResults() {
		t.Fatalf("expected empty state after reset, got %+v", snap)
	}

	page := httptest.NewRecorder()
	app.Router.ServeHTTP(page, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if !strings.Contains(page.Body.String(), "Нет данных для визуализации") {
		t.Fatalf("expected dashboard empty state after reset")
	}
}
