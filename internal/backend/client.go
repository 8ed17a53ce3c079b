package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 120 * time.Second
	maxErrorBody   = 4 << 10
)

// Client calls the sentiment inference service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for baseURL (for example http://localhost:8000/api).
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Upload submits a CSV for analysis.
func (c *Client) Upload(ctx context.Context, fileName string, r io.Reader) (Task, error) {
	var task Task
	if err := c.postFile(ctx, "/analyze", fileName, r, &task); err != nil {
		return Task{}, fmt.Errorf("upload: %w", err)
	}
	if strings.TrimSpace(task.ID) == "" {
		return Task{}, fmt.Errorf("upload: response missing task_id")
	}
	return task, nil
}

// GetStatus fetches the current status of a task.
func (c *Client) GetStatus(ctx context.Context, taskID string) (TaskStatus, error) {
	var status TaskStatus
	if err := c.getJSON(ctx, "/results/"+url.PathEscape(taskID), nil, &status); err != nil {
		return TaskStatus{}, fmt.Errorf("get status: %w", err)
	}
	return status, nil
}

// DownloadURL returns the browser-navigable CSV download address for a task.
func (c *Client) DownloadURL(taskID string) string {
	return c.baseURL + "/results/" + url.PathEscape(taskID) + "/download"
}

// Download streams the results CSV into w. Nothing is written when the
// backend rejects the request.
func (c *Client) Download(ctx context.Context, taskID string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(taskID), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("download: %w", err)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download: copy body: %w", err)
	}
	return nil
}

// Validate submits a labeled CSV and returns the evaluation metrics.
func (c *Client) Validate(ctx context.Context, fileName string, r io.Reader) (ValidationMetrics, error) {
	var metrics ValidationMetrics
	if err := c.postFile(ctx, "/validate", fileName, r, &metrics); err != nil {
		return ValidationMetrics{}, fmt.Errorf("validate: %w", err)
	}
	return metrics, nil
}

// Search runs a server-side text search over a completed task.
func (c *Client) Search(ctx context.Context, taskID, query, source string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("task_id", taskID)
	params.Set("query", query)
	if source != "" {
		params.Set("source", source)
	}
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/search", params, &raw); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return raw, nil
}

// Filter runs a server-side label/source filter over a completed task.
func (c *Client) Filter(ctx context.Context, taskID string, label *int, source string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("task_id", taskID)
	if label != nil {
		params.Set("label", strconv.Itoa(*label))
	}
	if source != "" {
		params.Set("source", source)
	}
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/filter", params, &raw); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) postFile(ctx context.Context, path, fileName string, r io.Reader, out any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, pr)
	if err != nil {
		pr.Close()
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return fmt.Errorf("backend request timeout: %w", err)
		}
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
}
