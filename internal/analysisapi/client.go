package analysisapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"resume-seo-web/internal/analysis"
	"resume-seo-web/internal/shared/telemetry"
)

const (
	analyzePath       = "/api/analyze"
	analyzeSamplePath = "/api/analyze/sample"
	healthPath        = "/health"

	// maxResponseBytes bounds how much of a backend reply is buffered.
	maxResponseBytes = 4 << 20
)

const (
	msgAnalyzeFailed = "Failed to analyze resume"
	msgSampleFailed  = "Failed to analyze sample resume"
	msgUnavailable   = "API is not available"
)

// HealthStatus is whatever JSON object the backend reports on /health.
type HealthStatus map[string]any

// Client talks to the resume analysis backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used
// as-is; no tracing is layered on top.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New constructs a Client for an already resolved base URL. An empty base
// URL keeps request paths relative, which only works behind a transport that
// supplies the host.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type analyzeRequest struct {
	ResumeText string  `json:"resume_text"`
	UserEmail  *string `json:"user_email"`
}

// SubmitText asks the backend to analyze resumeText.
func (c *Client) SubmitText(ctx context.Context, resumeText string, userEmail *string) (*analysis.Result, error) {
	payload, err := json.Marshal(analyzeRequest{ResumeText: resumeText, UserEmail: userEmail})
	if err != nil {
		return nil, newError(OpAnalyze, 0, msgAnalyzeFailed, err)
	}
	var result analysis.Result
	if err := c.do(ctx, OpAnalyze, http.MethodPost, analyzePath, payload, msgAnalyzeFailed, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitSample asks the backend to analyze its built-in sample resume.
func (c *Client) SubmitSample(ctx context.Context) (*analysis.Result, error) {
	var result analysis.Result
	if err := c.do(ctx, OpAnalyzeSample, http.MethodPost, analyzeSamplePath, nil, msgSampleFailed, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckHealth reports the backend health payload.
func (c *Client) CheckHealth(ctx context.Context) (HealthStatus, error) {
	status := HealthStatus{}
	if err := c.do(ctx, OpHealth, http.MethodGet, healthPath, nil, msgUnavailable, false, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// do performs one request. Every failure is an *Error carrying either the
// server's detail (when useDetail) or the generic message.
func (c *Client) do(ctx context.Context, op Op, method, path string, body []byte, generic string, useDetail bool, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return c.fail(ctx, newError(op, 0, generic, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(ctx, newError(op, 0, generic, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.fail(ctx, newError(op, resp.StatusCode, generic, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := generic
		if useDetail {
			if detail := detailFrom(raw); detail != "" {
				msg = detail
			}
		}
		return c.fail(ctx, newError(op, resp.StatusCode, msg, fmt.Errorf("unexpected status %d", resp.StatusCode)))
	}

	if isNullJSON(raw) {
		return c.fail(ctx, newError(op, resp.StatusCode, generic, fmt.Errorf("empty response body")))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(ctx, newError(op, resp.StatusCode, generic, fmt.Errorf("decode response: %w", err)))
	}
	return nil
}

func (c *Client) fail(ctx context.Context, e *Error) error {
	fields := map[string]any{
		"op":      string(e.Op),
		"message": e.Message,
		"base":    c.baseURL,
	}
	if e.StatusCode != 0 {
		fields["status"] = e.StatusCode
	}
	if e.Err != nil {
		fields["error"] = e.Err
	}
	telemetry.Error(ctx, "analysisapi.request_failed", fields)
	return e
}

// detailFrom extracts a string "detail" field from an error body. Non-string
// details (FastAPI validation arrays, objects) are ignored.
func detailFrom(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}

func isNullJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
