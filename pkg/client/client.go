// Package client is a Go SDK for the TextCoder HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
	"github.com/turtacn/TextCoder/pkg/types/common"
)

// Version is reported in the User-Agent header.
const Version = "0.3.0"

// Logger receives debug output from the client.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Errorf(string, ...interface{}) {}

// Client calls the TextCoder API. It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Detail     string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("textcoder: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Detail, e.RequestID)
	}
	return fmt.Sprintf("textcoder: HTTP %d: %s [request_id=%s]", e.StatusCode, e.Detail, e.RequestID)
}

// IsNotFound reports a 404.
func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// IsServerError reports a 5xx.
func (e *APIError) IsServerError() bool { return e.StatusCode >= 500 && e.StatusCode < 600 }

// NewClient returns a Client for baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "base URL scheme must be http or https")
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    "textcoder-go-sdk/" + Version,
		logger:       noopLogger{},
		retryMax:     2,
		retryWaitMin: 200 * time.Millisecond,
		retryWaitMax: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Endpoints
// ─────────────────────────────────────────────────────────────────────────────

// Code codes rows with the named preset ("" for the base lexicon).
func (c *Client) Code(ctx context.Context, req coding.CodeRequest) (*coding.CodeResponse, error) {
	if req.Rows == nil {
		req.Rows = []coding.InRow{}
	}
	var out coding.CodeResponse
	if err := c.do(ctx, http.MethodPost, "/code", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CodeTexts codes texts, numbering rows from 0.
func (c *Client) CodeTexts(ctx context.Context, preset string, texts ...string) (*coding.CodeResponse, error) {
	rows := make([]coding.InRow, len(texts))
	for i, t := range texts {
		rows[i] = coding.InRow{Row: i, Text: t}
	}
	return c.Code(ctx, coding.CodeRequest{Rows: rows, Preset: preset})
}

// ListPresets returns the sorted preset keys.
func (c *Client) ListPresets(ctx context.Context) ([]string, error) {
	var out coding.PresetList
	if err := c.do(ctx, http.MethodGet, "/presets", nil, &out); err != nil {
		return nil, err
	}
	return out.Presets, nil
}

// ValidatePreset checks a preset document. doc is sent as-is when it is a
// json.RawMessage or []byte, otherwise it is marshalled.
func (c *Client) ValidatePreset(ctx context.Context, doc interface{}) (*coding.ValidationResult, error) {
	if b, ok := doc.([]byte); ok {
		doc = json.RawMessage(b)
	}
	var out coding.ValidationResult
	if err := c.do(ctx, http.MethodPost, "/validate_preset", doc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtendLexicon requests lexicon extension proposals.
func (c *Client) ExtendLexicon(ctx context.Context, req coding.ExtendRequest) (*coding.ExtendResult, error) {
	var out coding.ExtendResult
	if err := c.do(ctx, http.MethodPost, "/extend_lexicon", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitJob queues rows for asynchronous coding and returns the job id.
func (c *Client) SubmitJob(ctx context.Context, job coding.Job) (string, error) {
	var out coding.JobAccepted
	if err := c.do(ctx, http.MethodPost, "/jobs", job, &out); err != nil {
		return "", err
	}
	return out.JobID, nil
}

// Ready fetches the readiness report. A 503 still returns the report along
// with the APIError.
func (c *Client) Ready(ctx context.Context) (*common.HealthReport, error) {
	var out common.HealthReport
	err := c.do(ctx, http.MethodGet, "/readyz", nil, &out)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusServiceUnavailable {
			return &out, err
		}
		return nil, err
	}
	return &out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Transport
// ─────────────────────────────────────────────────────────────────────────────

// do sends one request, retrying network errors and 5xx responses other
// than 503, whose body is still decoded into result.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal request body")
		}
		payload = b
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt)
			c.logger.Debugf("retry %d of %s %s after %v", attempt, method, path, wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retry, err := c.attempt(ctx, method, path, payload, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, result interface{}) (bool, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to create request")
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("%s %s failed: %v", method, path, err)
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, err
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}
		var er common.ErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Detail != "" {
			apiErr.Code, apiErr.Detail = er.Code, er.Detail
		} else {
			apiErr.Detail = strings.TrimSpace(string(raw))
		}
		if resp.StatusCode == http.StatusServiceUnavailable && result != nil {
			_ = json.Unmarshal(raw, result)
			return false, apiErr
		}
		return apiErr.IsServerError(), apiErr
	}

	if result != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return false, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode response")
		}
	}
	return false, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if d > c.retryWaitMax {
		d = c.retryWaitMax
	}
	if q := int64(d / 4); q > 0 {
		d += time.Duration(rand.Int63n(q))
	}
	return d
}

//Personal.AI order the ending
