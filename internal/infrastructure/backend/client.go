// internal/infrastructure/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/pkg/metrics"
)

const maxResponseSize = 10 << 20 // 10MB

// Client issues requests to the backend REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	log        *logrus.Logger
	newBackOff func() backoff.BackOff
}

// NewClient creates a backend client from configuration
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return New(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout}, cfg.Backend.MaxRetries, log)
}

// New creates a backend client for baseURL
func New(baseURL string, httpClient *http.Client, maxRetries int, log *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		maxRetries: maxRetries,
		log:        log,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			b.MaxElapsedTime = 10 * time.Second
			return b
		},
	}
}

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Body   interface{}
}

// Get fetches path. Transient failures are retried; 4xx answers, 401
// included, are not.
func (c *Client) Get(ctx context.Context, path string, query url.Values, token string, dest interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Token: token}, dest)
}

// Post sends body to path
func (c *Client) Post(ctx context.Context, path, token string, body, dest interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Token: token, Body: body}, dest)
}

// Do performs req and decodes the normalized payload into dest (if non-nil)
func (c *Client) Do(ctx context.Context, req Request, dest interface{}) error {
	start := time.Now()
	label := routeLabel(req.Path)
	defer func() {
		metrics.BackendDuration.WithLabelValues(req.Method, label).Observe(time.Since(start).Seconds())
	}()

	var payload []byte
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = encoded
	}

	var data json.RawMessage
	attempt := 0
	operation := func() error {
		attempt++
		raw, err := c.roundTrip(ctx, req, payload, label)
		if err == nil {
			data = raw
			return nil
		}
		if req.Method != http.MethodGet || !retryable(err) {
			return backoff.Permanent(err)
		}
		c.log.WithFields(logrus.Fields{
			"method":  req.Method,
			"path":    req.Path,
			"attempt": attempt,
		}).WithError(err).Warn("Backend read failed, retrying")
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return err
	}

	if dest == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req Request, payload []byte, label string) (json.RawMessage, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(req.Method, label, "error").Inc()
		return nil, &APIError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	metrics.BackendRequests.WithLabelValues(req.Method, label, strconv.Itoa(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &APIError{Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrorFromBody(resp.StatusCode, respBody)
	}

	return Unwrap(resp.StatusCode, respBody)
}

// retryable reports whether a failed read is worth another attempt
func retryable(err error) bool {
	status := StatusOf(err)
	switch {
	case IsTransport(err):
		return true
	case status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}

// routeLabel collapses identifier segments so metric cardinality stays bounded
func routeLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if strings.IndexFunc(seg, unicode.IsDigit) >= 0 {
			segments[i] = ":id"
		}
	}
	return "/" + strings.Join(segments, "/")
}
