// Package dataplane provides the client for the no-code data platform that
// backs all business-data endpoint groups.
package dataplane

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Logical endpoint-group keys. The mapping from these keys to the platform's
// actual group identifiers is configuration; the backend has shipped several
// incompatible group layouts, so nothing here assumes a physical name.
const (
	GroupAuth       = "auth"
	GroupUsers      = "users"
	GroupQuotes     = "quotes"
	GroupShipments  = "shipments"
	GroupBookings   = "bookings"
	GroupContainers = "containers"
	GroupDocuments  = "documents"
	GroupAgents     = "agents"
	GroupChat       = "chat"
	GroupTracking   = "tracking"
)

// TokenSource supplies the bearer credential attached to platform requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx response from the platform.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int {
	return e.Status
}

// Config holds data platform client configuration.
type Config struct {
	BaseURL  string
	BasePath string            // URL prefix before the group segment, e.g. "/x2"
	Groups   map[string]string // logical group key -> platform group identifier
	Timeout  time.Duration

	// Outbound request throttling; the platform meters per-instance quotas.
	RequestsPerSecond float64
	Burst             int
}

// Client is the authenticated HTTP client for the data platform.
type Client struct {
	baseURL    string
	basePath   string
	groups     map[string]string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	logger     *otelzap.Logger
}

// New creates a new data platform client.
func New(cfg Config, tokens TokenSource, logger *otelzap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst == 0 {
		burst = 20
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/x2"
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		basePath: basePath,
		groups:   cfg.Groups,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Do performs an authenticated JSON request against the given endpoint group.
// The group is resolved through the configured mapping; body is JSON-encoded
// when non-nil and the response is decoded into out when non-nil. Non-2xx
// responses come back as *APIError carrying the server message when one is
// parseable.
func (c *Client) Do(ctx context.Context, group, path, method string, body, out any) error {
	url, err := c.resolveURL(group, path)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.parseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Upload performs an authenticated multipart file upload against the given
// endpoint group. Extra fields are added as plain form values.
func (c *Client) Upload(ctx context.Context, group, path, filename string, file io.Reader, fields map[string]string, out any) error {
	url, err := c.resolveURL(group, path)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read upload file: %w", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.parseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) resolveURL(group, path string) (string, error) {
	id, ok := c.groups[group]
	if !ok {
		return "", fmt.Errorf("unknown endpoint group %q", group)
	}
	return fmt.Sprintf("%s%s/api:%s%s", c.baseURL, c.basePath, id, path), nil
}

// parseError extracts the server-provided message from an error response.
func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		c.logger.Debug("platform error response without message",
			zap.Int("status", resp.StatusCode),
		)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
