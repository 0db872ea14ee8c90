package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Config holds identity client configuration.
type Config struct {
	BaseURL string
	AnonKey string // project API key sent alongside every request
	Timeout time.Duration
}

// Client talks to a GoTrue-compatible identity provider over HTTPS.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *otelzap.Logger
}

// NewClient creates a new identity client.
func NewClient(cfg Config, logger *otelzap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		anonKey: cfg.AnonKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// wire shapes for the provider's auth endpoints.
type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         wireUser `json:"user"`
}

type wireUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	CreatedAt    time.Time      `json:"created_at"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u wireUser) toUser() User {
	user := User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
	if name, ok := u.UserMetadata["name"].(string); ok {
		user.Name = name
	}
	if company, ok := u.UserMetadata["company"].(string); ok {
		user.Company = company
	}
	return user
}

// SignIn authenticates with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.post(ctx, "/auth/v1/token?grant_type=password", "", body, &resp); err != nil {
		return nil, err
	}
	return sessionFromToken(&resp), nil
}

// SignUp creates a new account. Providers configured with email confirmation
// may return a session without tokens until the address is verified.
func (c *Client) SignUp(ctx context.Context, email, password string, profile Profile) (*Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	meta := map[string]string{}
	if profile.Name != "" {
		meta["name"] = profile.Name
	}
	if profile.Company != "" {
		meta["company"] = profile.Company
	}
	if len(meta) > 0 {
		body["data"] = meta
	}

	var resp tokenResponse
	if err := c.post(ctx, "/auth/v1/signup", "", body, &resp); err != nil {
		return nil, err
	}
	return sessionFromToken(&resp), nil
}

// SignOut revokes the session behind the given access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.post(ctx, "/auth/v1/logout", accessToken, nil, nil)
}

// GetUser fetches the user owning the given access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}
	var wu wireUser
	if err := json.NewDecoder(resp.Body).Decode(&wu); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	user := wu.toUser()
	return &user, nil
}

func sessionFromToken(resp *tokenResponse) *Session {
	sess := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User.toUser(),
	}
	if resp.ExpiresIn > 0 {
		sess.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return sess
}

func (c *Client) post(ctx context.Context, path, accessToken string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, accessToken)

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

func (c *Client) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
}

// parseError extracts the provider error message. GoTrue responses use
// error_description for grant failures and msg elsewhere.
func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.ErrorDescription != "":
			msg = payload.ErrorDescription
		case payload.Msg != "":
			msg = payload.Msg
		case payload.Message != "":
			msg = payload.Message
		}
	}
	if msg == "" {
		c.logger.Debug("identity error response without message",
			zap.Int("status", resp.StatusCode),
		)
	}
	return &AuthError{Status: resp.StatusCode, Message: msg}
}

var _ Provider = (*Client)(nil)
