package identity

import (
	"context"
	"time"
)

// MockProvider is an in-memory Provider for tests.
type MockProvider struct {
	// SimulateErrors makes every call fail with a canned AuthError.
	SimulateErrors bool

	// Per-operation overrides.
	OnSignIn  func(ctx context.Context, email, password string) (*Session, error)
	OnSignUp  func(ctx context.Context, email, password string, profile Profile) (*Session, error)
	OnSignOut func(ctx context.Context, accessToken string) error
	OnGetUser func(ctx context.Context, accessToken string) (*User, error)

	SignOutCalls int
}

// NewMockProvider creates a mock identity provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) mockSession(email string) *Session {
	return &Session{
		AccessToken:  "mock-access-token",
		RefreshToken: "mock-refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
		User: User{
			ID:    "mock-user-id",
			Email: email,
		},
	}
}

// SignIn implements Provider.
func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if m.OnSignIn != nil {
		return m.OnSignIn(ctx, email, password)
	}
	if m.SimulateErrors {
		return nil, &AuthError{Status: 400, Message: "Invalid login credentials"}
	}
	return m.mockSession(email), nil
}

// SignUp implements Provider.
func (m *MockProvider) SignUp(ctx context.Context, email, password string, profile Profile) (*Session, error) {
	if m.OnSignUp != nil {
		return m.OnSignUp(ctx, email, password, profile)
	}
	if m.SimulateErrors {
		return nil, &AuthError{Status: 422, Message: "User already registered"}
	}
	sess := m.mockSession(email)
	sess.User.Name = profile.Name
	sess.User.Company = profile.Company
	return sess, nil
}

// SignOut implements Provider.
func (m *MockProvider) SignOut(ctx context.Context, accessToken string) error {
	m.SignOutCalls++
	if m.OnSignOut != nil {
		return m.OnSignOut(ctx, accessToken)
	}
	if m.SimulateErrors {
		return &AuthError{Status: 401, Message: "invalid token"}
	}
	return nil
}

// GetUser implements Provider.
func (m *MockProvider) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if m.OnGetUser != nil {
		return m.OnGetUser(ctx, accessToken)
	}
	if m.SimulateErrors {
		return nil, &AuthError{Status: 401, Message: "invalid token"}
	}
	return &User{ID: "mock-user-id", Email: "mock@example.com"}, nil
}

var _ Provider = (*MockProvider)(nil)
