// Package identity provides the client for the hosted identity provider that
// owns user authentication.
package identity

import (
	"context"
	"fmt"
	"time"
)

// User is the identity-provider side of a user account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Session is a verified identity session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	User         User      `json:"user"`
}

// Profile carries optional sign-up metadata.
type Profile struct {
	Name    string
	Company string
}

// Provider is the identity capability the session bridge consumes. Failures
// from any of these operations are fatal to the calling operation.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, profile Profile) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*User, error)
}

// AuthError is a rejection from the identity provider.
type AuthError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("identity provider rejected request (HTTP %d)", e.Status)
}

// HTTPStatus returns the response status code.
func (e *AuthError) HTTPStatus() int {
	return e.Status
}
