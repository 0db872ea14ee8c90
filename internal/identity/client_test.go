package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/freightflow/gateway/internal/identity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *identity.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return identity.NewClient(identity.Config{
		BaseURL: srv.URL,
		AnonKey: "anon-key",
	}, otelzap.New(zap.NewNop()))
}

func TestSignIn(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey string
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{
			"access_token": "at-1",
			"refresh_token": "rt-1",
			"expires_in": 3600,
			"user": {
				"id": "u1",
				"email": "ops@example.com",
				"user_metadata": {"name": "Dana", "company": "Acme Freight"}
			}
		}`))
	})

	sess, err := client.SignIn(context.Background(), "ops@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "/auth/v1/token", gotPath)
	assert.Equal(t, "grant_type=password", gotQuery)
	assert.Equal(t, "anon-key", gotAPIKey)
	assert.Equal(t, map[string]string{"email": "ops@example.com", "password": "secret"}, gotBody)
	assert.Equal(t, "at-1", sess.AccessToken)
	assert.Equal(t, "rt-1", sess.RefreshToken)
	assert.False(t, sess.ExpiresAt.IsZero())
	assert.Equal(t, "Dana", sess.User.Name)
	assert.Equal(t, "Acme Freight", sess.User.Company)
}

func TestSignIn_BadCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := client.SignIn(context.Background(), "ops@example.com", "wrong")

	var authErr *identity.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
	assert.Equal(t, "Invalid login credentials", authErr.Error())
}

func TestSignUp(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{
			"access_token": "at-2",
			"refresh_token": "rt-2",
			"expires_in": 3600,
			"user": {"id": "u2", "email": "new@example.com"}
		}`))
	})

	sess, err := client.SignUp(context.Background(), "new@example.com", "secret",
		identity.Profile{Name: "Dana", Company: "Acme Freight"})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Dana", "company": "Acme Freight"}, gotBody["data"])
	assert.Equal(t, "at-2", sess.AccessToken)
	assert.Equal(t, "u2", sess.User.ID)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"msg":"User already registered"}`))
	})

	_, err := client.SignUp(context.Background(), "dup@example.com", "secret", identity.Profile{})

	var authErr *identity.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "User already registered", authErr.Error())
}

func TestSignOut(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.SignOut(context.Background(), "at-1")

	require.NoError(t, err)
	assert.Equal(t, "Bearer at-1", gotAuth)
}

func TestGetUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"u1","email":"ops@example.com","user_metadata":{"name":"Dana"}}`))
	})

	user, err := client.GetUser(context.Background(), "at-1")

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Dana", user.Name)
}

func TestGetUser_InvalidToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid JWT"}`))
	})

	_, err := client.GetUser(context.Background(), "expired")

	var authErr *identity.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.HTTPStatus())
	assert.Equal(t, "invalid JWT", authErr.Error())
}

func TestAuthError_FallbackMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream blew up")
	})

	_, err := client.GetUser(context.Background(), "at-1")

	var authErr *identity.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusBadGateway, authErr.Status)
	assert.Equal(t, "identity provider rejected request (HTTP 502)", authErr.Error())
}
