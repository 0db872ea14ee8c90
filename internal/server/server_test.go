package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/freightflow/gateway/internal/dataplane"
	"github.com/freightflow/gateway/internal/identity"
	"github.com/freightflow/gateway/internal/server"
	"github.com/freightflow/gateway/internal/session"
	"github.com/freightflow/gateway/pkg/rateshop"
	"github.com/freightflow/gateway/pkg/rateshop/mock"
)

type testEnv struct {
	router   http.Handler
	provider *identity.MockProvider
	store    *session.Store
	registry *rateshop.Registry
	platform *platformStub
}

// platformStub stands in for the data platform behind the dataplane client.
type platformStub struct {
	status   int
	response string
	lastPath string
}

func (p *platformStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.lastPath = r.URL.Path
	status := p.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write([]byte(p.response))
}

type noToken struct{}

func (noToken) Token() string { return "" }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := otelzap.New(zap.NewNop())

	stub := &platformStub{response: "{}"}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	data := dataplane.New(dataplane.Config{
		BaseURL: srv.URL,
		Groups: map[string]string{
			dataplane.GroupUsers:    "users",
			dataplane.GroupQuotes:   "quotes",
			dataplane.GroupBookings: "bookings",
		},
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, noToken{}, logger)

	provider := identity.NewMockProvider()
	store := session.NewStore("")
	bridge := session.NewBridge(provider, data, store, logger)

	registry := rateshop.NewRegistry("TAI", "EXLA", "ECHO")
	registry.Register(mock.New("TAI"))
	registry.Register(mock.New("EXLA"))
	registry.Register(mock.New("ECHO"))

	s := server.New(server.Config{Port: 0}, bridge, registry, data, logger)
	return &testEnv{
		router:   s.Router(),
		provider: provider,
		store:    store,
		registry: registry,
		platform: stub,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	e.platform.response = `{"authToken":"platform-tok","user":{"id":"p1","email":"ops@example.com"}}`
	rec := e.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ops@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	e.platform.response = "{}"
	e.platform.status = 0
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.platform.response = `{"authToken":"platform-tok","user":{"id":"p1","email":"ops@example.com"}}`

	rec := env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ops@example.com", "password": "secret"})

	require.Equal(t, http.StatusOK, rec.Code)
	var cred session.Credential
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cred))
	assert.Equal(t, "platform-tok", cred.PlatformToken)
	assert.Equal(t, "ops@example.com", cred.User.Email)
	assert.Equal(t, "platform-tok", env.store.Token())
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.provider.SimulateErrors = true

	rec := env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ops@example.com", "password": "wrong"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid login credentials")
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ops@example.com"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_DegradedExchangeStillSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.platform.status = http.StatusInternalServerError
	env.platform.response = `{"message":"sync unavailable"}`

	rec := env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ops@example.com", "password": "secret"})

	require.Equal(t, http.StatusOK, rec.Code)
	var cred session.Credential
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cred))
	assert.Empty(t, cred.PlatformToken)
	assert.NotEmpty(t, cred.IdentityToken)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	env.platform.response = `{"authToken":"platform-tok","user":{"id":"p1","email":"new@example.com"}}`

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "new@example.com",
		"password": "secret",
		"name":     "Dana",
		"company":  "Acme Freight",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var cred session.Credential
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cred))
	assert.Equal(t, "Dana", cred.User.Name)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	require.NotEmpty(t, env.store.Token())

	rec := env.do(t, http.MethodPost, "/api/auth/logout", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, env.store.Token())
	assert.Nil(t, env.store.Session())
	assert.Equal(t, 1, env.provider.SignOutCalls)
}

func TestLogout_SignOutFailureStillClears(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.provider.OnSignOut = func(ctx context.Context, accessToken string) error {
		return errors.New("provider down")
	}

	rec := env.do(t, http.MethodPost, "/api/auth/logout", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, env.store.Token())
	assert.Nil(t, env.store.Session())
}

func TestSession_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/session", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/rates/shop", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/shipments", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShopRates(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodPost, "/api/rates/shop", map[string]any{
		"origin_zip":      "60601",
		"destination_zip": "90001",
		"items": []map[string]any{
			{"quantity": 2, "weight_lbs": 500},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Results []rateshop.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	for _, res := range resp.Results {
		assert.True(t, res.OK(), res.Carrier)
	}
	for i := 1; i < len(resp.Results); i++ {
		assert.LessOrEqual(t, resp.Results[i-1].Rate.TotalPrice.Amount, resp.Results[i].Rate.TotalPrice.Amount)
	}
	recommended := 0
	for _, res := range resp.Results {
		if res.Recommended {
			recommended++
		}
	}
	assert.Equal(t, 1, recommended)
}

func TestShopRates_PartialFailure(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	failing := mock.New("EXLA")
	failing.Err = errors.New("carrier timeout")
	env.registry.Register(failing)

	rec := env.do(t, http.MethodPost, "/api/rates/shop", map[string]any{
		"origin_zip":      "60601",
		"destination_zip": "90001",
		"items":           []map[string]any{{"quantity": 1, "weight_lbs": 250}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Results []rateshop.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)

	var failed *rateshop.Result
	for i := range resp.Results {
		if resp.Results[i].Carrier == "EXLA" {
			failed = &resp.Results[i]
		}
	}
	require.NotNil(t, failed)
	assert.False(t, failed.OK())
	assert.Equal(t, "carrier timeout", failed.Err)
}

func TestShopRates_InvalidRequest(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodPost, "/api/rates/shop", map[string]any{
		"origin_zip": "60601",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.platform.response = `{"id":"b1","quote_id":"q1","status":"confirmed","carrier_name":"TAI Freight"}`

	rec := env.do(t, http.MethodPost, "/api/bookings",
		map[string]string{"quote_id": "q1", "pickup_date": "2026-09-15"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/x2/api:bookings/bookings", env.platform.lastPath)
	var booking dataplane.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, "b1", booking.ID)
}

func TestCreateBooking_UpstreamErrorMapped(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.platform.status = http.StatusConflict
	env.platform.response = `{"message":"quote expired"}`

	rec := env.do(t, http.MethodPost, "/api/bookings",
		map[string]string{"quote_id": "q1", "pickup_date": "2026-09-15"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "quote expired")
}

func TestCreateBooking_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodPost, "/api/bookings", map[string]string{"quote_id": "q1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListQuotes_PassThrough(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.platform.response = `[{"id":"q1","status":"pending"}]`

	rec := env.do(t, http.MethodGet, "/api/quotes?status=pending&limit=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var quotes []dataplane.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quotes))
	require.Len(t, quotes, 1)
	assert.Equal(t, "q1", quotes[0].ID)
}
