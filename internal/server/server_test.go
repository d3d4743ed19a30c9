package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/config"
	"github.com/jonathan/panel-peace/internal/metrics"
	"github.com/jonathan/panel-peace/internal/server/ratelimit"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

type testServer struct {
	*Server
	store *fakeStore
}

func newTestServerWith(t *testing.T, store Store, fake *fakeStore, rl *ratelimit.Config) *testServer {
	t.Helper()
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	s, err := NewWithStore(store, Options{
		JWT:       &config.JWTConfig{Secret: testSecret, ExpirationHours: 24, Issuer: config.DefaultJWTIssuer},
		Password:  &config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		RateLimit: rl,
		Metrics:   metrics.New(),
		Now:       func() time.Time { return testNow },
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return &testServer{Server: s, store: fake}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fake := newFakeStore(func() time.Time { return testNow })
	return newTestServerWith(t, fake, fake, nil)
}

// addUser creates a user with role and returns a bearer token for them.
func (ts *testServer) addUser(t *testing.T, role string) (uuid.UUID, string) {
	t.Helper()
	id, err := ts.store.CreateUser(t.Context(), role+" user", uuid.NewString()+"@example.com", "", role)
	require.NoError(t, err)
	token, err := ts.jwtService.GenerateToken(id, role)
	require.NoError(t, err)
	return id, token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "ok", resp["status"])
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	ts := newTestServer(t)
	ts.store.pingErr = errBoom

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "degraded", resp["status"])
}

func TestCORSMiddleware(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSMiddleware_OPTIONS(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodOptions, "/projects", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	ts := newTestServer(t)

	paths := []string{"/projects", "/dashboard", "/users/me", "/deadlines/upcoming"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = ts.do(t, http.MethodGet, path, "not-a-jwt", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	fake := newFakeStore(func() time.Time { return testNow })
	ts := newTestServerWith(t, fake, fake, &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
	})

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	resp := decode[map[string]any](t, w)
	assert.Equal(t, "rate_limit_exceeded", resp["error"])
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RateLimited.WithLabelValues("default")))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodGet, "/health", "", nil)
	w := ts.do(t, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "panelpeace_http_requests_total")
	assert.Equal(t, 1.0, testutil.ToFloat64(
		ts.metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "GET /health", "200")))
}

func TestErrorResponse_HidesInternalErrors(t *testing.T) {
	fake := newFakeStore(func() time.Time { return testNow })
	ts := newTestServerWith(t, errStore{fake}, fake, nil)
	_, token := ts.addUser(t, types.UserRoleEditor)

	w := ts.do(t, http.MethodGet, "/projects", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "internal server error", resp["error"])
	assert.NotContains(t, w.Body.String(), errBoom.Error())
}

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}

func TestClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientID(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", clientID(req))
}

func TestNewWithStore_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	fake := newFakeStore(time.Now)

	_, err := NewWithStore(fake, Options{
		Password:  &config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		RateLimit: &ratelimit.Config{Enabled: false},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT")
}
