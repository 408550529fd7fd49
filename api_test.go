package main

import (
	"encoding/json"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/wellness-coach/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, body string) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	return env
}

func TestAPIHealth(t *testing.T) {
	app := newTestApp(t)

	resp := app.get("/api/health")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.JSONEq(t, `{"status":"ok"}`, string(decodeEnvelope(t, resp.body).Data))
}

func TestAPISessionLifecycle(t *testing.T) {
	app := newTestApp(t)

	resp := app.get("/api/session")
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Not logged in.", decodeEnvelope(t, resp.body).Error)

	resp = app.postJSON("/api/session/login", `{"username":"alice","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Invalid credentials", decodeEnvelope(t, resp.body).Error)

	resp = app.postJSON("/api/session/login", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, string(decodeEnvelope(t, resp.body).Data), `"username":"alice"`)
	require.NotNil(t, app.sessionCookie())

	// JSON ile açılan oturum sayfalarda da geçerlidir.
	assert.Equal(t, http.StatusOK, app.get("/dashboard").status)

	resp = app.get("/api/session")
	assert.Equal(t, http.StatusOK, resp.status)

	resp = app.postJSON("/api/session/logout", `{}`)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Nil(t, app.sessionCookie())
	assert.Equal(t, http.StatusUnauthorized, app.get("/api/session").status)
}

func TestAPIRegister(t *testing.T) {
	app := newTestApp(t)

	resp := app.postJSON("/api/session/register", `{"username":"bob","password":"pw"}`)
	assert.Equal(t, http.StatusCreated, resp.status)

	resp = app.postJSON("/api/session/register", `{"username":"bob","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, resp.status)
	assert.Equal(t, "Registration failed. Username may already exist.", decodeEnvelope(t, resp.body).Error)

	resp = app.postJSON("/api/session/register", `{"username":"","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, resp.status)
}

func TestLoginRateLimit(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.RateLimit.LoginMaxAttempts = 2
		cfg.RateLimit.LoginWindow = time.Hour
	})

	bad := url.Values{"username": {"alice"}, "password": {"nope"}}
	for range 2 {
		assert.Equal(t, http.StatusOK, app.post("/login", bad).status)
	}

	hits := app.backend.Hits("/login")
	resp := app.post("/login", url.Values{"username": {"alice"}, "password": {"pw"}})
	assert.Equal(t, http.StatusTooManyRequests, resp.status)
	assert.Contains(t, resp.body, "Too many login attempts.")
	assert.Equal(t, hits, app.backend.Hits("/login"))
	assert.Nil(t, app.sessionCookie())
}

func TestLoginRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.RateLimit.LoginMaxAttempts = 2
		cfg.RateLimit.LoginWindow = time.Hour
	})

	attempt := func(forwardedFor string) int {
		form := url.Values{"username": {"alice"}, "password": {"nope"}}
		req, err := http.NewRequest(http.MethodPost, app.server.URL+"/login", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		req.Header.Set("X-Real-IP", forwardedFor)
		return app.do(req).status
	}

	assert.Equal(t, http.StatusOK, attempt("203.0.113.1"))
	assert.Equal(t, http.StatusOK, attempt("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, attempt("203.0.113.3"))
}

func TestLoginRateLimitBehindTrustedProxy(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.RateLimit.LoginMaxAttempts = 1
		cfg.RateLimit.LoginWindow = time.Hour
		cfg.Server.TrustedProxies = []netip.Prefix{netip.MustParsePrefix("127.0.0.0/8")}
	})

	attempt := func(forwardedFor string) int {
		body := `{"username":"alice","password":"nope"}`
		req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/session/login", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		return app.do(req).status
	}

	assert.Equal(t, http.StatusUnauthorized, attempt("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, attempt("203.0.113.1"))
	assert.Equal(t, http.StatusUnauthorized, attempt("203.0.113.2"))
}

func TestCORSPreflight(t *testing.T) {
	const origin = "https://app.example.com"
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.CORS.Origins = []string{origin}
	})

	req, err := http.NewRequest(http.MethodOptions, app.server.URL+"/api/session/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")

	resp, err := app.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestCrossOriginFormIsRejected(t *testing.T) {
	app := newTestApp(t)
	app.login()
	before := app.backend.Hits("/log_water")

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/log/water", nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")

	resp := app.do(req)
	assert.Equal(t, http.StatusForbidden, resp.status)
	assert.Equal(t, before, app.backend.Hits("/log_water"))
}
