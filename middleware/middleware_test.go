package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/akinalp/wellness-coach/handlers"
	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg/cache"
	"github.com/akinalp/wellness-coach/pkg/i18n"
	"github.com/akinalp/wellness-coach/pkg/wellness"
	"github.com/akinalp/wellness-coach/pkg/wellness/wellnesstest"
	"github.com/akinalp/wellness-coach/repository"
	"github.com/akinalp/wellness-coach/services"
)

func TestMain(m *testing.M) {
	if err := i18n.LoadEmbedded(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newSessions(t *testing.T) services.SessionService {
	t.Helper()

	backend := wellnesstest.New(t)
	backend.AddUser("alice", "pw")

	store := cache.New[string, *models.Session](time.Hour, time.Minute)
	t.Cleanup(store.Close)

	client := wellness.NewHTTPClient(wellness.Options{BaseURL: backend.URL, Timeout: 2 * time.Second}, zap.NewNop())
	return services.NewSessionService(repository.NewMemorySessionRepo(store), client,
		[]byte("0123456789abcdef0123456789abcdef"), time.Hour, zap.NewNop())
}

// loginToken, alice için oturum açıp cookie değerini döner.
func loginToken(t *testing.T, sessions services.SessionService) string {
	t.Helper()
	var token string
	scope := sessions.Open(context.Background(), "", func(v string, _ time.Time) { token = v })
	require.NoError(t, scope.Login(context.Background(), "alice", "pw"))
	require.NotEmpty(t, token)
	return token
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestDecide(t *testing.T) {
	assert.Equal(t, Unauthorized, Decide(nil))
	assert.Equal(t, Authorized, Decide(&models.SessionUser{Username: "alice"}))
	assert.Equal(t, "UNAUTHORIZED", Unauthorized.String())
	assert.Equal(t, "AUTHORIZED", Authorized.String())
}

func TestGuardsWithoutScope(t *testing.T) {
	tests := []struct {
		name     string
		guard    func(http.Handler) http.Handler
		status   int
		location string
	}{
		{"require", Require, http.StatusFound, "/login"},
		{"require api", RequireAPI, http.StatusUnauthorized, ""},
		{"guest only", GuestOnly, http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.guard(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestAttachResolvesSession(t *testing.T) {
	sessions := newSessions(t)
	token := loginToken(t, sessions)
	mw := NewSessionMiddleware(sessions, false)

	var seen *models.SessionUser
	handler := mw.Attach(Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = handlers.ScopeFrom(r).Current()
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "alice", seen.Username)

	// Guest sayfası oturum açık kullanıcıyı dashboard'a gönderir.
	rec = httptest.NewRecorder()
	mw.Attach(GuestOnly(okHandler)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestAttachIgnoresGarbageCookie(t *testing.T) {
	mw := NewSessionMiddleware(newSessions(t), false)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-jwt"})
	rec := httptest.NewRecorder()
	mw.Attach(Require(okHandler)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestSessionCookieAttributes(t *testing.T) {
	sessions := newSessions(t)
	mw := NewSessionMiddleware(sessions, true)

	login := mw.Attach(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, handlers.ScopeFrom(r).Login(r.Context(), "alice", "pw"))
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.NotEmpty(t, c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.WithinDuration(t, time.Now().Add(time.Hour), c.Expires, time.Minute)

	logout := mw.Attach(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, handlers.ScopeFrom(r).Logout(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.Value})
	rec = httptest.NewRecorder()
	logout.ServeHTTP(rec, req)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.Negative(t, cleared[0].MaxAge)
}

func TestAttachDetectsLanguage(t *testing.T) {
	mw := NewSessionMiddleware(newSessions(t), false)

	var lang string
	handler := mw.Attach(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		lang = i18n.FromContext(r.Context()).Lang()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en;q=0.8")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "tr", lang)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "en", lang)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	failing := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	silent := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	RequestLogger(log)(failing).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/log/water?amount=1", nil))
	RequestLogger(log)(silent).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/log/water", fields["path"])
	assert.Equal(t, int64(http.StatusBadGateway), fields["status"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusOK), entries[1].ContextMap()["status"])
}

func TestStatusRecorderHijackUnsupported(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, _, err := rec.Hijack()
	assert.Error(t, err)
	assert.NotNil(t, rec.Unwrap())
}
