package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/i18n"
	"github.com/akinalp/wellness-coach/pkg/ratelimit"
)

// sessionPayload, /api/session yanıtlarının data alanı.
type sessionPayload struct {
	User *models.SessionUser `json:"user"`
}

// SessionAPIHandler, oturumun JSON yüzü. Aynı SessionScope'u kullanır;
// cookie sayfa akışıyla ortaktır.
type SessionAPIHandler struct {
	loginLimiter *ratelimit.LoginLimiter
}

// NewSessionAPIHandler, constructor.
func NewSessionAPIHandler(loginLimiter *ratelimit.LoginLimiter) *SessionAPIHandler {
	return &SessionAPIHandler{loginLimiter: loginLimiter}
}

// Health godoc
// GET /api/health
func (h *SessionAPIHandler) Health(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Current godoc
// GET /api/session
func (h *SessionAPIHandler) Current(w http.ResponseWriter, r *http.Request) {
	user := ScopeFrom(r).Current()
	if user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, i18n.FromContext(r.Context()).T("auth.notLoggedIn"))
		return
	}
	pkg.JSON(w, http.StatusOK, sessionPayload{User: user})
}

// Login godoc
// POST /api/session/login
func (h *SessionAPIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ip := h.loginLimiter.ClientIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		retry := h.loginLimiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			i18n.FromContext(r.Context()).TWithParams("auth.tooManyAttempts", map[string]string{"seconds": strconv.Itoa(retry)}))
		return
	}

	scope := ScopeFrom(r)
	if err := scope.Login(r.Context(), creds.Username, creds.Password); err != nil {
		pkg.ErrorWithMessage(w, pkg.StatusFor(err), loginMessage(i18n.FromContext(r.Context()), err))
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}
	pkg.JSON(w, http.StatusOK, sessionPayload{User: scope.Current()})
}

// Register godoc
// POST /api/session/register
func (h *SessionAPIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ScopeFrom(r).Register(r.Context(), creds.Username, creds.Password); err != nil {
		pkg.ErrorWithMessage(w, pkg.StatusFor(err), registerMessage(i18n.FromContext(r.Context()), err))
		return
	}
	pkg.JSON(w, http.StatusCreated, map[string]string{"message": i18n.FromContext(r.Context()).T("auth.registered")})
}

// Logout godoc
// POST /api/session/logout
func (h *SessionAPIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if scope := ScopeFrom(r); scope != nil {
		_ = scope.Logout(context.WithoutCancel(r.Context()))
	}
	pkg.JSON(w, http.StatusOK, map[string]string{"message": i18n.FromContext(r.Context()).T("auth.loggedOut")})
}
