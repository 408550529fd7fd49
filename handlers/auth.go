// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi "ince" olmalı:
// 1. Formu veya JSON body'yi parse et
// 2. Service katmanını çağır
// 3. Sonucu sayfa (veya JSON) olarak döndür
//
// Handler iş mantığı içermez; doğrulama taslak tiplerinde, backend
// çağrıları service'lerdedir.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/i18n"
	"github.com/akinalp/wellness-coach/pkg/ratelimit"
)

// AuthForm, login/register formunun taslağı. Şifre hiçbir zaman
// geri render edilmez.
type AuthForm struct {
	Username string
}

// AuthHandler, login, register ve logout sayfalarını yönetir.
type AuthHandler struct {
	render       *Renderer
	loginLimiter *ratelimit.LoginLimiter
}

// NewAuthHandler, constructor.
// loginLimiter nil ise rate limiting devre dışı kalır.
func NewAuthHandler(render *Renderer, loginLimiter *ratelimit.LoginLimiter) *AuthHandler {
	return &AuthHandler{render: render, loginLimiter: loginLimiter}
}

// LoginPage godoc
// GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	page := Page{Title: "Login", Content: AuthForm{}}

	switch {
	case r.URL.Query().Has("registered"):
		page.Notice = successNotice(loc.T("auth.registered"))
	case r.URL.Query().Has("expired"):
		page.Notice = errorNotice(loc.T("auth.sessionExpired"))
	}

	h.render.Render(w, r, http.StatusOK, "login", page)
}

// Login godoc
// POST /login
//
// IP bazlı brute-force koruması: limit aşılırsa backend'e gidilmez,
// 429 ile form tekrar gösterilir. Başarılı login sayacı sıfırlar.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	form := AuthForm{Username: r.PostFormValue("username")}
	password := r.PostFormValue("password")

	ip := h.loginLimiter.ClientIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		retry := h.loginLimiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		h.render.Render(w, r, http.StatusTooManyRequests, "login", Page{
			Title:   "Login",
			Notice:  errorNotice(loc.TWithParams("auth.tooManyAttempts", map[string]string{"seconds": strconv.Itoa(retry)})),
			Content: form,
		})
		return
	}

	if err := ScopeFrom(r).Login(r.Context(), form.Username, password); err != nil {
		h.render.Render(w, r, http.StatusOK, "login", Page{
			Title:   "Login",
			Notice:  errorNotice(loginMessage(loc, err)),
			Content: form,
		})
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func loginMessage(loc *i18n.Localizer, err error) string {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return loc.T(verr.Key)
	case errors.Is(err, pkg.ErrUnavailable):
		return loc.T("auth.loginNetwork")
	default:
		return loc.T("auth.invalidCredentials")
	}
}

// RegisterPage godoc
// GET /register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "register", Page{Title: "Register", Content: AuthForm{}})
}

// Register godoc
// POST /register
//
// Başarılı kayıt login sayfasına yönlendirir; oturum açılmaz.
// 409 ve diğer hatalar register sayfasında gösterilir.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	form := AuthForm{Username: r.PostFormValue("username")}

	err := ScopeFrom(r).Register(r.Context(), form.Username, r.PostFormValue("password"))
	if err == nil {
		http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
		return
	}

	h.render.Render(w, r, http.StatusOK, "register", Page{
		Title:   "Register",
		Notice:  errorNotice(registerMessage(loc, err)),
		Content: form,
	})
}

func registerMessage(loc *i18n.Localizer, err error) string {
	if errors.Is(err, pkg.ErrAlreadyExists) {
		return loc.T("auth.registerConflict")
	}
	return MessageFor(loc, err, Messages{Failed: "auth.registerFailed", Network: "auth.registerNetwork"})
}

// Logout godoc
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if scope := ScopeFrom(r); scope != nil {
		// Yerel oturum her durumda silinir; hata sadece loglanır.
		_ = scope.Logout(context.WithoutCancel(r.Context()))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
