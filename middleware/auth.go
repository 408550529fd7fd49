// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Her istek sırayla şu katmanlardan geçer:
//
//	RequestLogger → Session → (Require | RequireAPI | GuestOnly) → Handler
//
// Go'da middleware bir fonksiyondur: func(next http.Handler) http.Handler.
// Middleware kendi işini yapar, sonra next'i çağırır; hata varsa çağırmaz.
package middleware

import (
	"net/http"

	"github.com/akinalp/wellness-coach/handlers"
	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/i18n"
)

// GuardState, route guard'ın iki durumu.
type GuardState int

const (
	Unauthorized GuardState = iota
	Authorized
)

func (s GuardState) String() string {
	if s == Authorized {
		return "AUTHORIZED"
	}
	return "UNAUTHORIZED"
}

// Decide, oturumdaki kullanıcıya göre guard durumunu döner.
func Decide(user *models.SessionUser) GuardState {
	if user == nil {
		return Unauthorized
	}
	return Authorized
}

func stateOf(r *http.Request) GuardState {
	scope := handlers.ScopeFrom(r)
	if scope == nil {
		return Unauthorized
	}
	return Decide(scope.Current())
}

// Require, HTML sayfaları için oturum zorunlu kılar.
// Oturum yoksa handler çalışmaz, /login'e 302 ile yönlendirilir.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if stateOf(r) == Unauthorized {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPI, JSON ve websocket endpoint'leri için oturum zorunlu kılar.
// Oturum yoksa 401 envelope döner.
func RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if stateOf(r) == Unauthorized {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, i18n.FromContext(r.Context()).T("auth.notLoggedIn"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GuestOnly, login/register gibi sayfalarda oturum açık kullanıcıyı
// dashboard'a yönlendirir.
func GuestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if stateOf(r) == Authorized {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
