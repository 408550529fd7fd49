package middleware

import (
	"net/http"
	"time"

	"github.com/akinalp/wellness-coach/handlers"
	"github.com/akinalp/wellness-coach/pkg/i18n"
	"github.com/akinalp/wellness-coach/services"
)

// SessionCookieName, oturum JWT'sini taşıyan cookie.
const SessionCookieName = "wellness_session"

// SessionMiddleware, her istekte oturum scope'unu ve dil ayarını
// context'e koyar. Oturum handler çalışmadan önce çözülür.
type SessionMiddleware struct {
	sessions services.SessionService
	secure   bool
}

// NewSessionMiddleware, constructor.
// secure: cookie'ye Secure bayrağı eklenir (HTTPS arkasında true).
func NewSessionMiddleware(sessions services.SessionService, secure bool) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, secure: secure}
}

// Attach, middleware'ın kendisi.
func (m *SessionMiddleware) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := i18n.NewLocalizer(i18n.DetectLanguage(r.Header.Get("Accept-Language")))
		ctx := i18n.WithLocalizer(r.Context(), loc)

		var token string
		if c, err := r.Cookie(SessionCookieName); err == nil {
			token = c.Value
		}

		scope := m.sessions.Open(ctx, token, m.cookieWriter(w))
		ctx = handlers.WithScope(ctx, scope)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cookieWriter, scope'un cookie'yi bu yanıta yazmasını sağlar.
// Boş token cookie'yi siler.
func (m *SessionMiddleware) cookieWriter(w http.ResponseWriter) services.CookieWriter {
	return func(token string, expiresAt time.Time) {
		c := &http.Cookie{
			Name:     SessionCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		}
		if token == "" {
			c.MaxAge = -1
		} else {
			c.Expires = expiresAt
		}
		http.SetCookie(w, c)
	}
}
