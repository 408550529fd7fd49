package handlers

import (
	"context"
	"net/http"

	"github.com/akinalp/wellness-coach/services"
)

// contextKey, context'te değer taşımak için kullanılan key tipi.
// String yerine özel tip kullanmak başka paketlerin key'leriyle çakışmayı önler.
type contextKey string

// ScopeContextKey, isteğin oturum scope'unun context key'i.
// Session middleware her istekte set eder.
const ScopeContextKey contextKey = "session_scope"

// WithScope, scope'u context'e ekler.
func WithScope(ctx context.Context, scope *services.SessionScope) context.Context {
	return context.WithValue(ctx, ScopeContextKey, scope)
}

// ScopeFrom, isteğin oturum scope'unu döner. Middleware'dan geçmeyen
// isteklerde (testler) nil döner.
func ScopeFrom(r *http.Request) *services.SessionScope {
	scope, _ := r.Context().Value(ScopeContextKey).(*services.SessionScope)
	return scope
}

// sessionExpired, backend oturumu reddettiyse (401) yerel oturumu siler ve
// login sayfasına yönlendirir. Yönlendirme yapıldıysa true döner.
func sessionExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	scope := ScopeFrom(r)
	if scope == nil || !scope.CheckAuth(r.Context(), err) {
		return false
	}
	http.Redirect(w, r, "/login?expired=1", http.StatusSeeOther)
	return true
}
