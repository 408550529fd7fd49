package wellness

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/akinalp/wellness-coach/pkg"
)

// APIError, backend'in 2xx dışı bir status ile döndüğü yanıt.
// Message, yanıt gövdesindeki "message" veya "error" alanıdır; yoksa boş.
//
// Unwrap status'a göre pkg sentinel'ine eşlenir:
//
//	errors.Is(err, pkg.ErrAlreadyExists) // 409
type APIError struct {
	Status  int
	Message string

	// Location, 3xx yanıtın yönlendirme hedefi.
	Location string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

func (e *APIError) Unwrap() error {
	if e.Status >= 300 && e.Status < 400 {
		if redirectsToLogin(e.Location) {
			return pkg.ErrUnauthorized
		}
		return pkg.ErrInternal
	}

	switch e.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkg.ErrBadRequest
	case http.StatusUnauthorized:
		return pkg.ErrUnauthorized
	case http.StatusForbidden:
		return pkg.ErrForbidden
	case http.StatusNotFound:
		return pkg.ErrNotFound
	case http.StatusConflict:
		return pkg.ErrAlreadyExists
	case http.StatusTooManyRequests:
		return pkg.ErrTooManyRequests
	default:
		return pkg.ErrInternal
	}
}

// redirectsToLogin, Location'ın path'i /login ise true döner
// (query ve host önemsiz: "/login?next=/log_water", "http://x/login").
func redirectsToLogin(location string) bool {
	if location == "" {
		return false
	}
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return strings.TrimSuffix(u.Path, "/") == pathLogin
}

// StatusText, mesaj yoksa status'un standart metnini döner.
func (e *APIError) StatusText() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// errorBody, backend hata gövdesinin iki olası şekli.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
