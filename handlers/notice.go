package handlers

import (
	"errors"
	"strconv"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/i18n"
	"github.com/akinalp/wellness-coach/pkg/wellness"
	"github.com/akinalp/wellness-coach/services"
)

// Messages, bir sayfanın hata mesajı anahtarları.
type Messages struct {
	Failed  string // backend mesaj göndermediyse
	Network string // backend'e ulaşılamadıysa
}

// MessageFor, hatayı kullanıcıya gösterilecek metne çevirir.
//
//   - doğrulama hatası → hatanın i18n anahtarı
//   - coach cooldown → coach.tooMany
//   - ağ hatası → m.Network
//   - backend hatası → backend'in mesajı, yoksa m.Failed
func MessageFor(loc *i18n.Localizer, err error, m Messages) string {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return loc.T(verr.Key)
	}

	var cooldown *services.CooldownError
	if errors.As(err, &cooldown) {
		return loc.TWithParams("coach.tooMany", map[string]string{"seconds": strconv.Itoa(cooldown.Seconds)})
	}

	var apiErr *wellness.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return loc.T(m.Failed)
	}

	if errors.Is(err, pkg.ErrUnavailable) {
		return loc.T(m.Network)
	}
	return loc.T(m.Failed)
}

// backendDetail, "Error logging water: <message>" gibi şablonlar için
// backend mesajını, yoksa HTTP status metnini döner.
func backendDetail(err error) string {
	var apiErr *wellness.APIError
	if !errors.As(err, &apiErr) {
		return ""
	}
	return apiErr.StatusText()
}
