package handlers

import (
	"net/http"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg/i18n"
	"github.com/akinalp/wellness-coach/services"
)

// CoachContent, AI-Coach sayfasının verisi.
type CoachContent struct {
	ViewID     string
	Draft      models.CoachDraft
	Transcript models.Transcript
	SocketPath string
}

// coachSocketPath, canlı kanal endpoint'i.
const coachSocketPath = "/ai-coach/ws"

// CoachHandler, AI-Coach sayfasını yönetir.
//
// Form akışında transcript sunucuda view id ile tutulur; her GET yeni bir
// view açar. Tarayıcı websocket açabiliyorsa aynı sayfa /ai-coach/ws
// üzerinden çalışır ve form yalnızca yedek olarak kalır.
type CoachHandler struct {
	render *Renderer
	coach  services.CoachService
}

// NewCoachHandler, constructor.
func NewCoachHandler(render *Renderer, coach services.CoachService) *CoachHandler {
	return &CoachHandler{render: render, coach: coach}
}

// Page godoc
// GET /ai-coach
func (h *CoachHandler) Page(w http.ResponseWriter, r *http.Request) {
	view := h.coach.NewView(ScopeFrom(r).SessionID())
	h.render.Render(w, r, http.StatusOK, "coach", Page{
		Title:   "AI Coach",
		Content: CoachContent{ViewID: view.ID, SocketPath: coachSocketPath},
	})
}

// Ask godoc
// POST /ai-coach
//
// Başarılı yanıt transcript'e user/assistant çifti olarak eklenir ve taslak
// temizlenir. Hata durumunda prompt taslakta kalır.
func (h *CoachHandler) Ask(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	draft := models.CoachDraft{Prompt: r.PostFormValue("prompt")}

	view, err := h.coach.Exchange(r.Context(), ScopeFrom(r), r.PostFormValue("view_id"), draft)
	if err != nil {
		if sessionExpired(w, r, err) {
			return
		}
		h.render.Render(w, r, http.StatusOK, "coach", Page{
			Title:  "AI Coach",
			Notice: errorNotice(MessageFor(loc, err, Messages{Failed: "coach.failed", Network: "coach.network"})),
			Content: CoachContent{
				ViewID:     view.ID,
				Draft:      draft,
				Transcript: view.Transcript,
				SocketPath: coachSocketPath,
			},
		})
		return
	}

	h.render.Render(w, r, http.StatusOK, "coach", Page{
		Title: "AI Coach",
		Content: CoachContent{
			ViewID:     view.ID,
			Transcript: view.Transcript,
			SocketPath: coachSocketPath,
		},
	})
}
