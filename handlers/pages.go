package handlers

import "net/http"

// PageHandler, kök yönlendirme ve 404 sayfası.
type PageHandler struct {
	render *Renderer
}

// NewPageHandler, constructor.
func NewPageHandler(render *Renderer) *PageHandler {
	return &PageHandler{render: render}
}

// Home godoc
// GET /
//
// "/" pattern'i tüm eşleşmeyen path'leri de yakalar; onlar 404'e düşer.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}

	if scope := ScopeFrom(r); scope != nil && scope.Current() != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// NotFound, 404 sayfasını render eder.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusNotFound, "notfound", Page{Title: "Not Found"})
}
