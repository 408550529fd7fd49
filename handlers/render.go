package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg/i18n"
)

// NoticeKind, sayfa üstünde gösterilen bildirimin türü.
type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
)

// Notice, sayfada gösterilen tek satırlık bildirim.
type Notice struct {
	Kind NoticeKind
	Text string
}

func errorNotice(text string) *Notice   { return &Notice{Kind: NoticeError, Text: text} }
func successNotice(text string) *Notice { return &Notice{Kind: NoticeSuccess, Text: text} }

// Page, her şablona verilen ortak görünüm modeli.
// Content sayfaya özgü veridir (form taslağı, log listeleri vb.).
type Page struct {
	Title   string
	Lang    string
	Loc     *i18n.Localizer
	User    *models.SessionUser
	Notice  *Notice
	Content any
}

// Renderer, layout + sayfa şablonlarını tutar.
//
// Her sayfa, ortak layout'un bir klonu üzerine parse edilir;
// böylece her sayfanın {{define "content"}} bloğu birbirini ezmez.
type Renderer struct {
	pages map[string]*template.Template
	log   *zap.Logger
}

// NewRenderer, files içindeki layout.html ve diğer *.html sayfalarını yükler.
func NewRenderer(files fs.FS, log *zap.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"lower": strings.ToLower,
	}

	base, err := template.New("base").Funcs(funcs).ParseFS(files, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	names, err := fs.Glob(files, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == "layout.html" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}
		if _, err := clone.ParseFS(files, name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), ".html")] = clone
	}

	return &Renderer{pages: pages, log: log}, nil
}

// Render, sayfayı önce belleğe yazar, hata yoksa status ile gönderir.
// Yarım kalmış HTML istemciye gitmez.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	tmpl, ok := rd.pages[name]
	if !ok {
		rd.log.Error("template not found", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if page.Loc == nil {
		page.Loc = i18n.FromContext(r.Context())
	}
	page.Lang = page.Loc.Lang()
	if page.User == nil {
		if scope := ScopeFrom(r); scope != nil {
			page.User = scope.Current()
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		rd.log.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
