package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/i18n"
	"github.com/akinalp/wellness-coach/pkg/wellness"
	"github.com/akinalp/wellness-coach/services"
)

func TestMain(m *testing.M) {
	if err := i18n.LoadEmbedded(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestMessageFor(t *testing.T) {
	loc := i18n.NewLocalizer("en")
	msgs := Messages{Failed: "food.failed", Network: "food.network"}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &models.ValidationError{Key: "food.required"}, "Please enter a food item."},
		{"cooldown", fmt.Errorf("ask: %w", &services.CooldownError{Seconds: 3}), "You are sending messages too quickly. Please wait 3 seconds."},
		{"backend message", &wellness.APIError{Status: 400, Message: "Missing food_item"}, "Missing food_item"},
		{"backend without message", &wellness.APIError{Status: 500}, "Failed to log food"},
		{"network", fmt.Errorf("post: %w", pkg.ErrUnavailable), "Error logging food"},
		{"unknown", errors.New("boom"), "Failed to log food"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MessageFor(loc, tt.err, msgs))
		})
	}
}

func TestBackendDetail(t *testing.T) {
	assert.Equal(t, "Too big", backendDetail(&wellness.APIError{Status: 400, Message: "Too big"}))
	assert.NotEmpty(t, backendDetail(&wellness.APIError{Status: 500}))
	assert.Empty(t, backendDetail(errors.New("boom")))
}

var testTemplates = fstest.MapFS{
	"layout.html": {Data: []byte(`{{define "layout"}}<html lang="{{.Lang}}">{{with .Notice}}<p class="{{.Kind}}">{{.Text}}</p>{{end}}{{template "content" .}}</html>{{end}}`)},
	"hello.html":  {Data: []byte(`{{define "content"}}hello {{.Content}}{{end}}`)},
	"other.html":  {Data: []byte(`{{define "content"}}other {{.Content | lower}}{{end}}`)},
	"broken.html": {Data: []byte(`{{define "content"}}{{.Content.Missing}}{{end}}`)},
}

func TestRendererKeepsPagesApart(t *testing.T) {
	rd, err := NewRenderer(testTemplates, zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, "hello", Page{
		Content: "<world>",
		Notice:  successNotice("saved"),
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `<html lang="en"><p class="success">saved</p>hello &lt;world&gt;</html>`, rec.Body.String())

	rec = httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "other", Page{Content: "LOUD"})
	assert.Equal(t, `<html lang="en">other loud</html>`, rec.Body.String())
}

func TestRendererFailures(t *testing.T) {
	rd, err := NewRenderer(testTemplates, zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing", Page{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// Yarım sayfa gönderilmez.
	rec = httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "broken", Page{Content: 42})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<html")
}

func TestNewRendererRequiresLayout(t *testing.T) {
	_, err := NewRenderer(fstest.MapFS{"hello.html": testTemplates["hello.html"]}, zap.NewNop())
	assert.Error(t, err)
}
