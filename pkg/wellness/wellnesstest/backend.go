// Package wellnesstest, testler için bellek içi sahte bir wellness backend'i
// sağlar. Gerçek backend gibi cookie tabanlı oturum kullanır, her path'e
// gelen istekleri sayar ve path bazında hata enjekte etmeye izin verir.
package wellnesstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// CookieName, sahte backend'in oturum cookie'si.
const CookieName = "session"

// Backend, sahte wellness API'si.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]user
	sessions map[string]string // cookie değeri → username
	hits     map[string]int
	bodies   map[string][]map[string]any
	failures map[string]failure
	nextID   int

	// LoginRedirect true ise oturumsuz istekler 401 yerine /login'e 302
	// ile yönlendirilir (Flask-Login'in login_view davranışı).
	loginRedirect bool

	Food       []map[string]any
	Water      []map[string]any
	Exercise   []map[string]any
	CoachReply string
	CoachKey   string // "response" (varsayılan) veya "advice"
	Nutrition  map[string]any
}

type user struct {
	id       int
	password string
}

type failure struct {
	status int
	body   string
}

// New, sahte backend'i başlatır; test bitince kapatılır.
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		users:      make(map[string]user),
		sessions:   make(map[string]string),
		hits:       make(map[string]int),
		bodies:     make(map[string][]map[string]any),
		failures:   make(map[string]failure),
		nextID:     1,
		CoachReply: "Drink more water.",
		CoachKey:   "response",
		Nutrition: map[string]any{
			"calories": "Approx. 350 kcal",
			"protein":  "Approx. 20 g",
			"carbs":    "Approx. 40 g",
			"fat":      "Approx. 10 g",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", b.register)
	mux.HandleFunc("POST /login", b.login)
	mux.HandleFunc("POST /logout", b.authed(b.logout))
	mux.HandleFunc("GET /user/logs/food", b.authed(b.list(&b.Food)))
	mux.HandleFunc("GET /user/logs/water", b.authed(b.list(&b.Water)))
	mux.HandleFunc("GET /user/logs/exercise", b.authed(b.list(&b.Exercise)))
	mux.HandleFunc("POST /log_food", b.authed(b.created("Food logged successfully")))
	mux.HandleFunc("POST /log_water", b.authed(b.created("Water logged successfully")))
	mux.HandleFunc("POST /log_exercise", b.authed(b.created("Exercise logged successfully")))
	mux.HandleFunc("POST /get_nutrition", b.authed(b.nutrition))
	mux.HandleFunc("POST /ai-coach", b.authed(b.coach))

	b.Server = httptest.NewServer(b.record(mux))
	t.Cleanup(b.Close)
	return b
}

// AddUser, kayıtlı bir kullanıcı ekler.
func (b *Backend) AddUser(username, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[username] = user{id: b.nextID, password: password}
	b.nextID++
}

// FailWith, path'e gelen sonraki tüm isteklere status ve gövde ile yanıt verir.
func (b *Backend) FailWith(path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = failure{status: status, body: body}
}

// Recover, path için enjekte edilen hatayı kaldırır.
func (b *Backend) Recover(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, path)
}

// RedirectUnauthenticated, oturumsuz istekleri 401 yerine /login'e
// yönlendirir.
func (b *Backend) RedirectUnauthenticated() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginRedirect = true
}

// ExpireSessions, tüm backend oturumlarını düşürür (sonraki çağrılar 401).
func (b *Backend) ExpireSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = make(map[string]string)
}

// Hits, path'e gelen istek sayısı.
func (b *Backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

// TotalHits, tüm path'lere gelen istek sayısı.
func (b *Backend) TotalHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, h := range b.hits {
		n += h
	}
	return n
}

// LastBody, path'e gönderilen son JSON gövdesi.
func (b *Backend) LastBody(path string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	bodies := b.bodies[path]
	if len(bodies) == 0 {
		return nil
	}
	return bodies[len(bodies)-1]
}

// LiveSessions, backend tarafında açık oturum sayısı.
func (b *Backend) LiveSessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		b.mu.Lock()
		b.hits[r.URL.Path]++
		if body != nil {
			b.bodies[r.URL.Path] = append(b.bodies[r.URL.Path], body)
		}
		f, failing := b.failures[r.URL.Path]
		b.mu.Unlock()

		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}

		r = r.WithContext(withBody(r.Context(), body))
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authed(next func(w http.ResponseWriter, r *http.Request, username string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(CookieName)
		b.mu.Lock()
		username, ok := "", false
		if err == nil {
			username, ok = b.sessions[ck.Value]
		}
		b.mu.Unlock()

		if !ok {
			b.mu.Lock()
			redirect := b.loginRedirect
			b.mu.Unlock()
			if redirect {
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
			return
		}
		next(w, r, username)
	}
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	username, _ := body["username"].(string)
	password, _ := body["password"].(string)
	if username == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Username and password are required"})
		return
	}

	b.mu.Lock()
	_, exists := b.users[username]
	b.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "Username already exists"})
		return
	}

	b.AddUser(username, password)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully"})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	username, _ := body["username"].(string)
	password, _ := body["password"].(string)

	b.mu.Lock()
	u, ok := b.users[username]
	b.mu.Unlock()
	if !ok || u.password != password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid username or password"})
		return
	}

	token := uuid.NewString()
	b.mu.Lock()
	b.sessions[token] = username
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Logged in successfully",
		"user":    map[string]any{"id": u.id, "username": username},
	})
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request, _ string) {
	ck, _ := r.Cookie(CookieName)
	b.mu.Lock()
	delete(b.sessions, ck.Value)
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}

func (b *Backend) list(items *[]map[string]any) func(http.ResponseWriter, *http.Request, string) {
	return func(w http.ResponseWriter, _ *http.Request, _ string) {
		b.mu.Lock()
		out := append([]map[string]any{}, *items...)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, out)
	}
}

func (b *Backend) created(message string) func(http.ResponseWriter, *http.Request, string) {
	return func(w http.ResponseWriter, _ *http.Request, _ string) {
		writeJSON(w, http.StatusCreated, map[string]any{"message": message})
	}
}

func (b *Backend) nutrition(w http.ResponseWriter, r *http.Request, _ string) {
	desc, _ := bodyFrom(r.Context())["food_description"].(string)
	if desc == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing food description"})
		return
	}
	writeJSON(w, http.StatusOK, b.Nutrition)
}

func (b *Backend) coach(w http.ResponseWriter, r *http.Request, _ string) {
	prompt, _ := bodyFrom(r.Context())["prompt"].(string)
	if prompt == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Prompt is required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{b.CoachKey: b.CoachReply})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// UserID, kayıtlı kullanıcının backend id'sini döner (string).
func (b *Backend) UserID(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[username]
	if !ok {
		panic(fmt.Sprintf("wellnesstest: unknown user %q", username))
	}
	return strconv.Itoa(u.id)
}
