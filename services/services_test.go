package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg/cache"
	"github.com/akinalp/wellness-coach/pkg/ratelimit"
	"github.com/akinalp/wellness-coach/pkg/wellness"
	"github.com/akinalp/wellness-coach/pkg/wellness/wellnesstest"
	"github.com/akinalp/wellness-coach/repository"
)

// cookieRecorder, scope'un yazdığı son cookie'yi tutar.
type cookieRecorder struct {
	token   string
	writes  int
	cleared bool
}

func (c *cookieRecorder) write(token string, _ time.Time) {
	c.writes++
	c.token = token
	c.cleared = token == ""
}

// closerSpy, kapatılan oturum id'lerini kaydeder.
type closerSpy struct {
	closed []string
}

func (c *closerSpy) CloseSession(id string) {
	c.closed = append(c.closed, id)
}

type harness struct {
	backend  *wellnesstest.Backend
	client   wellness.Client
	repo     repository.SessionRepository
	sessions SessionService
	closer   *closerSpy
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	backend := wellnesstest.New(t)
	backend.AddUser("alice", "pw")

	store := cache.New[string, *models.Session](time.Hour, time.Minute)
	t.Cleanup(store.Close)
	repo := repository.NewMemorySessionRepo(store)

	client := wellness.NewHTTPClient(wellness.Options{BaseURL: backend.URL, Timeout: 2 * time.Second}, zap.NewNop())
	sessions := NewSessionService(repo, client, []byte("0123456789abcdef0123456789abcdef"), time.Hour, zap.NewNop())

	spy := &closerSpy{}
	sessions.OnClose(spy)

	return &harness{backend: backend, client: client, repo: repo, sessions: sessions, closer: spy}
}

// login, yeni bir scope açıp alice ile giriş yapar ve cookie token'ını döner.
func (h *harness) login(t *testing.T) (*SessionScope, *cookieRecorder) {
	t.Helper()
	rec := &cookieRecorder{}
	scope := h.sessions.Open(context.Background(), "", rec.write)
	require.NoError(t, scope.Login(context.Background(), "alice", "pw"))
	return scope, rec
}

func newCoach(t *testing.T, h *harness, maxPrompts int) CoachService {
	t.Helper()
	views := cache.New[string, models.Transcript](time.Hour, time.Minute)
	t.Cleanup(views.Close)
	limiter := ratelimit.NewPromptLimiter(maxPrompts, time.Minute, time.Minute)
	t.Cleanup(limiter.Close)
	return NewCoachService(h.client, views, limiter, zap.NewNop())
}
