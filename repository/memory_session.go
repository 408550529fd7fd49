package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/cache"
)

// memorySessionRepo, SessionRepository'nin bellek içi implementasyonu.
// Her kayıt kendi ExpiresAt'ine göre TTL alır.
type memorySessionRepo struct {
	sessions *cache.TTLCache[string, *models.Session]
	now      func() time.Time
}

// NewMemorySessionRepo, constructor. sessions cache'inin ömrünü çağıran yönetir.
func NewMemorySessionRepo(sessions *cache.TTLCache[string, *models.Session]) SessionRepository {
	return &memorySessionRepo{sessions: sessions, now: time.Now}
}

func (r *memorySessionRepo) Create(_ context.Context, session *models.Session) error {
	ttl := session.TTL(r.now())
	if ttl == 0 {
		return fmt.Errorf("%w: session already expired", pkg.ErrBadRequest)
	}
	r.sessions.SetWithTTL(session.ID, cloneSession(session), ttl)
	return nil
}

func (r *memorySessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	s, ok := r.sessions.Get(id)
	if !ok || s.IsExpired(r.now()) {
		return nil, pkg.ErrNotFound
	}
	return cloneSession(s), nil
}

func (r *memorySessionRepo) Replace(ctx context.Context, oldID string, session *models.Session) error {
	if oldID != "" {
		r.sessions.Delete(oldID)
	}
	return r.Create(ctx, session)
}

func (r *memorySessionRepo) UpdateCookies(_ context.Context, id string, cookies []*http.Cookie) error {
	now := r.now()
	expired := false
	ok := r.sessions.Update(id, func(s *models.Session) *models.Session {
		if s.IsExpired(now) {
			expired = true
			return s
		}
		c := cloneSession(s)
		c.BackendCookies = cloneCookies(cookies)
		return c
	})
	if !ok || expired {
		return pkg.ErrNotFound
	}
	return nil
}

func (r *memorySessionRepo) Delete(_ context.Context, id string) error {
	r.sessions.Delete(id)
	return nil
}

// DeleteExpired, cache kendi temizliğini yaptığı için burada iş yoktur.
func (r *memorySessionRepo) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}
