package repository

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/database"
	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/cache"
	"github.com/akinalp/wellness-coach/pkg/crypto"
)

func newMemoryRepo(t *testing.T) SessionRepository {
	t.Helper()
	c := cache.New[string, *models.Session](time.Hour, time.Minute)
	t.Cleanup(c.Close)
	return NewMemorySessionRepo(c)
}

func newSQLiteRepo(t *testing.T) SessionRepository {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "sessions.db"), database.Migrations(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	key, err := crypto.DeriveKey("test-secret", crypto.PurposeCookieSealing)
	require.NoError(t, err)
	return NewSQLiteSessionRepo(db.Conn, key)
}

func sampleSession(id string, ttl time.Duration) *models.Session {
	now := time.Now().Truncate(time.Second)
	return &models.Session{
		ID:             id,
		User:           models.SessionUser{ID: "7", Username: "alice"},
		BackendCookies: []*http.Cookie{{Name: "session", Value: "backend-token"}},
		ExpiresAt:      now.Add(ttl),
		CreatedAt:      now,
	}
}

func forEachRepo(t *testing.T, fn func(t *testing.T, repo SessionRepository)) {
	t.Run("memory", func(t *testing.T) { fn(t, newMemoryRepo(t)) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteRepo(t)) })
}

func TestCreateAndGet(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo SessionRepository) {
		ctx := context.Background()
		s := sampleSession("s1", time.Hour)
		require.NoError(t, repo.Create(ctx, s))

		got, err := repo.GetByID(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.User.Username)
		assert.Equal(t, models.FlexString("7"), got.User.ID)
		require.Len(t, got.BackendCookies, 1)
		assert.Equal(t, "backend-token", got.BackendCookies[0].Value)
		assert.True(t, got.ExpiresAt.Equal(s.ExpiresAt))

		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, pkg.ErrNotFound)
	})
}

func TestReturnedSessionIsACopy(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo SessionRepository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, sampleSession("s1", time.Hour)))

		got, err := repo.GetByID(ctx, "s1")
		require.NoError(t, err)
		got.BackendCookies[0].Value = "tampered"

		again, err := repo.GetByID(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "backend-token", again.BackendCookies[0].Value)
	})
}

func TestExpiredSessionIsNotFound(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo SessionRepository) {
		ctx := context.Background()
		s := sampleSession("old", time.Minute)
		require.NoError(t, repo.Create(ctx, s))

		switch r := repo.(type) {
		case *memorySessionRepo:
			r.now = func() time.Time { return s.ExpiresAt.Add(time.Second) }
		case *sqliteSessionRepo:
			r.now = func() time.Time { return s.ExpiresAt.Add(time.Second) }
		}

		_, err := repo.GetByID(ctx, "old")
		assert.ErrorIs(t, err, pkg.ErrNotFound)
		assert.ErrorIs(t, repo.UpdateCookies(ctx, "old", nil), pkg.ErrNotFound)
	})
}

func TestReplace(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo SessionRepository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, sampleSession("first", time.Hour)))

		second := sampleSession("second", time.Hour)
		second.User.Username = "bob"
		require.NoError(t, repo.Replace(ctx, "first", second))

		_, err := repo.GetByID(ctx, "first")
		assert.ErrorIs(t, err, pkg.ErrNotFound)

		got, err := repo.GetByID(ctx, "second")
		require.NoError(t, err)
		assert.Equal(t, "bob", got.User.Username)

		require.NoError(t, repo.Replace(ctx, "", sampleSession("third", time.Hour)))
		_, err = repo.GetByID(ctx, "third")
		assert.NoError(t, err)
	})
}

func TestUpdateCookiesAndDelete(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo SessionRepository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, sampleSession("s1", time.Hour)))

		require.NoError(t, repo.UpdateCookies(ctx, "s1", []*http.Cookie{{Name: "session", Value: "rotated"}}))
		got, err := repo.GetByID(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "rotated", got.BackendCookies[0].Value)

		require.NoError(t, repo.UpdateCookies(ctx, "s1", nil))
		got, err = repo.GetByID(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, got.BackendCookies)

		require.NoError(t, repo.Delete(ctx, "s1"))
		_, err = repo.GetByID(ctx, "s1")
		assert.ErrorIs(t, err, pkg.ErrNotFound)

		assert.ErrorIs(t, repo.UpdateCookies(ctx, "s1", nil), pkg.ErrNotFound)
	})
}

func TestSQLiteDeleteExpiredAndSealing(t *testing.T) {
	repo := newSQLiteRepo(t).(*sqliteSessionRepo)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleSession("live", time.Hour)))
	require.NoError(t, repo.Create(ctx, sampleSession("dead", -time.Hour)))

	var sealed string
	require.NoError(t, repo.db.QueryRowContext(ctx,
		"SELECT backend_cookies FROM sessions WHERE id = 'live'").Scan(&sealed))
	assert.NotContains(t, sealed, "backend-token")

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Farklı anahtarla açılan kayıt kullanılamaz.
	repo.cookieKey, _ = crypto.DeriveKey("rotated", crypto.PurposeCookieSealing)
	_, err = repo.GetByID(ctx, "live")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestMemoryCreateRejectsExpired(t *testing.T) {
	repo := newMemoryRepo(t)
	err := repo.Create(context.Background(), sampleSession("x", -time.Minute))
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}
