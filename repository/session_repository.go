// Package repository, sunucu tarafı oturum kayıtlarının saklanmasını soyutlar.
//
// İki implementasyon vardır:
//   - memorySessionRepo: TTL cache üzerinde, süreç yeniden başlarsa oturumlar düşer.
//   - sqliteSessionRepo: SQLite üzerinde, backend cookie'leri şifreli saklanır.
package repository

import (
	"context"
	"net/http"

	"github.com/akinalp/wellness-coach/models"
)

// SessionRepository, oturum kayıtları için interface.
// Süresi dolmuş bir kayıt hiçbir okumada dönmez (pkg.ErrNotFound).
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)

	// Replace, oldID kaydını siler ve session'ı oluşturur; ikisi birlikte olur.
	// oldID boş veya mevcut değilse sadece oluşturur.
	Replace(ctx context.Context, oldID string, session *models.Session) error

	UpdateCookies(ctx context.Context, id string, cookies []*http.Cookie) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// cloneSession, kayıt ile çağıran arasında paylaşılan slice bırakmaz.
func cloneSession(s *models.Session) *models.Session {
	c := *s
	c.BackendCookies = cloneCookies(s.BackendCookies)
	return &c
}

func cloneCookies(in []*http.Cookie) []*http.Cookie {
	if in == nil {
		return nil
	}
	out := make([]*http.Cookie, len(in))
	for i, ck := range in {
		cp := *ck
		out[i] = &cp
	}
	return out
}
