package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/wellness"
)

// Authenticator, bir ziyaretçinin oturumu üzerindeki işlemler.
// Sayfalar global bir durum yerine bu arayüzü request context'inden alır.
type Authenticator interface {
	Current() *models.SessionUser
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
}

// Caller, backend'e oturum adına çağrı yapan servislerin ihtiyacı.
type Caller interface {
	Current() *models.SessionUser
	SessionID() string
	Jar(ctx context.Context) wellness.CookieStore
}

// SessionScope, tek bir isteğin (veya bir websocket bağlantısının) oturum
// bağlamı. Authenticator ve Caller'ı karşılar.
//
// Oturum ya yoktur (AUTHORIZED değil) ya da tam olarak bir kayıttır.
// Login mevcut kaydı değiştirir, Logout ve Invalidate siler.
type SessionScope struct {
	svc   *sessionService
	write CookieWriter

	mu      sync.Mutex
	session *models.Session
}

var (
	_ Authenticator = (*SessionScope)(nil)
	_ Caller        = (*SessionScope)(nil)
)

// Current, oturumdaki kullanıcıyı döner; çıkış yapılmışsa nil.
func (s *SessionScope) Current() *models.SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	u := s.session.User
	return &u
}

// SessionID, oturum kaydının id'si; çıkış yapılmışsa boş.
func (s *SessionScope) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return ""
	}
	return s.session.ID
}

// Login, kimlik bilgilerini backend'e gönderir. Başarılı olursa yeni bir
// oturum kaydı oluşturur (varsa öncekini siler) ve cookie'yi yazar.
// Başarısız olursa oturum değişmez.
func (s *SessionScope) Login(ctx context.Context, username, password string) error {
	creds := models.Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}

	jar := &wellness.MemoryJar{}
	user, err := s.svc.backend.Login(ctx, jar, creds)
	if err != nil {
		s.svc.log.Info("login rejected", zap.String("username", creds.Username), zap.Error(err))
		return err
	}

	next := s.svc.newSession(user, jar)
	token, err := s.svc.issueToken(next)
	if err != nil {
		return err
	}

	previous := s.SessionID()
	if err := s.svc.repo.Replace(ctx, previous, next); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = next
	s.mu.Unlock()

	if previous != "" {
		s.svc.closeSession(previous)
	}
	s.write(token, next.ExpiresAt)

	s.svc.log.Info("session started",
		zap.String("sid", next.ID),
		zap.String("username", user.Username),
	)
	return nil
}

// Register, kimlik bilgilerini backend'e gönderir. Oturumu değiştirmez.
func (s *SessionScope) Register(ctx context.Context, username, password string) error {
	creds := models.Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}

	if err := s.svc.backend.Register(ctx, creds); err != nil {
		s.svc.log.Info("registration rejected", zap.String("username", creds.Username), zap.Error(err))
		return err
	}

	s.svc.log.Info("user registered", zap.String("username", creds.Username))
	return nil
}

// Logout, oturumu kapatır. Backend'e haber vermek best-effort'tur;
// başarısızlığı loglanır ama oturum yine de yerelde silinir.
func (s *SessionScope) Logout(ctx context.Context) error {
	session := s.detach()
	if session == nil {
		return nil
	}

	jar := &wellness.MemoryJar{}
	jar.SetCookies(session.BackendCookies)
	if err := s.svc.backend.Logout(ctx, jar); err != nil {
		s.svc.log.Warn("backend logout failed", zap.String("sid", session.ID), zap.Error(err))
	}

	if err := s.svc.repo.Delete(ctx, session.ID); err != nil {
		s.svc.log.Error("failed to delete session", zap.String("sid", session.ID), zap.Error(err))
		return err
	}

	s.svc.closeSession(session.ID)
	s.svc.log.Info("session ended", zap.String("sid", session.ID))
	return nil
}

// Invalidate, backend oturumu reddettiğinde (401) yerel oturumu siler.
// Backend'e çağrı yapılmaz.
func (s *SessionScope) Invalidate(ctx context.Context) {
	session := s.detach()
	if session == nil {
		return
	}

	if err := s.svc.repo.Delete(ctx, session.ID); err != nil {
		s.svc.log.Error("failed to delete invalidated session", zap.String("sid", session.ID), zap.Error(err))
	}
	s.svc.closeSession(session.ID)
	s.svc.log.Info("session invalidated", zap.String("sid", session.ID))
}

// CheckAuth, err backend'in oturumu reddettiğini gösteriyorsa oturumu siler
// ve true döner.
func (s *SessionScope) CheckAuth(ctx context.Context, err error) bool {
	if !errors.Is(err, pkg.ErrUnauthorized) {
		return false
	}
	s.Invalidate(ctx)
	return true
}

// Jar, backend cookie'lerini oturum kaydına bağlayan CookieStore döner.
// Backend yeni cookie gönderirse kayıt ctx ile güncellenir.
func (s *SessionScope) Jar(ctx context.Context) wellness.CookieStore {
	return &sessionJar{scope: s, ctx: ctx}
}

// detach, oturumu scope'tan ayırır ve cookie'yi siler.
func (s *SessionScope) detach() *models.Session {
	s.mu.Lock()
	session := s.session
	s.session = nil
	s.mu.Unlock()

	if session != nil {
		s.clearCookie()
	}
	return session
}

func (s *SessionScope) clearCookie() {
	if s.write != nil {
		s.write("", time.Time{})
	}
}

// sessionJar, SessionScope'u wellness.CookieStore olarak sunar.
// Dashboard paralel çağrı yaptığı için erişim scope mutex'i ile korunur.
type sessionJar struct {
	scope *SessionScope
	ctx   context.Context
}

func (j *sessionJar) Cookies() []*http.Cookie {
	j.scope.mu.Lock()
	defer j.scope.mu.Unlock()

	if j.scope.session == nil {
		return nil
	}
	return j.scope.session.BackendCookies
}

// SetCookies, birleştirme ve kalıcı yazma aynı kilit altında yapılır;
// paralel iki yanıtın Set-Cookie'si birbirini kaybettirmez.
func (j *sessionJar) SetCookies(incoming []*http.Cookie) {
	j.scope.mu.Lock()
	defer j.scope.mu.Unlock()

	session := j.scope.session
	if session == nil {
		return
	}
	merged := wellness.MergeCookies(session.BackendCookies, incoming, j.scope.svc.now())
	session.BackendCookies = merged
	if err := j.scope.svc.repo.UpdateCookies(j.ctx, session.ID, merged); err != nil {
		j.scope.svc.log.Warn("failed to persist backend cookies", zap.String("sid", session.ID), zap.Error(err))
	}
}
