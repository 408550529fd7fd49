// Package services, business logic katmanını barındırır.
//
// Handler (HTTP) ile repository/backend client arasında oturur:
//   - oturum açma, kapatma ve doğrulama (SessionService, SessionScope)
//   - log kayıtlarının doğrulanıp backend'e iletilmesi (LogService)
//   - AI coach sohbeti ve prompt sınırlaması (CoachService)
//
// Service http.Request/Response bilmez; oturum cookie'sini sadece
// kendisine verilen CookieWriter üzerinden yazar.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/wellness"
	"github.com/akinalp/wellness-coach/repository"
)

const tokenIssuer = "wellness-coach"

// CookieWriter, oturum cookie'sini yazar. token boşsa cookie silinir.
// Middleware her istek için http.SetCookie saran bir closure verir.
type CookieWriter func(token string, expiresAt time.Time)

// SessionCloser, bir oturum kapandığında (logout, invalidate, login ile
// değiştirme) o oturuma bağlı kaynakları bırakır: coach soketleri,
// transcript'ler, prompt sayaçları.
type SessionCloser interface {
	CloseSession(sessionID string)
}

// SessionService, her istek için bir SessionScope açar.
type SessionService interface {
	// Open, cookie'deki token'ı doğrular ve oturum kaydını yükler.
	// Token geçersizse veya kayıt yoksa boş (çıkış yapılmış) bir scope döner
	// ve cookie silinir.
	Open(ctx context.Context, token string, write CookieWriter) *SessionScope

	// OnClose, oturum kapandığında çağrılacak bir closer ekler.
	OnClose(closer SessionCloser)

	// PurgeExpired, süresi dolmuş kayıtları siler.
	PurgeExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	repo       repository.SessionRepository
	backend    wellness.Client
	signingKey []byte
	ttl        time.Duration
	log        *zap.Logger
	now        func() time.Time

	closersMu sync.RWMutex
	closers   []SessionCloser
}

// NewSessionService, constructor.
//
// signingKey: oturum JWT'sinin HS256 anahtarı (crypto.PurposeTokenSigning).
// ttl: yeni oturumların ömrü.
func NewSessionService(
	repo repository.SessionRepository,
	backend wellness.Client,
	signingKey []byte,
	ttl time.Duration,
	log *zap.Logger,
) SessionService {
	return &sessionService{
		repo:       repo,
		backend:    backend,
		signingKey: signingKey,
		ttl:        ttl,
		log:        log,
		now:        time.Now,
	}
}

func (s *sessionService) OnClose(closer SessionCloser) {
	s.closersMu.Lock()
	defer s.closersMu.Unlock()
	s.closers = append(s.closers, closer)
}

func (s *sessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}

func (s *sessionService) Open(ctx context.Context, token string, write CookieWriter) *SessionScope {
	scope := &SessionScope{svc: s, write: write}
	if token == "" {
		return scope
	}

	claims, err := s.parseToken(token)
	if err != nil {
		s.log.Debug("rejecting session cookie", zap.Error(err))
		scope.clearCookie()
		return scope
	}

	session, err := s.repo.GetByID(ctx, claims.SessionID)
	if err != nil {
		if !errors.Is(err, pkg.ErrNotFound) {
			// Depo hatası: bu istek için çıkış yapılmış say, cookie'ye dokunma.
			s.log.Error("failed to load session", zap.Error(err))
			return scope
		}
		scope.clearCookie()
		return scope
	}

	if session.User.ID.String() != claims.UserID {
		s.log.Warn("session cookie does not match record", zap.String("sid", claims.SessionID))
		scope.clearCookie()
		return scope
	}

	scope.session = session
	return scope
}

// issueToken, oturum için imzalı cookie değerini üretir.
func (s *sessionService) issueToken(session *models.Session) (string, error) {
	claims := &models.SessionClaims{
		SessionID: session.ID,
		UserID:    session.User.ID.String(),
		Username:  session.User.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			Issuer:    tokenIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// parseToken, cookie değerini doğrular. Sadece HMAC imzaları kabul edilir.
func (s *sessionService) parseToken(token string) (*models.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &models.SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid session token: %v", pkg.ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*models.SessionClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("%w: invalid session claims", pkg.ErrUnauthorized)
	}
	return claims, nil
}

// newSession, login başarısından sonra yeni bir kayıt oluşturur.
func (s *sessionService) newSession(user *models.SessionUser, jar *wellness.MemoryJar) *models.Session {
	now := s.now()
	return &models.Session{
		ID:             uuid.NewString(),
		User:           *user,
		BackendCookies: jar.Cookies(),
		ExpiresAt:      now.Add(s.ttl),
		CreatedAt:      now,
	}
}

// closeSession, kayıtlı closer'ları çağırır.
func (s *sessionService) closeSession(sessionID string) {
	s.closersMu.RLock()
	closers := append([]SessionCloser(nil), s.closers...)
	s.closersMu.RUnlock()

	for _, c := range closers {
		c.CloseSession(sessionID)
	}
}
