package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/cache"
	"github.com/akinalp/wellness-coach/pkg/ratelimit"
	"github.com/akinalp/wellness-coach/pkg/wellness"
)

// CooldownError, oturum prompt limitini aştığında döner.
type CooldownError struct {
	Seconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("prompt limit reached, retry in %ds", e.Seconds)
}

func (e *CooldownError) Unwrap() error {
	return pkg.ErrTooManyRequests
}

// CoachView, AI-Coach sayfasının bir görünümü ve transcript'i.
type CoachView struct {
	ID         string
	Transcript models.Transcript
}

// CoachService, AI coach sohbetini yönetir.
//
// Form akışında transcript sayfa görünümü başına (view id) saklanır; her GET
// yeni bir görünüm açar, böylece yenileme transcript'i sıfırlar. Websocket
// akışında transcript bağlantının kendisindedir ve sadece Ask kullanılır.
type CoachService interface {
	NewView(sessionID string) CoachView
	View(sessionID, viewID string) CoachView

	// Exchange, form akışı: prompt'u sorar, başarılıysa user/assistant çiftini
	// görünüme ekler. Hata durumunda görünüm değişmeden döner.
	Exchange(ctx context.Context, caller Caller, viewID string, draft models.CoachDraft) (CoachView, error)

	// Ask, tek bir prompt'u doğrular, sınırlar ve backend'e iletir.
	Ask(ctx context.Context, caller Caller, draft models.CoachDraft) (string, error)

	SessionCloser
}

type coachService struct {
	backend wellness.Client
	views   *cache.TTLCache[string, models.Transcript]
	limiter *ratelimit.PromptLimiter
	log     *zap.Logger
}

// NewCoachService, constructor. views ve limiter'ın ömrünü çağıran yönetir.
func NewCoachService(
	backend wellness.Client,
	views *cache.TTLCache[string, models.Transcript],
	limiter *ratelimit.PromptLimiter,
	log *zap.Logger,
) CoachService {
	return &coachService{backend: backend, views: views, limiter: limiter, log: log}
}

func viewKey(sessionID, viewID string) string {
	return sessionID + ":" + viewID
}

func (s *coachService) NewView(sessionID string) CoachView {
	view := CoachView{ID: uuid.NewString()}
	s.views.Set(viewKey(sessionID, view.ID), view.Transcript)
	return view
}

// View, mevcut görünümü döner. Görünüm yoksa veya süresi dolmuşsa yeni açar.
func (s *coachService) View(sessionID, viewID string) CoachView {
	if viewID != "" {
		if tr, ok := s.views.Get(viewKey(sessionID, viewID)); ok {
			return CoachView{ID: viewID, Transcript: copyTranscript(tr)}
		}
	}
	return s.NewView(sessionID)
}

func (s *coachService) Exchange(ctx context.Context, caller Caller, viewID string, draft models.CoachDraft) (CoachView, error) {
	view := s.View(caller.SessionID(), viewID)

	prompt, err := draft.Validate()
	if err != nil {
		return view, err
	}

	reply, err := s.Ask(ctx, caller, models.CoachDraft{Prompt: prompt})
	if err != nil {
		return view, err
	}

	key := viewKey(caller.SessionID(), view.ID)
	updated := s.views.Update(key, func(tr models.Transcript) models.Transcript {
		tr = copyTranscript(tr)
		tr.AppendExchange(prompt, reply)
		return tr
	})
	if !updated {
		// Görünüm bu arada düştüyse (logout, TTL) yeni transcript ile yeniden yaz.
		var tr models.Transcript
		tr.AppendExchange(prompt, reply)
		s.views.Set(key, tr)
	}

	view.Transcript.AppendExchange(prompt, reply)
	return view, nil
}

func (s *coachService) Ask(ctx context.Context, caller Caller, draft models.CoachDraft) (string, error) {
	if _, err := requireUser(caller); err != nil {
		return "", err
	}

	prompt, err := draft.Validate()
	if err != nil {
		return "", err
	}

	sid := caller.SessionID()
	if !s.limiter.Allow(sid) {
		return "", &CooldownError{Seconds: s.limiter.CooldownSeconds(sid)}
	}

	start := time.Now()
	reply, err := s.backend.AskCoach(ctx, caller.Jar(ctx), &models.CoachRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}

	s.log.Debug("coach replied", zap.String("sid", sid), zap.Duration("took", time.Since(start)))
	return reply, nil
}

// CloseSession, oturumun tüm görünümlerini ve prompt sayacını siler.
func (s *coachService) CloseSession(sessionID string) {
	prefix := sessionID + ":"
	n := s.views.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })
	s.limiter.Forget(sessionID)
	if n > 0 {
		s.log.Debug("coach views dropped", zap.String("sid", sessionID), zap.Int("views", n))
	}
}

func copyTranscript(tr models.Transcript) models.Transcript {
	return models.Transcript{Entries: append([]models.TranscriptEntry(nil), tr.Entries...)}
}
