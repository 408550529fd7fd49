// Package main: Service katmanı başlatma.
//
// initServices, backend client'ı, rate limiter'ları ve service'leri
// oluşturur. Sıralama: client → limiter'lar → session → log/coach.
package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/config"
	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg/cache"
	"github.com/akinalp/wellness-coach/pkg/crypto"
	"github.com/akinalp/wellness-coach/pkg/ratelimit"
	"github.com/akinalp/wellness-coach/pkg/wellness"
	"github.com/akinalp/wellness-coach/services"
)

// coachViewTTL, form akışındaki bir coach görünümünün ömrü.
const coachViewTTL = time.Hour

// RateLimiters, kapatılması gereken limiter instance'ları.
type RateLimiters struct {
	Login  *ratelimit.LoginLimiter
	Prompt *ratelimit.PromptLimiter
}

// Services, service instance'larını tutan container struct.
type Services struct {
	Session services.SessionService
	Logs    services.LogService
	Coach   services.CoachService

	coachViews *cache.TTLCache[string, models.Transcript]
}

func initRateLimiters(cfg *config.Config) *RateLimiters {
	return &RateLimiters{
		Login:  ratelimit.NewLoginLimiter(cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow, cfg.Server.TrustedProxies...),
		Prompt: ratelimit.NewPromptLimiter(cfg.RateLimit.CoachMaxPrompts, cfg.RateLimit.CoachWindow, cfg.RateLimit.CoachCooldown),
	}
}

// Close, limiter goroutine'lerini durdurur.
func (l *RateLimiters) Close() {
	l.Login.Close()
	l.Prompt.Close()
}

func initBackendClient(cfg *config.Config, log *zap.Logger) wellness.Client {
	return wellness.NewHTTPClient(wellness.Options{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
		RPS:     cfg.Backend.RPS,
		Burst:   cfg.Backend.Burst,
	}, log.Named("wellness"))
}

func initServices(
	cfg *config.Config,
	repos *Repositories,
	backend wellness.Client,
	limiters *RateLimiters,
	log *zap.Logger,
) (*Services, error) {
	signingKey, err := crypto.DeriveKey(cfg.Session.Secret, crypto.PurposeTokenSigning)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token signing key: %w", err)
	}

	views := cache.New[string, models.Transcript](coachViewTTL, time.Minute)

	return &Services{
		Session:    services.NewSessionService(repos.Session, backend, signingKey, cfg.Session.TTL, log.Named("session")),
		Logs:       services.NewLogService(backend, log.Named("logs")),
		Coach:      services.NewCoachService(backend, views, limiters.Prompt, log.Named("coach")),
		coachViews: views,
	}, nil
}

// Close, service'lerin sahip olduğu cache'leri kapatır.
func (s *Services) Close() {
	s.coachViews.Close()
}
