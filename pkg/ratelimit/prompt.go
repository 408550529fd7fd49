package ratelimit

import (
	"sync"
	"time"
)

// promptBucket, bir oturumun prompt sayacı ve ceza bitiş zamanı.
// cooldownUntil zero value ise ceza yoktur.
type promptBucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time
}

// PromptLimiter, AI coach prompt'larını oturum bazlı sınırlar.
//
// LoginLimiter'dan farkı: limit aşıldığında pencere yerine ayrı bir
// ceza süresi (cooldown) uygulanır. Kısa pencerede art arda gelen
// prompt'lar uzak coach endpoint'ine yığılmaz.
//
//	limiter := NewPromptLimiter(5, 10*time.Second, 30*time.Second)
//	if !limiter.Allow(sessionID) { ... }
type PromptLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*promptBucket
	maxPrompts int
	window     time.Duration
	cooldown   time.Duration
	now        func() time.Time

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewPromptLimiter, limiter oluşturur ve 30 saniyede bir çalışan
// temizleme goroutine'ini başlatır.
func NewPromptLimiter(maxPrompts int, window, cooldown time.Duration) *PromptLimiter {
	rl := &PromptLimiter{
		buckets:     make(map[string]*promptBucket),
		maxPrompts:  maxPrompts,
		window:      window,
		cooldown:    cooldown,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go runCleanup(30*time.Second, rl.stopCleanup, rl.cleanup)
	return rl
}

// Allow, oturumun yeni bir prompt gönderip gönderemeyeceğini döner.
//
// Cooldown sürerken her şey reddedilir. Cooldown bitince yeni pencere açılır.
// Pencere içinde max aşılırsa cooldown başlar.
func (rl *PromptLimiter) Allow(sessionID string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[sessionID]
	if !ok {
		rl.buckets[sessionID] = &promptBucket{count: 1, windowStart: now}
		return true
	}

	if !b.cooldownUntil.IsZero() {
		if now.Before(b.cooldownUntil) {
			return false
		}
		*b = promptBucket{count: 1, windowStart: now}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxPrompts {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}
	return true
}

// CooldownSeconds, kalan ceza süresini saniye cinsinden döner. Ceza yoksa 0.
func (rl *PromptLimiter) CooldownSeconds(sessionID string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[sessionID]
	if !ok || b.cooldownUntil.IsZero() {
		return 0
	}
	return ceilSeconds(b.cooldownUntil.Sub(rl.now()))
}

// Forget, logout'ta oturumun sayacını siler.
func (rl *PromptLimiter) Forget(sessionID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, sessionID)
}

// Close, temizleme goroutine'ini durdurur.
func (rl *PromptLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.stopCleanup) })
}

// cleanup, penceresi ve cezası bitmiş bucket'ları siler.
// Cezadaki oturumların bucket'ı korunur.
func (rl *PromptLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for id, b := range rl.buckets {
		windowExpired := now.Sub(b.windowStart) > rl.window
		cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)
		if windowExpired && cooldownExpired {
			delete(rl.buckets, id)
		}
	}
}
