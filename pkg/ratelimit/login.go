// Package ratelimit, in-memory istek sınırlayıcıları barındırır.
//
//   - LoginLimiter: IP bazlı, sabit pencereli login denemesi sınırı.
//   - PromptLimiter: oturum bazlı, cezalı (cooldown) AI coach prompt sınırı.
//
// Tek instance deploy varsayılır; sayaçlar process belleğinde tutulur.
// Paket hiçbir proje içi pakete bağımlı değildir (leaf dependency).
package ratelimit

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"
)

// bucket, bir IP için istek sayacı ve pencere başlangıcı.
type bucket struct {
	count       int
	windowStart time.Time
}

// LoginLimiter, IP bazlı login rate limiting.
//
//	limiter := NewLoginLimiter(5, 5*time.Minute)
//	if !limiter.Allow(ip) { ... 429 ... }
//	// başarılı login'de:
//	limiter.Reset(ip)
type LoginLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	maxAttempts int
	window      time.Duration
	now         func() time.Time

	// trustedProxies, forwarding header'larına güvenilen peer'lar.
	trustedProxies []netip.Prefix

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewLoginLimiter, limiter oluşturur ve dakikada bir çalışan
// temizleme goroutine'ini başlatır. trustedProxies boşsa client IP her
// zaman RemoteAddr'dan alınır.
func NewLoginLimiter(maxAttempts int, window time.Duration, trustedProxies ...netip.Prefix) *LoginLimiter {
	rl := &LoginLimiter{
		buckets:        make(map[string]*bucket),
		maxAttempts:    maxAttempts,
		window:         window,
		now:            time.Now,
		trustedProxies: trustedProxies,
		stopCleanup:    make(chan struct{}),
	}
	go runCleanup(time.Minute, rl.stopCleanup, rl.cleanup)
	return rl
}

// Allow, IP'nin bu pencerede yeni bir login denemesi yapıp yapamayacağını döner.
// Her çağrı sayacı artırır, sonuç ne olursa olsun.
func (rl *LoginLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok || now.Sub(b.windowStart) > rl.window {
		rl.buckets[ip] = &bucket{count: 1, windowStart: now}
		return true
	}

	b.count++
	return b.count <= rl.maxAttempts
}

// Reset, başarılı login sonrası IP sayacını siler.
// Aksi halde meşru kullanıcı sonraki girişlerde bloke olabilir.
func (rl *LoginLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, ip)
}

// RetryAfterSeconds, pencerenin bitmesine kalan süreyi saniye cinsinden döner.
// Retry-After header'ı ve kullanıcı mesajı için kullanılır.
func (rl *LoginLimiter) RetryAfterSeconds(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		return 0
	}
	return ceilSeconds(rl.window - rl.now().Sub(b.windowStart))
}

// Close, temizleme goroutine'ini durdurur.
func (rl *LoginLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *LoginLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, b := range rl.buckets {
		if now.Sub(b.windowStart) > rl.window {
			delete(rl.buckets, ip)
		}
	}
}

// ClientIP, limiter'ın güvendiği proxy listesiyle ExtractIP'yi çağırır.
// nil limiter hiçbir proxy'ye güvenmez.
func (rl *LoginLimiter) ClientIP(r *http.Request) string {
	if rl == nil {
		return ExtractIP(r, nil)
	}
	return ExtractIP(r, rl.trustedProxies)
}

// ExtractIP, HTTP request'ten client IP adresini çıkarır.
//
// X-Forwarded-For ve X-Real-IP sadece RemoteAddr güvenilen bir proxy ise
// okunur; aksi halde client header'ı uydurup limiti atlatabilir.
// X-Forwarded-For sağdan sola yürünür ve güvenilmeyen ilk adres döner.
// Zincirin tamamı güvenilirse en soldaki adres kullanılır.
func ExtractIP(r *http.Request, trusted []netip.Prefix) string {
	peer := remoteHost(r.RemoteAddr)
	if !isTrusted(peer, trusted) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		client := ""
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			client = hop
			if !isTrusted(hop, trusted) {
				break
			}
		}
		if client != "" {
			return client
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// runCleanup, stop kapanana kadar her interval'da fn'i çağırır.
func runCleanup(interval time.Duration, stop <-chan struct{}, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn()
		case <-stop:
			return
		}
	}
}

// ceilSeconds, süreyi yukarı yuvarlanmış saniyeye çevirir. Negatifse 0.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds()) + 1
}
