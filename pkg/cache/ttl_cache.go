// Package cache, generic in-memory TTL cache.
//
// Kullanım alanları:
//   - Bellek içi oturum kayıtları (SESSION_STORE=memory)
//   - AI coach sayfa görünümü başına transcript'ler
//
// Her entry kendi son kullanma zamanını taşır. Süresi geçen entry okunamaz,
// fiziksel silme arka planda periyodik olarak yapılır.
// sync.RWMutex ile korunur: okumalar paralel, yazmalar tekil.
package cache

import (
	"sync"
	"time"
)

// entry, cache'teki tek bir kayıttır.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// TTLCache, generic in-memory TTL cache.
//
//	sessions := cache.New[string, *models.Session](24*time.Hour, time.Minute)
//	sessions.Set(id, sess)
//	sess, ok := sessions.Get(id)
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// New, yeni bir TTLCache oluşturur ve periyodik temizleme goroutine'ini başlatır.
//
// ttl: Set ile yazılan entry'lerin varsayılan ömrü.
// cleanupInterval: süresi dolanların map'ten ne sıklıkla silineceği.
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries:     make(map[K]entry[V]),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.evictExpired()
			case <-c.stopCleanup:
				return
			}
		}
	}()

	return c
}

// Get, cache'ten bir değer okur.
// Key yoksa veya süresi dolmuşsa (zero value, false) döner.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set, cache'e varsayılan TTL ile bir değer yazar.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL, entry'ye özel bir ömürle yazar.
// Oturum kayıtları kendi ExpiresAt değerlerini bu yolla taşır.
func (c *TTLCache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Update, mevcut ve süresi dolmamış bir entry'nin değerini ömrüne
// dokunmadan değiştirir. Key yoksa false döner.
func (c *TTLCache[K, V]) Update(key K, fn func(V) V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return false
	}
	e.value = fn(e.value)
	c.entries[key] = e
	return true
}

// Delete, belirli bir key'i cache'ten siler.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// DeleteFunc, predicate'i sağlayan tüm key'leri siler ve silinen sayısını döner.
//
// Kullanım: logout'ta bir oturumun tüm coach görünümlerini ("sid:" prefix'i) temizlemek.
func (c *TTLCache[K, V]) DeleteFunc(predicate func(key K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.entries {
		if predicate(key) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Clear, tüm cache'i boşaltır.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]entry[V])
}

// Len, cache'teki toplam entry sayısını döner (süresi dolmuşlar dahil).
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close, periyodik temizleme goroutine'ini durdurur.
// Birden fazla kez çağrılabilir.
func (c *TTLCache[K, V]) Close() {
	c.closeOnce.Do(func() { close(c.stopCleanup) })
}

// evictExpired, süresi dolan entry'leri map'ten fiziksel olarak siler.
func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}
