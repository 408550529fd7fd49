package wellness

import (
	"net/http"
	"sync"
	"time"
)

// CookieStore, bir kullanıcının backend oturum cookie'lerini taşır.
// Client her istekte Cookies()'i gönderir, yanıttaki Set-Cookie'leri
// SetCookies'e verir. SetCookies gelenleri mevcut listeye tek adımda
// uygular (bkz. MergeCookies); paralel yanıtlar birbirini ezmez.
type CookieStore interface {
	Cookies() []*http.Cookie
	SetCookies(incoming []*http.Cookie)
}

// MemoryJar, tek bir akış boyunca kullanılan basit CookieStore.
// Register gibi oturuma bağlı olmayan çağrılarda ve testlerde kullanılır.
type MemoryJar struct {
	mu      sync.Mutex
	cookies []*http.Cookie
}

func (j *MemoryJar) Cookies() []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cookies
}

func (j *MemoryJar) SetCookies(incoming []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = MergeCookies(j.cookies, incoming, time.Now())
}

// MergeCookies, gelen Set-Cookie'leri mevcut listeye isimle uygular.
// Aynı isimli cookie değiştirilir; MaxAge<0 veya geçmiş Expires silinir.
func MergeCookies(existing, incoming []*http.Cookie, now time.Time) []*http.Cookie {
	byName := make(map[string]int, len(existing))
	out := make([]*http.Cookie, 0, len(existing)+len(incoming))
	for _, c := range existing {
		byName[c.Name] = len(out)
		out = append(out, c)
	}

	for _, c := range incoming {
		deleted := c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now))
		idx, ok := byName[c.Name]
		switch {
		case ok && deleted:
			out[idx] = nil
		case ok:
			out[idx] = c
		case !deleted:
			byName[c.Name] = len(out)
			out = append(out, c)
		}
	}

	compact := out[:0]
	for _, c := range out {
		if c != nil {
			compact = append(compact, c)
		}
	}
	return compact
}
