package models

import (
	"net/http"
	"time"
)

// SessionUser, backend'in login yanıtında döndürdüğü kullanıcı.
type SessionUser struct {
	ID       FlexString `json:"id"`
	Username string     `json:"username"`
}

// Session, bir tarayıcı istemcisinin sunucu tarafı oturum kaydı.
//
// Tarayıcı sadece imzalı bir referans (session id) taşır. Backend'in kendi
// oturum cookie'leri burada tutulur ve her backend çağrısında tekrar gönderilir.
type Session struct {
	ID             string         `json:"id"`
	User           SessionUser    `json:"user"`
	BackendCookies []*http.Cookie `json:"-"` // Tarayıcıya asla gönderilmez
	ExpiresAt      time.Time      `json:"expires_at"`
	CreatedAt      time.Time      `json:"created_at"`
}

// IsExpired, oturumun verilen anda süresinin dolup dolmadığını döner.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTL, oturumun kalan ömrü. Süresi dolmuşsa 0.
func (s *Session) TTL(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
