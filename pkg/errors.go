// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Sabit error değişkenleri sayesinde karşılaştırma string yerine
// referans ile yapılır:
//
//	if errors.Is(err, pkg.ErrUnauthorized) { ... }
package pkg

import "errors"

// Domain-level error'lar.
// Service ve backend client katmanı bunları wrap ederek döner,
// handler katmanı HTTP status code'una veya sayfa mesajına çevirir.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyExists   = errors.New("already exists")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
	ErrInternal        = errors.New("internal error")

	// ErrUnavailable, uzak wellness API'ye hiç ulaşılamadığında döner
	// (bağlantı hatası, timeout, okunamayan yanıt).
	ErrUnavailable = errors.New("backend unavailable")
)
