package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims, oturum cookie'sindeki imzalı JWT payload'u.
//
// Cookie sadece oturum kaydına bir referanstır; kullanıcı bilgisi kayıttan
// okunur. UserID ve Username loglama ve hızlı kontrol için taşınır.
type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}
