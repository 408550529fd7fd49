// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar; her yerde ayrı ayrı
// os.Getenv() çağırmak yerine tek bir Config nesnesi taşınır.
package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store türleri.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct, her biri tek bir concern'ü temsil eder.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Session   SessionConfig
	Database  DatabaseConfig
	Log       LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host          string
	Port          int
	SecureCookies bool // HTTPS arkasında çalışırken true olmalı

	// TrustedProxies, X-Forwarded-For / X-Real-IP header'larına güvenilen
	// reverse proxy adresleri. Boşsa header'lar yok sayılır.
	TrustedProxies []netip.Prefix
}

// BackendConfig, uzak wellness REST API ayarları.
type BackendConfig struct {
	URL     string        // ör: http://localhost:5000
	Timeout time.Duration // Tek bir isteğin üst süresi
	RPS     float64       // Saniyede izin verilen istek (token bucket)
	Burst   int
}

// SessionConfig, oturum cookie'si ve kaydı ayarları.
type SessionConfig struct {
	Secret string        // Cookie imzalama + şifreleme anahtarlarının kaynağı, GİZLİ TUTULMALI
	TTL    time.Duration // Oturum ömrü
	Store  string        // "memory" veya "sqlite"
}

// DatabaseConfig, SQLite database ayarları.
// Sadece SESSION_STORE=sqlite iken kullanılır.
type DatabaseConfig struct {
	Path string
}

// LogConfig, zap logger ayarları.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json veya console
}

// CORSConfig, /api/* için izin verilen origin'ler.
type CORSConfig struct {
	Origins []string
}

// RateLimitConfig, login ve coach prompt limitleri.
type RateLimitConfig struct {
	LoginMaxAttempts int
	LoginWindow      time.Duration
	CoachMaxPrompts  int
	CoachWindow      time.Duration
	CoachCooldown    time.Duration
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env yoksa hata vermez, sessizce devam eder.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	secure, err := strconv.ParseBool(getEnv("SECURE_COOKIES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SECURE_COOKIES: %w", err)
	}

	timeout, err := strconv.Atoi(getEnv("BACKEND_TIMEOUT", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnv("BACKEND_RPS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_RPS: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("BACKEND_BURST", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_BURST: %w", err)
	}

	ttlHours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}

	loginMax, err := strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %w", err)
	}

	loginWindow, err := strconv.Atoi(getEnv("LOGIN_WINDOW_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_WINDOW_MINUTES: %w", err)
	}

	coachMax, err := strconv.Atoi(getEnv("COACH_MAX_PROMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid COACH_MAX_PROMPTS: %w", err)
	}

	coachWindow, err := strconv.Atoi(getEnv("COACH_WINDOW_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid COACH_WINDOW_SECONDS: %w", err)
	}

	coachCooldown, err := strconv.Atoi(getEnv("COACH_COOLDOWN_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid COACH_COOLDOWN_SECONDS: %w", err)
	}

	proxies, err := parsePrefixes(getEnv("TRUSTED_PROXIES", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	secret := getEnv("SESSION_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	store := strings.ToLower(getEnv("SESSION_STORE", StoreMemory))
	if store != StoreMemory && store != StoreSQLite {
		return nil, fmt.Errorf("invalid SESSION_STORE %q: must be %q or %q", store, StoreMemory, StoreSQLite)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			SecureCookies:  secure,
			TrustedProxies: proxies,
		},
		Backend: BackendConfig{
			URL:     strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/"),
			Timeout: time.Duration(timeout) * time.Second,
			RPS:     rps,
			Burst:   burst,
		},
		Session: SessionConfig{
			Secret: secret,
			TTL:    time.Duration(ttlHours) * time.Hour,
			Store:  store,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/wellness.db"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			Origins: splitList(getEnv("CORS_ORIGINS", "")),
		},
		RateLimit: RateLimitConfig{
			LoginMaxAttempts: loginMax,
			LoginWindow:      time.Duration(loginWindow) * time.Minute,
			CoachMaxPrompts:  coachMax,
			CoachWindow:      time.Duration(coachWindow) * time.Second,
			CoachCooldown:    time.Duration(coachCooldown) * time.Second,
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:8080").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// splitList, virgülle ayrılmış listeyi boşlukları atarak böler.
// "a, b,,c" → ["a", "b", "c"]
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePrefixes, virgülle ayrılmış CIDR listesini çözer. Tek adres
// ("10.0.0.1") tam uzunlukta prefix olarak kabul edilir.
func parsePrefixes(raw string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range splitList(raw) {
		if !strings.Contains(part, "/") {
			addr, err := netip.ParseAddr(part)
			if err != nil {
				return nil, err
			}
			addr = addr.Unmap()
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, err
		}
		out = append(out, prefix.Masked())
	}
	return out, nil
}
