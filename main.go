// Package main, wellness-coach web uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Logger'ı kur
//  3. i18n çevirilerini yükle
//  4. Oturum deposunu oluştur (memory veya sqlite)
//  5. Backend client'ı, limiter'ları ve service'leri oluştur
//  6. WebSocket Hub'ı başlat, oturum kapanış callback'lerini bağla
//  7. Şablonları ve handler'ları oluştur
//  8. Route'ları ve middleware zincirini kur
//  9. HTTP Server'ı başlat
//  10. Graceful shutdown
//
// Global değişken yok; her şey bu fonksiyonda oluşturulup birbirine bağlanır.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/config"
	"github.com/akinalp/wellness-coach/handlers"
	"github.com/akinalp/wellness-coach/middleware"
	"github.com/akinalp/wellness-coach/pkg/i18n"
	"github.com/akinalp/wellness-coach/pkg/logger"
	"github.com/akinalp/wellness-coach/static"
	"github.com/akinalp/wellness-coach/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wellness-coach: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─── 2. Logger ───
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("wellness-coach starting", zap.Int("port", cfg.Server.Port), zap.String("backend", cfg.Backend.URL))

	// ─── 3. i18n ───
	if err := i18n.LoadEmbedded(); err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	// ─── 4. Repository Layer ───
	repos, err := initRepositories(cfg, log)
	if err != nil {
		return err
	}
	defer repos.Close()

	// ─── 5. Services ───
	limiters := initRateLimiters(cfg)
	defer limiters.Close()

	backend := initBackendClient(cfg, log)
	svcs, err := initServices(cfg, repos, backend, limiters, log)
	if err != nil {
		return err
	}
	defer svcs.Close()

	// ─── 6. WebSocket Hub ───
	hub := ws.NewHub(log.Named("ws"))
	go hub.Run()
	registerSessionClosers(svcs, hub)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go runSessionPurger(bgCtx, svcs.Session, sessionPurgeInterval, log.Named("session"))

	// ─── 7. Handlers ───
	render, err := handlers.NewRenderer(static.Templates(), log.Named("render"))
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	h := initHandlers(svcs, limiters, hub, render, log)

	// ─── 8. Routes ───
	sessionMw := middleware.NewSessionMiddleware(svcs.Session, cfg.Server.SecureCookies)
	handler, err := initRoutes(h, sessionMw, cfg.CORS.Origins, log)
	if err != nil {
		return err
	}

	// ─── 9. HTTP Server ───
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Backend.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ─── 10. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-done:
	}
	log.Info("shutting down")

	stopBackground()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
