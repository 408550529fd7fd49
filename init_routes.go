// Package main: HTTP route kayıtları.
//
// initRoutes, tüm endpoint'leri bağlar ve middleware zincirini kurar:
//
//	RequestLogger → CrossOriginProtection → mux
//	  /assets/  → gömülü dosyalar (oturumsuz)
//	  /         → Session → guard → handler
//	  /api/     → Session → CORS → handler
package main

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/middleware"
	"github.com/akinalp/wellness-coach/static"
)

func initRoutes(h *Handlers, sessionMw *middleware.SessionMiddleware, corsOrigins []string, log *zap.Logger) (http.Handler, error) {
	// ─── Middleware Chain Helpers ───
	protected := func(handler http.HandlerFunc) http.Handler {
		return middleware.Require(handler)
	}
	guest := func(handler http.HandlerFunc) http.Handler {
		return middleware.GuestOnly(handler)
	}

	// ─── Sayfalar ───
	pages := http.NewServeMux()

	pages.HandleFunc("/", h.Pages.Home)

	pages.Handle("GET /login", guest(h.Auth.LoginPage))
	pages.Handle("POST /login", guest(h.Auth.Login))
	pages.Handle("GET /register", guest(h.Auth.RegisterPage))
	pages.Handle("POST /register", guest(h.Auth.Register))
	pages.HandleFunc("POST /logout", h.Auth.Logout)

	pages.Handle("GET /dashboard", protected(h.Logs.Dashboard))
	pages.Handle("GET /logging", protected(h.Logs.Logging))
	pages.Handle("GET /log/food", protected(h.Logs.FoodPage))
	pages.Handle("POST /log/food", protected(h.Logs.LogFood))
	pages.Handle("POST /log/food/nutrition", protected(h.Logs.Nutrition))
	pages.Handle("GET /log/water", protected(h.Logs.WaterPage))
	pages.Handle("POST /log/water", protected(h.Logs.LogWater))
	pages.Handle("GET /log/exercise", protected(h.Logs.ExercisePage))
	pages.Handle("POST /log/exercise", protected(h.Logs.LogExercise))
	pages.Handle("GET /ai-coach", protected(h.Coach.Page))
	pages.Handle("POST /ai-coach", protected(h.Coach.Ask))
	pages.Handle("GET /ai-coach/ws", middleware.RequireAPI(http.HandlerFunc(h.WS.HandleConnection)))

	// ─── JSON API ───
	api := http.NewServeMux()
	api.HandleFunc("GET /api/health", h.SessionAPI.Health)
	api.HandleFunc("GET /api/session", h.SessionAPI.Current)
	api.HandleFunc("POST /api/session/login", h.SessionAPI.Login)
	api.HandleFunc("POST /api/session/register", h.SessionAPI.Register)
	api.HandleFunc("POST /api/session/logout", h.SessionAPI.Logout)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept-Language"},
		AllowCredentials: true,
	})
	pages.Handle("/api/", corsHandler.Handler(api))

	// ─── Kök ───
	root := http.NewServeMux()
	root.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(static.Assets())))
	root.Handle("/", sessionMw.Attach(pages))

	// Form POST'ları için CSRF koruması: tarayıcının Sec-Fetch-Site/Origin
	// header'larına bakılır. CORS origin'leri güvenilir sayılır.
	csrf := http.NewCrossOriginProtection()
	for _, origin := range corsOrigins {
		if err := csrf.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("invalid CORS origin %q: %w", origin, err)
		}
	}

	return middleware.RequestLogger(log.Named("http"))(csrf.Handler(root)), nil
}
