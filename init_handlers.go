// Package main: Handler katmanı başlatma.
//
// initHandlers, sayfa, JSON ve websocket handler'larını oluşturur.
// Her handler ihtiyaç duyduğu service'i constructor'dan alır.
package main

import (
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/handlers"
	"github.com/akinalp/wellness-coach/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Logs       *handlers.LogHandler
	Coach      *handlers.CoachHandler
	Pages      *handlers.PageHandler
	SessionAPI *handlers.SessionAPIHandler
	WS         *ws.Handler
}

func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, render *handlers.Renderer, log *zap.Logger) *Handlers {
	return &Handlers{
		Auth:       handlers.NewAuthHandler(render, limiters.Login),
		Logs:       handlers.NewLogHandler(render, svcs.Logs),
		Coach:      handlers.NewCoachHandler(render, svcs.Coach),
		Pages:      handlers.NewPageHandler(render),
		SessionAPI: handlers.NewSessionAPIHandler(limiters.Login),
		WS:         ws.NewHandler(hub, svcs.Coach, log.Named("ws")),
	}
}
