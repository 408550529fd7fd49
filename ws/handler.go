package ws

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/handlers"
	"github.com/akinalp/wellness-coach/pkg/i18n"
)

// upgrader, HTTP bağlantısını websocket'e yükseltir.
// CheckOrigin nil: gorilla varsayılanı olarak sadece aynı origin kabul edilir.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler, /ai-coach/ws bağlantılarını kabul eder.
type Handler struct {
	hub   *Hub
	coach Asker
	log   *zap.Logger
}

// NewHandler, constructor.
func NewHandler(hub *Hub, coach Asker, log *zap.Logger) *Handler {
	return &Handler{hub: hub, coach: coach, log: log}
}

// HandleConnection godoc
// GET /ai-coach/ws
//
// Oturum kontrolü route guard'dadır (RequireAPI); buraya gelen istekte
// scope doludur. Bağlantı, isteğin oturum cookie'si ile kimliklenir.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	scope := handlers.ScopeFrom(r)
	if scope == nil || scope.Current() == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("upgrade failed", zap.Error(err))
		return
	}

	// Bağlantı isteğin ömrünü aşar; değerler (localizer) kalır, iptal kalmaz.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	sid := scope.SessionID()

	client := &Client{
		hub:       h.hub,
		conn:      conn,
		sessionID: sid,
		session:   scope,
		coach:     h.coach,
		loc:       i18n.FromContext(r.Context()),
		log:       h.log.With(zap.String("sid", sid)),
		send:      make(chan []byte, sendBufferSize),
		prompts:   make(chan string, promptQueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	if !h.hub.add(client) {
		cancel()
		conn.Close()
		return
	}

	h.hub.send(client, Event{Op: OpReady, Data: ReadyData{Username: scope.Current().Username}})

	go client.WritePump()
	go client.promptLoop()
	client.ReadPump()
}
