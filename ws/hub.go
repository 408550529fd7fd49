package ws

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Hub, açık coach bağlantılarını oturum id'sine göre tutar.
//
// Kayıt mutex altında senkron yapılır; böylece handler ilk event'i hemen
// gönderebilir. Unregister kanal üzerinden Run goroutine'inde işlenir.
// services.SessionCloser'ı karşılar: logout o oturumun soketlerini kapatır.
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	seq atomic.Int64
	log *zap.Logger
}

// NewHub, constructor. Run ayrı bir goroutine'de başlatılmalıdır.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run, unregister event loop'u. Shutdown çağrılınca döner.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// add, client'ı kaydeder. Hub kapanmışsa false döner.
func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return false
	default:
	}

	if _, ok := h.clients[c.sessionID]; !ok {
		h.clients[c.sessionID] = make(map[*Client]bool)
	}
	h.clients[c.sessionID][c] = true

	h.log.Debug("coach socket connected",
		zap.String("sid", c.sessionID), zap.Int("connections", len(h.clients[c.sessionID])))
	return true
}

// remove, client'ı kayıttan çıkarır. Hub kapanmışsa no-op.
func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

// detachLocked, client'ı map'ten çıkarır ve send kanalını kapatır.
// Kanal sadece burada kapatılır; ikinci çağrı no-op'tur.
func (h *Hub) detachLocked(c *Client) {
	clients, ok := h.clients[c.sessionID]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.clients, c.sessionID)
	}
	h.log.Debug("coach socket disconnected", zap.String("sid", c.sessionID))
}

// send, event'i client'ın kuyruğuna koyar. Kuyruk doluysa client düşürülür.
func (h *Hub) send(c *Client, event Event) {
	event.Seq = h.seq.Add(1)
	data, err := marshalEvent(event)
	if err != nil {
		h.log.Error("failed to marshal event", zap.String("op", event.Op), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[c.sessionID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
		h.log.Warn("send buffer full, dropping connection", zap.String("sid", c.sessionID))
		go h.remove(c)
	}
}

// CloseSession, oturumun tüm soketlerini kapatır.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[sessionID] {
		h.detachLocked(c)
	}
}

// ConnectionCount, oturumun açık soket sayısı.
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Shutdown, tüm bağlantıları kapatır ve Run döngüsünü durdurur.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()
		for _, clients := range h.clients {
			for c := range clients {
				delete(clients, c)
				close(c.send)
			}
		}
		h.clients = make(map[string]map[*Client]bool)
		h.log.Info("hub shut down, all connections closed")
	})
}
