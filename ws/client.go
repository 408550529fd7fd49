package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/i18n"
	"github.com/akinalp/wellness-coach/services"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: bir mesajı yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// pongWait: client'ın heartbeat göndermesi için beklenen maksimum süre.
	// 3 heartbeat kaçırma = 30s × 3 = 90s.
	pongWait = 90 * time.Second

	// maxMessageSize: client'ın gönderebileceği maksimum mesaj boyutu (byte).
	maxMessageSize = 4096

	sendBufferSize = 64

	// promptQueueSize: işlenmeyi bekleyen prompt sayısı. Dolarsa yeni
	// prompt reddedilir.
	promptQueueSize = 4
)

// Asker, coach'a tek bir prompt soran servis. services.CoachService karşılar.
type Asker interface {
	Ask(ctx context.Context, caller services.Caller, draft models.CoachDraft) (string, error)
}

// Session, bağlantının oturumu. *services.SessionScope karşılar.
type Session interface {
	services.Caller
	CheckAuth(ctx context.Context, err error) bool
}

// Client, tek bir coach websocket bağlantısı.
//
// Üç goroutine çalışır:
//   - ReadPump: client'tan gelen event'leri okur
//   - WritePump: send kuyruğunu websocket'e yazar
//   - promptLoop: prompt'ları sırayla coach'a sorar
//
// Prompt'lar ayrı goroutine'de işlendiği için uzun süren bir coach yanıtı
// heartbeat'leri bloklamaz; sıra yine de korunur.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	session   Session
	coach     Asker
	loc       *i18n.Localizer
	log       *zap.Logger

	send    chan []byte
	prompts chan string

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex // conn yazmalarını korur
}

// ReadPump, bağlantı kapanana kadar client event'lerini okur.
// Döndüğünde client hub'dan çıkar ve bağlantı kapanır.
func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		close(c.prompts)
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn("failed to set read deadline", zap.Error(err))
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("unexpected close", zap.Error(err))
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.log.Debug("invalid message", zap.Error(err))
			continue
		}

		if !c.handleEvent(event) {
			return
		}
	}
}

// handleEvent, event'i türüne göre işler. false dönerse okuma durur.
func (c *Client) handleEvent(event Event) bool {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return false
		}
		c.hub.send(c, Event{Op: OpHeartbeatAck})

	case OpPrompt:
		var data PromptData
		if err := decodeData(event.Data, &data); err != nil {
			c.log.Debug("invalid prompt payload", zap.Error(err))
			return true
		}
		select {
		case c.prompts <- data.Text:
		default:
			c.hub.send(c, Event{Op: OpError, Data: ErrorData{Message: c.loc.T("coach.failed")}})
		}

	default:
		c.log.Debug("unknown op", zap.String("op", event.Op))
	}
	return true
}

// promptLoop, kuyruktaki prompt'ları sırayla işler.
func (c *Client) promptLoop() {
	for text := range c.prompts {
		if c.ctx.Err() != nil {
			return
		}
		c.handlePrompt(text)
	}
}

// handlePrompt, tek bir prompt'u sorar. Başarıda user/assistant girdileri
// art arda gönderilir; transcript'i tarayıcı tutar. Hatada entry gönderilmez.
func (c *Client) handlePrompt(text string) {
	prompt, err := models.CoachDraft{Prompt: text}.Validate()
	if err != nil {
		c.sendError(err)
		return
	}

	c.hub.send(c, Event{Op: OpThinking})

	reply, err := c.coach.Ask(c.ctx, c.session, models.CoachDraft{Prompt: prompt})
	if err != nil {
		if errors.Is(err, pkg.ErrUnauthorized) {
			c.hub.send(c, Event{Op: OpError, Data: ErrorData{Message: c.loc.T("auth.sessionExpired"), Closed: true}})
			// Invalidate closer'ları çağırır; hub bu bağlantıyı kapatır.
			c.session.CheckAuth(c.ctx, err)
			return
		}
		c.sendError(err)
		return
	}

	c.hub.send(c, Event{Op: OpEntry, Data: EntryData{Kind: string(models.EntryUser), Text: prompt}})
	c.hub.send(c, Event{Op: OpEntry, Data: EntryData{Kind: string(models.EntryAssistant), Text: reply}})
}

func (c *Client) sendError(err error) {
	c.hub.send(c, Event{Op: OpError, Data: ErrorData{Message: errorMessage(c.loc, err)}})
}

// WritePump, send kuyruğunu websocket'e yazar. Kuyruk kapanınca close
// frame gönderir ve bağlantıyı kapatır.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.writeMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// writeMessage, websocket'e mesaj yazar. gorilla/websocket aynı anda
// birden fazla yazıcıya izin vermez.
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

func marshalEvent(event Event) ([]byte, error) {
	return json.Marshal(event)
}

// decodeData, event.Data (any) alanını hedef tipe çevirir.
func decodeData(data any, dst any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
