// Package ws, AI coach'un canlı kanalını sağlar.
//
// Mimari:
//   - Hub: açık bağlantıları oturum id'sine göre tutar; logout ve shutdown
//     bağlantıları buradan kapatır
//   - Client: tek bir websocket bağlantısı; transcript'i tarayıcı tutar
//   - Event: client-server arası JSON zarfı {op, d, seq}
//
// Akış:
//  1. Tarayıcı /ai-coach/ws'e bağlanır, "ready" alır
//  2. {op:"prompt", d:{text}} gönderir
//  3. Sunucu "thinking" yollar, coach'a sorar
//  4. Başarıda user ve assistant "entry" event'leri, hatada "error" gelir
package ws

// Event, websocket üzerinden iletilen bir mesaj.
//
// Seq her outbound event'e verilen artan sayıdır; client eksik event
// tespiti için kullanabilir.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat"
	OpPrompt    = "prompt"
)

// Server → Client operasyonları
const (
	OpReady        = "ready"
	OpHeartbeatAck = "heartbeat_ack"
	OpEntry        = "entry"
	OpThinking     = "thinking"
	OpError        = "error"
)

// PromptData, "prompt" event'inin payload'ı.
type PromptData struct {
	Text string `json:"text"`
}

// ReadyData, bağlantı kurulunca gönderilir.
type ReadyData struct {
	Username string `json:"username"`
}

// EntryData, transcript'e eklenen bir girdi.
type EntryData struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// ErrorData, prompt başarısız olduğunda gönderilir. Closed true ise
// sunucu bağlantıyı kapatacaktır (oturum düştü).
type ErrorData struct {
	Message string `json:"message"`
	Closed  bool   `json:"closed,omitempty"`
}
