package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Envelope — типизированный конверт события для live-клиентов.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Conn — минимальный срез websocket-соединения, нужный хабу.
// *websocket.Conn ему удовлетворяет.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// client оборачивает соединение собственным мьютексом:
// у websocket-соединения может быть только один писатель.
type client struct {
	conn Conn
	mu   sync.Mutex
}

func (c *client) send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// Hub хранит множество подключённых live-клиентов и рассылает им события
// о мутациях каталога. Доставка fire-and-forget, at-most-once: ни бэклога,
// ни повторов; клиент, подключившийся позже, прошлых событий не получит.
// Реестр безопасен для конкурентных connect/disconnect/broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	logger  *slog.Logger
}

// NewHub создаёт пустой реестр live-клиентов.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*client),
		logger:  logger,
	}
}

// Register добавляет соединение в реестр и возвращает его идентификатор.
func (h *Hub) Register(conn Conn) uuid.UUID {
	id := uuid.New()

	h.mu.Lock()
	h.clients[id] = &client{conn: conn}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("live client connected", "client_id", id, "clients", count)
	return id
}

// Unregister убирает клиента из реестра и закрывает соединение.
func (h *Hub) Unregister(id uuid.UUID) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		_ = c.conn.Close()
		h.logger.Info("live client disconnected", "client_id", id, "clients", count)
	}
}

// Broadcast сериализует конверт и отправляет его каждому подключённому
// клиенту. Закрытые и сбойные клиенты молча выбрасываются из реестра —
// сбой доставки одному клиенту не задевает остальных и тем более
// не влияет на персистентность.
func (h *Hub) Broadcast(eventType string, data any) {
	message, err := json.Marshal(Envelope{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("failed to marshal broadcast envelope", "type", eventType, "error", err)
		return
	}

	h.mu.RLock()
	snapshot := make(map[uuid.UUID]*client, len(h.clients))
	for id, c := range h.clients {
		snapshot[id] = c
	}
	h.mu.RUnlock()

	var dropped []uuid.UUID
	for id, c := range snapshot {
		if err := c.send(message); err != nil {
			dropped = append(dropped, id)
		}
	}

	for _, id := range dropped {
		h.Unregister(id)
	}

	h.logger.Info("event broadcast",
		"type", eventType,
		"delivered", len(snapshot)-len(dropped),
		"dropped", len(dropped),
	)
}

// ClientCount возвращает число подключённых клиентов.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
