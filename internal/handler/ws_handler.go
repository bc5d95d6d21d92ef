package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/CatalogApp/internal/broadcast"
	"github.com/gorilla/websocket"
)

// WSHandler — поднимает WebSocket-соединение и регистрирует его в хабе.
// Сервер ничего не читает от клиента по существу: цикл чтения нужен
// только чтобы заметить закрытие соединения.
type WSHandler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler создаёт новый экземпляр WSHandler.
func NewWSHandler(hub *broadcast.Hub, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve — точка входа GET /ws.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	id := h.hub.Register(conn)
	h.logger.Info("websocket client connected", "client_id", id, "remote_addr", r.RemoteAddr)

	go func() {
		defer func() {
			h.hub.Unregister(id)
			h.logger.Info("websocket client disconnected", "client_id", id)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
