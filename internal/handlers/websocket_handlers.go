package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"chat-service/internal/services"
	ws "chat-service/internal/websocket"
	"chat-service/pkg/logger"
)

type WebSocketHandlers struct {
	presenceService *services.PresenceService
	messageService  *services.MessageService
	hub             *ws.Hub
	upgrader        websocket.Upgrader
}

func NewWebSocketHandlers(presenceService *services.PresenceService, messageService *services.MessageService, hub *ws.Hub) *WebSocketHandlers {
	return &WebSocketHandlers{
		presenceService: presenceService,
		messageService:  messageService,
		hub:             hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket upgrades the connection and hands it to the gate. The
// credential is judged after the upgrade so a rejection can be delivered
// to the client as an event before the forced close.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, h.presenceService, h.messageService)
	go client.Serve(tokenStr)
}
