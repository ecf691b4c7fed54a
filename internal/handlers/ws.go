package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/collabsphere-dev/collabsphere/internal/chat"
	"github.com/collabsphere-dev/collabsphere/internal/httpx"
	"github.com/collabsphere-dev/collabsphere/internal/logger"
	"github.com/collabsphere-dev/collabsphere/internal/types"
	"github.com/collabsphere-dev/collabsphere/internal/utils"
)

// ChatHandler upgrades authenticated connections and hands them to the hub.
// The hub is constructed once in main; this is its only entry point.
type ChatHandler struct {
	hub *chat.Hub
}

func NewChatHandler(hub *chat.Hub) *ChatHandler {
	return &ChatHandler{hub: hub}
}

func (h *ChatHandler) HandleWebSocket(c *gin.Context) {
	currentUser, err := utils.GetCurrentUser(c)

	if err != nil {
		httpx.Respond(c, httpx.Unauthorized("User not authenticated"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "user_id", currentUser.ID, "error", err)
		return
	}

	// Welcome frame goes out before the pumps own the connection.
	if err := conn.WriteJSON(gin.H{"type": chat.EventConnected}); err != nil {
		logger.Warn("Failed to send welcome message", "user_id", currentUser.ID, "error", err)
		conn.Close()
		return
	}

	client := chat.NewClient(h.hub, conn, chat.Identity{
		ID:     currentUser.ID,
		Name:   currentUser.Name,
		Email:  currentUser.Email,
		Avatar: currentUser.Avatar,
	})

	go client.WritePump()
	client.ReadPump()
}
