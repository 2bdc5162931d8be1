package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/realtime"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// closeWith delivers a close frame to a connection that never made it
// past the handshake, then drops it.
func closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(10 * time.Second)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}

// wsUser resolves the ?token= credential after the upgrade. Browsers
// cannot set headers on WebSocket handshakes, so the token rides in the
// query string and a bad one is reported with a close frame rather than
// an HTTP status.
func (h *Handler) wsUser(c *gin.Context, conn *websocket.Conn) (*models.User, bool) {
	token := c.Query("token")
	if token == "" {
		closeWith(conn, websocket.ClosePolicyViolation, "missing token")
		return nil, false
	}
	userID, err := h.Tokens.Validate(token)
	if err != nil {
		closeWith(conn, websocket.ClosePolicyViolation, "invalid token")
		return nil, false
	}
	user, err := h.Storage.GetUserByID(userID)
	if err != nil || !user.IsActive {
		closeWith(conn, websocket.ClosePolicyViolation, "invalid token")
		return nil, false
	}
	return user, true
}

// CallWS upgrades a signaling connection and hands it to a call session.
func (h *Handler) CallWS(c *gin.Context) {
	callID, ok := paramID(c, "call_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ERROR: ws upgrade failed: %v", err)
		return
	}

	user, ok := h.wsUser(c, conn)
	if !ok {
		return
	}

	call, err := h.Storage.GetCallByID(callID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			closeWith(conn, websocket.ClosePolicyViolation, "call not found")
		} else {
			closeWith(conn, websocket.CloseInternalServerErr, "internal server error")
		}
		return
	}
	if call.Status != models.CallActive {
		closeWith(conn, websocket.ClosePolicyViolation, "call is not active")
		return
	}

	session := realtime.NewCallSession(h.Calls, h.Storage, h.Cache, user, call, realtime.NewWSChannel(conn))
	session.Run(c.Request.Context())
}

// ChatWS upgrades a chat connection and hands it to a chat session.
func (h *Handler) ChatWS(c *gin.Context) {
	chatID, ok := paramID(c, "chat_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ERROR: ws upgrade failed: %v", err)
		return
	}

	user, ok := h.wsUser(c, conn)
	if !ok {
		return
	}

	chat, err := h.Storage.GetChatByID(chatID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			closeWith(conn, websocket.ClosePolicyViolation, "chat not found")
		} else {
			closeWith(conn, websocket.CloseInternalServerErr, "internal server error")
		}
		return
	}

	session := realtime.NewChatSession(h.Chats, h.Storage, h.Cache, user, chat, realtime.NewWSChannel(conn))
	session.Run(c.Request.Context())
}
