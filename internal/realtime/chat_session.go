package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/Ivan2330/english-platform-deploy/internal/cache"
	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/gorilla/websocket"
)

// ChatSession drives one chat connection: backlog replay on open, then
// persist + fan-out for every inbound message until disconnect.
type ChatSession struct {
	registry *Registry
	store    storage.Storage
	cache    cache.Store

	user *models.User
	chat *models.Chat
	conn Conn
}

func NewChatSession(registry *Registry, store storage.Storage, cacheStore cache.Store, user *models.User, chat *models.Chat, conn Conn) *ChatSession {
	return &ChatSession{
		registry: registry,
		store:    store,
		cache:    cacheStore,
		user:     user,
		chat:     chat,
		conn:     conn,
	}
}

func (s *ChatSession) Run(ctx context.Context) {
	s.conn.Run()
	s.registry.Register(s.chat.ID, s.user.ID, s.conn)
	log.Printf("user %d connected to chat %d", s.user.ID, s.chat.ID)

	s.replayBacklog(ctx)
	s.loop(ctx)

	s.conn.Close(websocket.CloseNormalClosure, "")
	s.registry.Unregister(s.chat.ID, s.user.ID, s.conn)
	log.Printf("user %d disconnected from chat %d", s.user.ID, s.chat.ID)
}

// replayBacklog delivers the cached recent history to the new
// connection, oldest first, one frame per message so the client handles
// replayed and live messages identically. The backlog is acceleration
// only: a cache failure skips replay and the session carries on.
func (s *ChatSession) replayBacklog(ctx context.Context) {
	backlog, err := chatBacklog(ctx, s.cache, s.chat.ID)
	if err != nil {
		log.Printf("WARN: backlog replay for chat %d skipped: %v", s.chat.ID, err)
		return
	}
	for i := range backlog {
		data, err := json.Marshal(backlog[i])
		if err != nil {
			log.Printf("ERROR: failed to encode backlog entry for chat %d: %v", s.chat.ID, err)
			continue
		}
		if err := s.conn.Send(data); err != nil {
			return
		}
	}
}

func (s *ChatSession) loop(ctx context.Context) {
	for {
		data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		content, err := DecodeChatMessage(data)
		if err != nil {
			s.conn.Close(websocket.CloseProtocolError, "malformed payload")
			return
		}

		msg := &models.ChatMessage{
			ChatID:  s.chat.ID,
			UserID:  s.user.ID,
			Role:    s.user.Role,
			Message: content,
		}
		if err := s.store.CreateChatMessage(msg); err != nil {
			s.conn.Close(websocket.CloseInternalServerErr, "internal server error")
			return
		}

		event := msg.Event()
		if err := appendChatBacklog(ctx, s.cache, s.chat.ID, event); err != nil {
			log.Printf("WARN: failed to cache message for chat %d: %v", s.chat.ID, err)
		}

		data, err = json.Marshal(event)
		if err != nil {
			log.Printf("ERROR: failed to encode message for chat %d: %v", s.chat.ID, err)
			continue
		}
		// Fan out to everyone, sender included: the sender's UI renders
		// the authoritative timestamp, not its local one.
		s.registry.Broadcast(s.chat.ID, data)
	}
}
