package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testChat(id uint) *models.Chat {
	return &models.Chat{ID: id, ClassroomID: 1}
}

// seedBacklog puts prior events into the cached history.
func seedBacklog(t *testing.T, c *fakeCache, chatID uint, events []models.ChatEvent) {
	t.Helper()
	assert.NoError(t, c.Set(context.Background(), chatBacklogKey(chatID), events, backlogTTL))
}

func TestChatSession_ReplaysBacklogBeforeLiveMessages(t *testing.T) {
	registry := NewRegistry("chats")
	storageMock := new(MockStorage)
	cacheStore := newFakeCache()

	seedBacklog(t, cacheStore, 1, []models.ChatEvent{
		{ChatID: 1, UserID: 20, Role: models.RoleTeacher, Message: "first"},
		{ChatID: 1, UserID: 20, Role: models.RoleTeacher, Message: "second"},
	})

	storageMock.On("CreateChatMessage", mock.AnythingOfType("*models.ChatMessage")).
		Run(func(args mock.Arguments) {
			msg := args.Get(0).(*models.ChatMessage)
			msg.ID = 3
			msg.SentAt = time.Now()
		}).Return(nil)

	conn := newFakeConn([]byte(`{"content":"hello"}`))
	conn.disconnect()
	session := NewChatSession(registry, storageMock, cacheStore, testUser(10, models.RoleStudent), testChat(1), conn)
	session.Run(context.Background())

	frames := decodeFrames(conn.sentMessages())
	if assert.Len(t, frames, 3) {
		assert.Equal(t, "first", frames[0]["message"])
		assert.Equal(t, "second", frames[1]["message"])
		assert.Equal(t, "hello", frames[2]["message"])
		assert.Equal(t, float64(10), frames[2]["user_id"])
		assert.Equal(t, "student", frames[2]["role"])
	}
}

func TestChatSession_FanOutIncludesSender(t *testing.T) {
	registry := NewRegistry("chats")
	storageMock := new(MockStorage)
	cacheStore := newFakeCache()

	bystander := newFakeConn()
	registry.Register(1, 20, bystander)

	storageMock.On("CreateChatMessage", mock.AnythingOfType("*models.ChatMessage")).
		Run(func(args mock.Arguments) {
			msg := args.Get(0).(*models.ChatMessage)
			msg.ID = 1
			msg.SentAt = time.Now()
		}).Return(nil)

	conn := newFakeConn([]byte(`{"content":"hello"}`))
	conn.disconnect()
	session := NewChatSession(registry, storageMock, cacheStore, testUser(10, models.RoleStudent), testChat(1), conn)
	session.Run(context.Background())

	assert.Len(t, decodeFrames(conn.sentMessages()), 1)
	assert.Len(t, decodeFrames(bystander.sentMessages()), 1)

	// The message landed in the cached history for the next joiner.
	backlog, err := chatBacklog(context.Background(), cacheStore, 1)
	assert.NoError(t, err)
	if assert.Len(t, backlog, 1) {
		assert.Equal(t, "hello", backlog[0].Message)
	}
}

func TestChatSession_PersistFailureClosesInternalError(t *testing.T) {
	registry := NewRegistry("chats")
	storageMock := new(MockStorage)
	cacheStore := newFakeCache()

	bystander := newFakeConn()
	registry.Register(1, 20, bystander)

	storageMock.On("CreateChatMessage", mock.AnythingOfType("*models.ChatMessage")).
		Return(assert.AnError)

	conn := newFakeConn([]byte(`{"content":"hello"}`))
	session := NewChatSession(registry, storageMock, cacheStore, testUser(10, models.RoleStudent), testChat(1), conn)
	session.Run(context.Background())

	closed, code, reason := conn.closedWith()
	assert.True(t, closed)
	assert.Equal(t, websocket.CloseInternalServerErr, code)
	assert.Equal(t, "internal server error", reason)

	// A message that was not persisted is never fanned out.
	assert.Empty(t, bystander.sentMessages())

	backlog, err := chatBacklog(context.Background(), cacheStore, 1)
	assert.NoError(t, err)
	assert.Empty(t, backlog)
}

func TestChatSession_MalformedPayloadClosesProtocolError(t *testing.T) {
	registry := NewRegistry("chats")
	storageMock := new(MockStorage)
	cacheStore := newFakeCache()

	conn := newFakeConn([]byte(`{"text":"wrong key"}`))
	session := NewChatSession(registry, storageMock, cacheStore, testUser(10, models.RoleStudent), testChat(1), conn)
	session.Run(context.Background())

	closed, code, reason := conn.closedWith()
	assert.True(t, closed)
	assert.Equal(t, websocket.CloseProtocolError, code)
	assert.Equal(t, "malformed payload", reason)

	storageMock.AssertNotCalled(t, "CreateChatMessage", mock.Anything)
}

func TestChatSession_CacheOutageSkipsReplayButKeepsSessionAlive(t *testing.T) {
	registry := NewRegistry("chats")
	storageMock := new(MockStorage)
	cacheStore := newFakeCache()
	cacheStore.failing = true

	bystander := newFakeConn()
	registry.Register(1, 20, bystander)

	storageMock.On("CreateChatMessage", mock.AnythingOfType("*models.ChatMessage")).
		Run(func(args mock.Arguments) {
			msg := args.Get(0).(*models.ChatMessage)
			msg.ID = 1
			msg.SentAt = time.Now()
		}).Return(nil)

	conn := newFakeConn([]byte(`{"content":"hello"}`))
	conn.disconnect()
	session := NewChatSession(registry, storageMock, cacheStore, testUser(10, models.RoleStudent), testChat(1), conn)
	session.Run(context.Background())

	// Persistence and fan-out are unaffected by the cache being down.
	storageMock.AssertNumberOfCalls(t, "CreateChatMessage", 1)
	assert.Len(t, decodeFrames(bystander.sentMessages()), 1)
	assert.Len(t, decodeFrames(conn.sentMessages()), 1)
}

func TestChatSession_EmptyContentIsValid(t *testing.T) {
	registry := NewRegistry("chats")
	storageMock := new(MockStorage)
	cacheStore := newFakeCache()

	storageMock.On("CreateChatMessage", mock.AnythingOfType("*models.ChatMessage")).
		Run(func(args mock.Arguments) {
			msg := args.Get(0).(*models.ChatMessage)
			msg.ID = 1
			msg.SentAt = time.Now()
		}).Return(nil)

	conn := newFakeConn([]byte(`{"content":""}`))
	conn.disconnect()
	session := NewChatSession(registry, storageMock, cacheStore, testUser(10, models.RoleStudent), testChat(1), conn)
	session.Run(context.Background())

	// Present-but-empty content is a message, not a protocol error.
	closed, code, _ := conn.closedWith()
	assert.True(t, closed)
	assert.Equal(t, websocket.CloseNormalClosure, code)
	storageMock.AssertNumberOfCalls(t, "CreateChatMessage", 1)
}
