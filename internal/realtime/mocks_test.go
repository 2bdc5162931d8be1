package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock for the full storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

// User operations

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) ListUsers() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) UpdateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) DeleteUser(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) TouchLastLogin(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// Classroom and lesson operations

func (m *MockStorage) CreateClassroom(classroom *models.Classroom) error {
	args := m.Called(classroom)
	return args.Error(0)
}

func (m *MockStorage) GetClassroomByID(id uint) (*models.Classroom, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Classroom), args.Error(1)
}

func (m *MockStorage) ListClassrooms() ([]models.Classroom, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Classroom), args.Error(1)
}

func (m *MockStorage) UpdateClassroom(classroom *models.Classroom) error {
	args := m.Called(classroom)
	return args.Error(0)
}

func (m *MockStorage) DeleteClassroom(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) CreateLesson(lesson *models.Lesson) error {
	args := m.Called(lesson)
	return args.Error(0)
}

func (m *MockStorage) GetLessonByID(id uint) (*models.Lesson, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockStorage) ListLessons() ([]models.Lesson, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lesson), args.Error(1)
}

func (m *MockStorage) UpdateLesson(lesson *models.Lesson) error {
	args := m.Called(lesson)
	return args.Error(0)
}

func (m *MockStorage) DeleteLesson(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// Call operations

func (m *MockStorage) CreateCall(call *models.Call) error {
	args := m.Called(call)
	return args.Error(0)
}

func (m *MockStorage) GetCallByID(id uint) (*models.Call, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Call), args.Error(1)
}

func (m *MockStorage) ListCalls(classroomID *uint) ([]models.Call, error) {
	args := m.Called(classroomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Call), args.Error(1)
}

func (m *MockStorage) EndCall(callID uint) error {
	args := m.Called(callID)
	return args.Error(0)
}

func (m *MockStorage) DeleteCall(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) JoinCall(callID, userID uint, role models.Role) (*models.CallParticipant, error) {
	args := m.Called(callID, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CallParticipant), args.Error(1)
}

func (m *MockStorage) LeaveCall(callID, userID uint) error {
	args := m.Called(callID, userID)
	return args.Error(0)
}

func (m *MockStorage) GetCallParticipant(callID, userID uint) (*models.CallParticipant, error) {
	args := m.Called(callID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CallParticipant), args.Error(1)
}

func (m *MockStorage) ListCallParticipants(callID uint) ([]models.CallParticipant, error) {
	args := m.Called(callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CallParticipant), args.Error(1)
}

func (m *MockStorage) UpdateParticipantMedia(callID, userID uint, updates map[string]interface{}) error {
	args := m.Called(callID, userID, updates)
	return args.Error(0)
}

func (m *MockStorage) HasJoinedParticipants(callID uint) (bool, error) {
	args := m.Called(callID)
	return args.Bool(0), args.Error(1)
}

// Chat operations

func (m *MockStorage) CreateChat(chat *models.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockStorage) GetChatByID(id uint) (*models.Chat, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) ListChats(classroomID *uint) ([]models.Chat, error) {
	args := m.Called(classroomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chat), args.Error(1)
}

func (m *MockStorage) UpdateChat(chat *models.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockStorage) DeleteChat(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) CreateChatMessage(msg *models.ChatMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) ListChatMessages(chatID uint) ([]models.ChatMessage, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *MockStorage) GetChatMessage(chatID, messageID uint) (*models.ChatMessage, error) {
	args := m.Called(chatID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockStorage) UpdateMessageRead(chatID, messageID uint, isRead bool) error {
	args := m.Called(chatID, messageID, isRead)
	return args.Error(0)
}

func (m *MockStorage) DeleteChatMessage(chatID, messageID uint) error {
	args := m.Called(chatID, messageID)
	return args.Error(0)
}

// fakeCache is a map-backed cache.Store. Setting failing simulates a
// Redis outage: every call errors until it is cleared.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failing bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return false, errors.New("cache unavailable")
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("cache unavailable")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("cache unavailable")
	}
	delete(c.data, key)
	return nil
}

// fakeConn is an in-memory Conn. Tests preload inbound frames (or push
// them later), and disconnect() simulates the peer going away. It also
// serves as a plain Channel in registry tests.
type fakeConn struct {
	inbound chan []byte
	done    chan struct{}

	mu          sync.Mutex
	sent        [][]byte
	failSend    bool
	closed      bool
	closeCode   int
	closeReason string
}

func newFakeConn(frames ...[]byte) *fakeConn {
	c := &fakeConn{
		inbound: make(chan []byte, 64),
		done:    make(chan struct{}),
	}
	for _, f := range frames {
		c.inbound <- f
	}
	return c
}

func (c *fakeConn) Run() {}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data, ok := <-c.inbound:
		if !ok {
			return nil, io.EOF
		}
		return data, nil
	case <-c.done:
		return nil, io.EOF
	}
}

func (c *fakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return errors.New("send failed")
	}
	if c.closed {
		return errors.New("channel closed")
	}
	c.sent = append(c.sent, data)
	return nil
}

func (c *fakeConn) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
	close(c.done)
}

func (c *fakeConn) ServerClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// push queues one more inbound frame.
func (c *fakeConn) push(frame []byte) {
	c.inbound <- frame
}

// disconnect simulates the peer dropping the connection.
func (c *fakeConn) disconnect() {
	close(c.inbound)
}

func (c *fakeConn) sentMessages() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *fakeConn) closedWith() (bool, int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeCode, c.closeReason
}

// decodeFrames unmarshals every sent frame into a generic map for
// assertions on action names and payload fields.
func decodeFrames(frames [][]byte) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(frames))
	for _, f := range frames {
		var m map[string]interface{}
		if err := json.Unmarshal(f, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}
