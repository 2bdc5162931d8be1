package models

import "time"

// Chat is a text channel bound to one classroom. Unlike calls, chats have
// no lifecycle status; they stay open for the life of the classroom.
type Chat struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        *string   `json:"name,omitempty"`
	ClassroomID uint      `gorm:"not null;index" json:"classroom_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatMessage is one persisted message. Immutable once written except for
// the read flag.
type ChatMessage struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ChatID  uint   `gorm:"not null;index" json:"chat_id"`
	UserID  uint   `gorm:"not null" json:"user_id"`
	Role    Role   `gorm:"type:text;not null" json:"role"`
	Message string `gorm:"type:text;not null" json:"message"`

	SentAt time.Time `gorm:"index" json:"sent_at"`
	IsRead bool      `gorm:"default:false" json:"is_read"`
}

// ChatEvent is the wire shape delivered to chat connections, both for
// live fan-out and for backlog replay, so client handling stays uniform.
type ChatEvent struct {
	ChatID  uint      `json:"chat_id"`
	Message string    `json:"message"`
	UserID  uint      `json:"user_id"`
	Role    Role      `json:"role"`
	SentAt  time.Time `json:"sent_at"`
	IsRead  bool      `json:"is_read"`
}

// Event returns the wire projection of the persisted message.
func (m *ChatMessage) Event() ChatEvent {
	return ChatEvent{
		ChatID:  m.ChatID,
		Message: m.Message,
		UserID:  m.UserID,
		Role:    m.Role,
		SentAt:  m.SentAt,
		IsRead:  m.IsRead,
	}
}
