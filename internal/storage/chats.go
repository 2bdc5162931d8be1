package storage

import (
	"errors"
	"log"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateChat(chat *models.Chat) error {
	return s.DB.Create(chat).Error
}

func (s *Service) GetChatByID(id uint) (*models.Chat, error) {
	var chat models.Chat
	if err := s.DB.First(&chat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (s *Service) ListChats(classroomID *uint) ([]models.Chat, error) {
	var chats []models.Chat
	query := s.DB.Order("created_at asc")
	if classroomID != nil {
		query = query.Where("classroom_id = ?", *classroomID)
	}
	if err := query.Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *Service) UpdateChat(chat *models.Chat) error {
	return s.DB.Save(chat).Error
}

func (s *Service) DeleteChat(id uint) error {
	return s.DB.Delete(&models.Chat{}, id).Error
}

// CreateChatMessage persists one message and fills in ID and SentAt, so
// the caller can fan out the authoritative timestamp.
func (s *Service) CreateChatMessage(msg *models.ChatMessage) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: failed to save message for chat %d: %v", msg.ChatID, err)
		return err
	}
	return nil
}

func (s *Service) ListChatMessages(chatID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := s.DB.Where("chat_id = ?", chatID).
		Order("sent_at asc").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Service) GetChatMessage(chatID, messageID uint) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	err := s.DB.Where("chat_id = ?", chatID).First(&msg, messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) UpdateMessageRead(chatID, messageID uint, isRead bool) error {
	result := s.DB.Model(&models.ChatMessage{}).
		Where("id = ? AND chat_id = ?", messageID, chatID).
		Update("is_read", isRead)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteChatMessage(chatID, messageID uint) error {
	result := s.DB.Where("chat_id = ?", chatID).
		Delete(&models.ChatMessage{}, messageID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
