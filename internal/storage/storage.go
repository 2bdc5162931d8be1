package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyJoined is returned by JoinCall for a user with a currently
// joined participant row in the same call.
var ErrAlreadyJoined = errors.New("already joined this call")

type Storage interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers() ([]models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(id uint) error
	TouchLastLogin(id uint) error

	// Classrooms and lessons
	CreateClassroom(classroom *models.Classroom) error
	GetClassroomByID(id uint) (*models.Classroom, error)
	ListClassrooms() ([]models.Classroom, error)
	UpdateClassroom(classroom *models.Classroom) error
	DeleteClassroom(id uint) error
	CreateLesson(lesson *models.Lesson) error
	GetLessonByID(id uint) (*models.Lesson, error)
	ListLessons() ([]models.Lesson, error)
	UpdateLesson(lesson *models.Lesson) error
	DeleteLesson(id uint) error

	// Calls
	CreateCall(call *models.Call) error
	GetCallByID(id uint) (*models.Call, error)
	ListCalls(classroomID *uint) ([]models.Call, error)
	EndCall(callID uint) error
	DeleteCall(id uint) error
	JoinCall(callID, userID uint, role models.Role) (*models.CallParticipant, error)
	LeaveCall(callID, userID uint) error
	GetCallParticipant(callID, userID uint) (*models.CallParticipant, error)
	ListCallParticipants(callID uint) ([]models.CallParticipant, error)
	UpdateParticipantMedia(callID, userID uint, updates map[string]interface{}) error
	HasJoinedParticipants(callID uint) (bool, error)

	// Chats
	CreateChat(chat *models.Chat) error
	GetChatByID(id uint) (*models.Chat, error)
	ListChats(classroomID *uint) ([]models.Chat, error)
	UpdateChat(chat *models.Chat) error
	DeleteChat(id uint) error
	CreateChatMessage(msg *models.ChatMessage) error
	ListChatMessages(chatID uint) ([]models.ChatMessage, error)
	GetChatMessage(chatID, messageID uint) (*models.ChatMessage, error)
	UpdateMessageRead(chatID, messageID uint, isRead bool) error
	DeleteChatMessage(chatID, messageID uint) error
}

// Service implements Storage on PostgreSQL (gorm) with a Redis client
// shared with the cache layer.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

func (s *Service) CreateUser(user *models.User) error {
	if user.LastLogin.IsZero() {
		user.LastLogin = time.Now()
	}
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("created_at asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) UpdateUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) DeleteUser(id uint) error {
	return s.DB.Delete(&models.User{}, id).Error
}

func (s *Service) TouchLastLogin(id uint) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", time.Now()).Error
}
