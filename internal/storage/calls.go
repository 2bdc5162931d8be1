package storage

import (
	"errors"
	"log"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateCall(call *models.Call) error {
	if call.Status == "" {
		call.Status = models.CallActive
	}
	return s.DB.Create(call).Error
}

func (s *Service) GetCallByID(id uint) (*models.Call, error) {
	var call models.Call
	if err := s.DB.First(&call, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &call, nil
}

func (s *Service) ListCalls(classroomID *uint) ([]models.Call, error) {
	var calls []models.Call
	query := s.DB.Order("created_at desc")
	if classroomID != nil {
		query = query.Where("classroom_id = ?", *classroomID)
	}
	if err := query.Find(&calls).Error; err != nil {
		return nil, err
	}
	return calls, nil
}

// EndCall marks the call ended with an end timestamp. Idempotent: ending
// an already-ended call changes nothing and is not an error, which keeps
// the disconnect-time cleanup safe when two participants leave at once.
func (s *Service) EndCall(callID uint) error {
	return s.DB.Model(&models.Call{}).
		Where("id = ? AND status = ?", callID, models.CallActive).
		Updates(map[string]interface{}{
			"status":   models.CallEnded,
			"ended_at": time.Now(),
		}).Error
}

func (s *Service) DeleteCall(id uint) error {
	return s.DB.Delete(&models.Call{}, id).Error
}

// JoinCall creates the participant row for (callID, userID), or revives
// the existing one by clearing left_at. A row that is still joined makes
// this an ErrAlreadyJoined.
func (s *Service) JoinCall(callID, userID uint, role models.Role) (*models.CallParticipant, error) {
	var participant models.CallParticipant
	err := s.DB.Where("call_id = ? AND user_id = ?", callID, userID).
		First(&participant).Error

	switch {
	case err == nil:
		if participant.LeftAt == nil {
			return nil, ErrAlreadyJoined
		}
		participant.JoinedAt = time.Now()
		participant.LeftAt = nil
		if err := s.DB.Save(&participant).Error; err != nil {
			return nil, err
		}
		return &participant, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		participant = models.CallParticipant{
			CallID:       callID,
			UserID:       userID,
			Role:         role,
			JoinedAt:     time.Now(),
			MicStatus:    true,
			CameraStatus: true,
			VideoQuality: string(models.QualityMedium),
		}
		if err := s.DB.Create(&participant).Error; err != nil {
			return nil, err
		}
		return &participant, nil

	default:
		return nil, err
	}
}

func (s *Service) LeaveCall(callID, userID uint) error {
	result := s.DB.Model(&models.CallParticipant{}).
		Where("call_id = ? AND user_id = ? AND left_at IS NULL", callID, userID).
		Update("left_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) GetCallParticipant(callID, userID uint) (*models.CallParticipant, error) {
	var participant models.CallParticipant
	err := s.DB.Where("call_id = ? AND user_id = ?", callID, userID).
		First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: failed to load participant call=%d user=%d: %v", callID, userID, err)
		return nil, err
	}
	return &participant, nil
}

func (s *Service) ListCallParticipants(callID uint) ([]models.CallParticipant, error) {
	var participants []models.CallParticipant
	if err := s.DB.Where("call_id = ?", callID).
		Order("joined_at asc").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// UpdateParticipantMedia applies a field-wise media-state update to the
// participant row. Callers pass only the column being toggled.
func (s *Service) UpdateParticipantMedia(callID, userID uint, updates map[string]interface{}) error {
	return s.DB.Model(&models.CallParticipant{}).
		Where("call_id = ? AND user_id = ?", callID, userID).
		Updates(updates).Error
}

func (s *Service) HasJoinedParticipants(callID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&models.CallParticipant{}).
		Where("call_id = ? AND left_at IS NULL", callID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
