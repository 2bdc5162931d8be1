package storage

import (
	"errors"

	"github.com/Ivan2330/english-platform-deploy/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateClassroom(classroom *models.Classroom) error {
	return s.DB.Create(classroom).Error
}

func (s *Service) GetClassroomByID(id uint) (*models.Classroom, error) {
	var classroom models.Classroom
	if err := s.DB.First(&classroom, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &classroom, nil
}

func (s *Service) ListClassrooms() ([]models.Classroom, error) {
	var classrooms []models.Classroom
	if err := s.DB.Order("created_at asc").Find(&classrooms).Error; err != nil {
		return nil, err
	}
	return classrooms, nil
}

func (s *Service) UpdateClassroom(classroom *models.Classroom) error {
	return s.DB.Save(classroom).Error
}

func (s *Service) DeleteClassroom(id uint) error {
	return s.DB.Delete(&models.Classroom{}, id).Error
}

func (s *Service) CreateLesson(lesson *models.Lesson) error {
	return s.DB.Create(lesson).Error
}

func (s *Service) GetLessonByID(id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.DB.First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lesson, nil
}

func (s *Service) ListLessons() ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := s.DB.Order("created_at asc").Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (s *Service) UpdateLesson(lesson *models.Lesson) error {
	return s.DB.Save(lesson).Error
}

func (s *Service) DeleteLesson(id uint) error {
	return s.DB.Delete(&models.Lesson{}, id).Error
}
