package models

import (
	"time"

	"github.com/lib/pq"
)

// Classroom links one teacher with one student (individual format) or a
// group, and anchors the classroom's calls and chats.
type Classroom struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	TeacherID uint      `gorm:"not null;index" json:"teacher_id"`
	StudentID *uint     `json:"student_id,omitempty"`
	LessonID  *uint     `json:"lesson_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lesson is the teaching material a classroom works through.
type Lesson struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	Level     string         `json:"level"`
	Topics    pq.StringArray `gorm:"type:text[]" json:"topics"`
	Content   string         `gorm:"type:text" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
