package handler

import (
	"errors"
	"net/http"

	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

type classroomRequest struct {
	Name      string `json:"name" binding:"required"`
	TeacherID uint   `json:"teacher_id" binding:"required"`
	StudentID *uint  `json:"student_id"`
	LessonID  *uint  `json:"lesson_id"`
}

func (h *Handler) CreateClassroom(c *gin.Context) {
	var req classroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	classroom := &models.Classroom{
		Name:      req.Name,
		TeacherID: req.TeacherID,
		StudentID: req.StudentID,
		LessonID:  req.LessonID,
	}
	if err := h.Storage.CreateClassroom(classroom); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create classroom"})
		return
	}
	c.JSON(http.StatusCreated, classroom)
}

func (h *Handler) ListClassrooms(c *gin.Context) {
	classrooms, err := h.Storage.ListClassrooms()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list classrooms"})
		return
	}
	c.JSON(http.StatusOK, classrooms)
}

func (h *Handler) GetClassroom(c *gin.Context) {
	id, ok := paramID(c, "classroom_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid classroom id"})
		return
	}
	classroom, err := h.Storage.GetClassroomByID(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "classroom not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load classroom"})
		return
	}
	c.JSON(http.StatusOK, classroom)
}

func (h *Handler) UpdateClassroom(c *gin.Context) {
	id, ok := paramID(c, "classroom_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid classroom id"})
		return
	}
	classroom, err := h.Storage.GetClassroomByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "classroom not found"})
		return
	}

	var req classroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	classroom.Name = req.Name
	classroom.TeacherID = req.TeacherID
	classroom.StudentID = req.StudentID
	classroom.LessonID = req.LessonID

	if err := h.Storage.UpdateClassroom(classroom); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update classroom"})
		return
	}
	c.JSON(http.StatusOK, classroom)
}

func (h *Handler) DeleteClassroom(c *gin.Context) {
	id, ok := paramID(c, "classroom_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid classroom id"})
		return
	}
	if err := h.Storage.DeleteClassroom(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete classroom"})
		return
	}
	c.Status(http.StatusNoContent)
}

type lessonRequest struct {
	Title   string   `json:"title" binding:"required"`
	Level   string   `json:"level"`
	Topics  []string `json:"topics"`
	Content string   `json:"content"`
}

func (h *Handler) CreateLesson(c *gin.Context) {
	var req lessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lesson := &models.Lesson{
		Title:   req.Title,
		Level:   req.Level,
		Topics:  pq.StringArray(req.Topics),
		Content: req.Content,
	}
	if err := h.Storage.CreateLesson(lesson); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lesson"})
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *Handler) ListLessons(c *gin.Context) {
	lessons, err := h.Storage.ListLessons()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list lessons"})
		return
	}
	c.JSON(http.StatusOK, lessons)
}

func (h *Handler) GetLesson(c *gin.Context) {
	id, ok := paramID(c, "lesson_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	lesson, err := h.Storage.GetLessonByID(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load lesson"})
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *Handler) UpdateLesson(c *gin.Context) {
	id, ok := paramID(c, "lesson_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	lesson, err := h.Storage.GetLessonByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}

	var req lessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lesson.Title = req.Title
	lesson.Level = req.Level
	lesson.Topics = pq.StringArray(req.Topics)
	lesson.Content = req.Content

	if err := h.Storage.UpdateLesson(lesson); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update lesson"})
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *Handler) DeleteLesson(c *gin.Context) {
	id, ok := paramID(c, "lesson_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	if err := h.Storage.DeleteLesson(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete lesson"})
		return
	}
	c.Status(http.StatusNoContent)
}
