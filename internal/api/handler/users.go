package handler

import (
	"errors"
	"net/http"

	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type createUserRequest struct {
	Email       string      `json:"email" binding:"required,email"`
	Username    string      `json:"username" binding:"required"`
	PhoneNumber string      `json:"phone_number"`
	Password    string      `json:"password" binding:"required,min=8"`
	Role        models.Role `json:"role" binding:"required,oneof=teacher student admin"`

	Age              *int                 `json:"age"`
	SubscriptionType *models.Subscription `json:"subscription_type"`
	Level            *string              `json:"level"`
	ClassroomID      *uint                `json:"classroom_id"`
}

// CreateUser registers a new account. Admin only.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := &models.User{
		Email:            req.Email,
		Username:         req.Username,
		PhoneNumber:      req.PhoneNumber,
		HashedPassword:   string(hashed),
		Role:             req.Role,
		IsActive:         true,
		Age:              req.Age,
		SubscriptionType: req.SubscriptionType,
		Level:            req.Level,
		ClassroomID:      req.ClassroomID,
	}
	if err := h.Storage.CreateUser(user); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email, username or phone already taken"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Storage.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "user_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	user, err := h.Storage.GetUserByID(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Username         *string              `json:"username"`
	PhoneNumber      *string              `json:"phone_number"`
	ProfileImage     *string              `json:"profile_image"`
	IsActive         *bool                `json:"is_active"`
	Age              *int                 `json:"age"`
	SubscriptionType *models.Subscription `json:"subscription_type"`
	Level            *string              `json:"level"`
	LessonBalance    *int                 `json:"lesson_balance"`
	ClassroomID      *uint                `json:"classroom_id"`
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "user_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	user, err := h.Storage.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.SubscriptionType != nil {
		user.SubscriptionType = req.SubscriptionType
	}
	if req.Level != nil {
		user.Level = req.Level
	}
	if req.LessonBalance != nil {
		user.LessonBalance = req.LessonBalance
	}
	if req.ClassroomID != nil {
		user.ClassroomID = req.ClassroomID
	}

	if err := h.Storage.UpdateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "user_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if err := h.Storage.DeleteUser(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	c.Status(http.StatusNoContent)
}
