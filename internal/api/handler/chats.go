package handler

import (
	"errors"
	"net/http"

	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/gin-gonic/gin"
)

type createChatRequest struct {
	Name        *string `json:"name"`
	ClassroomID uint    `json:"classroom_id" binding:"required"`
}

// CreateChat opens a chat room for a classroom. Staff only.
func (h *Handler) CreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chat := &models.Chat{
		Name:        req.Name,
		ClassroomID: req.ClassroomID,
	}
	if err := h.Storage.CreateChat(chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat"})
		return
	}
	c.JSON(http.StatusCreated, chat)
}

func (h *Handler) ListChats(c *gin.Context) {
	chats, err := h.Storage.ListChats(queryClassroomID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list chats"})
		return
	}
	c.JSON(http.StatusOK, chats)
}

func (h *Handler) GetChat(c *gin.Context) {
	id, ok := paramID(c, "chat_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}
	chat, err := h.Storage.GetChatByID(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat"})
		return
	}
	c.JSON(http.StatusOK, chat)
}

type updateChatRequest struct {
	Name *string `json:"name"`
}

// UpdateChat renames the chat. Staff only.
func (h *Handler) UpdateChat(c *gin.Context) {
	id, ok := paramID(c, "chat_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}
	chat, err := h.Storage.GetChatByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}

	var req updateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chat.Name = req.Name

	if err := h.Storage.UpdateChat(chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update chat"})
		return
	}
	c.JSON(http.StatusOK, chat)
}

// DeleteChat removes the chat and its messages. Staff only.
func (h *Handler) DeleteChat(c *gin.Context) {
	id, ok := paramID(c, "chat_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}
	if err := h.Storage.DeleteChat(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete chat"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListChatMessages returns the persisted history oldest first. The
// realtime backlog only holds the recent tail, this endpoint serves the
// full archive.
func (h *Handler) ListChatMessages(c *gin.Context) {
	id, ok := paramID(c, "chat_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}
	if _, err := h.Storage.GetChatByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	messages, err := h.Storage.ListChatMessages(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

type markReadRequest struct {
	IsRead bool `json:"is_read"`
}

func (h *Handler) MarkMessageRead(c *gin.Context) {
	chatID, ok := paramID(c, "chat_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}
	messageID, ok := paramID(c, "message_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.Storage.GetChatMessage(chatID, messageID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	if err := h.Storage.UpdateMessageRead(chatID, messageID, req.IsRead); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update message"})
		return
	}
	message.IsRead = req.IsRead
	c.JSON(http.StatusOK, message)
}

// DeleteChatMessage removes a single message. Staff only.
func (h *Handler) DeleteChatMessage(c *gin.Context) {
	chatID, ok := paramID(c, "chat_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}
	messageID, ok := paramID(c, "message_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.Storage.DeleteChatMessage(chatID, messageID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		return
	}
	c.Status(http.StatusNoContent)
}
