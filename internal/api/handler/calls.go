package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/api/middleware"
	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/gin-gonic/gin"
)

const callCacheTTL = 1800 * time.Second

func callCacheKey(callID uint) string {
	return fmt.Sprintf("call:%d", callID)
}

type createCallRequest struct {
	ClassroomID uint `json:"classroom_id" binding:"required"`
}

// CreateCall opens a new active call in a classroom. Staff only.
func (h *Handler) CreateCall(c *gin.Context) {
	var req createCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	call := &models.Call{
		Status:      models.CallActive,
		ClassroomID: req.ClassroomID,
	}
	if err := h.Storage.CreateCall(call); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create call"})
		return
	}
	if err := h.Cache.Set(c.Request.Context(), callCacheKey(call.ID), call, callCacheTTL); err != nil {
		log.Printf("WARN: failed to cache call %d: %v", call.ID, err)
	}
	c.JSON(http.StatusCreated, call)
}

func (h *Handler) ListCalls(c *gin.Context) {
	calls, err := h.Storage.ListCalls(queryClassroomID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list calls"})
		return
	}
	c.JSON(http.StatusOK, calls)
}

// GetCall reads through the cache: cached detail when fresh, database
// otherwise.
func (h *Handler) GetCall(c *gin.Context) {
	id, ok := paramID(c, "call_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}

	var cached models.Call
	found, err := h.Cache.Get(c.Request.Context(), callCacheKey(id), &cached)
	if err != nil {
		log.Printf("WARN: call cache read failed for %d: %v", id, err)
	}
	if found && err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	call, err := h.Storage.GetCallByID(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load call"})
		return
	}
	if err := h.Cache.Set(c.Request.Context(), callCacheKey(id), call, callCacheTTL); err != nil {
		log.Printf("WARN: failed to cache call %d: %v", id, err)
	}
	c.JSON(http.StatusOK, call)
}

type updateCallRequest struct {
	Status models.CallStatus `json:"status" binding:"required,oneof=ended"`
}

// UpdateCall transitions the call's lifecycle state. Ending is the only
// transition; it goes through the same idempotent path as the realtime
// end_call action. Staff only.
func (h *Handler) UpdateCall(c *gin.Context) {
	id, ok := paramID(c, "call_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}
	var req updateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.Storage.GetCallByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	if err := h.Storage.EndCall(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end call"})
		return
	}
	if err := h.Cache.Delete(c.Request.Context(), callCacheKey(id)); err != nil {
		log.Printf("WARN: failed to drop cached call %d: %v", id, err)
	}

	call, err := h.Storage.GetCallByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load call"})
		return
	}
	c.JSON(http.StatusOK, call)
}

// JoinCall is the side-channel that creates (or revives) the
// participant row a signaling connection later relies on.
func (h *Handler) JoinCall(c *gin.Context) {
	id, ok := paramID(c, "call_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}
	user := middleware.UserFrom(c)

	call, err := h.Storage.GetCallByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	if call.Status != models.CallActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "call is not active"})
		return
	}

	participant, err := h.Storage.JoinCall(id, user.ID, user.Role)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyJoined) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you are already in this call"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join call"})
		return
	}
	c.JSON(http.StatusCreated, participant)
}

// LeaveCall stamps left_at on the caller's participant row and ends the
// call once nobody is left joined.
func (h *Handler) LeaveCall(c *gin.Context) {
	id, ok := paramID(c, "call_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}
	user := middleware.UserFrom(c)

	if err := h.Storage.LeaveCall(id, user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "you are not in this call"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave call"})
		return
	}

	remaining, err := h.Storage.HasJoinedParticipants(id)
	if err != nil {
		log.Printf("WARN: failed to check remaining participants for call %d: %v", id, err)
	} else if !remaining {
		if err := h.Storage.EndCall(id); err != nil {
			log.Printf("ERROR: failed to end empty call %d: %v", id, err)
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCallParticipants(c *gin.Context) {
	id, ok := paramID(c, "call_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}
	if _, err := h.Storage.GetCallByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	participants, err := h.Storage.ListCallParticipants(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list participants"})
		return
	}
	c.JSON(http.StatusOK, participants)
}

// DeleteCall removes the call record. Staff only.
func (h *Handler) DeleteCall(c *gin.Context) {
	id, ok := paramID(c, "call_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}
	if err := h.Storage.DeleteCall(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete call"})
		return
	}
	if err := h.Cache.Delete(c.Request.Context(), callCacheKey(id)); err != nil {
		log.Printf("WARN: failed to drop cached call %d: %v", id, err)
	}
	c.Status(http.StatusNoContent)
}
