package handler

import (
	"strconv"

	"github.com/Ivan2330/english-platform-deploy/internal/auth"
	"github.com/Ivan2330/english-platform-deploy/internal/cache"
	"github.com/Ivan2330/english-platform-deploy/internal/realtime"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler carries the dependencies shared by every endpoint: the store,
// the cache, the token service, and one connection registry per realtime
// surface.
type Handler struct {
	Storage storage.Storage
	Cache   cache.Store
	Tokens  *auth.TokenService

	Calls *realtime.Registry
	Chats *realtime.Registry
}

func NewHandler(store storage.Storage, cacheStore cache.Store, tokens *auth.TokenService, calls, chats *realtime.Registry) *Handler {
	return &Handler{
		Storage: store,
		Cache:   cacheStore,
		Tokens:  tokens,
		Calls:   calls,
		Chats:   chats,
	}
}

// paramID parses a numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// queryClassroomID parses the optional classroom_id filter.
func queryClassroomID(c *gin.Context) *uint {
	raw := c.Query("classroom_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	classroomID := uint(id)
	return &classroomID
}
