package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/Ivan2330/english-platform-deploy/internal/cache"
	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/gorilla/websocket"
)

// CallSession drives one signaling connection from registration to
// termination. The handshake (credential, call lookup, active check) has
// already happened by the time Run is called; the session owns the read
// side of the connection and processes inbound events strictly in
// arrival order.
type CallSession struct {
	registry *Registry
	store    storage.Storage
	cache    cache.Store

	user *models.User
	call *models.Call
	conn Conn
}

func NewCallSession(registry *Registry, store storage.Storage, cacheStore cache.Store, user *models.User, call *models.Call, conn Conn) *CallSession {
	return &CallSession{
		registry: registry,
		store:    store,
		cache:    cacheStore,
		user:     user,
		call:     call,
		conn:     conn,
	}
}

// Run blocks until the session terminates. On return the connection is
// closed and the registration removed.
func (s *CallSession) Run(ctx context.Context) {
	s.conn.Run()
	s.registry.Register(s.call.ID, s.user.ID, s.conn)

	status, err := ResolveParticipantStatus(ctx, s.cache, s.store, s.call.ID, s.user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.conn.Close(websocket.ClosePolicyViolation, "participant not found")
		} else {
			s.conn.Close(websocket.CloseInternalServerErr, "internal server error")
		}
		s.registry.Unregister(s.call.ID, s.user.ID, s.conn)
		return
	}

	s.registry.BroadcastExcept(s.call.ID, s.user.ID, encodeEvent(ActionJoin, s.user.ID, map[string]interface{}{
		"mic_status":     status.MicStatus,
		"camera_status":  status.CameraStatus,
		"screen_sharing": status.ScreenSharing,
		"video_quality":  status.VideoQuality,
	}))
	log.Printf("user %d joined call %d", s.user.ID, s.call.ID)

	s.loop(ctx)

	// A read error without a prior server-side close means the peer went
	// away; only then do the others get a leave event.
	if !s.conn.ServerClosed() {
		s.registry.BroadcastExcept(s.call.ID, s.user.ID, encodeEvent(ActionLeave, s.user.ID, nil))
	}
	s.conn.Close(websocket.CloseNormalClosure, "")
	s.registry.Unregister(s.call.ID, s.user.ID, s.conn)

	// Best-effort cleanup: an emptied call is marked ended. EndCall is
	// idempotent, so racing with another leaver or a prior end_call is
	// harmless.
	if s.registry.Count(s.call.ID) == 0 {
		if err := s.store.EndCall(s.call.ID); err != nil {
			log.Printf("ERROR: failed to end empty call %d: %v", s.call.ID, err)
		}
	}
	log.Printf("user %d disconnected from call %d", s.user.ID, s.call.ID)
}

func (s *CallSession) loop(ctx context.Context) {
	for {
		data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		action, err := DecodeCallAction(data)
		if err != nil {
			s.conn.Close(websocket.CloseProtocolError, "malformed payload")
			return
		}
		if s.handle(ctx, action) {
			return
		}
	}
}

// handle processes one inbound action and reports whether the session
// should terminate.
func (s *CallSession) handle(ctx context.Context, action *CallAction) bool {
	switch action.Action {
	case ActionToggleMic:
		return s.applyMediaUpdate(ctx, "mic_status", *action.Status, ActionMicStatus, "status",
			func(st *models.ParticipantStatus) { st.MicStatus = *action.Status })

	case ActionToggleCamera:
		return s.applyMediaUpdate(ctx, "camera_status", *action.Status, ActionCameraStatus, "status",
			func(st *models.ParticipantStatus) { st.CameraStatus = *action.Status })

	case ActionShareScreen:
		return s.applyMediaUpdate(ctx, "screen_sharing", *action.Status, ActionScreenSharing, "status",
			func(st *models.ParticipantStatus) { st.ScreenSharing = *action.Status })

	case ActionSetQuality:
		return s.applyMediaUpdate(ctx, "video_quality", action.Quality, ActionQualityChange, "quality",
			func(st *models.ParticipantStatus) { st.VideoQuality = action.Quality })

	case ActionOffer, ActionAnswer, ActionICECandidate:
		field, raw := action.relayPayload()
		s.registry.BroadcastExcept(s.call.ID, s.user.ID, encodeEvent(action.Action, s.user.ID, map[string]interface{}{
			field: json.RawMessage(raw),
		}))
		return false

	case ActionEndCall:
		return s.endCall()
	}
	return false
}

// applyMediaUpdate persists one media-state field, mirrors it into the
// cached status, and broadcasts the confirmation to the whole room,
// sender included, so every client renders the server-confirmed state.
func (s *CallSession) applyMediaUpdate(ctx context.Context, column string, value interface{}, action, payloadKey string, apply func(*models.ParticipantStatus)) bool {
	if err := s.store.UpdateParticipantMedia(s.call.ID, s.user.ID, map[string]interface{}{column: value}); err != nil {
		log.Printf("ERROR: failed to persist %s for user %d in call %d: %v", column, s.user.ID, s.call.ID, err)
		s.conn.Close(websocket.CloseInternalServerErr, "internal server error")
		return true
	}
	mirrorParticipantStatus(ctx, s.cache, s.store, s.call.ID, s.user.ID, apply)

	s.registry.Broadcast(s.call.ID, encodeEvent(action, s.user.ID, map[string]interface{}{
		payloadKey: value,
	}))
	return false
}

// endCall handles the privileged termination action. A non-staff sender
// is ignored without an error event: only structurally invalid input is
// fatal, not policy-disallowed input.
func (s *CallSession) endCall() bool {
	if !s.user.IsStaff() {
		log.Printf("WARN: user %d (role %s) attempted to end call %d, ignored", s.user.ID, s.user.Role, s.call.ID)
		return false
	}
	if err := s.store.EndCall(s.call.ID); err != nil {
		log.Printf("ERROR: failed to end call %d: %v", s.call.ID, err)
		s.conn.Close(websocket.CloseInternalServerErr, "internal server error")
		return true
	}
	s.registry.Broadcast(s.call.ID, encodeEvent(ActionCallEnded, s.user.ID, nil))
	s.conn.Close(websocket.CloseNormalClosure, "call ended")
	return true
}
