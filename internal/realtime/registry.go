package realtime

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Registry tracks which (room, user) pairs currently hold an open
// channel, one instance per realtime surface (calls, chats). It is
// process-local: a restart loses all registrations and clients simply
// reconnect. All operations are serialized behind one lock so that
// concurrent joins and leaves in the same room cannot lose updates.
type Registry struct {
	name string

	mu    sync.RWMutex
	rooms map[uint]map[uint]Channel
}

func NewRegistry(name string) *Registry {
	return &Registry{
		name:  name,
		rooms: make(map[uint]map[uint]Channel),
	}
}

// Register installs ch as the single channel for (roomID, userID). An
// existing channel for the same pair is closed first: a reconnecting
// user evicts their previous connection.
func (r *Registry) Register(roomID, userID uint, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[roomID]
	if room == nil {
		room = make(map[uint]Channel)
		r.rooms[roomID] = room
	}
	if old, ok := room[userID]; ok {
		old.Close(websocket.CloseNormalClosure, "replaced by a newer connection")
		log.Printf("%s registry: user %d reconnected to room %d, previous channel evicted", r.name, userID, roomID)
	}
	room[userID] = ch
}

// Unregister removes the entry for (roomID, userID) if it still maps to
// ch, then garbage-collects the room bucket when it empties. Passing a
// stale channel (already evicted by a reconnect) is a no-op, as is
// unregistering an absent entry.
func (r *Registry) Unregister(roomID, userID uint, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return
	}
	if cur, ok := room[userID]; !ok || (ch != nil && cur != ch) {
		return
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
}

func (r *Registry) IsRegistered(roomID, userID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID][userID]
	return ok
}

// Count returns the number of channels currently registered in a room.
func (r *Registry) Count(roomID uint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// SendTo delivers data to exactly one channel. A missing entry is logged
// and dropped; a failing channel is closed and evicted. Errors never
// reach the caller.
func (r *Registry) SendTo(roomID, userID uint, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.rooms[roomID][userID]
	if !ok {
		log.Printf("WARN: %s registry: no channel for user %d in room %d", r.name, userID, roomID)
		return
	}
	if err := ch.Send(data); err != nil {
		log.Printf("WARN: %s registry: send to user %d in room %d failed: %v", r.name, userID, roomID, err)
		r.evictLocked(roomID, userID, ch)
	}
}

// Broadcast delivers data to every channel registered in the room.
func (r *Registry) Broadcast(roomID uint, data []byte) {
	r.broadcast(roomID, 0, data)
}

// BroadcastExcept delivers data to every channel in the room except the
// excluded user's.
func (r *Registry) BroadcastExcept(roomID, excludeUserID uint, data []byte) {
	r.broadcast(roomID, excludeUserID, data)
}

func (r *Registry) broadcast(roomID, excludeUserID uint, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return
	}
	var failed []uint
	for userID, ch := range room {
		if excludeUserID != 0 && userID == excludeUserID {
			continue
		}
		if err := ch.Send(data); err != nil {
			log.Printf("WARN: %s registry: broadcast to user %d in room %d failed: %v", r.name, userID, roomID, err)
			failed = append(failed, userID)
		}
	}
	for _, userID := range failed {
		r.evictLocked(roomID, userID, room[userID])
	}
}

// evictLocked drops a broken entry. Caller holds the write lock.
func (r *Registry) evictLocked(roomID, userID uint, ch Channel) {
	ch.Close(websocket.CloseGoingAway, "send failed")
	room := r.rooms[roomID]
	delete(room, userID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
}
