package realtime

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/cache"
	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"
)

const (
	statusTTL  = 1800 * time.Second
	backlogTTL = 1800 * time.Second

	// backlogLimit bounds the cached chat history to the most recent
	// messages; older entries fall off the front.
	backlogLimit = 100
)

func participantStatusKey(callID, userID uint) string {
	return fmt.Sprintf("call:%d:participant:%d", callID, userID)
}

func chatBacklogKey(chatID uint) string {
	return fmt.Sprintf("chat:%d:messages", chatID)
}

// ResolveParticipantStatus is the fallback chain for a participant's
// media state: cache lookup, then store lookup, then cache populate.
// Cache failures degrade to a store read; a missing participant row is
// storage.ErrNotFound.
func ResolveParticipantStatus(ctx context.Context, c cache.Store, s storage.Storage, callID, userID uint) (*models.ParticipantStatus, error) {
	key := participantStatusKey(callID, userID)

	var status models.ParticipantStatus
	found, err := c.Get(ctx, key, &status)
	if err != nil {
		log.Printf("WARN: participant status cache read failed for %s: %v", key, err)
	}
	if found && err == nil {
		return &status, nil
	}

	participant, err := s.GetCallParticipant(callID, userID)
	if err != nil {
		return nil, err
	}
	status = participant.Status()

	if err := c.Set(ctx, key, status, statusTTL); err != nil {
		log.Printf("WARN: participant status cache write failed for %s: %v", key, err)
	}
	return &status, nil
}

// mirrorParticipantStatus applies a field-wise update to the cached
// projection, refreshing its TTL. The row was already persisted; losing
// the mirror only costs the next reader a database round trip, so every
// failure is logged and swallowed.
func mirrorParticipantStatus(ctx context.Context, c cache.Store, s storage.Storage, callID, userID uint, apply func(*models.ParticipantStatus)) {
	status, err := ResolveParticipantStatus(ctx, c, s, callID, userID)
	if err != nil {
		log.Printf("WARN: skipping status mirror for call %d user %d: %v", callID, userID, err)
		return
	}
	apply(status)

	key := participantStatusKey(callID, userID)
	if err := c.Set(ctx, key, status, statusTTL); err != nil {
		log.Printf("WARN: participant status cache write failed for %s: %v", key, err)
	}
}

// chatBacklog returns the cached recent history for a chat, oldest
// first. A cold or broken cache yields an empty backlog.
func chatBacklog(ctx context.Context, c cache.Store, chatID uint) ([]models.ChatEvent, error) {
	var backlog []models.ChatEvent
	if _, err := c.Get(ctx, chatBacklogKey(chatID), &backlog); err != nil {
		return nil, err
	}
	return backlog, nil
}

// appendChatBacklog appends one event to the chat's cached history,
// evicting the oldest entries beyond the capacity and refreshing the
// TTL on every append.
func appendChatBacklog(ctx context.Context, c cache.Store, chatID uint, event models.ChatEvent) error {
	key := chatBacklogKey(chatID)

	var backlog []models.ChatEvent
	if _, err := c.Get(ctx, key, &backlog); err != nil {
		return err
	}
	backlog = append(backlog, event)
	if len(backlog) > backlogLimit {
		backlog = backlog[len(backlog)-backlogLimit:]
	}
	return c.Set(ctx, key, backlog, backlogTTL)
}
