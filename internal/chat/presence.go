// internal/chat/presence.go
// Presence Tracker: ephemeral per-identity online/offline state. Single
// instances track it in memory; multi-instance deployments externalize it to
// Redis so every instance sees the same view.

package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// PresenceTracker owns the status map. Writes are last-write-wins across an
// identity's devices; an identity with no entry is offline.
type PresenceTracker interface {
	SetStatus(ctx context.Context, userID int64, status string) error
	Status(ctx context.Context, userID int64) (PresenceState, error)
}

// memoryPresence is the single-instance tracker

type memoryPresence struct {
	mu sync.RWMutex
	m  map[int64]PresenceState
}

// NewMemoryPresence creates the in-process tracker
func NewMemoryPresence() PresenceTracker {
	return &memoryPresence{m: make(map[int64]PresenceState)}
}

func (p *memoryPresence) SetStatus(ctx context.Context, userID int64, status string) error {
	if status != StatusOnline && status != StatusOffline {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	p.mu.Lock()
	p.m[userID] = PresenceState{UserID: userID, Status: status, LastSeen: time.Now()}
	p.mu.Unlock()
	return nil
}

func (p *memoryPresence) Status(ctx context.Context, userID int64) (PresenceState, error) {
	p.mu.RLock()
	state, ok := p.m[userID]
	p.mu.RUnlock()

	if !ok {
		return PresenceState{UserID: userID, Status: StatusOffline}, nil
	}
	return state, nil
}

// redisPresence externalizes the map for horizontal scale

type redisPresence struct {
	rdb *redis.Client
}

// NewRedisPresence creates the shared-store tracker
func NewRedisPresence(rdb *redis.Client) PresenceTracker {
	return &redisPresence{rdb: rdb}
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("presence:%d", userID)
}

func (p *redisPresence) SetStatus(ctx context.Context, userID int64, status string) error {
	if status != StatusOnline && status != StatusOffline {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	return p.rdb.HSet(ctx, presenceKey(userID),
		"status", status,
		"last_seen", time.Now().UnixMilli(),
	).Err()
}

func (p *redisPresence) Status(ctx context.Context, userID int64) (PresenceState, error) {
	fields, err := p.rdb.HGetAll(ctx, presenceKey(userID)).Result()
	if err != nil {
		return PresenceState{}, err
	}

	state := PresenceState{UserID: userID, Status: StatusOffline}
	if status, ok := fields["status"]; ok {
		state.Status = status
	}
	if raw, ok := fields["last_seen"]; ok {
		var millis int64
		if _, err := fmt.Sscanf(raw, "%d", &millis); err == nil {
			state.LastSeen = time.UnixMilli(millis)
		}
	}
	return state, nil
}
