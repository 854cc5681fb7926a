// internal/chat/registry.go
// Room Registry: the single membership authority checked before any store
// or broadcast call. The relational store stays the source of truth; the
// registry caches membership sets for fast per-action checks.

package chat

import (
	"context"
	"sync"
)

type Registry struct {
	repo Repository

	mu      sync.RWMutex
	members map[int64]map[int64]bool // roomID -> set of userIDs
}

// NewRegistry creates a registry backed by the repository
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:    repo,
		members: make(map[int64]map[int64]bool),
	}
}

// IsMember reports whether the identity belongs to the room. The first check
// for a room loads its full membership set; later checks are in-memory.
func (rg *Registry) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	rg.mu.RLock()
	set, cached := rg.members[roomID]
	rg.mu.RUnlock()

	if cached {
		return set[userID], nil
	}

	ids, err := rg.repo.RoomMemberIDs(ctx, roomID)
	if err != nil {
		return false, err
	}

	set = make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	rg.mu.Lock()
	rg.members[roomID] = set
	rg.mu.Unlock()

	return set[userID], nil
}

// Invalidate drops the cached membership set for a room. Called after any
// membership mutation so the next check reloads from the store.
func (rg *Registry) Invalidate(roomID int64) {
	rg.mu.Lock()
	delete(rg.members, roomID)
	rg.mu.Unlock()
}
