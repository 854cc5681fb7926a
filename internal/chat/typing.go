// internal/chat/typing.go
// Typing Coordinator: ephemeral per-(room, identity) typing state with
// automatic expiry. Entries live only as long as their timer.

package chat

import (
	"sync"
	"time"
)

// DefaultTypingExpiry is the inactivity window after which a typing entry
// expires and an implicit stop is emitted.
const DefaultTypingExpiry = 1000 * time.Millisecond

type typingKey struct {
	roomID int64
	userID int64
}

type typingEntry struct {
	displayName string
	gen         uint64
	timer       *time.Timer
}

// TypingCoordinator arms one expiry timer per active (room, identity) entry.
// Repeat start signals cancel-and-replace the timer; a generation counter
// guards against a stale timer firing after a newer one was armed.
type TypingCoordinator struct {
	mu      sync.Mutex
	entries map[typingKey]*typingEntry
	expiry  time.Duration
	nextGen uint64

	// onExpire is invoked outside the lock when an entry times out, exactly
	// as if the client had sent an explicit stop.
	onExpire func(roomID, userID int64)
}

// NewTypingCoordinator creates a coordinator with the given inactivity window
func NewTypingCoordinator(expiry time.Duration, onExpire func(roomID, userID int64)) *TypingCoordinator {
	if expiry <= 0 {
		expiry = DefaultTypingExpiry
	}
	return &TypingCoordinator{
		entries:  make(map[typingKey]*typingEntry),
		expiry:   expiry,
		onExpire: onExpire,
	}
}

// StartTyping inserts or refreshes the entry and (re)arms its expiry timer
func (t *TypingCoordinator) StartTyping(roomID, userID int64, displayName string) {
	key := typingKey{roomID: roomID, userID: userID}

	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.entries[key]; ok {
		entry.timer.Stop()
	}

	t.nextGen++
	gen := t.nextGen
	entry := &typingEntry{displayName: displayName, gen: gen}
	entry.timer = time.AfterFunc(t.expiry, func() {
		t.expire(key, gen)
	})
	t.entries[key] = entry
}

// StopTyping removes the entry immediately and cancels its timer.
// Stopping an absent entry is a no-op; the caller decides whether to emit
// a stopped event in that case.
func (t *TypingCoordinator) StopTyping(roomID, userID int64) bool {
	key := typingKey{roomID: roomID, userID: userID}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		return false
	}

	entry.timer.Stop()
	delete(t.entries, key)
	return true
}

// IsTyping reports whether the identity currently has a live entry
func (t *TypingCoordinator) IsTyping(roomID, userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.entries[typingKey{roomID: roomID, userID: userID}]
	return ok
}

// expire removes the entry if the firing timer is still current. A timer that
// lost a cancel-and-replace race finds a newer generation and does nothing.
func (t *TypingCoordinator) expire(key typingKey, gen uint64) {
	t.mu.Lock()
	entry, ok := t.entries[key]
	if !ok || entry.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.entries, key)
	t.mu.Unlock()

	if t.onExpire != nil {
		t.onExpire(key.roomID, key.userID)
	}
}
