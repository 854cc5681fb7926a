// internal/chat/hub.go
// Event Broadcaster: fans domain events out to every live connection bound
// to the affected room. Delivery is best-effort and at-most-once per
// connection per publish; a slow consumer is evicted rather than allowed to
// block the sender's pipeline.

package chat

import (
	"context"
	"log"
	"sync"
)

// EventRelay forwards locally published events to peer instances (redis
// pub/sub in multi-instance deployments). RoomID 0 means global scope.
type EventRelay interface {
	Relay(roomID int64, event Event)
}

// Hub tracks live connections and their room bindings. Bindings are
// connection-scoped: they are created by join:room and vanish with the
// connection, never retroactively.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*Client
	rooms  map[int64]map[string]*Client // roomID -> connID -> client
	byUser map[int64]map[string]*Client // userID -> connID -> client

	presence PresenceTracker
	relay    EventRelay

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub creates a hub over the given presence tracker
func NewHub(presence PresenceTracker) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		conns:    make(map[string]*Client),
		rooms:    make(map[int64]map[string]*Client),
		byUser:   make(map[int64]map[string]*Client),
		presence: presence,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetRelay installs the multi-instance bridge. Must be called before any
// connection registers.
func (h *Hub) SetRelay(relay EventRelay) {
	h.relay = relay
}

// Register adds a connection. The identity goes online when its first
// connection arrives; additional devices do not re-announce.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.conns[c.id] = c

	userConns := h.byUser[c.userID()]
	if userConns == nil {
		userConns = make(map[string]*Client)
		h.byUser[c.userID()] = userConns
	}
	first := len(userConns) == 0
	userConns[c.id] = c
	total := len(h.conns)
	h.mu.Unlock()

	activeConnections.Set(float64(total))
	log.Printf("User %d connected (%s). Total connections: %d", c.userID(), c.id, total)

	if first {
		h.setStatus(c.userID(), StatusOnline)
	}
}

// Unregister removes a connection and all of its room bindings. The identity
// goes offline only when its last connection closes.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, exists := h.conns[c.id]; !exists {
		h.mu.Unlock()
		return
	}
	delete(h.conns, c.id)

	for roomID := range c.bound {
		if members := h.rooms[roomID]; members != nil {
			delete(members, c.id)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	last := false
	if userConns := h.byUser[c.userID()]; userConns != nil {
		delete(userConns, c.id)
		if len(userConns) == 0 {
			delete(h.byUser, c.userID())
			last = true
		}
	}
	total := len(h.conns)
	h.mu.Unlock()

	c.close()
	activeConnections.Set(float64(total))
	log.Printf("User %d disconnected (%s). Total connections: %d", c.userID(), c.id, total)

	if last {
		h.setStatus(c.userID(), StatusOffline)
	}
}

// Bind attaches a connection to a room. Membership has already been checked
// by the gateway against the Room Registry.
func (h *Hub) Bind(roomID int64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.conns[c.id]; !exists {
		return
	}

	members := h.rooms[roomID]
	if members == nil {
		members = make(map[string]*Client)
		h.rooms[roomID] = members
	}
	members[c.id] = c
	c.bound[roomID] = true
}

// IsBound reports whether a connection currently holds a binding to the room
func (h *Hub) IsBound(roomID int64, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[roomID]
	return members != nil && members[c.id] != nil
}

// PublishRoom delivers an event to every connection bound to the room and
// forwards it to peer instances.
func (h *Hub) PublishRoom(roomID int64, event Event) {
	h.deliverRoom(roomID, event)
	if h.relay != nil {
		h.relay.Relay(roomID, event)
	}
}

// PublishGlobal delivers an event to every live connection (presence changes
// are observed from the room list, not any single room).
func (h *Hub) PublishGlobal(event Event) {
	h.deliverGlobal(event)
	if h.relay != nil {
		h.relay.Relay(0, event)
	}
}

// DeliverLocal is the entry point for events arriving from peer instances;
// it fans out locally without relaying back.
func (h *Hub) DeliverLocal(roomID int64, event Event) {
	if roomID == 0 {
		h.deliverGlobal(event)
		return
	}
	h.deliverRoom(roomID, event)
}

func (h *Hub) deliverRoom(roomID int64, event Event) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomID]))
	for _, c := range h.rooms[roomID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	broadcastEvents.WithLabelValues(event.Type).Inc()
	for _, c := range targets {
		h.deliver(c, event)
	}
}

func (h *Hub) deliverGlobal(event Event) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	broadcastEvents.WithLabelValues(event.Type).Inc()
	for _, c := range targets {
		h.deliver(c, event)
	}
}

// deliver enqueues without blocking; a connection whose buffer is full is
// evicted so it can never stall the publisher.
func (h *Hub) deliver(c *Client, event Event) {
	if !c.enqueue(event) {
		slowEvictions.Inc()
		go h.Unregister(c)
	}
}

// setStatus records presence and announces the change globally
func (h *Hub) setStatus(userID int64, status string) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		if err := h.presence.SetStatus(h.ctx, userID, status); err != nil {
			log.Printf("Error updating presence for user %d: %v", userID, err)
			return
		}
		h.PublishGlobal(NewEvent(EventStatusChanged, StatusChangedPayload{
			UserID: userID,
			Status: status,
		}))
	}()
}

// BroadcastStatus announces an explicit status update from a client
func (h *Hub) BroadcastStatus(userID int64, status string) {
	h.PublishGlobal(NewEvent(EventStatusChanged, StatusChangedPayload{
		UserID: userID,
		Status: status,
	}))
}

// ActiveConnections returns the live connection count
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Shutdown closes every connection and waits for pending presence updates
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := make([]*Client, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[string]*Client)
	h.rooms = make(map[int64]map[string]*Client)
	h.byUser = make(map[int64]map[string]*Client)
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}

	h.cancel()
	h.wg.Wait()
}
