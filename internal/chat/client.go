// internal/chat/client.go
// One Client per websocket connection. An identity may hold any number of
// concurrent connections; each is tracked and bound to rooms independently.

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/harborlink/ops-backend/internal/identity"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

// Client represents one authenticated persistent connection
type Client struct {
	id       string
	identity *identity.Identity

	hub     *Hub
	service Service
	typing  *TypingCoordinator

	conn      *websocket.Conn
	readLimit int64

	sendMu sync.Mutex
	send   chan []byte
	closed bool

	// room bindings, owned by the hub and guarded by its lock
	bound map[int64]bool
}

// NewClient creates a client for an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, ident *identity.Identity, service Service, typing *TypingCoordinator, bufSize int, readLimit int64) *Client {
	if bufSize < 1 {
		bufSize = 256
	}
	return &Client{
		id:        uuid.NewString(),
		identity:  ident,
		hub:       hub,
		service:   service,
		typing:    typing,
		conn:      conn,
		readLimit: readLimit,
		send:      make(chan []byte, bufSize),
		bound:     make(map[int64]bool),
	}
}

func (c *Client) userID() int64 {
	return c.identity.ID
}

// Start launches the read and write pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// enqueue queues an event without blocking. Returns false when the buffer is
// full or the connection is already closed; the hub evicts on false.
func (c *Client) enqueue(event Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling event for connection %s: %v", c.id, err)
		return true
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close shuts the send channel, stopping the write pump. Safe to call twice.
func (c *Client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error on connection %s: %v", c.id, err)
			}
			break
		}

		// Actions from one connection are processed to completion in order;
		// only actions from different connections interleave.
		c.processCommand(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processCommand validates and executes one inbound action. Failures are
// reported back to this connection only and never terminate it.
func (c *Client) processCommand(data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.reportError(fmt.Errorf("%w: %v", ErrValidation, err))
		return
	}

	ctx := context.Background()
	var err error

	switch cmd.Type {
	case CmdJoinRoom:
		err = c.handleJoinRoom(ctx, cmd.Data)
	case CmdSendMessage:
		err = c.handleSendMessage(ctx, cmd.Data)
	case CmdTypingStart:
		err = c.handleTyping(ctx, cmd.Data, true)
	case CmdTypingStop:
		err = c.handleTyping(ctx, cmd.Data, false)
	case CmdUpdateStatus:
		err = c.handleUpdateStatus(ctx, cmd.Data)
	default:
		err = fmt.Errorf("%w: unknown command type %q", ErrValidation, cmd.Type)
	}

	if err != nil {
		c.reportError(err)
	}
}

func (c *Client) handleJoinRoom(ctx context.Context, data json.RawMessage) error {
	var payload JoinRoomPayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}

	member, err := c.service.IsMember(ctx, payload.RoomID, c.userID())
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return ErrMembership
	}

	c.hub.Bind(payload.RoomID, c)
	roomBindings.Inc()
	c.enqueue(NewEvent(EventRoomJoined, RoomJoinedPayload{RoomID: payload.RoomID}))
	return nil
}

func (c *Client) handleSendMessage(ctx context.Context, data json.RawMessage) error {
	var payload SendMessagePayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}

	message, err := c.service.Send(ctx, c.userID(), &SendMessageRequest{
		RoomID:      payload.RoomID,
		Body:        payload.Message,
		MessageType: payload.MessageType,
		FileURL:     payload.FileURL,
		FileName:    payload.FileName,
		ReplyToID:   payload.ReplyToID,
	})
	if err != nil {
		return err
	}

	// A send implicitly ends the sender's typing state.
	if c.typing.StopTyping(payload.RoomID, c.userID()) {
		c.hub.PublishRoom(payload.RoomID, NewEvent(EventStoppedTyping, StoppedTypingPayload{
			RoomID: payload.RoomID,
			UserID: c.userID(),
		}))
	}

	c.hub.PublishRoom(payload.RoomID, NewEvent(EventNewMessage, NewMessagePayload{
		RoomID:  payload.RoomID,
		Message: message,
	}))
	return nil
}

func (c *Client) handleTyping(ctx context.Context, data json.RawMessage, start bool) error {
	var payload TypingPayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}

	member, err := c.service.IsMember(ctx, payload.RoomID, c.userID())
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return ErrMembership
	}

	if start {
		c.typing.StartTyping(payload.RoomID, c.userID(), c.identity.DisplayName)
		c.hub.PublishRoom(payload.RoomID, NewEvent(EventUserTyping, UserTypingPayload{
			RoomID: payload.RoomID,
			User:   UserRef{ID: c.userID(), Name: c.identity.DisplayName},
		}))
		return nil
	}

	if c.typing.StopTyping(payload.RoomID, c.userID()) {
		c.hub.PublishRoom(payload.RoomID, NewEvent(EventStoppedTyping, StoppedTypingPayload{
			RoomID: payload.RoomID,
			UserID: c.userID(),
		}))
	}
	return nil
}

func (c *Client) handleUpdateStatus(ctx context.Context, data json.RawMessage) error {
	var payload UpdateStatusPayload
	if err := decodePayload(data, &payload); err != nil {
		return err
	}

	if err := c.hub.presence.SetStatus(ctx, c.userID(), payload.Status); err != nil {
		return err
	}

	c.hub.BroadcastStatus(c.userID(), payload.Status)
	return nil
}

func (c *Client) reportError(err error) {
	wsErrors.WithLabelValues(ErrorCode(err)).Inc()
	c.enqueue(NewErrorEvent(err))
}
