// internal/chat/protocol.go
// Wire protocol: a closed set of tagged inbound commands and outbound events,
// JSON-encoded over the persistent connection. Malformed payloads are
// rejected at the boundary before touching any component.

package chat

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/harborlink/ops-backend/internal/common/utils"
)

// Inbound command types (client -> server)
const (
	CmdJoinRoom     = "join:room"
	CmdSendMessage  = "send:message"
	CmdTypingStart  = "typing:start"
	CmdTypingStop   = "typing:stop"
	CmdUpdateStatus = "update:status"
)

// Outbound event types (server -> client)
const (
	EventNewMessage     = "new:message"
	EventUserTyping     = "user:typing"
	EventStoppedTyping  = "user:stopped:typing"
	EventStatusChanged  = "user:status:changed"
	EventMessageEdited  = "message:edited"
	EventMessageRead    = "message:read"
	EventMessageDeleted = "message:deleted"
	EventRoomJoined     = "room:joined"
	EventError          = "error"
)

// Command is the envelope for every inbound client action
type Command struct {
	Type string          `json:"type" validate:"required"`
	Data json.RawMessage `json:"data"`
}

// Event is the envelope for every outbound server event
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Command payloads

type JoinRoomPayload struct {
	RoomID int64 `json:"roomId" validate:"required,gt=0"`
}

type SendMessagePayload struct {
	RoomID      int64   `json:"roomId" validate:"required,gt=0"`
	Message     string  `json:"message"`
	MessageType string  `json:"messageType" validate:"required,oneof=text image file"`
	FileURL     *string `json:"fileUrl,omitempty"`
	FileName    *string `json:"fileName,omitempty"`
	ReplyToID   *int64  `json:"replyToId,omitempty" validate:"omitempty,gt=0"`
}

type TypingPayload struct {
	RoomID int64 `json:"roomId" validate:"required,gt=0"`
}

type UpdateStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=online offline"`
}

// Event payloads

type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type NewMessagePayload struct {
	RoomID  int64        `json:"roomId"`
	Message *ChatMessage `json:"message"`
}

type UserTypingPayload struct {
	RoomID int64   `json:"roomId"`
	User   UserRef `json:"user"`
}

type StoppedTypingPayload struct {
	RoomID int64 `json:"roomId"`
	UserID int64 `json:"userId"`
}

type StatusChangedPayload struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

type MessageEditedPayload struct {
	RoomID     int64     `json:"roomId"`
	MessageID  int64     `json:"messageId"`
	NewMessage string    `json:"newMessage"`
	EditedAt   time.Time `json:"editedAt"`
}

type MessageDeletedPayload struct {
	RoomID    int64 `json:"roomId"`
	MessageID int64 `json:"messageId"`
}

type MessageReadPayload struct {
	MessageID int64 `json:"messageId"`
	UserID    int64 `json:"userId"`
}

type RoomJoinedPayload struct {
	RoomID int64 `json:"roomId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent wraps a payload in the outbound envelope
func NewEvent(eventType string, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Data:      mustMarshal(payload),
		Timestamp: time.Now(),
	}
}

// NewErrorEvent builds the per-action error report delivered only to the
// originating connection.
func NewErrorEvent(err error) Event {
	return NewEvent(EventError, ErrorPayload{
		Code:    ErrorCode(err),
		Message: err.Error(),
	})
}

// decodePayload unmarshals and validates a command payload against its
// closed variant definition.
func decodePayload(data json.RawMessage, dst interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing payload", ErrValidation)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling event payload: %v", err)
		return json.RawMessage(`{}`)
	}
	return data
}
