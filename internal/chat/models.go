// internal/chat/models.go

package chat

import (
	"time"
)

// Room types
const (
	RoomTypeGroup      = "group"
	RoomTypeDirect     = "direct"
	RoomTypeDepartment = "department"
)

// Message types
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// Presence statuses
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// ChatRoom represents a team chat room. Rooms are never physically deleted,
// only deactivated.
type ChatRoom struct {
	ID            int64      `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Description   *string    `json:"description,omitempty" db:"description"`
	Type          string     `json:"type" db:"type"`
	CreatedBy     int64      `json:"createdBy" db:"created_by"`
	IsActive      bool       `json:"isActive" db:"is_active"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty" db:"last_message_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	// Computed fields
	LastMessage *ChatMessage `json:"lastMessage,omitempty"`
	UnreadCount int          `json:"unreadCount"`
}

// Membership is the authorization relation between an identity and a room.
// Unique per (room, identity).
type Membership struct {
	ID       int64     `json:"id" db:"id"`
	RoomID   int64     `json:"roomId" db:"room_id"`
	UserID   int64     `json:"userId" db:"user_id"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
}

// ChatMessage is a single room message. Deletion is a tombstone: the row is
// retained so ordering and reply references stay valid, the body is simply
// withheld from the read path.
type ChatMessage struct {
	ID          int64     `json:"id" db:"id"`
	RoomID      int64     `json:"roomId" db:"room_id"`
	SenderID    int64     `json:"senderId" db:"sender_id"`
	Body        string    `json:"body" db:"body"`
	MessageType string    `json:"messageType" db:"message_type"`
	FileURL     *string   `json:"fileUrl,omitempty" db:"file_url"`
	FileName    *string   `json:"fileName,omitempty" db:"file_name"`
	IsEdited    bool      `json:"isEdited" db:"is_edited"`
	IsDeleted   bool      `json:"isDeleted" db:"is_deleted"`
	ReplyToID   *int64    `json:"replyToId,omitempty" db:"reply_to_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Sanitized returns the message as the read path renders it: tombstoned
// messages keep id and position but lose their content.
func (m *ChatMessage) Sanitized() *ChatMessage {
	if !m.IsDeleted {
		return m
	}
	out := *m
	out.Body = ""
	out.FileURL = nil
	out.FileName = nil
	return &out
}

// ReadReceipt marks that an identity has observed a message.
// Unique per (message, identity).
type ReadReceipt struct {
	MessageID int64     `json:"messageId" db:"message_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ReadAt    time.Time `json:"readAt" db:"read_at"`
}

// PresenceState is ephemeral per-identity status; it is never persisted to
// the relational store.
type PresenceState struct {
	UserID   int64     `json:"userId"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"lastSeen"`
}

// Request DTOs

type CreateRoomRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Type        string  `json:"type" validate:"required,oneof=group direct department"`
	MemberIDs   []int64 `json:"memberIds" validate:"required,min=1,dive,gt=0"`
}

type SendMessageRequest struct {
	RoomID      int64   `json:"roomId" validate:"required,gt=0"`
	Body        string  `json:"body"`
	MessageType string  `json:"messageType" validate:"required,oneof=text image file system"`
	FileURL     *string `json:"fileUrl,omitempty"`
	FileName    *string `json:"fileName,omitempty"`
	ReplyToID   *int64  `json:"replyToId,omitempty" validate:"omitempty,gt=0"`
}

type AddMemberRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

type EditMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

type ReceiptQueryRequest struct {
	MessageIDs []int64 `json:"messageIds" validate:"required,min=1,max=200,dive,gt=0"`
}
