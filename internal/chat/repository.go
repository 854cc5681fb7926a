// internal/chat/repository.go

package chat

import (
	"context"
)

// Repository is the durable store for rooms, memberships, messages and read
// receipts. Message ids are store-assigned and monotonically increasing; they
// are the ordering authority for room history.
type Repository interface {
	// Rooms and memberships
	CreateRoom(ctx context.Context, room *ChatRoom, memberIDs []int64) error
	GetRoom(ctx context.Context, roomID int64) (*ChatRoom, error)
	IsMember(ctx context.Context, roomID, userID int64) (bool, error)
	RoomMemberIDs(ctx context.Context, roomID int64) ([]int64, error)
	AddMember(ctx context.Context, roomID, userID int64) error
	DeactivateRoom(ctx context.Context, roomID int64) error
	ListRoomsForUser(ctx context.Context, userID int64) ([]*ChatRoom, error)
	ListRoomsByType(ctx context.Context, roomType string) ([]*ChatRoom, error)

	// Messages
	CreateMessage(ctx context.Context, message *ChatMessage) error
	GetMessage(ctx context.Context, messageID int64) (*ChatMessage, error)
	UpdateMessageBody(ctx context.Context, messageID int64, body string) (*ChatMessage, error)
	TombstoneMessage(ctx context.Context, messageID int64) error
	RoomMessages(ctx context.Context, roomID int64, afterID int64, limit int) ([]*ChatMessage, error)
	TouchRoomLastMessage(ctx context.Context, roomID int64) error

	// Read receipts
	CreateReadReceipt(ctx context.Context, messageID, userID int64) (bool, error)
	CountReceiptsExcluding(ctx context.Context, messageID, excludeUserID int64) (int, error)
	ReceiptsForMessages(ctx context.Context, messageIDs []int64) ([]*ReadReceipt, error)
}
