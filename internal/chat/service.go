// internal/chat/service.go
// Message lifecycle and room operations: every action validates membership
// through the Room Registry before any store write.

package chat

import (
	"context"
	"fmt"
	"strings"
)

type Service interface {
	// Rooms
	CreateRoom(ctx context.Context, creatorID int64, req *CreateRoomRequest) (*ChatRoom, error)
	ListRooms(ctx context.Context, userID int64) ([]*ChatRoom, error)
	RoomMessages(ctx context.Context, roomID, userID int64, afterID int64, limit int) ([]*ChatMessage, error)
	IsMember(ctx context.Context, roomID, userID int64) (bool, error)
	AddMember(ctx context.Context, roomID, requesterID, userID int64) error
	DeactivateRoom(ctx context.Context, roomID, requesterID int64) error
	DepartmentRooms(ctx context.Context) ([]*ChatRoom, error)

	// Message lifecycle
	Send(ctx context.Context, senderID int64, req *SendMessageRequest) (*ChatMessage, error)
	SendSystemMessage(ctx context.Context, roomID, authorID int64, body string) (*ChatMessage, error)
	Edit(ctx context.Context, messageID, requesterID int64, newBody string) (*ChatMessage, error)
	SoftDelete(ctx context.Context, messageID, requesterID int64) (*ChatMessage, error)

	// Read receipts
	MarkRead(ctx context.Context, messageID, userID int64) (*ChatMessage, bool, error)
	IsSeenByOthers(ctx context.Context, messageID, senderID int64) (bool, error)
	ReceiptsForMessages(ctx context.Context, userID int64, messageIDs []int64) ([]*ReadReceipt, error)
}

type ChatService struct {
	repo     Repository
	registry *Registry
}

// NewService creates the chat service
func NewService(repo Repository, registry *Registry) *ChatService {
	return &ChatService{repo: repo, registry: registry}
}

// CreateRoom validates the membership invariant and persists room plus
// memberships. The creator is always a member.
func (s *ChatService) CreateRoom(ctx context.Context, creatorID int64, req *CreateRoomRequest) (*ChatRoom, error) {
	memberIDs := dedupeMembers(creatorID, req.MemberIDs)

	if req.Type == RoomTypeDirect && len(memberIDs) != 2 {
		return nil, fmt.Errorf("%w: a direct room has exactly two members", ErrValidation)
	}

	room := &ChatRoom{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		CreatedBy:   creatorID,
	}

	if err := s.repo.CreateRoom(ctx, room, memberIDs); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	s.registry.Invalidate(room.ID)
	roomsCreated.Inc()
	return room, nil
}

// ListRooms returns the identity's rooms ordered by most recent activity
func (s *ChatService) ListRooms(ctx context.Context, userID int64) ([]*ChatRoom, error) {
	return s.repo.ListRoomsForUser(ctx, userID)
}

// RoomMessages returns room history, ascending by assigned id, members only
func (s *ChatService) RoomMessages(ctx context.Context, roomID, userID int64, afterID int64, limit int) ([]*ChatMessage, error) {
	member, err := s.registry.IsMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrMembership
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.RoomMessages(ctx, roomID, afterID, limit)
}

// IsMember exposes the registry check to the gateway
func (s *ChatService) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	return s.registry.IsMember(ctx, roomID, userID)
}

// AddMember adds an identity to an active room. Any current member may add;
// adding someone who already belongs is a no-op.
func (s *ChatService) AddMember(ctx context.Context, roomID, requesterID, userID int64) error {
	member, err := s.registry.IsMember(ctx, roomID, requesterID)
	if err != nil {
		return err
	}
	if !member {
		return ErrMembership
	}

	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsActive {
		return fmt.Errorf("%w: room is deactivated", ErrNotFound)
	}

	already, err := s.repo.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	if err := s.repo.AddMember(ctx, roomID, userID); err != nil {
		return fmt.Errorf("add member: %w", err)
	}

	s.registry.Invalidate(roomID)
	return nil
}

// DeactivateRoom retires a room from the active list. Creator only; the room
// and its history stay in the store. Idempotent.
func (s *ChatService) DeactivateRoom(ctx context.Context, roomID, requesterID int64) error {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatedBy != requesterID {
		return ErrPermission
	}
	if !room.IsActive {
		return nil
	}

	if err := s.repo.DeactivateRoom(ctx, roomID); err != nil {
		return fmt.Errorf("deactivate room: %w", err)
	}

	s.registry.Invalidate(roomID)
	return nil
}

// DepartmentRooms returns every department room, for all-staff fanout
func (s *ChatService) DepartmentRooms(ctx context.Context) ([]*ChatRoom, error) {
	return s.repo.ListRoomsByType(ctx, RoomTypeDepartment)
}

// Send runs the full send pipeline: membership, payload validation, reply
// target resolution, persist, bump the room's last-message pointer.
func (s *ChatService) Send(ctx context.Context, senderID int64, req *SendMessageRequest) (*ChatMessage, error) {
	member, err := s.registry.IsMember(ctx, req.RoomID, senderID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrMembership
	}

	if req.MessageType == MessageTypeText && strings.TrimSpace(req.Body) == "" {
		return nil, fmt.Errorf("%w: message body is empty", ErrValidation)
	}

	if req.ReplyToID != nil {
		parent, err := s.repo.GetMessage(ctx, *req.ReplyToID)
		if err != nil {
			return nil, fmt.Errorf("reply target: %w", err)
		}
		if parent.RoomID != req.RoomID {
			return nil, fmt.Errorf("%w: reply target is in another room", ErrNotFound)
		}
	}

	message := &ChatMessage{
		RoomID:      req.RoomID,
		SenderID:    senderID,
		Body:        req.Body,
		MessageType: req.MessageType,
		FileURL:     req.FileURL,
		FileName:    req.FileName,
		ReplyToID:   req.ReplyToID,
	}

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}
	messagesSent.Inc()

	// The message is already durable; a failed pointer bump only degrades
	// room list ordering.
	_ = s.repo.TouchRoomLastMessage(ctx, req.RoomID)

	return message, nil
}

// SendSystemMessage injects a system message on behalf of a trusted module
// (announcement fanout). Unlike Send it does not require the author to belong
// to the room.
func (s *ChatService) SendSystemMessage(ctx context.Context, roomID, authorID int64, body string) (*ChatMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message body is empty", ErrValidation)
	}

	message := &ChatMessage{
		RoomID:      roomID,
		SenderID:    authorID,
		Body:        body,
		MessageType: MessageTypeSystem,
	}

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}
	messagesSent.Inc()

	_ = s.repo.TouchRoomLastMessage(ctx, roomID)

	return message, nil
}

// Edit replaces the body. Only the original sender may edit, and tombstoned
// messages are logically gone.
func (s *ChatService) Edit(ctx context.Context, messageID, requesterID int64, newBody string) (*ChatMessage, error) {
	if strings.TrimSpace(newBody) == "" {
		return nil, fmt.Errorf("%w: message body is empty", ErrValidation)
	}

	message, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != requesterID {
		return nil, ErrPermission
	}
	if message.IsDeleted {
		return nil, fmt.Errorf("%w: message was deleted", ErrNotFound)
	}

	updated, err := s.repo.UpdateMessageBody(ctx, messageID, newBody)
	if err != nil {
		return nil, err
	}

	messagesEdited.Inc()
	return updated, nil
}

// SoftDelete tombstones the message. Idempotent: deleting twice succeeds
// without further state change.
func (s *ChatService) SoftDelete(ctx context.Context, messageID, requesterID int64) (*ChatMessage, error) {
	message, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != requesterID {
		return nil, ErrPermission
	}
	if message.IsDeleted {
		return message, nil
	}

	if err := s.repo.TombstoneMessage(ctx, messageID); err != nil {
		return nil, err
	}

	message.IsDeleted = true
	messagesDeleted.Inc()
	return message, nil
}

// MarkRead records that the identity observed the message. Returns the
// message, and whether a new receipt was created (the broadcast decision).
func (s *ChatService) MarkRead(ctx context.Context, messageID, userID int64) (*ChatMessage, bool, error) {
	message, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, false, err
	}

	member, err := s.registry.IsMember(ctx, message.RoomID, userID)
	if err != nil {
		return nil, false, err
	}
	if !member {
		return nil, false, ErrMembership
	}

	created, err := s.repo.CreateReadReceipt(ctx, messageID, userID)
	if err != nil {
		return nil, false, err
	}

	if created {
		receiptsWritten.Inc()
	}
	return message, created, nil
}

// IsSeenByOthers reports whether anyone other than the sender holds a receipt
func (s *ChatService) IsSeenByOthers(ctx context.Context, messageID, senderID int64) (bool, error) {
	count, err := s.repo.CountReceiptsExcluding(ctx, messageID, senderID)
	if err != nil {
		return false, err
	}
	return count >= 1, nil
}

// ReceiptsForMessages bulk-fetches receipts; the caller must be able to see
// every referenced message's room.
func (s *ChatService) ReceiptsForMessages(ctx context.Context, userID int64, messageIDs []int64) ([]*ReadReceipt, error) {
	rooms := make(map[int64]bool)
	for _, id := range messageIDs {
		message, err := s.repo.GetMessage(ctx, id)
		if err != nil {
			return nil, err
		}
		rooms[message.RoomID] = true
	}

	for roomID := range rooms {
		member, err := s.registry.IsMember(ctx, roomID, userID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrMembership
		}
	}

	return s.repo.ReceiptsForMessages(ctx, messageIDs)
}

// dedupeMembers merges the creator into the member list without duplicates
func dedupeMembers(creatorID int64, memberIDs []int64) []int64 {
	seen := map[int64]bool{creatorID: true}
	out := []int64{creatorID}
	for _, id := range memberIDs {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
