// internal/chat/mocks_test.go

package chat

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateRoom(ctx context.Context, room *ChatRoom, memberIDs []int64) error {
	args := m.Called(ctx, room, memberIDs)
	return args.Error(0)
}

func (m *MockRepository) GetRoom(ctx context.Context, roomID int64) (*ChatRoom, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatRoom), args.Error(1)
}

func (m *MockRepository) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) RoomMemberIDs(ctx context.Context, roomID int64) ([]int64, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRepository) AddMember(ctx context.Context, roomID, userID int64) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *MockRepository) DeactivateRoom(ctx context.Context, roomID int64) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MockRepository) ListRoomsForUser(ctx context.Context, userID int64) ([]*ChatRoom, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChatRoom), args.Error(1)
}

func (m *MockRepository) ListRoomsByType(ctx context.Context, roomType string) ([]*ChatRoom, error) {
	args := m.Called(ctx, roomType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChatRoom), args.Error(1)
}

func (m *MockRepository) CreateMessage(ctx context.Context, message *ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockRepository) GetMessage(ctx context.Context, messageID int64) (*ChatMessage, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatMessage), args.Error(1)
}

func (m *MockRepository) UpdateMessageBody(ctx context.Context, messageID int64, body string) (*ChatMessage, error) {
	args := m.Called(ctx, messageID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatMessage), args.Error(1)
}

func (m *MockRepository) TombstoneMessage(ctx context.Context, messageID int64) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MockRepository) RoomMessages(ctx context.Context, roomID int64, afterID int64, limit int) ([]*ChatMessage, error) {
	args := m.Called(ctx, roomID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChatMessage), args.Error(1)
}

func (m *MockRepository) TouchRoomLastMessage(ctx context.Context, roomID int64) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MockRepository) CreateReadReceipt(ctx context.Context, messageID, userID int64) (bool, error) {
	args := m.Called(ctx, messageID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CountReceiptsExcluding(ctx context.Context, messageID, excludeUserID int64) (int, error) {
	args := m.Called(ctx, messageID, excludeUserID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ReceiptsForMessages(ctx context.Context, messageIDs []int64) ([]*ReadReceipt, error) {
	args := m.Called(ctx, messageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ReadReceipt), args.Error(1)
}

// MockService is a mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateRoom(ctx context.Context, creatorID int64, req *CreateRoomRequest) (*ChatRoom, error) {
	args := m.Called(ctx, creatorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatRoom), args.Error(1)
}

func (m *MockService) ListRooms(ctx context.Context, userID int64) ([]*ChatRoom, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChatRoom), args.Error(1)
}

func (m *MockService) RoomMessages(ctx context.Context, roomID, userID int64, afterID int64, limit int) ([]*ChatMessage, error) {
	args := m.Called(ctx, roomID, userID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChatMessage), args.Error(1)
}

func (m *MockService) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) AddMember(ctx context.Context, roomID, requesterID, userID int64) error {
	args := m.Called(ctx, roomID, requesterID, userID)
	return args.Error(0)
}

func (m *MockService) DeactivateRoom(ctx context.Context, roomID, requesterID int64) error {
	args := m.Called(ctx, roomID, requesterID)
	return args.Error(0)
}

func (m *MockService) DepartmentRooms(ctx context.Context) ([]*ChatRoom, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChatRoom), args.Error(1)
}

func (m *MockService) Send(ctx context.Context, senderID int64, req *SendMessageRequest) (*ChatMessage, error) {
	args := m.Called(ctx, senderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatMessage), args.Error(1)
}

func (m *MockService) SendSystemMessage(ctx context.Context, roomID, authorID int64, body string) (*ChatMessage, error) {
	args := m.Called(ctx, roomID, authorID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatMessage), args.Error(1)
}

func (m *MockService) Edit(ctx context.Context, messageID, requesterID int64, newBody string) (*ChatMessage, error) {
	args := m.Called(ctx, messageID, requesterID, newBody)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatMessage), args.Error(1)
}

func (m *MockService) SoftDelete(ctx context.Context, messageID, requesterID int64) (*ChatMessage, error) {
	args := m.Called(ctx, messageID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatMessage), args.Error(1)
}

func (m *MockService) MarkRead(ctx context.Context, messageID, userID int64) (*ChatMessage, bool, error) {
	args := m.Called(ctx, messageID, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*ChatMessage), args.Bool(1), args.Error(2)
}

func (m *MockService) IsSeenByOthers(ctx context.Context, messageID, senderID int64) (bool, error) {
	args := m.Called(ctx, messageID, senderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) ReceiptsForMessages(ctx context.Context, userID int64, messageIDs []int64) ([]*ReadReceipt, error) {
	args := m.Called(ctx, userID, messageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ReadReceipt), args.Error(1)
}
