// internal/team/mocks_test.go

package team

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/harborlink/ops-backend/internal/chat"
)

// MockRepository is a mock implementation of the team Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateAnnouncement(ctx context.Context, a *Announcement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockRepository) ListAnnouncements(ctx context.Context, roomID int64, limit, offset int) ([]*Announcement, error) {
	args := m.Called(ctx, roomID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Announcement), args.Error(1)
}

func (m *MockRepository) SurveyResponseSummary(ctx context.Context, surveyID int64) ([]*ResponseSummary, error) {
	args := m.Called(ctx, surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ResponseSummary), args.Error(1)
}

// MockChatService is a mock implementation of chat.Service
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) CreateRoom(ctx context.Context, creatorID int64, req *chat.CreateRoomRequest) (*chat.ChatRoom, error) {
	args := m.Called(ctx, creatorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.ChatRoom), args.Error(1)
}

func (m *MockChatService) ListRooms(ctx context.Context, userID int64) ([]*chat.ChatRoom, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.ChatRoom), args.Error(1)
}

func (m *MockChatService) RoomMessages(ctx context.Context, roomID, userID int64, afterID int64, limit int) ([]*chat.ChatMessage, error) {
	args := m.Called(ctx, roomID, userID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.ChatMessage), args.Error(1)
}

func (m *MockChatService) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatService) AddMember(ctx context.Context, roomID, requesterID, userID int64) error {
	args := m.Called(ctx, roomID, requesterID, userID)
	return args.Error(0)
}

func (m *MockChatService) DeactivateRoom(ctx context.Context, roomID, requesterID int64) error {
	args := m.Called(ctx, roomID, requesterID)
	return args.Error(0)
}

func (m *MockChatService) DepartmentRooms(ctx context.Context) ([]*chat.ChatRoom, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.ChatRoom), args.Error(1)
}

func (m *MockChatService) Send(ctx context.Context, senderID int64, req *chat.SendMessageRequest) (*chat.ChatMessage, error) {
	args := m.Called(ctx, senderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.ChatMessage), args.Error(1)
}

func (m *MockChatService) SendSystemMessage(ctx context.Context, roomID, authorID int64, body string) (*chat.ChatMessage, error) {
	args := m.Called(ctx, roomID, authorID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.ChatMessage), args.Error(1)
}

func (m *MockChatService) Edit(ctx context.Context, messageID, requesterID int64, newBody string) (*chat.ChatMessage, error) {
	args := m.Called(ctx, messageID, requesterID, newBody)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.ChatMessage), args.Error(1)
}

func (m *MockChatService) SoftDelete(ctx context.Context, messageID, requesterID int64) (*chat.ChatMessage, error) {
	args := m.Called(ctx, messageID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.ChatMessage), args.Error(1)
}

func (m *MockChatService) MarkRead(ctx context.Context, messageID, userID int64) (*chat.ChatMessage, bool, error) {
	args := m.Called(ctx, messageID, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*chat.ChatMessage), args.Bool(1), args.Error(2)
}

func (m *MockChatService) IsSeenByOthers(ctx context.Context, messageID, senderID int64) (bool, error) {
	args := m.Called(ctx, messageID, senderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatService) ReceiptsForMessages(ctx context.Context, userID int64, messageIDs []int64) ([]*chat.ReadReceipt, error) {
	args := m.Called(ctx, userID, messageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.ReadReceipt), args.Error(1)
}

// MockPublisher records room fan-outs
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRoom(roomID int64, event chat.Event) {
	m.Called(roomID, event)
}
