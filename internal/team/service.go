// internal/team/service.go

package team

import (
	"context"
	"fmt"

	"github.com/harborlink/ops-backend/internal/chat"
)

// Publisher fans an event out to a room's live connections. Satisfied by the
// chat hub.
type Publisher interface {
	PublishRoom(roomID int64, event chat.Event)
}

type Service interface {
	CreateAnnouncement(ctx context.Context, authorID int64, req *CreateAnnouncementRequest) (*Announcement, error)
	ListAnnouncements(ctx context.Context, roomID, userID int64, limit, offset int) ([]*Announcement, error)

	ResponseSummary(ctx context.Context, surveyID int64) ([]*ResponseSummary, error)
}

type teamService struct {
	repo      Repository
	chat      chat.Service
	publisher Publisher
}

func NewService(repo Repository, chatService chat.Service, publisher Publisher) Service {
	return &teamService{
		repo:      repo,
		chat:      chatService,
		publisher: publisher,
	}
}

// CreateAnnouncement stores the announcement and mirrors it into the audience
// rooms as system messages. A targeted announcement goes through the regular
// chat send pipeline, which enforces that the author belongs to the room. An
// all-staff announcement (nil RoomID) fans out into every department room
// without the membership gate, since the author rarely belongs to all of them.
func (s *teamService) CreateAnnouncement(ctx context.Context, authorID int64, req *CreateAnnouncementRequest) (*Announcement, error) {
	body := fmt.Sprintf("%s\n\n%s", req.Title, req.Body)
	if req.Priority == PriorityUrgent {
		body = fmt.Sprintf("[URGENT] %s", body)
	}

	announcement := &Announcement{
		AuthorID: authorID,
		RoomID:   req.RoomID,
		Title:    req.Title,
		Body:     req.Body,
		Priority: req.Priority,
	}

	if req.RoomID != nil {
		roomID := *req.RoomID
		message, err := s.chat.Send(ctx, authorID, &chat.SendMessageRequest{
			RoomID:      roomID,
			Body:        body,
			MessageType: chat.MessageTypeSystem,
		})
		if err != nil {
			return nil, err
		}

		if err := s.repo.CreateAnnouncement(ctx, announcement); err != nil {
			return nil, err
		}

		s.publisher.PublishRoom(roomID, chat.NewEvent(chat.EventNewMessage, chat.NewMessagePayload{
			RoomID:  roomID,
			Message: message,
		}))
		return announcement, nil
	}

	rooms, err := s.chat.DepartmentRooms(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateAnnouncement(ctx, announcement); err != nil {
		return nil, err
	}

	for _, room := range rooms {
		message, err := s.chat.SendSystemMessage(ctx, room.ID, authorID, body)
		if err != nil {
			return nil, fmt.Errorf("fan out to room %d: %w", room.ID, err)
		}
		s.publisher.PublishRoom(room.ID, chat.NewEvent(chat.EventNewMessage, chat.NewMessagePayload{
			RoomID:  room.ID,
			Message: message,
		}))
	}

	return announcement, nil
}

func (s *teamService) ListAnnouncements(ctx context.Context, roomID, userID int64, limit, offset int) ([]*Announcement, error) {
	member, err := s.chat.IsMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, chat.ErrMembership
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAnnouncements(ctx, roomID, limit, offset)
}

func (s *teamService) ResponseSummary(ctx context.Context, surveyID int64) ([]*ResponseSummary, error) {
	return s.repo.SurveyResponseSummary(ctx, surveyID)
}
