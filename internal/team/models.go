// internal/team/models.go

package team

import (
	"time"
)

// Announcement priorities
const (
	PriorityNormal = "normal"
	PriorityUrgent = "urgent"
)

// Announcement is a broadcast notice. Besides being stored, each announcement
// is injected into its audience rooms as system chat messages so connected
// members see it in real time. A nil RoomID means the audience is all staff:
// the announcement fans out into every department room.
type Announcement struct {
	ID        int64     `json:"id" db:"id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	RoomID    *int64    `json:"roomId,omitempty" db:"room_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Priority  string    `json:"priority" db:"priority"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ResponseSummary is an aggregated answer count for one survey question
type ResponseSummary struct {
	Question string `json:"question" db:"question"`
	Answer   string `json:"answer" db:"answer"`
	Count    int64  `json:"count" db:"count"`
}

// Request DTOs

// CreateAnnouncementRequest targets one room when RoomID is set, otherwise
// all staff.
type CreateAnnouncementRequest struct {
	RoomID   *int64 `json:"roomId,omitempty" validate:"omitempty,gt=0"`
	Title    string `json:"title" validate:"required,max=200"`
	Body     string `json:"body" validate:"required,max=5000"`
	Priority string `json:"priority" validate:"required,oneof=normal urgent"`
}
