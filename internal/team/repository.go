// internal/team/repository.go

package team

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Repository defines announcement and survey storage
type Repository interface {
	CreateAnnouncement(ctx context.Context, a *Announcement) error
	ListAnnouncements(ctx context.Context, roomID int64, limit, offset int) ([]*Announcement, error)

	SurveyResponseSummary(ctx context.Context, surveyID int64) ([]*ResponseSummary, error)
}
