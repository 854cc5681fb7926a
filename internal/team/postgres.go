// internal/team/postgres.go

package team

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateAnnouncement(ctx context.Context, a *Announcement) error {
	query := `
		INSERT INTO announcements (author_id, room_id, title, body, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		a.AuthorID, a.RoomID, a.Title, a.Body, a.Priority,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

// ListAnnouncements returns the announcements visible in a room: those
// targeted at it plus all-staff ones (room_id IS NULL).
func (r *postgresRepository) ListAnnouncements(ctx context.Context, roomID int64, limit, offset int) ([]*Announcement, error) {
	query := `
		SELECT id, author_id, room_id, title, body, priority, created_at
		FROM announcements
		WHERE room_id = $1 OR room_id IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	announcements := []*Announcement{}
	if err := r.db.SelectContext(ctx, &announcements, query, roomID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

func (r *postgresRepository) SurveyResponseSummary(ctx context.Context, surveyID int64) ([]*ResponseSummary, error) {
	query := `
		SELECT question, answer, COUNT(*) AS count
		FROM survey_responses
		WHERE survey_id = $1
		GROUP BY question, answer
		ORDER BY question, count DESC`

	summary := []*ResponseSummary{}
	if err := r.db.SelectContext(ctx, &summary, query, surveyID); err != nil {
		return nil, fmt.Errorf("failed to summarize survey responses: %w", err)
	}
	return summary, nil
}
