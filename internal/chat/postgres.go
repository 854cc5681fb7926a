// internal/chat/postgres.go
// PostgreSQL implementation of the chat repository

package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates the sqlx-backed repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// CreateRoom persists a room and its initial memberships in one transaction
func (r *postgresRepository) CreateRoom(ctx context.Context, room *ChatRoom, memberIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create room: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO chat_rooms (name, description, type, created_by, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, is_active, created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		room.Name, room.Description, room.Type, room.CreatedBy,
	).Scan(&room.ID, &room.IsActive, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}

	memberQuery := `
		INSERT INTO chat_room_members (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (room_id, user_id) DO NOTHING`

	for _, userID := range memberIDs {
		if _, err := tx.ExecContext(ctx, memberQuery, room.ID, userID); err != nil {
			return fmt.Errorf("insert membership for user %d: %w", userID, err)
		}
	}

	return tx.Commit()
}

// GetRoom retrieves a room by id
func (r *postgresRepository) GetRoom(ctx context.Context, roomID int64) (*ChatRoom, error) {
	query := `
		SELECT id, name, description, type, created_by, is_active,
		       last_message_at, created_at, updated_at
		FROM chat_rooms
		WHERE id = $1`

	var room ChatRoom
	err := r.db.GetContext(ctx, &room, query, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// IsMember checks whether a membership row exists
func (r *postgresRepository) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM chat_room_members
			WHERE room_id = $1 AND user_id = $2
		)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, roomID, userID).Scan(&exists)
	return exists, err
}

// RoomMemberIDs returns all member ids of a room
func (r *postgresRepository) RoomMemberIDs(ctx context.Context, roomID int64) ([]int64, error) {
	query := `SELECT user_id FROM chat_room_members WHERE room_id = $1 ORDER BY user_id`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, roomID); err != nil {
		return nil, err
	}
	return ids, nil
}

// AddMember inserts a membership; adding an existing member is a no-op
func (r *postgresRepository) AddMember(ctx context.Context, roomID, userID int64) error {
	query := `
		INSERT INTO chat_room_members (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (room_id, user_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, roomID, userID)
	return err
}

// DeactivateRoom flags a room inactive; rooms are never physically removed
func (r *postgresRepository) DeactivateRoom(ctx context.Context, roomID int64) error {
	query := `
		UPDATE chat_rooms
		SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, roomID)
	return err
}

// ListRoomsByType returns all active rooms of the given type
func (r *postgresRepository) ListRoomsByType(ctx context.Context, roomType string) ([]*ChatRoom, error) {
	query := `
		SELECT id, name, description, type, created_by, is_active,
		       last_message_at, created_at, updated_at
		FROM chat_rooms
		WHERE type = $1 AND is_active = TRUE
		ORDER BY id`

	var rooms []*ChatRoom
	if err := r.db.SelectContext(ctx, &rooms, query, roomType); err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListRoomsForUser returns the user's rooms ordered by most recent activity,
// each annotated with its latest message and the count of messages newer than
// the user's latest read receipt in that room.
func (r *postgresRepository) ListRoomsForUser(ctx context.Context, userID int64) ([]*ChatRoom, error) {
	query := `
		SELECT cr.id, cr.name, cr.description, cr.type, cr.created_by,
		       cr.is_active, cr.last_message_at, cr.created_at, cr.updated_at
		FROM chat_rooms cr
		JOIN chat_room_members crm ON crm.room_id = cr.id
		WHERE crm.user_id = $1 AND cr.is_active = TRUE
		ORDER BY cr.last_message_at DESC NULLS LAST, cr.id DESC`

	var rooms []*ChatRoom
	if err := r.db.SelectContext(ctx, &rooms, query, userID); err != nil {
		return nil, err
	}

	lastQuery := `
		SELECT id, room_id, sender_id, body, message_type, file_url, file_name,
		       is_edited, is_deleted, reply_to_id, created_at, updated_at
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY id DESC
		LIMIT 1`

	unreadQuery := `
		SELECT COUNT(*)
		FROM chat_messages m
		WHERE m.room_id = $1
		  AND m.sender_id <> $2
		  AND m.is_deleted = FALSE
		  AND m.id > COALESCE((
			SELECT MAX(rr.message_id)
			FROM chat_read_receipts rr
			JOIN chat_messages rm ON rm.id = rr.message_id
			WHERE rr.user_id = $2 AND rm.room_id = $1
		  ), 0)`

	for _, room := range rooms {
		var last ChatMessage
		err := r.db.GetContext(ctx, &last, lastQuery, room.ID)
		if err == nil {
			room.LastMessage = last.Sanitized()
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		if err := r.db.GetContext(ctx, &room.UnreadCount, unreadQuery, room.ID, userID); err != nil {
			return nil, err
		}
	}

	return rooms, nil
}

// CreateMessage persists a message; the store assigns id and timestamps,
// which are the ordering tie-break for same-millisecond sends.
func (r *postgresRepository) CreateMessage(ctx context.Context, message *ChatMessage) error {
	query := `
		INSERT INTO chat_messages (
			room_id, sender_id, body, message_type, file_url, file_name, reply_to_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_edited, is_deleted, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		message.RoomID, message.SenderID, message.Body, message.MessageType,
		message.FileURL, message.FileName, message.ReplyToID,
	).Scan(&message.ID, &message.IsEdited, &message.IsDeleted, &message.CreatedAt, &message.UpdatedAt)
}

// GetMessage retrieves a message by id, tombstoned or not
func (r *postgresRepository) GetMessage(ctx context.Context, messageID int64) (*ChatMessage, error) {
	query := `
		SELECT id, room_id, sender_id, body, message_type, file_url, file_name,
		       is_edited, is_deleted, reply_to_id, created_at, updated_at
		FROM chat_messages
		WHERE id = $1`

	var msg ChatMessage
	err := r.db.GetContext(ctx, &msg, query, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateMessageBody replaces the body and marks the message edited
func (r *postgresRepository) UpdateMessageBody(ctx context.Context, messageID int64, body string) (*ChatMessage, error) {
	query := `
		UPDATE chat_messages
		SET body = $1, is_edited = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND is_deleted = FALSE
		RETURNING id, room_id, sender_id, body, message_type, file_url, file_name,
		          is_edited, is_deleted, reply_to_id, created_at, updated_at`

	var msg ChatMessage
	err := r.db.GetContext(ctx, &msg, query, body, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// TombstoneMessage flags a message deleted; content stays in the row for
// audit but is withheld from the read path.
func (r *postgresRepository) TombstoneMessage(ctx context.Context, messageID int64) error {
	query := `
		UPDATE chat_messages
		SET is_deleted = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, messageID)
	return err
}

// RoomMessages returns messages ascending by assigned id. Pagination is
// keyset-based on the id so pages stay stable while new messages arrive.
func (r *postgresRepository) RoomMessages(ctx context.Context, roomID int64, afterID int64, limit int) ([]*ChatMessage, error) {
	query := `
		SELECT id, room_id, sender_id, body, message_type, file_url, file_name,
		       is_edited, is_deleted, reply_to_id, created_at, updated_at
		FROM chat_messages
		WHERE room_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3`

	var messages []*ChatMessage
	if err := r.db.SelectContext(ctx, &messages, query, roomID, afterID, limit); err != nil {
		return nil, err
	}

	for i, msg := range messages {
		messages[i] = msg.Sanitized()
	}
	return messages, nil
}

// TouchRoomLastMessage updates the room's last-message pointer
func (r *postgresRepository) TouchRoomLastMessage(ctx context.Context, roomID int64) error {
	query := `
		UPDATE chat_rooms
		SET last_message_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, roomID)
	return err
}

// CreateReadReceipt inserts a receipt idempotently and reports whether this
// call created a new row. Concurrent markers never conflict.
func (r *postgresRepository) CreateReadReceipt(ctx context.Context, messageID, userID int64) (bool, error) {
	query := `
		INSERT INTO chat_read_receipts (message_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (message_id, user_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, messageID, userID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountReceiptsExcluding counts receipts for a message from identities other
// than the given one (normally the sender).
func (r *postgresRepository) CountReceiptsExcluding(ctx context.Context, messageID, excludeUserID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM chat_read_receipts
		WHERE message_id = $1 AND user_id <> $2`

	var count int
	err := r.db.QueryRowContext(ctx, query, messageID, excludeUserID).Scan(&count)
	return count, err
}

// ReceiptsForMessages bulk-fetches receipts for a set of message ids
func (r *postgresRepository) ReceiptsForMessages(ctx context.Context, messageIDs []int64) ([]*ReadReceipt, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT message_id, user_id, read_at
		FROM chat_read_receipts
		WHERE message_id IN (?)
		ORDER BY message_id, read_at`, messageIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var receipts []*ReadReceipt
	if err := r.db.SelectContext(ctx, &receipts, query, args...); err != nil {
		return nil, err
	}
	return receipts, nil
}
