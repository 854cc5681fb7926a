// internal/chat/errors.go

package chat

import (
	"errors"
	"net/http"
)

// Per-action failure categories. All of these are recoverable: they are
// reported back to the caller (or the originating connection) and never
// terminate a connection or affect other rooms.
var (
	// ErrAuth means the credential was missing or invalid.
	ErrAuth = errors.New("invalid credential")

	// ErrMembership means the identity does not belong to the target room.
	ErrMembership = errors.New("not a member of this room")

	// ErrValidation means the payload was malformed or empty.
	ErrValidation = errors.New("invalid payload")

	// ErrNotFound means the referenced room, message or reply target does
	// not exist (tombstoned messages count as gone for edits).
	ErrNotFound = errors.New("not found")

	// ErrPermission means an edit or delete was attempted by a non-sender.
	ErrPermission = errors.New("only the sender may modify this message")
)

// ErrorCode returns the wire code for an action error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "AUTH_ERROR"
	case errors.Is(err, ErrMembership):
		return "MEMBERSHIP_ERROR"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrPermission):
		return "PERMISSION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// HTTPStatus maps an action error to the REST status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMembership), errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
