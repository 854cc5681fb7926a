// internal/identity/identity.go

package identity

import (
	"context"
	"errors"
)

// ErrInvalidCredential is returned when a bearer credential is missing,
// malformed, expired, or fails signature verification.
var ErrInvalidCredential = errors.New("invalid credential")

// Identity is a resolved staff identity. The chat core trusts it fully and
// performs no further verification.
type Identity struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Resolver validates a bearer credential and yields a stable identity.
// Credential issuance lives in the identity service, not here.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*Identity, error)
}

type contextKey struct{}

// NewContext returns a context carrying the resolved identity.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the identity placed by the middleware.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok
}
