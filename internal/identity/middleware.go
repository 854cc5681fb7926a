// internal/identity/middleware.go

package identity

import (
	"net/http"
	"strings"

	"github.com/harborlink/ops-backend/internal/common/utils"
)

// Middleware guards routes behind credential resolution
type Middleware struct {
	resolver Resolver
}

// NewMiddleware creates the identity middleware
func NewMiddleware(resolver Resolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// Authenticate resolves the bearer credential and adds the identity to the
// request context. Requests without a valid credential are rejected before
// any handler runs.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := extractCredential(r)
		if credential == "" {
			utils.ErrorResponse(w, "Missing or invalid authorization header", http.StatusUnauthorized)
			return
		}

		id, err := m.resolver.Resolve(r.Context(), credential)
		if err != nil {
			utils.ErrorResponse(w, "Invalid or expired credential", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), id)))
	})
}

// extractCredential pulls the bearer token from the Authorization header,
// falling back to the token query parameter for websocket clients that
// cannot set headers.
func extractCredential(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
