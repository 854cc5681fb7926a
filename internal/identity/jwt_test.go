// internal/identity/jwt_test.go

package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestResolve_ValidToken(t *testing.T) {
	resolver := NewJWTResolver(testSecret)
	credential := signToken(t, testSecret, jwt.MapClaims{
		"user_id":      float64(7),
		"username":     "ada",
		"display_name": "Ada L",
		"exp":          time.Now().Add(time.Hour).Unix(),
	})

	ident, err := resolver.Resolve(context.Background(), credential)

	require.NoError(t, err)
	assert.Equal(t, int64(7), ident.ID)
	assert.Equal(t, "ada", ident.Username)
	assert.Equal(t, "Ada L", ident.DisplayName)
}

func TestResolve_StringUserIDClaim(t *testing.T) {
	resolver := NewJWTResolver(testSecret)
	credential := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "7",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	ident, err := resolver.Resolve(context.Background(), credential)

	require.NoError(t, err)
	assert.Equal(t, int64(7), ident.ID)
}

func TestResolve_WrongSecret(t *testing.T) {
	resolver := NewJWTResolver(testSecret)
	credential := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": float64(7),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	_, err := resolver.Resolve(context.Background(), credential)

	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestResolve_ExpiredToken(t *testing.T) {
	resolver := NewJWTResolver(testSecret)
	credential := signToken(t, testSecret, jwt.MapClaims{
		"user_id": float64(7),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	_, err := resolver.Resolve(context.Background(), credential)

	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestResolve_MissingUserID(t *testing.T) {
	resolver := NewJWTResolver(testSecret)
	credential := signToken(t, testSecret, jwt.MapClaims{
		"username": "ada",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	_, err := resolver.Resolve(context.Background(), credential)

	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthenticate_InjectsIdentity(t *testing.T) {
	resolver := NewJWTResolver(testSecret)
	mw := NewMiddleware(resolver)

	var got *Identity
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	credential := signToken(t, testSecret, jwt.MapClaims{
		"user_id": float64(7),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+credential)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.ID)
}

func TestAuthenticate_QueryParamFallback(t *testing.T) {
	resolver := NewJWTResolver(testSecret)
	mw := NewMiddleware(resolver)

	called := false
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	credential := signToken(t, testSecret, jwt.MapClaims{
		"user_id": float64(7),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+credential, nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestAuthenticate_MissingCredential(t *testing.T) {
	mw := NewMiddleware(NewJWTResolver(testSecret))

	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
