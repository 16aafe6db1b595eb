package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/classbank/bank-engine/internal/config"
	"github.com/classbank/bank-engine/internal/models"
	"github.com/golang-jwt/jwt/v5"
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

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      "42",
		"role":     "teacher",
		"class_id": float64(7),
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func runMiddleware(t *testing.T, authHeader string) (*httptest.ResponseRecorder, models.Actor, bool) {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret}

	var gotActor models.Actor
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, gotOK = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	AuthMiddleware(cfg)(next).ServeHTTP(rec, req)
	return rec, gotActor, gotOK
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token := signToken(t, testSecret, validClaims())
	rec, actor, ok := runMiddleware(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, int64(42), actor.UserID)
	assert.Equal(t, int64(7), actor.ClassID)
	assert.Equal(t, models.RoleTeacher, actor.Role)
	assert.True(t, actor.IsTeacher())
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	rec, _, ok := runMiddleware(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", validClaims())
	rec, _, ok := runMiddleware(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signToken(t, testSecret, claims)
	rec, _, ok := runMiddleware(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}

func TestAuthMiddlewareMalformedClaims(t *testing.T) {
	claims := validClaims()
	delete(claims, "class_id")
	token := signToken(t, testSecret, claims)
	rec, _, ok := runMiddleware(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}

func TestActorFromClaims(t *testing.T) {
	actor, err := actorFromClaims(jwt.MapClaims{
		"sub": "9", "role": "student", "class_id": float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, models.Actor{UserID: 9, ClassID: 3, Role: models.RoleStudent}, actor)

	_, err = actorFromClaims(jwt.MapClaims{"sub": "x", "role": "student", "class_id": float64(3)})
	assert.Error(t, err)
}
