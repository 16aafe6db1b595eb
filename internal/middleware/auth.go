package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/classbank/bank-engine/internal/config"
	"github.com/classbank/bank-engine/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

type contextKey string

const actorKey contextKey = "actor"

// AuthMiddleware validates a bearer JWT and stores the resulting actor
// in the request context.
func AuthMiddleware(cfg *config.Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actorFromClaims(claims jwt.MapClaims) (models.Actor, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return models.Actor{}, fmt.Errorf("missing sub claim")
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid sub claim: %w", err)
	}
	role, ok := claims["role"].(string)
	if !ok {
		return models.Actor{}, fmt.Errorf("missing role claim")
	}
	// JSON numbers decode as float64
	classID, ok := claims["class_id"].(float64)
	if !ok {
		return models.Actor{}, fmt.Errorf("missing class_id claim")
	}
	return models.Actor{
		UserID:  userID,
		ClassID: int64(classID),
		Role:    models.Role(role),
	}, nil
}

// ActorFromContext retrieves the authenticated actor placed in the
// context by AuthMiddleware.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}

// ContextWithActor is a test helper for constructing authenticated
// request contexts without going through the middleware.
func ContextWithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}
