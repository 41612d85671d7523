package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cookingcapture/api/internal/infrastructure/security"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/google/uuid"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	emailKey  contextKey = "email"
)

// UserID extracts the authenticated user's id from the request context.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// Email extracts the authenticated user's email from the request context.
func Email(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}

// Authenticator verifies the bearer token and stores the user's
// identity in the request context.
func Authenticator(tokens *security.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, apperrors.NewUnauthorizedError("missing bearer token"))
				return
			}

			claims, err := tokens.VerifySessionToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				appErr, ok := err.(*apperrors.AppError)
				if !ok {
					appErr = apperrors.NewTokenInvalidError()
				}
				writeAuthError(w, appErr)
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				writeAuthError(w, apperrors.NewTokenInvalidError())
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly restricts a route to the configured admin account. It must
// run after Authenticator.
func AdminOnly(adminEmail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := Email(r.Context())
			if !ok || adminEmail == "" || !strings.EqualFold(email, adminEmail) {
				writeAuthError(w, apperrors.NewForbiddenError("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	json.NewEncoder(w).Encode(apperrors.ToErrorResponse(appErr, ""))
}
