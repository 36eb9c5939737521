package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"rolodex/internal/models"
	pkghttp "rolodex/pkg/http"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFetcher resolves the user referenced by a token's claims.
type UserFetcher interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Middleware gates protected routes. It accepts the session token from the
// configured cookie or an "Authorization: Bearer" header, verifies it, then
// re-reads the user from the credential store on every request so that
// deleting an account revokes access immediately.
func Middleware(tm *TokenManager, users UserFetcher, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r, cookieName)
			if tokenString == "" {
				pkghttp.WriteUnauthorized(w, "No token provided")
				return
			}

			claims, err := tm.Validate(tokenString)
			if err != nil {
				if errors.Is(err, models.ErrTokenExpired) {
					pkghttp.WriteUnauthorized(w, "Token expired, please log in again")
					return
				}
				pkghttp.WriteUnauthorized(w, "Invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "User no longer exists")
					return
				}
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			user.PasswordHash = ""
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user attached by Middleware,
// or nil when the request did not pass through it.
func UserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser attaches a user to a context. Exposed for handler tests.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func extractToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
