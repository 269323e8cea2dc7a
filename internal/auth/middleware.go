package auth

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"

	"focusflow/internal/analytics"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// Middleware authenticates bearer tokens. With a users table it also
// refuses tokens that outlive their account, so a deleted user cannot
// recreate a workspace before the token expires.
type Middleware struct {
	secret []byte
	users  *sql.DB
}

func New(secret []byte, users *sql.DB) Middleware {
	return Middleware{secret: secret, users: users}
}

func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(h, "Bearer ")
		userID, err := ParseToken(m.secret, tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if m.users != nil {
			exists, err := UserExists(r.Context(), m.users, userID)
			if err != nil {
				log.Printf("[WARN] auth: %v", err)
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			if !exists {
				http.Error(w, "account no longer exists", http.StatusUnauthorized)
				return
			}
		}

		ctx := WithUserID(r.Context(), userID)
		ctx = analytics.WithUserID(ctx, userID)

		next(w, r.WithContext(ctx))
	}
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}
