package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

func UserIDFromContext(ctx context.Context) (uint64, bool) {
	v := ctx.Value(userIDKey)
	id, ok := v.(uint64)
	return id, ok
}

// WithUserID is used by tests and by handlers that authenticate on their own.
func WithUserID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// Verifier checks a session token.
type Verifier interface {
	Verify(token string) (uint64, error)
}

// AdminChecker decides whether an authenticated user may use admin routes.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uint64) (bool, error)
}

func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(h, "Bearer ")

			uid, err := v.Verify(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
		})
	}
}

// RequireAdmin must run after RequireAuth. Rejections use the admin
// envelope {ok:false, status, error}.
func RequireAdmin(c AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := UserIDFromContext(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			admin, err := c.IsAdmin(r.Context(), uid)
			if err != nil {
				slog.Error("admin_check_failed", "user_id", uid, "error", err)
				deny(w, http.StatusInternalServerError, "server error")
				return
			}
			if !admin {
				deny(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":     false,
		"status": status,
		"error":  msg,
	})
}
