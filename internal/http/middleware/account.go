package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"promptbook/internal/auth"
	"promptbook/internal/journal"
)

// ProfileSource loads a user's profile; journal.Store satisfies it.
type ProfileSource interface {
	Profile(ctx context.Context, userID uint64) (*journal.Profile, error)
}

// RequireEnabled must run after auth.RequireAuth. It rejects sessions of
// accounts that have been disabled since the token was issued.
func RequireEnabled(p ProfileSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			prof, err := p.Profile(r.Context(), uid)
			if err != nil {
				slog.Error("profile_check_failed", "user_id", uid, "error", err)
				http.Error(w, "server error", http.StatusInternalServerError)
				return
			}
			if prof.Disabled {
				http.Error(w, "account disabled", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
