package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"promptbook/internal/admin"
	"promptbook/internal/jobs"
)

// ReminderRunner is the weekly reminder job.
type ReminderRunner interface {
	Run(ctx context.Context, now time.Time) (jobs.Summary, error)
}

type CronHandler struct {
	Secret string
	Job    ReminderRunner
}

// WeeklyReminders runs the reminder job once. The caller must present
// X-Cron-Secret; an unset secret disables the route.
func (h *CronHandler) WeeklyReminders(w http.ResponseWriter, r *http.Request) {
	got := r.Header.Get("X-Cron-Secret")
	if h.Secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"ok":     false,
			"status": http.StatusUnauthorized,
			"error":  "unauthorized",
		})
		return
	}

	sum, err := h.Job.Run(r.Context(), timeNow())
	if err != nil {
		internalLog(r, err)
		writeJSON(w, http.StatusInternalServerError, admin.Result{Error: "reminder run failed", Result: sum})
		return
	}
	writeJSON(w, http.StatusOK, admin.Result{OK: true, Result: sum})
}
