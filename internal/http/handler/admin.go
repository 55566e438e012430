package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"promptbook/internal/admin"
	"promptbook/internal/auth"
	"promptbook/internal/jobs"
	"promptbook/internal/journal"
)

// RunHistory lists past reminder runs; *jobs.Repo satisfies it.
type RunHistory interface {
	Recent(ctx context.Context, limit int) ([]jobs.Run, error)
}

type AdminHandler struct {
	Svc  *admin.Service
	Runs RunHistory
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.Progress(r.Context(), timeNow())
	if err != nil {
		adminFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin.Result{OK: true, Result: rows})
}

func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		adminFail(w, r, admin.ErrMissingUser)
		return
	}
	exp, err := h.Svc.Export(r.Context(), id)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin.Result{OK: true, Result: exp})
}

func (h *AdminHandler) Action(w http.ResponseWriter, r *http.Request) {
	adminID, _ := auth.UserIDFromContext(r.Context())

	var req admin.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, admin.Result{Error: "bad json"})
		return
	}

	out, err := h.Svc.Do(r.Context(), adminID, req)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin.Result{OK: true, Result: out})
}

func adminFail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "server error"
	switch {
	case errors.Is(err, admin.ErrUnknownAction),
		errors.Is(err, admin.ErrInvalidValue),
		errors.Is(err, admin.ErrMissingUser),
		errors.Is(err, journal.ErrInvalidWeek):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrUserNotFound):
		status, msg = http.StatusNotFound, err.Error()
	default:
		internalLog(r, err)
	}
	writeJSON(w, status, admin.Result{Error: msg})
}

// ReminderRuns serves GET /admin/reminder-runs?limit=N.
func (h *AdminHandler) ReminderRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			writeJSON(w, http.StatusBadRequest, admin.Result{Error: "invalid limit"})
			return
		}
		limit = n
	}

	runs, err := h.Runs.Recent(r.Context(), limit)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin.Result{OK: true, Result: nonNil(runs)})
}
