package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"promptbook/internal/journal"
)

// timeNow is a variable for testability.
var timeNow = time.Now

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// internalError logs the real error and returns a generic message.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	internalLog(r, err)
	http.Error(w, "server error", http.StatusInternalServerError)
}

func internalLog(r *http.Request, err error) {
	slog.Error("internal_error", "path", r.URL.Path, "error", err)
}

func weekParam(r *http.Request) (int, error) {
	w, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || !journal.ValidWeek(w) {
		return 0, journal.ErrInvalidWeek
	}
	return w, nil
}

// journalError maps journal errors onto responses.
func journalError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, journal.ErrInvalidWeek), errors.Is(err, journal.ErrInvalidDate), errors.Is(err, journal.ErrUnknownSort):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, journal.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, journal.ErrDuplicateEntry):
		slog.Error("duplicate_entry", "path", r.URL.Path, "error", err)
		http.Error(w, "conflicting entries for a week", http.StatusConflict)
	default:
		internalError(w, r, err)
	}
}
