package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"promptbook/internal/auth"
	"promptbook/internal/journal"
)

type WeeksHandler struct {
	Svc *journal.Service
}

// List serves GET /weeks?sort=week|title|updated&group=status.
func (h *WeeksHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	order, err := journal.ParseSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		journalError(w, r, err)
		return
	}
	group := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("group")))
	if group != "" && group != "status" {
		http.Error(w, "unknown group", http.StatusBadRequest)
		return
	}

	ov, err := h.Svc.Overview(r.Context(), uid, timeNow(), order)
	if err != nil {
		journalError(w, r, err)
		return
	}

	out := map[string]any{
		"current_week":  ov.CurrentWeek,
		"start_date":    ov.StartDate,
		"counts":        ov.Counts,
		"all_completed": ov.AllCompleted,
	}
	if group == "status" {
		pending, complete := journal.GroupByStatus(ov.Rows)
		out["pending"] = nonNil(pending)
		out["complete"] = nonNil(complete)
	} else {
		out["rows"] = nonNil(ov.Rows)
	}
	writeJSON(w, http.StatusOK, out)
}

// Open lists weeks still to finish, in-progress ones included.
func (h *WeeksHandler) Open(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	ov, err := h.Svc.Overview(r.Context(), uid, timeNow(), journal.SortByWeek)
	if err != nil {
		journalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov.OpenWeeks)
}

func (h *WeeksHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	ov, err := h.Svc.Overview(r.Context(), uid, timeNow(), journal.SortByWeek)
	if err != nil {
		journalError(w, r, err)
		return
	}
	cur, err := h.Svc.Week(r.Context(), uid, ov.CurrentWeek)
	if err != nil {
		journalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"current_week":  ov.CurrentWeek,
		"start_date":    ov.StartDate,
		"counts":        ov.Counts,
		"all_completed": ov.AllCompleted,
		"open_weeks":    len(ov.OpenWeeks),
		"current":       cur,
	})
}

func (h *WeeksHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	week, err := weekParam(r)
	if err != nil {
		journalError(w, r, err)
		return
	}

	v, err := h.Svc.Week(r.Context(), uid, week)
	if err != nil {
		journalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Save is the manual save; storage errors reach the caller.
func (h *WeeksHandler) Save(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	week, err := weekParam(r)
	if err != nil {
		journalError(w, r, err)
		return
	}

	var in journal.EntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	e, err := h.Svc.SaveEntry(r.Context(), uid, week, in)
	if err != nil {
		journalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entry":  e,
		"status": journal.DisplayStatusOf(e),
	})
}

func (h *WeeksHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	week, err := weekParam(r)
	if err != nil {
		journalError(w, r, err)
		return
	}

	res, err := h.Svc.Toggle(r.Context(), uid, week)
	if err != nil {
		journalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
