package handler

import (
	"encoding/json"
	"net/http"

	"promptbook/internal/auth"
	"promptbook/internal/draft"
	"promptbook/internal/journal"
)

// DraftHandler backs the write view: an open draft is auto-saved until
// the view is left.
type DraftHandler struct {
	Svc    *journal.Service
	Drafts *draft.Manager
}

type draftDTO struct {
	Week  int                `json:"week"`
	Dirty bool               `json:"dirty"`
	Draft journal.EntryInput `json:"draft"`
}

func toDraftDTO(week int, s *draft.Session) draftDTO {
	return draftDTO{Week: week, Dirty: s.Dirty(), Draft: s.Draft()}
}

// Open starts (or resumes) the week's draft, seeded with the stored entry.
func (h *DraftHandler) Open(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	week, err := weekParam(r)
	if err != nil {
		journalError(w, r, err)
		return
	}

	s, err := h.open(r, uid, week)
	if err != nil {
		journalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftDTO(week, s))
}

func (h *DraftHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	// completion goes through toggle, not the draft
	in.Status = ""

	s, err := h.open(r, uid, week)
	if err != nil {
		journalError(w, r, err)
		return
	}
	if !s.Update(in) {
		// the session expired under us; start over from what is stored
		if s, err = h.open(r, uid, week); err != nil {
			journalError(w, r, err)
			return
		}
		s.Update(in)
	}
	writeJSON(w, http.StatusOK, toDraftDTO(week, s))
}

// Get reports whether leaving the view would discard changes.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	week, err := weekParam(r)
	if err != nil {
		journalError(w, r, err)
		return
	}

	s, ok := h.Drafts.Get(uid, week)
	if !ok {
		http.Error(w, "no open draft", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toDraftDTO(week, s))
}

// Save writes the draft now and surfaces any storage error.
func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	week, err := weekParam(r)
	if err != nil {
		journalError(w, r, err)
		return
	}

	s, ok := h.Drafts.Get(uid, week)
	if !ok {
		http.Error(w, "no open draft", http.StatusNotFound)
		return
	}
	e, err := s.Save(r.Context())
	if err != nil {
		journalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entry":  e,
		"status": journal.DisplayStatusOf(e),
		"dirty":  s.Dirty(),
	})
}

// Close leaves the view and stops auto-save. Unsaved changes are dropped;
// the client confirms with the user first.
func (h *DraftHandler) Close(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	week, err := weekParam(r)
	if err != nil {
		journalError(w, r, err)
		return
	}

	closed, discarded := h.Drafts.Close(uid, week)
	writeJSON(w, http.StatusOK, map[string]any{"closed": closed, "discarded": discarded})
}

func (h *DraftHandler) open(r *http.Request, uid uint64, week int) (*draft.Session, error) {
	if s, ok := h.Drafts.Get(uid, week); ok {
		return s, nil
	}
	v, err := h.Svc.Week(r.Context(), uid, week)
	if err != nil {
		return nil, err
	}
	return h.Drafts.Open(uid, week, v.Entry.Input()), nil
}
