package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"promptbook/internal/auth"
	"promptbook/internal/journal"
)

type MeHandler struct {
	Users    UserStore
	Profiles journal.Store
}

type profileDTO struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"is_admin"`
	StartDate   string `json:"start_date"`
	CurrentWeek int    `json:"current_week"`
	UITextSize  string `json:"ui_text_size"`
	UIContrast  string `json:"ui_contrast"`
	EmailPaused bool   `json:"email_paused"`
	Disabled    bool   `json:"disabled"`
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	p, err := h.Profiles.Profile(r.Context(), uid)
	if err != nil {
		internalError(w, r, err)
		return
	}
	h.write(w, r, uid, p)
}

type updateProfileReq struct {
	StartDate  *string `json:"start_date"`
	UITextSize *string `json:"ui_text_size"`
	UIContrast *string `json:"ui_contrast"`
}

// UpdateProfile changes the user's own start date and UI preferences.
// Account flags are admin-only and not accepted here.
func (h *MeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req updateProfileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	p, err := h.Profiles.UpdateProfile(r.Context(), uid, journal.ProfileUpdate{
		StartDate:  req.StartDate,
		UITextSize: req.UITextSize,
		UIContrast: req.UIContrast,
	})
	if errors.Is(err, journal.ErrInvalidDate) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	h.write(w, r, uid, p)
}

func (h *MeHandler) write(w http.ResponseWriter, r *http.Request, uid uint64, p *journal.Profile) {
	dto := profileDTO{
		UserID:      uid,
		StartDate:   journal.FormatDate(p.StartDate),
		CurrentWeek: journal.CurrentWeek(p.StartDate, timeNow()),
		UITextSize:  p.UITextSize,
		UIContrast:  p.UIContrast,
		EmailPaused: p.EmailPaused,
		Disabled:    p.Disabled,
	}
	if h.Users != nil {
		u, err := h.Users.ByID(r.Context(), uid)
		if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
			internalError(w, r, err)
			return
		}
		if u != nil {
			dto.Email = u.Email
			dto.IsAdmin = u.IsAdmin
		}
	}
	writeJSON(w, http.StatusOK, dto)
}
