package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"promptbook/internal/auth"
	"promptbook/internal/journal"
)

// UserStore is the account storage used by the auth routes; *auth.Store satisfies it.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string, admin bool) (*auth.User, error)
	ByEmail(ctx context.Context, email string) (*auth.User, error)
	ByID(ctx context.Context, id uint64) (*auth.User, error)
	SetPassword(ctx context.Context, id uint64, passwordHash string) error
	ConsumeLink(ctx context.Context, id uint64, version int) error
}

type AuthHandler struct {
	Users    UserStore
	Profiles journal.Store
	JWT      *auth.JWT
	// IsAdminEmail promotes matching addresses at registration.
	IsAdminEmail func(email string) bool
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = auth.NormalizeEmail(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") || len(req.Password) < 8 {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		internalError(w, r, err)
		return
	}

	admin := h.IsAdminEmail != nil && h.IsAdminEmail(req.Email)
	u, err := h.Users.Create(r.Context(), req.Email, hash, admin)
	if errors.Is(err, auth.ErrEmailTaken) {
		http.Error(w, "email already used", http.StatusConflict)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	h.issue(w, r, u.ID, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = auth.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	u, err := h.Users.ByEmail(r.Context(), req.Email)
	if err != nil || !auth.ComparePassword(u.PasswordHash, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !h.enabled(w, r, u.ID) {
		return
	}

	h.issue(w, r, u.ID, http.StatusOK)
}

type magicLinkReq struct {
	Token string `json:"token"`
}

// MagicLink exchanges an emailed sign-in token for a session.
func (h *AuthHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	link, err := h.JWT.VerifyLink(strings.TrimSpace(req.Token), auth.PurposeMagicLink)
	if err != nil {
		http.Error(w, "invalid or expired link", http.StatusUnauthorized)
		return
	}
	if _, err := h.Users.ByID(r.Context(), link.UserID); err != nil {
		http.Error(w, "invalid or expired link", http.StatusUnauthorized)
		return
	}
	if !h.enabled(w, r, link.UserID) || !h.consume(w, r, link) {
		return
	}

	h.issue(w, r, link.UserID, http.StatusOK)
}

type passwordResetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// PasswordReset sets a new password from an emailed reset token.
func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	link, err := h.JWT.VerifyLink(strings.TrimSpace(req.Token), auth.PurposePasswordReset)
	if err != nil {
		http.Error(w, "invalid or expired link", http.StatusUnauthorized)
		return
	}
	uid := link.UserID
	if !h.enabled(w, r, uid) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !h.consume(w, r, link) {
		return
	}
	err = h.Users.SetPassword(r.Context(), uid, hash)
	if errors.Is(err, auth.ErrUserNotFound) {
		http.Error(w, "invalid or expired link", http.StatusUnauthorized)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	h.issue(w, r, uid, http.StatusOK)
}

// consume redeems link once; a reused or superseded link gets 401.
func (h *AuthHandler) consume(w http.ResponseWriter, r *http.Request, link auth.Link) bool {
	err := h.Users.ConsumeLink(r.Context(), link.UserID, link.Version)
	if errors.Is(err, auth.ErrLinkUsed) {
		http.Error(w, "link already used", http.StatusUnauthorized)
		return false
	}
	if errors.Is(err, auth.ErrUserNotFound) {
		http.Error(w, "invalid or expired link", http.StatusUnauthorized)
		return false
	}
	if err != nil {
		internalError(w, r, err)
		return false
	}
	return true
}

// enabled writes 403 and returns false for disabled accounts.
func (h *AuthHandler) enabled(w http.ResponseWriter, r *http.Request, uid uint64) bool {
	p, err := h.Profiles.Profile(r.Context(), uid)
	if err != nil {
		internalError(w, r, err)
		return false
	}
	if p.Disabled {
		http.Error(w, "account disabled", http.StatusForbidden)
		return false
	}
	return true
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, uid uint64, status int) {
	token, err := h.JWT.Sign(uid)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, status, map[string]any{"token": token})
}
