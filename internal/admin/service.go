// Package admin implements account actions and progress views for
// administrators.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"promptbook/internal/auth"
	"promptbook/internal/journal"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidValue  = errors.New("invalid value")
	ErrMissingUser   = errors.New("user_id required")
)

const (
	ActionSetStartDate      = "set_start_date"
	ActionSetEmailPaused    = "set_email_paused"
	ActionResetWeek         = "reset_week"
	ActionResetAll          = "reset_all"
	ActionSetDisabled       = "set_disabled"
	ActionSendMagicLink     = "send_magic_link"
	ActionSendPasswordReset = "send_password_reset"
)

// Request is one administrative action on one user.
type Request struct {
	Action string          `json:"action"`
	UserID uint64          `json:"user_id"`
	Week   *int            `json:"week,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
}

// Result is the response envelope of every action.
type Result struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Result any    `json:"result,omitempty"`
}

type Users interface {
	ByID(ctx context.Context, id uint64) (*auth.User, error)
	List(ctx context.Context) ([]auth.User, error)
}

type Tokens interface {
	SignLink(userID uint64, purpose string, version int) (string, error)
}

type LinkMailer interface {
	SendMagicLink(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// DraftCloser stops a user's open drafts; *draft.Manager satisfies it.
type DraftCloser interface {
	CloseUser(userID uint64) int
}

type Service struct {
	Journal *journal.Service
	Users   Users
	Tokens  Tokens
	Mail    LinkMailer
	// Drafts is optional. Disabling a user closes their drafts.
	Drafts DraftCloser
}

// Do dispatches req. The returned value becomes Result.Result.
func (s *Service) Do(ctx context.Context, adminID uint64, req Request) (any, error) {
	if req.UserID == 0 {
		return nil, ErrMissingUser
	}
	user, err := s.Users.ByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	store := s.Journal.Store
	out, err := s.dispatch(ctx, store, user, req)
	if err != nil {
		return nil, err
	}
	slog.Info("admin_action", "admin_id", adminID, "action", req.Action, "user_id", req.UserID)
	return out, nil
}

func (s *Service) dispatch(ctx context.Context, store journal.Store, user *auth.User, req Request) (any, error) {
	switch req.Action {
	case ActionSetStartDate:
		var v *string
		if err := decode(req.Value, &v); err != nil {
			return nil, err
		}
		blank := ""
		if v == nil {
			v = &blank
		}
		p, err := store.UpdateProfile(ctx, user.ID, journal.ProfileUpdate{StartDate: v})
		if errors.Is(err, journal.ErrInvalidDate) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"start_date": journal.FormatDate(p.StartDate)}, nil

	case ActionSetEmailPaused, ActionSetDisabled:
		var v bool
		if err := decode(req.Value, &v); err != nil {
			return nil, err
		}
		up := journal.ProfileUpdate{EmailPaused: &v}
		if req.Action == ActionSetDisabled {
			up = journal.ProfileUpdate{Disabled: &v}
		}
		p, err := store.UpdateProfile(ctx, user.ID, up)
		if err != nil {
			return nil, err
		}
		if p.Disabled && s.Drafts != nil {
			s.Drafts.CloseUser(user.ID)
		}
		return map[string]any{"email_paused": p.EmailPaused, "disabled": p.Disabled}, nil

	case ActionResetWeek:
		if req.Week == nil || !journal.ValidWeek(*req.Week) {
			return nil, journal.ErrInvalidWeek
		}
		n, err := store.DeleteEntries(ctx, user.ID, req.Week)
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted": n, "week": *req.Week}, nil

	case ActionResetAll:
		n, err := store.DeleteEntries(ctx, user.ID, nil)
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted": n}, nil

	case ActionSendMagicLink:
		return s.sendLink(ctx, user, auth.PurposeMagicLink, s.Mail.SendMagicLink)

	case ActionSendPasswordReset:
		return s.sendLink(ctx, user, auth.PurposePasswordReset, s.Mail.SendPasswordReset)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
}

func (s *Service) sendLink(ctx context.Context, user *auth.User, purpose string, send func(context.Context, string, string) error) (any, error) {
	token, err := s.Tokens.SignLink(user.ID, purpose, user.LinkVersion)
	if err != nil {
		return nil, err
	}
	if err := send(ctx, user.Email, token); err != nil {
		return nil, fmt.Errorf("send %s: %w", purpose, err)
	}
	return map[string]any{"sent_to": user.Email}, nil
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: value required", ErrInvalidValue)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

// UserProgress is one row of the admin user listing.
type UserProgress struct {
	UserID       uint64         `json:"user_id"`
	Email        string         `json:"email"`
	IsAdmin      bool           `json:"is_admin"`
	StartDate    string         `json:"start_date"`
	EmailPaused  bool           `json:"email_paused"`
	Disabled     bool           `json:"disabled"`
	CurrentWeek  int            `json:"current_week"`
	Counts       journal.Counts `json:"counts"`
	AllCompleted bool           `json:"all_completed"`
	Error        string         `json:"error,omitempty"`
}

// Progress lists every user with their completion figures. A user whose
// entries cannot be joined is still listed, with Error set.
func (s *Service) Progress(ctx context.Context, now time.Time) ([]UserProgress, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	prompts, err := s.Journal.Store.ActivePrompts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserProgress, 0, len(users))
	for _, u := range users {
		prof, err := s.Journal.Store.Profile(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		row := UserProgress{
			UserID:      u.ID,
			Email:       u.Email,
			IsAdmin:     u.IsAdmin,
			StartDate:   journal.FormatDate(prof.StartDate),
			EmailPaused: prof.EmailPaused,
			Disabled:    prof.Disabled,
			CurrentWeek: journal.CurrentWeek(prof.StartDate, now),
		}
		ov, err := s.Journal.OverviewWith(ctx, prof, prompts, now)
		switch {
		case errors.Is(err, journal.ErrDuplicateEntry):
			row.Error = err.Error()
		case err != nil:
			return nil, err
		default:
			row.Counts = ov.Counts
			row.AllCompleted = ov.AllCompleted
		}
		out = append(out, row)
	}
	return out, nil
}

// Export is a user's full writing, for download.
type Export struct {
	User      auth.User       `json:"user"`
	StartDate string          `json:"start_date"`
	Entries   []journal.Entry `json:"entries"`
}

func (s *Service) Export(ctx context.Context, userID uint64) (*Export, error) {
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	prof, err := s.Journal.Store.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Journal.Store.EntriesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return &Export{User: *u, StartDate: journal.FormatDate(prof.StartDate), Entries: entries}, nil
}
