package journal

import (
	"context"
	"time"
)

// Service composes the lifecycle functions over a Store for one user at a time.
type Service struct {
	Store Store
}

// Overview is the per-user listing behind the weeks and dashboard views.
type Overview struct {
	UserID       uint64     `json:"user_id"`
	StartDate    string     `json:"start_date"`
	CurrentWeek  int        `json:"current_week"`
	Rows         []WeekRow  `json:"rows"`
	Counts       Counts     `json:"counts"`
	AllCompleted bool       `json:"all_completed"`
	OpenWeeks    []OpenWeek `json:"-"`
}

// WeekView is a single week with its prompt and entry.
type WeekView struct {
	Row    WeekRow `json:"row"`
	Prompt *Prompt `json:"prompt"`
	Entry  *Entry  `json:"entry"`
}

// ToggleResult reports the status after a toggle and whether it was written.
type ToggleResult struct {
	Status  Status `json:"status"`
	Changed bool   `json:"changed"`
}

func (s *Service) Overview(ctx context.Context, userID uint64, now time.Time, order SortOrder) (*Overview, error) {
	prof, err := s.Store.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	prompts, err := s.Store.ActivePrompts(ctx)
	if err != nil {
		return nil, err
	}
	return s.overview(ctx, prof, prompts, now, order)
}

// OverviewWith reuses an already loaded prompt catalog, for listings
// that cover many users.
func (s *Service) OverviewWith(ctx context.Context, prof *Profile, prompts []Prompt, now time.Time) (*Overview, error) {
	return s.overview(ctx, prof, prompts, now, SortByWeek)
}

func (s *Service) overview(ctx context.Context, prof *Profile, prompts []Prompt, now time.Time, order SortOrder) (*Overview, error) {
	entries, err := s.Store.EntriesForUser(ctx, prof.UserID)
	if err != nil {
		return nil, err
	}

	rows, err := BuildWeekRows(prompts, entries, prof.StartDate)
	if err != nil {
		return nil, err
	}

	return &Overview{
		UserID:       prof.UserID,
		StartDate:    FormatDate(prof.StartDate),
		CurrentWeek:  CurrentWeek(prof.StartDate, now),
		Rows:         SortRows(rows, order),
		Counts:       AggregateCounts(rows),
		AllCompleted: AllCompleted(rows),
		OpenWeeks:    OpenWeeks(rows),
	}, nil
}

func (s *Service) Week(ctx context.Context, userID uint64, week int) (*WeekView, error) {
	if !ValidWeek(week) {
		return nil, ErrInvalidWeek
	}
	prof, err := s.Store.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.Store.PromptForWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	e, err := s.Store.EntryForWeek(ctx, userID, week)
	if err != nil {
		return nil, err
	}
	return &WeekView{
		Row:    RowFor(week, p, e, prof.StartDate),
		Prompt: p,
		Entry:  e,
	}, nil
}

// SaveEntry upserts the user's entry for week.
func (s *Service) SaveEntry(ctx context.Context, userID uint64, week int, in EntryInput) (*Entry, error) {
	if !ValidWeek(week) {
		return nil, ErrInvalidWeek
	}
	var key string
	p, err := s.Store.PromptForWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	if p != nil {
		key = p.PromptKey
	}
	return s.Store.SaveEntry(ctx, userID, week, key, in)
}

// Toggle flips completion of the week's entry. Missing or blank entries
// are left alone and nothing is written.
func (s *Service) Toggle(ctx context.Context, userID uint64, week int) (ToggleResult, error) {
	if !ValidWeek(week) {
		return ToggleResult{}, ErrInvalidWeek
	}
	e, err := s.Store.EntryForWeek(ctx, userID, week)
	if err != nil {
		return ToggleResult{}, err
	}

	next, changed := ToggleComplete(e)
	if !changed {
		return ToggleResult{Status: next}, nil
	}
	if err := s.Store.SetEntryStatus(ctx, e.ID, next); err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Status: next, Changed: true}, nil
}
