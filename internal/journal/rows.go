package journal

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var ErrDuplicateEntry = errors.New("more than one entry for a week")
var ErrUnknownSort = errors.New("unknown sort order")

// WeekRow joins one Prompt with at most one Entry. It is never stored.
type WeekRow struct {
	Week          int           `json:"week"`
	PromptKey     string        `json:"prompt_key"`
	Title         string        `json:"title"`
	Category      string        `json:"category"`
	Status        DisplayStatus `json:"status"`
	ScheduledDate *time.Time    `json:"scheduled_date"`
	UpdatedAt     *time.Time    `json:"updated_at"`
	EntryID       string        `json:"entry_id,omitempty"`
}

// WeekTitle is the title shown for a week, falling back to "Week N".
func WeekTitle(p *Prompt, week int) string {
	if p != nil {
		if t := strings.TrimSpace(p.Title); t != "" {
			return t
		}
	}
	return fmt.Sprintf("Week %d", week)
}

// RowFor builds the row for a single week. p and e may be nil.
func RowFor(week int, p *Prompt, e *Entry, startDate *time.Time) WeekRow {
	row := WeekRow{
		Week:          week,
		Title:         WeekTitle(p, week),
		Status:        DisplayStatusOf(e),
		ScheduledDate: ScheduledDate(startDate, week),
	}
	if p != nil {
		row.PromptKey = p.PromptKey
		row.Category = p.Category
	}
	if e != nil {
		row.EntryID = e.ID
		if !e.UpdatedAt.IsZero() {
			u := e.UpdatedAt
			row.UpdatedAt = &u
		}
	}
	return row
}

// BuildWeekRows produces one row per prompt, week ascending. entries must
// belong to a single user; two entries for the same week is an error.
func BuildWeekRows(prompts []Prompt, entries []Entry, startDate *time.Time) ([]WeekRow, error) {
	byWeek := make(map[int]*Entry, len(entries))
	for i := range entries {
		e := &entries[i]
		if _, dup := byWeek[e.Week]; dup {
			return nil, fmt.Errorf("%w: week %d", ErrDuplicateEntry, e.Week)
		}
		byWeek[e.Week] = e
	}

	rows := make([]WeekRow, 0, len(prompts))
	for i := range prompts {
		p := &prompts[i]
		rows = append(rows, RowFor(p.Week, p, byWeek[p.Week], startDate))
	}
	return SortRows(rows, SortByWeek), nil
}

// SortOrder selects the ordering of a row listing.
type SortOrder string

const (
	SortByWeek    SortOrder = "week"
	SortByTitle   SortOrder = "title"
	SortByUpdated SortOrder = "updated"
)

// ParseSortOrder accepts "", "week", "title" and "updated".
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByWeek:
		return SortByWeek, nil
	case SortByTitle:
		return SortByTitle, nil
	case SortByUpdated:
		return SortByUpdated, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSort, s)
}

// SortRows returns a sorted copy. Ties always fall back to week ascending.
func SortRows(rows []WeekRow, order SortOrder) []WeekRow {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b WeekRow) int {
		switch order {
		case SortByTitle:
			if c := cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
				return c
			}
		case SortByUpdated:
			if c := compareUpdatedDesc(a.UpdatedAt, b.UpdatedAt); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Week, b.Week)
	})
	return out
}

// rows without an update time sort last
func compareUpdatedDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return b.Compare(*a)
}

// GroupByStatus splits rows into not-yet-complete (Open and InProgress)
// and complete buckets, each week ascending.
func GroupByStatus(rows []WeekRow) (pending, complete []WeekRow) {
	for _, r := range SortRows(rows, SortByWeek) {
		if r.Status == DisplayComplete {
			complete = append(complete, r)
		} else {
			pending = append(pending, r)
		}
	}
	return pending, complete
}
