package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"promptbook/internal/journal"
	"promptbook/internal/journal/journaltest"
)

func TestService_Overview(t *testing.T) {
	ctx := context.Background()
	store := journaltest.New().AddPrompts(journaltest.Catalog(52)...)
	store.PutProfile(journal.Profile{UserID: 7, StartDate: date(t, "2024-01-01")})
	store.AddEntries(
		journal.Entry{ID: "a", UserID: 7, Week: 1, Content: "done", Status: "complete"},
		journal.Entry{ID: "b", UserID: 7, Week: 2, Content: "half", Status: "draft"},
		journal.Entry{ID: "c", UserID: 8, Week: 3, Content: "other user", Status: "complete"},
	)
	svc := &journal.Service{Store: store}

	now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	ov, err := svc.Overview(ctx, 7, now, journal.SortByWeek)
	require.NoError(t, err)
	require.Equal(t, 3, ov.CurrentWeek)
	require.Equal(t, "2024-01-01", ov.StartDate)
	require.Len(t, ov.Rows, 52)
	require.Equal(t, journal.Counts{Open: 50, InProgress: 1, Complete: 1, PercentComplete: 2}, ov.Counts)
	require.False(t, ov.AllCompleted)
	require.Len(t, ov.OpenWeeks, 51)
	require.Equal(t, journal.DisplayOpen, ov.Rows[2].Status)
}

func TestService_Overview_DuplicateEntrySurfaces(t *testing.T) {
	store := journaltest.New().AddPrompts(journaltest.Catalog(4)...)
	store.AddEntries(
		journal.Entry{ID: "a", UserID: 1, Week: 2, Content: "x"},
		journal.Entry{ID: "b", UserID: 1, Week: 2, Content: "y"},
	)
	svc := &journal.Service{Store: store}

	_, err := svc.Overview(context.Background(), 1, time.Now(), journal.SortByWeek)
	require.ErrorIs(t, err, journal.ErrDuplicateEntry)
}

func TestService_SaveEntry_Upserts(t *testing.T) {
	ctx := context.Background()
	store := journaltest.New().AddPrompts(journaltest.Catalog(52)...)
	svc := &journal.Service{Store: store}

	first, err := svc.SaveEntry(ctx, 1, 5, journal.EntryInput{Title: " Title ", Content: "hello", Themes: " family "})
	require.NoError(t, err)
	require.Equal(t, "Title", first.Title)
	require.Equal(t, "family", first.Themes)
	require.Equal(t, "week-05", first.PromptKey)
	require.Equal(t, string(journal.StatusInProgress), first.Status)

	second, err := svc.SaveEntry(ctx, 1, 5, journal.EntryInput{Content: "hello again", Status: "complete"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "complete", second.Status)
	require.Len(t, store.Entries(), 1)

	_, err = svc.SaveEntry(ctx, 1, 53, journal.EntryInput{Content: "x"})
	require.ErrorIs(t, err, journal.ErrInvalidWeek)
}

func TestService_Toggle(t *testing.T) {
	ctx := context.Background()
	store := journaltest.New().AddPrompts(journaltest.Catalog(52)...)
	svc := &journal.Service{Store: store}

	// nothing stored yet
	res, err := svc.Toggle(ctx, 1, 4)
	require.NoError(t, err)
	require.False(t, res.Changed)
	require.Empty(t, store.Entries())

	_, err = svc.SaveEntry(ctx, 1, 4, journal.EntryInput{Content: "  "})
	require.NoError(t, err)
	res, err = svc.Toggle(ctx, 1, 4)
	require.NoError(t, err)
	require.False(t, res.Changed)
	require.Equal(t, 0, store.StatusWrites)

	saved, err := svc.SaveEntry(ctx, 1, 4, journal.EntryInput{Title: "kept", Content: "words"})
	require.NoError(t, err)
	res, err = svc.Toggle(ctx, 1, 4)
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Equal(t, journal.StatusComplete, res.Status)

	res, err = svc.Toggle(ctx, 1, 4)
	require.NoError(t, err)
	require.Equal(t, journal.StatusInProgress, res.Status)
	require.Equal(t, 2, store.StatusWrites)

	e := store.Entries()[0]
	require.Equal(t, "kept", e.Title)
	require.Equal(t, "words", e.Content)
	// completion is not an edit
	require.Equal(t, saved.UpdatedAt, e.UpdatedAt)
}

func TestService_Week_MissingPrompt(t *testing.T) {
	svc := &journal.Service{Store: journaltest.New()}
	v, err := svc.Week(context.Background(), 1, 9)
	require.NoError(t, err)
	require.Nil(t, v.Prompt)
	require.Nil(t, v.Entry)
	require.Equal(t, "Week 9", v.Row.Title)
	require.Equal(t, journal.DisplayOpen, v.Row.Status)

	_, err = svc.Week(context.Background(), 1, 0)
	require.ErrorIs(t, err, journal.ErrInvalidWeek)
}
