package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"promptbook/internal/http/handler"
	"promptbook/internal/journal"
	"promptbook/internal/journal/journaltest"
)

func weeksFixture(t *testing.T) (*journaltest.Store, http.Handler) {
	t.Helper()
	handler.SetNow(t, now)

	st := journaltest.New().AddPrompts(journaltest.Catalog(52)...)
	st.PutProfile(journal.Profile{UserID: 1, StartDate: &start})
	st.AddEntries(
		entry(1, 1, "first week", "complete"),
		entry(1, 2, "second week", "in_progress"),
		entry(1, 4, "   ", "complete"),
		entry(2, 1, "someone else", "complete"),
	)

	h := &handler.WeeksHandler{Svc: &journal.Service{Store: st}}
	return st, asUser(1, func(r chi.Router) {
		r.Get("/weeks", h.List)
		r.Get("/weeks/open", h.Open)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/weeks/{week}", h.Get)
		r.Put("/weeks/{week}/entry", h.Save)
		r.Post("/weeks/{week}/toggle", h.Toggle)
	})
}

type listResp struct {
	CurrentWeek  int               `json:"current_week"`
	StartDate    string            `json:"start_date"`
	Counts       journal.Counts    `json:"counts"`
	AllCompleted bool              `json:"all_completed"`
	Rows         []journal.WeekRow `json:"rows"`
	Pending      []journal.WeekRow `json:"pending"`
	Complete     []journal.WeekRow `json:"complete"`
}

func TestWeeks_List(t *testing.T) {
	_, h := weeksFixture(t)

	rec := do(t, h, http.MethodGet, "/weeks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got listResp
	decodeBody(t, rec, &got)
	require.Equal(t, 3, got.CurrentWeek)
	require.Equal(t, "2026-01-01", got.StartDate)
	require.Len(t, got.Rows, 52)
	require.Equal(t, journal.Counts{Open: 50, InProgress: 1, Complete: 1, PercentComplete: 2}, got.Counts)
	require.False(t, got.AllCompleted)

	require.Equal(t, journal.DisplayComplete, got.Rows[0].Status)
	require.Equal(t, journal.DisplayInProgress, got.Rows[1].Status)
	// whitespace-only content is still open
	require.Equal(t, journal.DisplayOpen, got.Rows[3].Status)
}

func TestWeeks_ListSortAndGroup(t *testing.T) {
	_, h := weeksFixture(t)

	rec := do(t, h, http.MethodGet, "/weeks?sort=updated", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sorted listResp
	decodeBody(t, rec, &sorted)
	require.Equal(t, 4, sorted.Rows[0].Week)
	require.Equal(t, 2, sorted.Rows[1].Week)
	require.Equal(t, 1, sorted.Rows[2].Week)

	rec = do(t, h, http.MethodGet, "/weeks?group=status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var grouped listResp
	decodeBody(t, rec, &grouped)
	require.Nil(t, grouped.Rows)
	require.Len(t, grouped.Pending, 51)
	require.Len(t, grouped.Complete, 1)

	rec = do(t, h, http.MethodGet, "/weeks?sort=bogus", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/weeks?group=tone", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeeks_ListDuplicateEntryConflicts(t *testing.T) {
	st, h := weeksFixture(t)
	dup := entry(1, 2, "again", "in_progress")
	dup.ID = "dup"
	st.AddEntries(dup)

	rec := do(t, h, http.MethodGet, "/weeks", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestWeeks_Open(t *testing.T) {
	_, h := weeksFixture(t)

	rec := do(t, h, http.MethodGet, "/weeks/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []journal.OpenWeek
	decodeBody(t, rec, &got)
	require.Len(t, got, 51)
	require.Equal(t, journal.OpenWeek{Week: 2, Title: "Prompt 2"}, got[0])
}

func TestWeeks_Dashboard(t *testing.T) {
	_, h := weeksFixture(t)

	rec := do(t, h, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		CurrentWeek int              `json:"current_week"`
		OpenWeeks   int              `json:"open_weeks"`
		Current     journal.WeekView `json:"current"`
	}
	decodeBody(t, rec, &got)
	require.Equal(t, 3, got.CurrentWeek)
	require.Equal(t, 51, got.OpenWeeks)
	require.Equal(t, 3, got.Current.Row.Week)
	require.NotNil(t, got.Current.Prompt)
	require.Nil(t, got.Current.Entry)
}

func TestWeeks_GetRejectsBadWeek(t *testing.T) {
	_, h := weeksFixture(t)

	for _, path := range []string{"/weeks/0", "/weeks/53", "/weeks/abc"} {
		rec := do(t, h, http.MethodGet, path, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestWeeks_Save(t *testing.T) {
	st, h := weeksFixture(t)

	rec := do(t, h, http.MethodPut, "/weeks/3/entry", journal.EntryInput{Title: " Summer ", Content: "We drove north."})
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Entry  journal.Entry         `json:"entry"`
		Status journal.DisplayStatus `json:"status"`
	}
	decodeBody(t, rec, &got)
	require.Equal(t, "Summer", got.Entry.Title)
	require.Equal(t, "week-03", got.Entry.PromptKey)
	require.Equal(t, journal.DisplayInProgress, got.Status)

	e, err := st.EntryForWeek(t.Context(), 1, 3)
	require.NoError(t, err)
	require.Equal(t, "We drove north.", e.Content)
}

func TestWeeks_SaveErrors(t *testing.T) {
	st, h := weeksFixture(t)

	rec := do(t, h, http.MethodPut, "/weeks/60/entry", journal.EntryInput{Content: "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	st.SaveErr = errors.New("disk full")
	rec = do(t, h, http.MethodPut, "/weeks/3/entry", journal.EntryInput{Content: "x"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "disk full")
}

func TestWeeks_Toggle(t *testing.T) {
	st, h := weeksFixture(t)

	var res journal.ToggleResult
	rec := do(t, h, http.MethodPost, "/weeks/2/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &res)
	require.Equal(t, journal.ToggleResult{Status: journal.StatusComplete, Changed: true}, res)

	rec = do(t, h, http.MethodPost, "/weeks/2/toggle", nil)
	decodeBody(t, rec, &res)
	require.Equal(t, journal.ToggleResult{Status: journal.StatusInProgress, Changed: true}, res)
	require.Equal(t, 2, st.StatusWrites)

	// no entry and blank entry are both left alone
	for _, path := range []string{"/weeks/9/toggle", "/weeks/4/toggle"} {
		rec = do(t, h, http.MethodPost, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decodeBody(t, rec, &res)
		require.False(t, res.Changed, path)
	}
	require.Equal(t, 2, st.StatusWrites)
}
