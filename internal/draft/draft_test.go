package draft

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"promptbook/internal/journal"
	"promptbook/internal/journal/journaltest"
)

type countingSaver struct {
	mu    sync.Mutex
	calls []journal.EntryInput
	err   error
}

func (c *countingSaver) SaveEntry(_ context.Context, userID uint64, week int, in journal.EntryInput) (*journal.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, in)
	if c.err != nil {
		return nil, c.err
	}
	return &journal.Entry{UserID: userID, Week: week, Title: in.Title, Content: in.Content}, nil
}

func (c *countingSaver) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func TestSession_AutosaveOnlyWhenDirtyAndNonEmpty(t *testing.T) {
	saver := &countingSaver{}
	m := NewManager(saver, time.Hour)
	t.Cleanup(m.Shutdown)

	s := m.Open(1, 3, journal.EntryInput{})
	require.False(t, s.Dirty())
	require.False(t, s.autosave(context.Background()))

	// dirty but blank
	s.Update(journal.EntryInput{Tone: "warm"})
	require.True(t, s.Dirty())
	require.False(t, s.autosave(context.Background()))
	require.Equal(t, 0, saver.count())

	s.Update(journal.EntryInput{Content: "first line"})
	require.True(t, s.autosave(context.Background()))
	require.False(t, s.Dirty())
	require.Equal(t, 1, saver.count())

	// clean again, nothing to do
	require.False(t, s.autosave(context.Background()))
	require.Equal(t, 1, saver.count())
}

func TestSession_AutosaveSwallowsErrors(t *testing.T) {
	saver := &countingSaver{err: errors.New("db down")}
	m := NewManager(saver, time.Hour)
	t.Cleanup(m.Shutdown)

	s := m.Open(1, 3, journal.EntryInput{})
	s.Update(journal.EntryInput{Title: "t"})
	require.False(t, s.autosave(context.Background()))
	require.True(t, s.Dirty())

	_, err := s.Save(context.Background())
	require.Error(t, err)
	require.True(t, s.Dirty())
}

func TestSession_TimerSaves(t *testing.T) {
	store := journaltest.New().AddPrompts(journaltest.Catalog(52)...)
	m := NewManager(&journal.Service{Store: store}, 10*time.Millisecond)
	t.Cleanup(m.Shutdown)

	s := m.Open(9, 12, journal.EntryInput{})
	s.Update(journal.EntryInput{Title: "Grandma", Content: "She baked."})

	require.Eventually(t, func() bool { return !s.Dirty() }, 2*time.Second, 5*time.Millisecond)
	entries := store.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "She baked.", entries[0].Content)
	require.Equal(t, 12, entries[0].Week)
}

func TestManager_CloseStopsTimer(t *testing.T) {
	saver := &countingSaver{}
	m := NewManager(saver, 5*time.Millisecond)

	s := m.Open(1, 1, journal.EntryInput{})
	require.Same(t, s, m.Open(1, 1, journal.EntryInput{Content: "ignored"}))
	found, discarded := m.Close(1, 1)
	require.True(t, found)
	require.False(t, discarded)
	found, _ = m.Close(1, 1)
	require.False(t, found)
	require.Equal(t, 0, m.Len())

	require.False(t, s.Update(journal.EntryInput{Content: "after close"}))
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 0, saver.count())

	_, ok := m.Get(1, 1)
	require.False(t, ok)
}

func TestManager_Shutdown(t *testing.T) {
	m := NewManager(&countingSaver{}, time.Hour)
	m.Open(1, 1, journal.EntryInput{})
	m.Open(1, 2, journal.EntryInput{})
	m.Open(2, 1, journal.EntryInput{})
	require.Equal(t, 3, m.Len())

	m.Shutdown()
	require.Equal(t, 0, m.Len())
}

func TestSession_ManualSaveClearsDirty(t *testing.T) {
	saver := &countingSaver{}
	m := NewManager(saver, time.Hour)
	t.Cleanup(m.Shutdown)

	s := m.Open(1, 1, journal.EntryInput{Content: "stored"})
	s.Update(journal.EntryInput{Content: "edited"})
	e, err := s.Save(context.Background())
	require.NoError(t, err)
	require.Equal(t, "edited", e.Content)
	require.False(t, s.Dirty())
	require.Equal(t, "edited", s.Draft().Content)
}

func TestManager_CloseReportsDiscarded(t *testing.T) {
	m := NewManager(&countingSaver{}, time.Hour)
	t.Cleanup(m.Shutdown)

	s := m.Open(1, 1, journal.EntryInput{Content: "stored"})
	require.True(t, s.Update(journal.EntryInput{Content: "unsaved"}))

	found, discarded := m.Close(1, 1)
	require.True(t, found)
	require.True(t, discarded)
	// the closed session no longer accepts edits
	require.False(t, s.Update(journal.EntryInput{Content: "late"}))
	require.Equal(t, "unsaved", s.Draft().Content)
}

func TestManager_IdleSessionExpires(t *testing.T) {
	saver := &countingSaver{}
	m := NewManager(saver, 5*time.Millisecond)
	m.IdleTimeout = 20 * time.Millisecond
	t.Cleanup(m.Shutdown)

	s := m.Open(4, 7, journal.EntryInput{})
	s.Update(journal.EntryInput{Content: "left the tab open"})

	require.Eventually(t, func() bool { return m.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	// the last edit was auto-saved before the session went away
	require.Equal(t, 1, saver.count())
	_, ok := m.Get(4, 7)
	require.False(t, ok)
	require.False(t, s.Update(journal.EntryInput{Content: "too late"}))

	// reopening starts a fresh session
	fresh := m.Open(4, 7, journal.EntryInput{Content: "stored"})
	require.NotSame(t, s, fresh)
	require.Equal(t, 1, m.Len())
}

func TestManager_ActivityKeepsSessionOpen(t *testing.T) {
	m := NewManager(&countingSaver{}, 5*time.Millisecond)
	m.IdleTimeout = 60 * time.Millisecond
	t.Cleanup(m.Shutdown)

	m.Open(1, 2, journal.EntryInput{})
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		_, ok := m.Get(1, 2)
		require.True(t, ok)
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 1, m.Len())
}

func TestNewManager_DefaultIdleTimeout(t *testing.T) {
	m := NewManager(&countingSaver{}, 0)
	require.Equal(t, DefaultInterval, m.Interval)
	require.Equal(t, DefaultIdleIntervals*DefaultInterval, m.IdleTimeout)
}

func TestManager_CloseUser(t *testing.T) {
	m := NewManager(&countingSaver{}, time.Hour)
	t.Cleanup(m.Shutdown)
	a := m.Open(1, 1, journal.EntryInput{})
	m.Open(1, 2, journal.EntryInput{})
	m.Open(2, 1, journal.EntryInput{})

	require.Equal(t, 2, m.CloseUser(1))
	require.Equal(t, 1, m.Len())
	require.False(t, a.Update(journal.EntryInput{Content: "x"}))
	_, ok := m.Get(2, 1)
	require.True(t, ok)
}
