// Package draft keeps in-progress writing per (user, week) and saves it
// in the background while it differs from what was last stored.
package draft

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"promptbook/internal/journal"
)

// DefaultInterval is the auto-save period.
const DefaultInterval = 30 * time.Second

// DefaultIdleIntervals is how many auto-save periods a session may go
// untouched before it is closed.
const DefaultIdleIntervals = 10

// Saver persists a draft. *journal.Service satisfies it.
type Saver interface {
	SaveEntry(ctx context.Context, userID uint64, week int, in journal.EntryInput) (*journal.Entry, error)
}

type key struct {
	userID uint64
	week   int
}

// Session is one open write view.
type Session struct {
	key   key
	saver Saver

	mu      sync.Mutex
	current journal.EntryInput
	saved   journal.EntryInput
	touched time.Time
	closed  bool

	expire func(*Session)
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// Manager owns the open sessions and their timers.
type Manager struct {
	Saver    Saver
	Interval time.Duration
	// IdleTimeout closes sessions nobody has read or written for that long.
	// Zero disables expiry.
	IdleTimeout time.Duration

	mu       sync.Mutex
	sessions map[key]*Session
}

func NewManager(saver Saver, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Manager{
		Saver:       saver,
		Interval:    interval,
		IdleTimeout: DefaultIdleIntervals * interval,
		sessions:    map[key]*Session{},
	}
}

// Open starts a session seeded with the stored entry. Opening a week that
// already has a session returns the existing one unchanged.
func (m *Manager) Open(userID uint64, week int, stored journal.EntryInput) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{userID, week}
	if s, ok := m.sessions[k]; ok && s.touch() {
		return s
	}
	s := &Session{
		key:     k,
		saver:   m.Saver,
		current: stored,
		saved:   stored,
		touched: time.Now(),
		expire:  m.forget,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	m.sessions[k] = s
	go s.run(m.Interval, m.IdleTimeout)
	return s
}

// Get returns the open session and counts as activity on it.
func (m *Manager) Get(userID uint64, week int) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key{userID, week}]
	if !ok || !s.touch() {
		return nil, false
	}
	return s, true
}

// Close stops the session's timer and forgets it. Unsaved changes are
// dropped; discarded reports whether there were any.
func (m *Manager) Close(userID uint64, week int) (found, discarded bool) {
	m.mu.Lock()
	s, ok := m.sessions[key{userID, week}]
	delete(m.sessions, key{userID, week})
	m.mu.Unlock()

	if !ok {
		return false, false
	}
	s.halt()
	return true, s.Dirty()
}

// CloseUser closes every session of userID and returns how many there were.
func (m *Manager) CloseUser(userID uint64) int {
	m.mu.Lock()
	var mine []*Session
	for k, s := range m.sessions {
		if k.userID == userID {
			mine = append(mine, s)
			delete(m.sessions, k)
		}
	}
	m.mu.Unlock()

	for _, s := range mine {
		s.halt()
	}
	return len(mine)
}

// forget drops s unless the key has been reopened since.
func (m *Manager) forget(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[s.key] == s {
		delete(m.sessions, s.key)
	}
}

// Shutdown stops every timer.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = map[key]*Session{}
	m.mu.Unlock()

	for _, s := range all {
		s.halt()
	}
}

// Len is the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Update replaces the in-memory draft. It reports false once the session
// is closed; the change is then not kept.
func (s *Session) Update(in journal.EntryInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.current = in
	s.touched = time.Now()
	return true
}

// Draft returns the in-memory draft.
func (s *Session) Draft() journal.EntryInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Dirty reports unsaved changes; leaving the view should be confirmed when true.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != s.saved
}

// Save writes the draft now and returns any storage error.
func (s *Session) Save(ctx context.Context) (*journal.Entry, error) {
	s.mu.Lock()
	snap := s.current
	s.touched = time.Now()
	s.mu.Unlock()

	e, err := s.saver.SaveEntry(ctx, s.key.userID, s.key.week, snap)
	if err != nil {
		return nil, err
	}
	s.markSaved(snap)
	return e, nil
}

// autosave saves only a dirty draft with a title or content. Errors are
// logged and dropped so writing is never interrupted.
func (s *Session) autosave(ctx context.Context) bool {
	s.mu.Lock()
	snap := s.current
	dirty := s.current != s.saved
	s.mu.Unlock()

	if !dirty || (strings.TrimSpace(snap.Title) == "" && strings.TrimSpace(snap.Content) == "") {
		return false
	}
	if _, err := s.saver.SaveEntry(ctx, s.key.userID, s.key.week, snap); err != nil {
		slog.Warn("autosave_failed", "user_id", s.key.userID, "week", s.key.week, "error", err)
		return false
	}
	s.markSaved(snap)
	slog.Debug("autosave_ok", "user_id", s.key.userID, "week", s.key.week)
	return true
}

// a newer draft typed during the save stays dirty
func (s *Session) markSaved(snap journal.EntryInput) {
	s.mu.Lock()
	s.saved = snap
	s.mu.Unlock()
}

// touch records activity. A session that is already closing reports false.
func (s *Session) touch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.touched = time.Now()
	return true
}

// idle marks the session closed when it has gone untouched for timeout.
func (s *Session) idle(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timeout <= 0 || time.Since(s.touched) < timeout {
		return false
	}
	s.closed = true
	return true
}

func (s *Session) run(interval, idleTimeout time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			s.autosave(ctx)
			cancel()

			if s.idle(idleTimeout) {
				s.expire(s)
				slog.Info("draft_expired", "user_id", s.key.userID, "week", s.key.week, "dirty", s.Dirty())
				return
			}
		}
	}
}

func (s *Session) halt() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.once.Do(func() { close(s.stop) })
	<-s.done
}
