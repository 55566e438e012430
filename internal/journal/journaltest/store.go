// Package journaltest provides an in-memory journal.Store for tests.
package journaltest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"promptbook/internal/journal"
)

type Store struct {
	mu       sync.Mutex
	prompts  []journal.Prompt
	entries  []journal.Entry
	profiles map[uint64]journal.Profile

	// StatusWrites counts SetEntryStatus calls.
	StatusWrites int
	// SaveErr, when set, is returned by SaveEntry.
	SaveErr error
}

func New() *Store {
	return &Store{profiles: map[uint64]journal.Profile{}}
}

// Catalog returns n active prompts for weeks 1..n.
func Catalog(n int) []journal.Prompt {
	out := make([]journal.Prompt, 0, n)
	for w := 1; w <= n; w++ {
		out = append(out, journal.Prompt{
			PromptKey: fmt.Sprintf("week-%02d", w),
			Week:      w,
			Title:     fmt.Sprintf("Prompt %d", w),
			Category:  "Life",
			Coaching:  "Write *freely*.",
			Questions: []string{"What happened?"},
			Active:    true,
		})
	}
	return out
}

func (s *Store) AddPrompts(ps ...journal.Prompt) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, ps...)
	return s
}

// AddEntries stores entries as given, duplicates included.
func (s *Store) AddEntries(es ...journal.Entry) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, es...)
	return s
}

func (s *Store) PutProfile(p journal.Profile) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
	return s
}

// Entries returns a copy of every stored entry.
func (s *Store) Entries() []journal.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

func (s *Store) ActivePrompts(_ context.Context) ([]journal.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []journal.Prompt
	for _, p := range s.prompts {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) PromptForWeek(_ context.Context, week int) (*journal.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.prompts {
		if p.Active && p.Week == week {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Store) EntriesForUser(_ context.Context, userID uint64) ([]journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []journal.Entry
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) EntryForWeek(_ context.Context, userID uint64, week int) (*journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(userID, week); i >= 0 {
		e := s.entries[i]
		return &e, nil
	}
	return nil, nil
}

func (s *Store) SaveEntry(_ context.Context, userID uint64, week int, promptKey string, in journal.EntryInput) (*journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return nil, s.SaveErr
	}
	if i := s.find(userID, week); i >= 0 {
		journal.ApplyInput(&s.entries[i], in)
		if promptKey != "" {
			s.entries[i].PromptKey = promptKey
		}
		s.entries[i].UpdatedAt = time.Now()
		e := s.entries[i]
		return &e, nil
	}
	e := journal.NewEntry(userID, week, promptKey, in)
	s.entries = append(s.entries, e)
	return &e, nil
}

func (s *Store) SetEntryStatus(_ context.Context, entryID string, status journal.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StatusWrites++
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			s.entries[i].Status = string(status)
			return nil
		}
	}
	return journal.ErrNotFound
}

func (s *Store) DeleteEntries(_ context.Context, userID uint64, week *int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	s.entries = slices.DeleteFunc(s.entries, func(e journal.Entry) bool {
		hit := e.UserID == userID && (week == nil || e.Week == *week)
		if hit {
			n++
		}
		return hit
	})
	return n, nil
}

func (s *Store) Profile(_ context.Context, userID uint64) (*journal.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		return &p, nil
	}
	return journal.DefaultProfile(userID), nil
}

func (s *Store) UpdateProfile(_ context.Context, userID uint64, up journal.ProfileUpdate) (*journal.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = *journal.DefaultProfile(userID)
	}
	if err := journal.ApplyProfileUpdate(&p, up); err != nil {
		return nil, err
	}
	s.profiles[userID] = p
	return &p, nil
}

func (s *Store) find(userID uint64, week int) int {
	for i, e := range s.entries {
		if e.UserID == userID && e.Week == week {
			return i
		}
	}
	return -1
}

var _ journal.Store = (*Store)(nil)
