package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence boundary of the journal.
type Store interface {
	ActivePrompts(ctx context.Context) ([]Prompt, error)
	// PromptForWeek returns nil, nil when no active prompt exists.
	PromptForWeek(ctx context.Context, week int) (*Prompt, error)

	EntriesForUser(ctx context.Context, userID uint64) ([]Entry, error)
	// EntryForWeek returns nil, nil when the user has no entry for week.
	EntryForWeek(ctx context.Context, userID uint64, week int) (*Entry, error)
	SaveEntry(ctx context.Context, userID uint64, week int, promptKey string, in EntryInput) (*Entry, error)
	SetEntryStatus(ctx context.Context, entryID string, status Status) error
	// DeleteEntries removes one week, or every week when week is nil.
	DeleteEntries(ctx context.Context, userID uint64, week *int) (int64, error)

	// Profile returns a default profile when none is stored.
	Profile(ctx context.Context, userID uint64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uint64, up ProfileUpdate) (*Profile, error)
}

// GormStore implements Store on Postgres.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) ActivePrompts(ctx context.Context) ([]Prompt, error) {
	var out []Prompt
	err := s.DB.WithContext(ctx).Where("active = true").Order("week asc").Find(&out).Error
	return out, err
}

func (s *GormStore) PromptForWeek(ctx context.Context, week int) (*Prompt, error) {
	var p Prompt
	err := s.DB.WithContext(ctx).Where("week = ? AND active = true", week).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) EntriesForUser(ctx context.Context, userID uint64) ([]Entry, error) {
	var out []Entry
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("week asc").Find(&out).Error
	return out, err
}

func (s *GormStore) EntryForWeek(ctx context.Context, userID uint64, week int) (*Entry, error) {
	var e Entry
	err := s.DB.WithContext(ctx).Where("user_id = ? AND week = ?", userID, week).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SaveEntry inserts the (user, week) entry or updates it in place.
// There is no version check; the last write wins.
func (s *GormStore) SaveEntry(ctx context.Context, userID uint64, week int, promptKey string, in EntryInput) (*Entry, error) {
	var saved Entry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur Entry
		err := tx.Where("user_id = ? AND week = ?", userID, week).First(&cur).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			saved = NewEntry(userID, week, promptKey, in)
			return tx.Create(&saved).Error
		case err != nil:
			return err
		}

		ApplyInput(&cur, in)
		if promptKey != "" {
			cur.PromptKey = promptKey
		}
		cur.UpdatedAt = time.Now()
		saved = cur
		return tx.Save(&saved).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save entry week %d: %w", week, err)
	}
	return &saved, nil
}

// SetEntryStatus writes the status column alone; updated_at is not touched.
func (s *GormStore) SetEntryStatus(ctx context.Context, entryID string, status Status) error {
	res := setStatus(s.DB.WithContext(ctx), entryID, status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteEntries(ctx context.Context, userID uint64, week *int) (int64, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if week != nil {
		q = q.Where("week = ?", *week)
	}
	res := q.Delete(&Entry{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) Profile(ctx context.Context, userID uint64) (*Profile, error) {
	var p Profile
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultProfile(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, userID uint64, up ProfileUpdate) (*Profile, error) {
	var out Profile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Profile
		err := tx.Where("user_id = ?", userID).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = *DefaultProfile(userID)
		} else if err != nil {
			return err
		}

		if err := ApplyProfileUpdate(&p, up); err != nil {
			return err
		}
		p.UpdatedAt = time.Now()
		out = p
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateColumn skips gorm's updated_at tracking.
func setStatus(tx *gorm.DB, entryID string, status Status) *gorm.DB {
	return tx.Model(&Entry{}).Where("id = ?", entryID).UpdateColumn("status", string(status))
}

// DefaultProfile is the profile of a user who never saved one.
func DefaultProfile(userID uint64) *Profile {
	return &Profile{UserID: userID, UITextSize: "normal", UIContrast: "normal"}
}

// ApplyProfileUpdate copies the set fields of up onto p.
func ApplyProfileUpdate(p *Profile, up ProfileUpdate) error {
	if up.StartDate != nil {
		d, err := ParseStartDate(*up.StartDate)
		if err != nil {
			return err
		}
		p.StartDate = d
	}
	if up.UITextSize != nil {
		p.UITextSize = strings.TrimSpace(*up.UITextSize)
	}
	if up.UIContrast != nil {
		p.UIContrast = strings.TrimSpace(*up.UIContrast)
	}
	if up.EmailPaused != nil {
		p.EmailPaused = *up.EmailPaused
	}
	if up.Disabled != nil {
		p.Disabled = *up.Disabled
	}
	return nil
}

// NewEntry builds an unsaved entry the way a first save does.
func NewEntry(userID uint64, week int, promptKey string, in EntryInput) Entry {
	now := time.Now()
	e := Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		PromptKey: promptKey,
		Week:      week,
		Status:    string(StatusInProgress),
		CreatedAt: now,
		UpdatedAt: now,
	}
	ApplyInput(&e, in)
	return e
}

// ApplyInput overwrites the writable fields of e with in.
func ApplyInput(e *Entry, in EntryInput) {
	e.Title = strings.TrimSpace(in.Title)
	e.Content = in.Content
	if in.Status != "" {
		e.Status = string(NormalizeStatus(in.Status))
	}
	e.LifeStage = strings.TrimSpace(in.LifeStage)
	e.Tone = strings.TrimSpace(in.Tone)
	e.KeyPeople = strings.TrimSpace(in.KeyPeople)
	e.Locations = strings.TrimSpace(in.Locations)
	e.Themes = strings.TrimSpace(in.Themes)
}

