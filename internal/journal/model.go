package journal

import (
	"time"

	"github.com/lib/pq"
)

// Prompt is the shared writing topic for one week.
type Prompt struct {
	PromptKey        string         `gorm:"primaryKey;type:text" json:"prompt_key"`
	Week             int            `gorm:"index;not null" json:"week"`
	Title            string         `gorm:"type:text;not null;default:''" json:"title"`
	Category         string         `gorm:"type:text;not null;default:''" json:"category"`
	Coaching         string         `gorm:"type:text;not null;default:''" json:"coaching"`
	Questions        pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"questions"`
	HelpfulFollowups pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"helpful_followups"`
	// no column default: gorm would write it in place of an explicit false
	Active           bool           `gorm:"index;not null" json:"active"`
}

// Entry is one user's writing for one week. At most one per (user_id, week).
type Entry struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    uint64 `gorm:"index;not null" json:"user_id"`
	PromptKey string `gorm:"type:text;not null;default:''" json:"prompt_key"`
	Week      int    `gorm:"not null" json:"week"`
	Title     string `gorm:"type:text;not null;default:''" json:"title"`
	Content   string `gorm:"type:text;not null;default:''" json:"content"`

	// Status is stored raw; legacy rows may still carry "draft".
	Status string `gorm:"type:text;not null;default:'in_progress'" json:"status"`

	LifeStage string `gorm:"type:text;not null;default:''" json:"life_stage"`
	Tone      string `gorm:"type:text;not null;default:''" json:"tone"`
	KeyPeople string `gorm:"type:text;not null;default:''" json:"key_people"`
	Locations string `gorm:"type:text;not null;default:''" json:"locations"`
	Themes    string `gorm:"type:text;not null;default:''" json:"themes"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"index;not null;default:now()" json:"updated_at"`
}

// Profile holds per-user scheduling and preference state.
type Profile struct {
	UserID      uint64     `gorm:"primaryKey" json:"user_id"`
	StartDate   *time.Time `gorm:"type:date" json:"-"`
	UITextSize  string     `gorm:"type:text;not null;default:'normal'" json:"ui_text_size"`
	UIContrast  string     `gorm:"type:text;not null;default:'normal'" json:"ui_contrast"`
	EmailPaused bool       `gorm:"not null;default:false" json:"email_paused"`
	Disabled    bool       `gorm:"index;not null;default:false" json:"disabled"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

// EntryInput is the writable part of an Entry. Status "" keeps the stored value.
type EntryInput struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Status    string `json:"status,omitempty"`
	LifeStage string `json:"life_stage"`
	Tone      string `json:"tone"`
	KeyPeople string `json:"key_people"`
	Locations string `json:"locations"`
	Themes    string `json:"themes"`
}

// ProfileUpdate applies only the non-nil fields. An empty StartDate clears it.
type ProfileUpdate struct {
	StartDate   *string
	UITextSize  *string
	UIContrast  *string
	EmailPaused *bool
	Disabled    *bool
}

// Input returns the writable fields of e, leaving Status unset.
func (e *Entry) Input() EntryInput {
	if e == nil {
		return EntryInput{}
	}
	return EntryInput{
		Title:     e.Title,
		Content:   e.Content,
		LifeStage: e.LifeStage,
		Tone:      e.Tone,
		KeyPeople: e.KeyPeople,
		Locations: e.Locations,
		Themes:    e.Themes,
	}
}
