package jobs

import "time"

// Run records one execution of the weekly reminder job.
type Run struct {
	ID     uint64 `gorm:"primaryKey" json:"id"`
	Status string `gorm:"index;not null;default:'RUNNING'" json:"status"` // RUNNING/DONE/FAILED

	Eligible           int `gorm:"not null;default:0" json:"eligible"`
	Sent               int `gorm:"not null;default:0" json:"sent"`
	Failed             int `gorm:"not null;default:0" json:"failed"`
	SkippedNoEmail     int `gorm:"not null;default:0" json:"skipped_no_email"`
	SkippedNoStartDate int `gorm:"not null;default:0" json:"skipped_no_start_date"`
	SkippedPaused      int `gorm:"not null;default:0" json:"skipped_paused"`
	SkippedNoPrompt    int `gorm:"not null;default:0" json:"skipped_no_prompt"`

	LastError *string `gorm:"type:text" json:"last_error,omitempty"`

	StartedAt  time.Time  `gorm:"index;not null;default:now()" json:"started_at"`
	FinishedAt *time.Time `gorm:"type:timestamptz" json:"finished_at"`
}

func (Run) TableName() string { return "reminder_runs" }

// Recipient is an enabled account the reminder job may mail.
type Recipient struct {
	UserID      uint64
	Email       string
	StartDate   *time.Time
	EmailPaused bool
}

// Summary counts what a run did. Skipped users are not retried.
type Summary struct {
	RunID              uint64 `json:"run_id"`
	Eligible           int    `json:"eligible"`
	Sent               int    `json:"sent"`
	Failed             int    `json:"failed"`
	SkippedNoEmail     int    `json:"skipped_no_email"`
	SkippedNoStartDate int    `json:"skipped_no_start_date"`
	SkippedPaused      int    `json:"skipped_paused"`
	SkippedNoPrompt    int    `json:"skipped_no_prompt"`
}
