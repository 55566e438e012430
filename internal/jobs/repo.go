package jobs

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	DB *gorm.DB
}

// Recipients returns every account whose profile is not disabled. Users
// without a profile row are included with no start date.
func (r *Repo) Recipients(ctx context.Context) ([]Recipient, error) {
	var out []Recipient
	err := r.DB.WithContext(ctx).Raw(`
select u.id as user_id,
       u.email as email,
       p.start_date as start_date,
       coalesce(p.email_paused, false) as email_paused
from users u
left join profiles p on p.user_id = u.id
where coalesce(p.disabled, false) = false
order by u.id asc
`).Scan(&out).Error
	return out, err
}

func (r *Repo) Start(ctx context.Context, at time.Time) (uint64, error) {
	run := Run{Status: "RUNNING", StartedAt: at}
	if err := r.DB.WithContext(ctx).Create(&run).Error; err != nil {
		return 0, err
	}
	return run.ID, nil
}

func (r *Repo) Finish(ctx context.Context, id uint64, s Summary, at time.Time, runErr error) error {
	status := "DONE"
	var lastErr *string
	if runErr != nil {
		status = "FAILED"
		msg := runErr.Error()
		lastErr = &msg
	}
	return r.DB.WithContext(ctx).Model(&Run{}).Where("id = ?", id).Updates(map[string]any{
		"status":                status,
		"eligible":              s.Eligible,
		"sent":                  s.Sent,
		"failed":                s.Failed,
		"skipped_no_email":      s.SkippedNoEmail,
		"skipped_no_start_date": s.SkippedNoStartDate,
		"skipped_paused":        s.SkippedPaused,
		"skipped_no_prompt":     s.SkippedNoPrompt,
		"last_error":            lastErr,
		"finished_at":           at,
	}).Error
}

// Recent lists the latest runs, newest first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]Run, error) {
	var out []Run
	err := r.DB.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}
