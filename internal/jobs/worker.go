package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"promptbook/internal/journal"
)

// RecipientSource lists candidate recipients.
type RecipientSource interface {
	Recipients(ctx context.Context) ([]Recipient, error)
}

// PromptSource looks up the active prompt of a week; journal.Store satisfies it.
type PromptSource interface {
	PromptForWeek(ctx context.Context, week int) (*journal.Prompt, error)
}

// Notifier sends the reminder; *mail.Mailer satisfies it.
type Notifier interface {
	SendWeeklyReminder(ctx context.Context, to string, week int, p journal.Prompt) error
}

// RunLog records runs. Optional.
type RunLog interface {
	Start(ctx context.Context, at time.Time) (uint64, error)
	Finish(ctx context.Context, id uint64, s Summary, at time.Time, runErr error) error
}

// ReminderJob sends each eligible user the prompt of their current week.
// It runs only when triggered and never retries.
type ReminderJob struct {
	Recipients RecipientSource
	Prompts    PromptSource
	Notifier   Notifier
	Log        RunLog
}

func (j *ReminderJob) Run(ctx context.Context, now time.Time) (Summary, error) {
	var s Summary
	if j.Log != nil {
		id, err := j.Log.Start(ctx, now)
		if err != nil {
			return s, fmt.Errorf("start run: %w", err)
		}
		s.RunID = id
	}

	runErr := j.run(ctx, now, &s)

	if j.Log != nil {
		if err := j.Log.Finish(ctx, s.RunID, s, time.Now(), runErr); err != nil {
			slog.Error("reminder_run_log_failed", "run_id", s.RunID, "error", err)
		}
	}
	slog.Info("reminder_run_done",
		"run_id", s.RunID, "sent", s.Sent, "failed", s.Failed,
		"skipped_no_email", s.SkippedNoEmail, "skipped_no_start_date", s.SkippedNoStartDate,
		"skipped_paused", s.SkippedPaused, "skipped_no_prompt", s.SkippedNoPrompt)
	return s, runErr
}

func (j *ReminderJob) run(ctx context.Context, now time.Time, s *Summary) error {
	recipients, err := j.Recipients.Recipients(ctx)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}

	prompts := map[int]*journal.Prompt{}
	for _, r := range recipients {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch {
		case strings.TrimSpace(r.Email) == "":
			s.SkippedNoEmail++
			continue
		case r.StartDate == nil || r.StartDate.IsZero():
			s.SkippedNoStartDate++
			continue
		case r.EmailPaused:
			s.SkippedPaused++
			continue
		}

		week := journal.CurrentWeek(r.StartDate, now)
		p, ok := prompts[week]
		if !ok {
			p, err = j.Prompts.PromptForWeek(ctx, week)
			if err != nil {
				return fmt.Errorf("load prompt week %d: %w", week, err)
			}
			prompts[week] = p
		}
		if p == nil {
			s.SkippedNoPrompt++
			continue
		}

		s.Eligible++
		if err := j.Notifier.SendWeeklyReminder(ctx, r.Email, week, *p); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			s.Failed++
			slog.Warn("reminder_send_failed", "user_id", r.UserID, "week", week, "error", err)
			continue
		}
		s.Sent++
		slog.Debug("reminder_sent", "user_id", r.UserID, "week", week)
	}
	return nil
}
