package db

import (
	"fmt"

	"promptbook/internal/auth"
	"promptbook/internal/jobs"
	"promptbook/internal/journal"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&journal.Profile{},
		&journal.Prompt{},
		&journal.Entry{},
		&jobs.Run{},
	); err != nil {
		return err
	}

	stmts := []string{
		// one entry per user per week; saves look up by this pair
		`create unique index if not exists uq_entries_user_week on entries(user_id, week);`,
		// at most one active prompt per week
		`create unique index if not exists uq_prompts_active_week on prompts(week) where active;`,
		// earlier schemas defaulted active to true
		`alter table prompts alter column active drop default;`,
		`create index if not exists idx_entries_user_updated on entries(user_id, updated_at desc);`,
		`create index if not exists idx_profiles_reminders on profiles(disabled, email_paused);`,
		`create index if not exists idx_reminder_runs_started on reminder_runs(started_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
