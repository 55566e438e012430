package main

import (
	"log/slog"
	"os"

	"gorm.io/gorm"

	"promptbook/internal/config"
	"promptbook/internal/db"
	"promptbook/internal/jobs"
	"promptbook/internal/journal"
	"promptbook/internal/mail"
)

// app is shared by every command. The database is opened on first use.
type app struct {
	cfg config.Config
	gdb *gorm.DB
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	return &app{cfg: cfg}, nil
}

func (a *app) db() (*gorm.DB, error) {
	if a.gdb != nil {
		return a.gdb, nil
	}
	gdb, err := db.Connect(a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.gdb = gdb
	return gdb, nil
}

// mailer sends through Resend when a key is configured and only logs otherwise.
func (a *app) mailer() *mail.Mailer {
	var sender mail.Sender = &mail.NoopSender{}
	if a.cfg.ResendAPIKey != "" {
		sender = mail.NewResendSender(a.cfg.ResendAPIKey, a.cfg.EmailFrom)
	} else {
		slog.Warn("email_disabled", "reason", "RESEND_API_KEY not set")
	}
	return &mail.Mailer{
		Sender:  sender,
		From:    a.cfg.EmailFrom,
		ReplyTo: a.cfg.EmailReplyTo,
		BaseURL: a.cfg.AppBaseURL,
	}
}

func (a *app) reminderJob(gdb *gorm.DB, m *mail.Mailer) (*jobs.ReminderJob, *jobs.Repo) {
	repo := &jobs.Repo{DB: gdb}
	return &jobs.ReminderJob{
		Recipients: repo,
		Prompts:    &journal.GormStore{DB: gdb},
		Notifier:   m,
		Log:        repo,
	}, repo
}
