package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promptbook/internal/admin"
	"promptbook/internal/auth"
	"promptbook/internal/catalog"
	"promptbook/internal/db"
	"promptbook/internal/draft"
	httpx "promptbook/internal/http"
	"promptbook/internal/journal"
)

type ServeCmd struct {
	SkipMigrate bool `help:"Do not migrate the schema on start."`
}

func (c *ServeCmd) Run(a *app) error {
	gdb, err := a.db()
	if err != nil {
		return err
	}
	if !c.SkipMigrate {
		if err := db.AutoMigrateAndIndexes(gdb); err != nil {
			return err
		}
	}

	jwtSvc := auth.NewJWT(a.cfg.JWTSecret)
	users := &auth.Store{DB: gdb}
	svc := &journal.Service{Store: &journal.GormStore{DB: gdb}}
	m := a.mailer()
	job, runs := a.reminderJob(gdb, m)

	drafts := draft.NewManager(svc, a.cfg.AutosaveInterval)
	defer drafts.Shutdown()

	r := httpx.NewRouter(httpx.Deps{
		Config:  a.cfg,
		JWT:     jwtSvc,
		Users:   users,
		Journal: svc,
		Drafts:  drafts,
		Admin:   &admin.Service{Journal: svc, Users: users, Tokens: jwtSvc, Mail: m, Drafts: drafts},
		Runs:    runs,
		Job:     job,
	})

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", a.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ch:
	case err := <-errc:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(a *app) error {
	gdb, err := a.db()
	if err != nil {
		return err
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		return err
	}
	slog.Info("migrated")
	return nil
}

type SeedPromptsCmd struct {
	File string `help:"Catalog YAML file. Defaults to PROMPTS_FILE." type:"path"`
}

func (c *SeedPromptsCmd) Run(a *app) error {
	path := c.File
	if path == "" {
		path = a.cfg.PromptsFile
	}
	prompts, err := catalog.Load(path)
	if err != nil {
		return err
	}
	if missing := catalog.Missing(prompts); len(missing) > 0 {
		slog.Warn("catalog_incomplete", "missing_weeks", missing)
	}

	gdb, err := a.db()
	if err != nil {
		return err
	}
	if err := catalog.Seed(context.Background(), gdb, prompts); err != nil {
		return err
	}
	slog.Info("prompts_seeded", "file", path, "count", len(prompts))
	return nil
}

type SendRemindersCmd struct{}

func (c *SendRemindersCmd) Run(a *app) error {
	gdb, err := a.db()
	if err != nil {
		return err
	}
	job, _ := a.reminderJob(gdb, a.mailer())

	sum, err := job.Run(context.Background(), time.Now())
	out, _ := json.MarshalIndent(sum, "", "  ")
	fmt.Println(string(out))
	return err
}
