package http

import (
	"net/http"

	"promptbook/internal/admin"
	"promptbook/internal/auth"
	"promptbook/internal/config"
	"promptbook/internal/draft"
	"promptbook/internal/http/handler"
	mw "promptbook/internal/http/middleware"
	"promptbook/internal/journal"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the services the routes are built on.
type Deps struct {
	Config  config.Config
	JWT     *auth.JWT
	Users   *auth.Store
	Journal *journal.Service
	Drafts  *draft.Manager
	Admin   *admin.Service
	Runs    handler.RunHistory
	Job     handler.ReminderRunner
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(chimw.Recoverer)

	if len(d.Config.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(d.Config))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{
		Users:        d.Users,
		Profiles:     d.Journal.Store,
		JWT:          d.JWT,
		IsAdminEmail: d.Config.IsAdminEmail,
	}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)
	r.Post("/auth/magic-link", ah.MagicLink)
	r.Post("/auth/password-reset", ah.PasswordReset)

	cron := &handler.CronHandler{Secret: d.Config.CronSecret, Job: d.Job}
	r.Post("/cron/weekly-reminders", cron.WeeklyReminders)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))
		r.Use(mw.RequireEnabled(d.Journal.Store))

		me := &handler.MeHandler{Users: d.Users, Profiles: d.Journal.Store}
		r.Get("/me", me.Me)
		r.Patch("/me/profile", me.UpdateProfile)

		wk := &handler.WeeksHandler{Svc: d.Journal}
		dr := &handler.DraftHandler{Svc: d.Journal, Drafts: d.Drafts}
		r.Get("/dashboard", wk.Dashboard)
		r.Route("/weeks", func(r chi.Router) {
			r.Get("/", wk.List)
			r.Get("/open", wk.Open)

			r.Route("/{week}", func(r chi.Router) {
				r.Get("/", wk.Get)
				r.Put("/entry", wk.Save)
				r.Post("/toggle", wk.Toggle)

				r.Post("/draft/open", dr.Open)
				r.Put("/draft", dr.Update)
				r.Get("/draft", dr.Get)
				r.Post("/draft/save", dr.Save)
				r.Delete("/draft", dr.Close)
			})
		})

		adm := &handler.AdminHandler{Svc: d.Admin, Runs: d.Runs}
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(d.Users))

			r.Get("/users", adm.Users)
			r.Get("/users/{id}/entries", adm.Export)
			r.Post("/actions", adm.Action)
			r.Get("/reminder-runs", adm.ReminderRuns)
		})
	})

	return r
}
