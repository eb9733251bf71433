package main

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/trivia-tournament/internal/config"
	"github.com/AdamBeresnev/trivia-tournament/internal/httputil"
	"github.com/AdamBeresnev/trivia-tournament/internal/metrics"
	"github.com/AdamBeresnev/trivia-tournament/internal/middleware"
	"github.com/AdamBeresnev/trivia-tournament/internal/notify"
	"github.com/AdamBeresnev/trivia-tournament/internal/service"
	"github.com/AdamBeresnev/trivia-tournament/internal/store"
	"github.com/AdamBeresnev/trivia-tournament/views"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/markbates/goth/gothic"
)

type application struct {
	cfg            *config.Config
	sessionManager *scs.SessionManager
	hostStore      *store.HostStore

	tournaments *service.TournamentService
	matches     *service.MatchService
	hosts       *service.HostService

	hub     *notify.Hub
	metrics *metrics.Metrics
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(app.sessionManager.LoadAndSave)

	r.Handle("/metrics", app.metrics.Handler())

	// Anyone with the link can follow a tournament
	r.Get("/tournaments/{id}", app.getTournament)
	r.Get("/tournaments/{id}/standings", app.getStandings)
	r.Get("/tournaments/{id}/standings.xlsx", app.downloadStandings)
	r.Get("/tournaments/{id}/bracket", app.bracketPage)
	r.Get("/tournaments/{id}/layout", app.getLayout)
	r.Get("/tournaments/{id}/live", app.liveUpdates)
	r.Get("/matches/{id}", app.getMatch)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireHost(app.sessionManager, app.hostStore))

		r.Get("/", app.index)
		r.Post("/tournaments", app.createTournament)
		r.Post("/tournaments/{id}/open", app.transition("Failed to open registration", app.tournaments.OpenRegistration))
		r.Post("/tournaments/{id}/start", app.transition("Failed to start tournament", app.tournaments.StartTournament))
		r.Post("/tournaments/{id}/end", app.transition("Failed to end tournament", app.tournaments.EndTournament))
		r.Post("/tournaments/{id}/cancel", app.transition("Failed to cancel tournament", app.tournaments.CancelTournament))
		r.Post("/tournaments/{id}/participants", app.registerParticipant)
		r.Delete("/tournaments/{id}/participants/{participantID}", app.withdrawParticipant)

		r.Post("/matches/{id}/result", app.submitResult)
		r.Post("/matches/{id}/reopen", app.reopenMatch)
		r.Post("/matches/{id}/start", app.startMatch)
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		h, err := app.hosts.FindOrCreateHostByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create host", err)
			return
		}

		if err := app.sessionManager.RenewToken(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to renew session", err)
			return
		}
		app.sessionManager.Put(r.Context(), middleware.SessionHostKey, h.ID.String())
		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		if err := views.Render(w, r, views.LoginPage()); err != nil {
			httputil.InternalServerError(w, "Failed to render login page", err)
		}
	})

	r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
		h, err := app.hosts.EnsureGuestHost(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to login as guest", err)
			return
		}

		app.sessionManager.Put(r.Context(), middleware.SessionHostKey, h.ID.String())
		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := app.sessionManager.Destroy(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to log out", err)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	return r
}
