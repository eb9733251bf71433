package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/trivia-tournament/internal/config"
	"github.com/AdamBeresnev/trivia-tournament/internal/db"
	"github.com/AdamBeresnev/trivia-tournament/internal/metrics"
	"github.com/AdamBeresnev/trivia-tournament/internal/middleware"
	"github.com/AdamBeresnev/trivia-tournament/internal/notify"
	"github.com/AdamBeresnev/trivia-tournament/internal/service"
	"github.com/AdamBeresnev/trivia-tournament/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	database := db.InitDB(cfg.DatabaseDSN)
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	middleware.InitAuth()

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := notify.NewHub(logger, cfg.CORSAllowedOrigins)

	tournamentStore := store.NewTournamentStore(database)
	hostStore := store.NewHostStore(database)
	deps := service.Deps{
		Notifier:            hub,
		Metrics:             metrics.New(),
		Logger:              logger,
		Locks:               service.NewTournamentLocks(),
		Layout:              cfg.Layout.Bracket(),
		AutoCompleteOnFinal: cfg.AutoCompleteOnFinal,
	}

	app := &application{
		cfg:            cfg,
		sessionManager: sessionManager,
		hostStore:      hostStore,
		tournaments:    service.NewTournamentService(database, tournamentStore, deps),
		matches:        service.NewMatchService(database, tournamentStore, deps),
		hosts:          service.NewHostService(hostStore),
		hub:            hub,
		metrics:        deps.Metrics,
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	logger.Info("server stopped")
}
