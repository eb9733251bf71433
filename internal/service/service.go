package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/AdamBeresnev/trivia-tournament/internal/metrics"
	"github.com/AdamBeresnev/trivia-tournament/internal/middleware"
	"github.com/AdamBeresnev/trivia-tournament/internal/notify"
	"github.com/google/uuid"
)

// Deps are the collaborators shared by the services. Zero values are
// replaced with no-op defaults.
type Deps struct {
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Locks    *TournamentLocks

	Layout              bracket.LayoutConfig
	AutoCompleteOnFinal bool
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Locks == nil {
		d.Locks = NewTournamentLocks()
	}
	if d.Layout == (bracket.LayoutConfig{}) {
		d.Layout = bracket.DefaultLayout
	}
	return d
}

// TournamentLocks serialises writers per tournament inside this process. The
// database transaction still guards against other processes. An entry lives
// only while someone holds or waits for it.
type TournamentLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*tournamentLock
}

type tournamentLock struct {
	mu   sync.Mutex
	refs int
}

func NewTournamentLocks() *TournamentLocks {
	return &TournamentLocks{locks: make(map[uuid.UUID]*tournamentLock)}
}

// Lock blocks until the tournament is free and returns its unlock func.
func (l *TournamentLocks) Lock(tournamentID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[tournamentID]
	if !ok {
		entry = &tournamentLock{}
		l.locks[tournamentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, tournamentID)
		}
		l.mu.Unlock()
	}
}

func (l *TournamentLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func authorize(ctx context.Context, t *bracket.Tournament) error {
	hostID, ok := middleware.GetHostIDFromContext(ctx)
	if !ok || hostID != t.OwnerID {
		return bracket.ErrNotOwner
	}
	return nil
}
