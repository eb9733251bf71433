package notify

import "github.com/google/uuid"

// Event is pushed to every client watching a tournament.
type Event struct {
	Type         string    `json:"type"`
	TournamentID uuid.UUID `json:"tournament_id"`
	Reason       string    `json:"reason"`
}

const TypeTournamentUpdated = "tournament_updated"

// Notifier is told about every committed change to a tournament.
type Notifier interface {
	TournamentUpdated(tournamentID uuid.UUID, reason string)
}

type Nop struct{}

func (Nop) TournamentUpdated(uuid.UUID, string) {}
