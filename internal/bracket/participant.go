package bracket

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type ParticipantStatus string

const (
	ParticipantActive     ParticipantStatus = "active"
	ParticipantEliminated ParticipantStatus = "eliminated"
	// ParticipantBye marks a participant advanced without playing in round 1.
	ParticipantBye ParticipantStatus = "bye"
)

type Participant struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	TournamentID uuid.UUID         `db:"tournament_id" json:"tournament_id"`
	TeamRef      string            `db:"team_ref" json:"team_ref"`
	Seed         *int              `db:"seed" json:"seed,omitempty"`
	Position     int               `db:"position" json:"position"`
	Status       ParticipantStatus `db:"status" json:"status"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
}

// SeedOrder returns the participants in bracket seed order: explicit seeds
// ascending first, then unseeded participants in registration order.
func SeedOrder(participants []Participant) []Participant {
	ordered := make([]Participant, len(participants))
	copy(ordered, participants)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch {
		case a.Seed != nil && b.Seed != nil:
			if *a.Seed != *b.Seed {
				return *a.Seed < *b.Seed
			}
		case a.Seed != nil:
			return true
		case b.Seed != nil:
			return false
		}
		return a.Position < b.Position
	})
	return ordered
}
