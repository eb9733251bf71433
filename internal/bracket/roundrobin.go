package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateRoundRobin schedules a single round robin with the circle method.
// An odd field gets a phantom seat; whoever draws it sits the round out in a
// bye match that never counts towards standings.
func GenerateRoundRobin(tournamentID uuid.UUID, participants []Participant) (*Tree, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 participants, have %d", ErrInsufficientParticipants, len(participants))
	}

	seats := make([]Slot, 0, len(participants)+1)
	for _, p := range SeedOrder(participants) {
		seats = append(seats, Assigned(p.ID))
	}
	if len(seats)%2 != 0 {
		seats = append(seats, ByeSlot())
	}

	n := len(seats)
	fixed := seats[0]
	rotating := seats[1:]

	tree := &Tree{Rounds: make([]Round, 0, n-1)}
	for r := 0; r < n-1; r++ {
		seatAt := func(i int) Slot {
			return rotating[(i+r)%(n-1)]
		}

		// Alternate the fixed seat's side so it is not always listed first
		pairs := make([][2]Slot, 0, n/2)
		if r%2 == 0 {
			pairs = append(pairs, [2]Slot{fixed, seatAt(0)})
		} else {
			pairs = append(pairs, [2]Slot{seatAt(0), fixed})
		}
		for k := 1; k < n/2; k++ {
			pairs = append(pairs, [2]Slot{seatAt(k), seatAt(n - 1 - k)})
		}

		round := Round{Number: r + 1, Matches: make([]Match, 0, len(pairs))}
		for i, pair := range pairs {
			m := Match{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				Round:        r + 1,
				MatchNumber:  i + 1,
				Slot1:        pair[0],
				Slot2:        pair[1],
				Status:       MatchPending,
			}
			if m.Slot1.IsBye() || m.Slot2.IsBye() {
				m.Status = MatchBye
			}
			round.Matches = append(round.Matches, m)
		}
		tree.Rounds = append(tree.Rounds, round)
	}

	return tree, nil
}
