package bracket

import (
	"fmt"
	"math/bits"

	"github.com/google/uuid"
)

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}
	if count == 1 {
		return 1
	}
	return 1 << bits.Len(uint(count-1))
}

// TotalRounds is ceil(log2(count)), the number of elimination rounds.
func TotalRounds(count int) int {
	size := calcBracketSize(count)
	if size <= 1 {
		return 0
	}
	return bits.TrailingZeros(uint(size))
}

// ByeCount is the number of round 1 slots left without an opponent.
func ByeCount(count int) int {
	return calcBracketSize(count) - count
}

// generateRound1Pairs returns seed index pairs in bracket order, so seed 0 meets
// seed size-1 and the top seeds can only meet in the latest possible round.
func generateRound1Pairs(bracketSize int) [][2]int {
	if bracketSize < 2 {
		return [][2]int{}
	}

	order := []int{0}
	for len(order) < bracketSize {
		next := make([]int, 0, len(order)*2)
		currentCount := len(order) * 2

		for _, seed := range order {
			next = append(next, seed, (currentCount-1)-seed)
		}
		order = next
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(order); i += 2 {
		pairs = append(pairs, [2]int{order[i], order[i+1]})
	}
	return pairs
}

// GenerateSingleElimination builds the whole match arena for a single
// elimination bracket. Round 1 byes are resolved immediately and their
// participants placed into round 2.
func GenerateSingleElimination(tournamentID uuid.UUID, participants []Participant) (*Tree, error) {
	n := len(participants)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 participants, have %d", ErrInsufficientParticipants, n)
	}

	seeded := SeedOrder(participants)
	bracketSize := calcBracketSize(n)
	totalRounds := TotalRounds(n)

	tree := &Tree{Rounds: make([]Round, totalRounds)}
	matchesInRound := bracketSize / 2
	for r := 1; r <= totalRounds; r++ {
		round := Round{Number: r, Matches: make([]Match, matchesInRound)}
		for i := range round.Matches {
			round.Matches[i] = Match{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				Round:        r,
				MatchNumber:  i + 1,
				Slot1:        Unassigned(),
				Slot2:        Unassigned(),
				Status:       MatchPending,
			}
		}
		tree.Rounds[r-1] = round
		matchesInRound = (matchesInRound + 1) / 2
	}

	for i, pair := range generateRound1Pairs(bracketSize) {
		m := &tree.Rounds[0].Matches[i]
		m.Slot1 = seatFor(seeded, pair[0])
		m.Slot2 = seatFor(seeded, pair[1])

		if m.Slot1.IsBye() == m.Slot2.IsBye() {
			continue
		}

		// Byes only ever face the top seeds, never each other
		m.Status = MatchBye
		advancing, _ := m.Advancing()
		if next, number, slot, ok := Destination(1, m.MatchNumber, totalRounds); ok {
			tree.Rounds[next-1].Matches[number-1].setSlot(slot, Assigned(advancing))
		}
	}

	return tree, nil
}

func seatFor(seeded []Participant, index int) Slot {
	if index < len(seeded) {
		return Assigned(seeded[index].ID)
	}
	return ByeSlot()
}

// ByeRecipients lists the participants that were advanced by a round 1 bye.
func ByeRecipients(tree *Tree) []uuid.UUID {
	if len(tree.Rounds) == 0 {
		return nil
	}
	var ids []uuid.UUID
	for i := range tree.Rounds[0].Matches {
		m := &tree.Rounds[0].Matches[i]
		if m.Status != MatchBye {
			continue
		}
		if id, ok := m.Advancing(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
