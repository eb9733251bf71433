package bracket

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchBye        MatchStatus = "bye"
)

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	// Position in the tournament, propagation is derived from these two
	Round       int `db:"round" json:"round"`
	MatchNumber int `db:"match_number" json:"match_number"`

	Slot1 Slot `db:"slot_1" json:"slot_1"`
	Slot2 Slot `db:"slot_2" json:"slot_2"`

	Team1Score *int `db:"team_1_score" json:"team_1_score"`
	Team2Score *int `db:"team_2_score" json:"team_2_score"`

	WinnerID *uuid.UUID `db:"winner_id" json:"winner_id"`
	LoserID  *uuid.UUID `db:"loser_id" json:"loser_id"`

	Status    MatchStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// Ready reports whether both sides are known so a result can be recorded.
func (m *Match) Ready() bool {
	return m.Slot1.IsAssigned() && m.Slot2.IsAssigned()
}

func (m *Match) Decided() bool {
	return m.Status == MatchCompleted || m.Status == MatchBye
}

func (m *Match) Involves(participantID uuid.UUID) bool {
	return m.Slot1.Holds(participantID) || m.Slot2.Holds(participantID)
}

// Advancing returns the participant that leaves this match upwards: the winner
// of a completed match, or the lone assigned side of a bye.
func (m *Match) Advancing() (uuid.UUID, bool) {
	switch m.Status {
	case MatchCompleted:
		if m.WinnerID != nil {
			return *m.WinnerID, true
		}
	case MatchBye:
		if id, ok := m.Slot1.Participant(); ok {
			return id, true
		}
		return m.Slot2.Participant()
	}
	return uuid.Nil, false
}

func (m *Match) IsWinner(slot int) bool {
	if m.Status != MatchCompleted || m.WinnerID == nil {
		return false
	}
	return m.slot(slot).Holds(*m.WinnerID)
}

func (m *Match) IsLoser(slot int) bool {
	if m.Status != MatchCompleted || m.LoserID == nil {
		return false
	}
	return m.slot(slot).Holds(*m.LoserID)
}

func (m *Match) slot(n int) Slot {
	if n == 1 {
		return m.Slot1
	}
	return m.Slot2
}

func (m *Match) setSlot(n int, s Slot) {
	if n == 1 {
		m.Slot1 = s
	} else {
		m.Slot2 = s
	}
}

// clearResult drops scores and outcome, leaving the slots untouched.
func (m *Match) clearResult() {
	m.Team1Score = nil
	m.Team2Score = nil
	m.WinnerID = nil
	m.LoserID = nil
}

// Destination returns where the winner of (round, matchNumber) goes in an
// elimination bracket: match ceil(n/2) of the next round, slot 1 for odd n.
func Destination(round, matchNumber, totalRounds int) (nextRound, nextNumber, slot int, ok bool) {
	if round >= totalRounds {
		return 0, 0, 0, false
	}
	slot = 2
	if matchNumber%2 != 0 {
		slot = 1
	}
	return round + 1, (matchNumber + 1) / 2, slot, true
}

type Round struct {
	Number  int
	Matches []Match
}

// Tree is the ordered list of rounds of a generated structure.
type Tree struct {
	Rounds []Round
}

func (t *Tree) TotalRounds() int {
	return len(t.Rounds)
}

// Matches flattens the tree in (round, matchNumber) order.
func (t *Tree) Matches() []Match {
	var out []Match
	for _, r := range t.Rounds {
		out = append(out, r.Matches...)
	}
	return out
}

// GroupRounds arranges matches into rounds sorted by round and match number.
func GroupRounds(matches []Match) *Tree {
	byRound := make(map[int][]Match)
	var numbers []int
	for _, m := range matches {
		if _, ok := byRound[m.Round]; !ok {
			numbers = append(numbers, m.Round)
		}
		byRound[m.Round] = append(byRound[m.Round], m)
	}
	sort.Ints(numbers)

	tree := &Tree{Rounds: make([]Round, 0, len(numbers))}
	for _, n := range numbers {
		ms := byRound[n]
		sort.Slice(ms, func(i, j int) bool {
			return ms[i].MatchNumber < ms[j].MatchNumber
		})
		tree.Rounds = append(tree.Rounds, Round{Number: n, Matches: ms})
	}
	return tree
}

// CurrentRound is the lowest round that still has a playable match undecided.
// A fully decided structure reports its last round.
func CurrentRound(matches []Match, totalRounds int) int {
	current := 0
	for _, m := range matches {
		if m.Decided() {
			continue
		}
		if current == 0 || m.Round < current {
			current = m.Round
		}
	}
	if current == 0 {
		return totalRounds
	}
	return current
}
