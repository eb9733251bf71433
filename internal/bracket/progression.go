package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

type position struct {
	round  int
	number int
}

// Arena indexes a tournament's matches by id and by (round, matchNumber).
// Mutations happen in place on the arena's own copy of the matches.
type Arena struct {
	matches []Match
	byID    map[uuid.UUID]int
	byPos   map[position]int
}

func NewArena(matches []Match) *Arena {
	a := &Arena{
		matches: make([]Match, len(matches)),
		byID:    make(map[uuid.UUID]int, len(matches)),
		byPos:   make(map[position]int, len(matches)),
	}
	copy(a.matches, matches)
	for i, m := range a.matches {
		a.byID[m.ID] = i
		a.byPos[position{m.Round, m.MatchNumber}] = i
	}
	return a
}

func (a *Arena) Find(id uuid.UUID) (*Match, bool) {
	i, ok := a.byID[id]
	if !ok {
		return nil, false
	}
	return &a.matches[i], true
}

func (a *Arena) At(round, number int) (*Match, bool) {
	i, ok := a.byPos[position{round, number}]
	if !ok {
		return nil, false
	}
	return &a.matches[i], true
}

func (a *Arena) Matches() []Match {
	out := make([]Match, len(a.matches))
	copy(out, a.matches)
	return out
}

// Result is what a successful submission reports back to the host.
type Result struct {
	WinnerID uuid.UUID `json:"winner_id"`
	LoserID  uuid.UUID `json:"loser_id"`
}

// Outcome collects every record touched by one engine operation so that the
// caller can persist them in a single transaction.
type Outcome struct {
	Result
	Match *Match
	// Downstream is the elimination match the winner was placed into, if any.
	Downstream *Match
	// Eliminated is set when the loser is knocked out.
	Eliminated *uuid.UUID
	// Reinstated is a participant whose earlier elimination was undone.
	Reinstated *uuid.UUID
	// Final is true when the decided match was the last of an elimination bracket.
	Final bool
}

// ValidateScores rejects negative scores and draws.
func ValidateScores(team1Score, team2Score int) error {
	if team1Score < 0 || team2Score < 0 {
		return ErrInvalidScore
	}
	if team1Score == team2Score {
		return ErrDrawNotAllowed
	}
	return nil
}

// Progression applies results to an arena following the tournament's format.
type Progression struct {
	Format      TournamentFormat
	TotalRounds int
}

// SubmitResult records a score line for matchID. Resubmitting a completed
// match overwrites it and re-propagates, provided the downstream match has not
// started yet.
func (p Progression) SubmitResult(a *Arena, matchID uuid.UUID, team1Score, team2Score int) (*Outcome, error) {
	if err := ValidateScores(team1Score, team2Score); err != nil {
		return nil, err
	}

	m, ok := a.Find(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.Status == MatchBye {
		return nil, fmt.Errorf("%w: match %d-%d is a bye", ErrInvalidBracketState, m.Round, m.MatchNumber)
	}
	if !m.Ready() {
		return nil, fmt.Errorf("%w: match %d-%d is waiting for its participants", ErrInvalidBracketState, m.Round, m.MatchNumber)
	}

	out := &Outcome{Match: m}

	var previousLoser *uuid.UUID
	if m.Status == MatchCompleted {
		previousLoser = m.LoserID
	}

	winner, loser := m.Slot1.ParticipantID, m.Slot2.ParticipantID
	if team2Score > team1Score {
		winner, loser = loser, winner
	}

	if p.Format == SingleElimination {
		down, err := p.propagate(a, m, winner)
		if err != nil {
			return nil, err
		}
		out.Downstream = down
		out.Final = down == nil

		eliminated := loser
		out.Eliminated = &eliminated
		if previousLoser != nil && *previousLoser != loser {
			reinstated := *previousLoser
			out.Reinstated = &reinstated
		}
	}

	m.Team1Score = &team1Score
	m.Team2Score = &team2Score
	m.WinnerID = &winner
	m.LoserID = &loser
	m.Status = MatchCompleted

	out.Result = Result{WinnerID: winner, LoserID: loser}
	return out, nil
}

func (p Progression) propagate(a *Arena, m *Match, winner uuid.UUID) (*Match, error) {
	next, number, slot, ok := Destination(m.Round, m.MatchNumber, p.TotalRounds)
	if !ok {
		return nil, nil
	}
	down, ok := a.At(next, number)
	if !ok {
		return nil, fmt.Errorf("%w: %w: propagation target %d-%d for match %s is missing", ErrCorruptBracket, ErrMatchNotFound, next, number, m.ID)
	}
	if down.Status == MatchCompleted || down.Status == MatchInProgress {
		if !down.slot(slot).Holds(winner) {
			return nil, fmt.Errorf("%w: match %d-%d", ErrDownstreamDecided, next, number)
		}
	}
	down.setSlot(slot, Assigned(winner))
	return down, nil
}

// Reopen undoes a completed result. In elimination brackets the winner is
// pulled back out of the next match, which must not have started.
func (p Progression) Reopen(a *Arena, matchID uuid.UUID) (*Outcome, error) {
	m, ok := a.Find(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.Status != MatchCompleted {
		return nil, fmt.Errorf("%w: only completed matches can be reopened", ErrInvalidBracketState)
	}

	out := &Outcome{Match: m}
	if p.Format == SingleElimination {
		if next, number, slot, ok := Destination(m.Round, m.MatchNumber, p.TotalRounds); ok {
			down, ok := a.At(next, number)
			if !ok {
				return nil, fmt.Errorf("%w: %w: propagation target %d-%d for match %s is missing", ErrCorruptBracket, ErrMatchNotFound, next, number, m.ID)
			}
			if down.Status != MatchPending {
				return nil, fmt.Errorf("%w: match %d-%d", ErrDownstreamDecided, next, number)
			}
			down.setSlot(slot, Unassigned())
			out.Downstream = down
		}
		if m.LoserID != nil {
			reinstated := *m.LoserID
			out.Reinstated = &reinstated
		}
	}

	m.clearResult()
	m.Status = MatchPending
	return out, nil
}

// Start marks a ready match as being played.
func (p Progression) Start(a *Arena, matchID uuid.UUID) (*Match, error) {
	m, ok := a.Find(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.Status != MatchPending || !m.Ready() {
		return nil, fmt.Errorf("%w: match %d-%d cannot start", ErrInvalidBracketState, m.Round, m.MatchNumber)
	}
	m.Status = MatchInProgress
	return m, nil
}
