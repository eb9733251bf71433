package bracket

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completed(a, b uuid.UUID, scoreA, scoreB int) Match {
	winner, loser := a, b
	if scoreB > scoreA {
		winner, loser = b, a
	}
	return Match{
		ID:         uuid.New(),
		Slot1:      Assigned(a),
		Slot2:      Assigned(b),
		Team1Score: &scoreA,
		Team2Score: &scoreB,
		WinnerID:   &winner,
		LoserID:    &loser,
		Status:     MatchCompleted,
	}
}

func positions(standings []StandingEntry) []uuid.UUID {
	ids := make([]uuid.UUID, len(standings))
	for i, s := range standings {
		ids[i] = s.ParticipantID
	}
	return ids
}

// submitPair finds the scheduled game between a and b and records a's score first.
func submitPair(t *testing.T, arena *Arena, prog Progression, a, b uuid.UUID, scoreA, scoreB int) error {
	t.Helper()
	for _, m := range arena.Matches() {
		switch {
		case m.Slot1.Holds(a) && m.Slot2.Holds(b):
			_, err := prog.SubmitResult(arena, m.ID, scoreA, scoreB)
			return err
		case m.Slot1.Holds(b) && m.Slot2.Holds(a):
			_, err := prog.SubmitResult(arena, m.ID, scoreB, scoreA)
			return err
		}
	}
	t.Fatalf("no scheduled match between %s and %s", a, b)
	return nil
}

func TestStandings_RoundRobinScenario(t *testing.T) {
	participants := makeParticipants("A", "B", "C", "D")
	a, b, c, d := participants[0].ID, participants[1].ID, participants[2].ID, participants[3].ID

	tree, err := GenerateRoundRobin(uuid.New(), participants)
	require.NoError(t, err)
	arena := NewArena(tree.Matches())
	prog := Progression{Format: RoundRobin, TotalRounds: tree.TotalRounds()}

	require.NoError(t, submitPair(t, arena, prog, a, b, 10, 8))
	require.NoError(t, submitPair(t, arena, prog, c, d, 12, 5))
	assert.ErrorIs(t, submitPair(t, arena, prog, a, c, 9, 9), ErrDrawNotAllowed)
	require.NoError(t, submitPair(t, arena, prog, a, c, 9, 7))
	require.NoError(t, submitPair(t, arena, prog, b, d, 6, 4))

	standings := ComputeStandings(participants, arena.Matches(), nil, Points{Win: 3})
	require.Len(t, standings, 4)

	first := standings[0]
	assert.Equal(t, a, first.ParticipantID)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, first.MatchesWon)
	assert.Equal(t, 0, first.MatchesLost)
	assert.Equal(t, 6, first.TournamentPoints)
	assert.Equal(t, 19, first.PointsFor)
	assert.Equal(t, 15, first.PointsAgainst)

	// B and C are level on 3 points and never met, so points difference decides
	assert.Equal(t, []uuid.UUID{a, c, b, d}, positions(standings))
	assert.Equal(t, 3, standings[1].TournamentPoints)
	assert.Equal(t, 3, standings[2].TournamentPoints)
	assert.Equal(t, 5, standings[1].PointsDifference)
	assert.Equal(t, 0, standings[2].PointsDifference)

	last := standings[3]
	assert.Equal(t, 2, last.MatchesPlayed)
	assert.Equal(t, 0, last.MatchesDrawn)
	assert.Equal(t, 9, last.PointsFor)
	assert.Equal(t, 18, last.PointsAgainst)
	assert.Equal(t, -9, last.PointsDifference)
	assert.Equal(t, 4, last.Position)
}

func TestStandings_HeadToHead(t *testing.T) {
	participants := makeParticipants("X", "Y", "Z", "W")
	x, y, z, w := participants[0].ID, participants[1].ID, participants[2].ID, participants[3].ID

	matches := []Match{
		completed(x, z, 10, 9),
		completed(y, w, 5, 1),
		completed(z, w, 6, 5),
	}

	testCases := []struct {
		name     string
		rules    TiebreakerRules
		expected []uuid.UUID
	}{
		{
			name:     "default chain, head to head then difference for the rest",
			rules:    nil,
			expected: []uuid.UUID{x, y, z, w},
		},
		{
			name:     "difference only",
			rules:    TiebreakerRules{RulePoints, RulePointsDifference},
			expected: []uuid.UUID{y, x, z, w},
		},
		{
			name:     "points scored before difference",
			rules:    TiebreakerRules{RulePoints, RulePointsScored, RulePointsDifference},
			expected: []uuid.UUID{z, x, y, w},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			standings := ComputeStandings(participants, matches, tc.rules, DefaultPoints)
			assert.Equal(t, tc.expected, positions(standings))
			for i, s := range standings {
				assert.Equal(t, i+1, s.Position)
			}
		})
	}
}

func TestStandings_ThreeWayCycleFallsThrough(t *testing.T) {
	participants := makeParticipants("P", "Q", "R")
	p, q, r := participants[0].ID, participants[1].ID, participants[2].ID

	// Everyone beats someone, head to head cannot separate them
	matches := []Match{
		completed(p, q, 3, 2),
		completed(q, r, 9, 1),
		completed(r, p, 5, 4),
	}
	standings := ComputeStandings(participants, matches, nil, DefaultPoints)
	assert.Equal(t, []uuid.UUID{q, p, r}, positions(standings))
}

func TestStandings_IgnoresByesAndUnfinished(t *testing.T) {
	participants := makeParticipants("A", "B", "C")
	a, b, c := participants[0].ID, participants[1].ID, participants[2].ID

	pending := Match{ID: uuid.New(), Slot1: Assigned(b), Slot2: Assigned(c), Status: MatchPending}
	bye := Match{ID: uuid.New(), Slot1: Assigned(c), Slot2: ByeSlot(), Status: MatchBye}
	matches := []Match{completed(a, b, 4, 2), pending, bye}

	standings := ComputeStandings(participants, matches, nil, DefaultPoints)
	byID := make(map[uuid.UUID]StandingEntry)
	for _, s := range standings {
		byID[s.ParticipantID] = s
	}
	assert.Equal(t, 0, byID[c].MatchesPlayed)
	assert.Equal(t, 1, byID[b].MatchesPlayed)
	assert.Equal(t, a, standings[0].ParticipantID)

	// C never played, so its zero difference beats B's loss
	assert.Equal(t, []uuid.UUID{a, c, b}, positions(standings))
}

func TestStandings_FullyTiedKeepSeedOrder(t *testing.T) {
	participants := makeParticipants("A", "B", "C")
	two := 2
	participants[2].Seed = &two

	standings := ComputeStandings(participants, nil, nil, DefaultPoints)
	assert.Equal(t, []uuid.UUID{participants[2].ID, participants[0].ID, participants[1].ID}, positions(standings))
}

func TestStandings_Deterministic(t *testing.T) {
	participants := numbered(8)
	tree, err := GenerateRoundRobin(uuid.New(), participants)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	var matches []Match
	for _, m := range tree.Matches() {
		// Coarse scores so plenty of ties reach the later rules
		s1, s2 := rng.Intn(3), rng.Intn(3)
		if s1 == s2 {
			s2++
		}
		matches = append(matches, completed(m.Slot1.ParticipantID, m.Slot2.ParticipantID, s1, s2))
	}

	want := positions(ComputeStandings(participants, matches, nil, DefaultPoints))
	for i := 0; i < 20; i++ {
		shuffledMatches := append([]Match(nil), matches...)
		rng.Shuffle(len(shuffledMatches), func(a, b int) {
			shuffledMatches[a], shuffledMatches[b] = shuffledMatches[b], shuffledMatches[a]
		})
		shuffledParticipants := append([]Participant(nil), participants...)
		rng.Shuffle(len(shuffledParticipants), func(a, b int) {
			shuffledParticipants[a], shuffledParticipants[b] = shuffledParticipants[b], shuffledParticipants[a]
		})
		got := positions(ComputeStandings(shuffledParticipants, shuffledMatches, nil, DefaultPoints))
		assert.Equal(t, want, got)
	}
}
