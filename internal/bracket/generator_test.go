package bracket

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeParticipants(names ...string) []Participant {
	tournamentID := uuid.New()
	participants := make([]Participant, len(names))
	for i, name := range names {
		participants[i] = Participant{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			TeamRef:      name,
			Position:     i + 1,
			Status:       ParticipantActive,
		}
	}
	return participants
}

func numbered(n int) []Participant {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Team %d", i+1)
	}
	return makeParticipants(names...)
}

func TestGenerateRound1SeedOrder(t *testing.T) {
	testCases := []struct {
		name       string
		numEntries int
		expected   [][2]int
	}{
		{
			name:       "2 entries",
			numEntries: 2,
			expected:   [][2]int{{0, 1}},
		},
		{
			name:       "4 entries",
			numEntries: 4,
			expected:   [][2]int{{0, 3}, {1, 2}},
		},
		{
			name:       "8 entries",
			numEntries: 8,
			expected:   [][2]int{{0, 7}, {3, 4}, {1, 6}, {2, 5}},
		},
		{
			name:       "Non-power of 2 (7 entries)",
			numEntries: 7,
			expected:   [][2]int{{0, 7}, {3, 4}, {1, 6}, {2, 5}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := generateRound1Pairs(tc.numEntries)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestBracketSizing(t *testing.T) {
	for n := 2; n <= 40; n++ {
		t.Run(fmt.Sprintf("%d participants", n), func(t *testing.T) {
			tree, err := GenerateSingleElimination(uuid.New(), numbered(n))
			require.NoError(t, err)

			size := calcBracketSize(n)
			assert.GreaterOrEqual(t, size, n)
			assert.Less(t, size/2, n)
			assert.Equal(t, TotalRounds(n), tree.TotalRounds())
			assert.Equal(t, size-n, ByeCount(n))
			assert.Len(t, ByeRecipients(tree), size-n)

			// Each round halves the previous one down to a single final
			for i := 1; i < len(tree.Rounds); i++ {
				prev := len(tree.Rounds[i-1].Matches)
				assert.Equal(t, (prev+1)/2, len(tree.Rounds[i].Matches))
			}
			assert.Len(t, tree.Rounds[len(tree.Rounds)-1].Matches, 1)

			seen := make(map[uuid.UUID]int)
			for _, m := range tree.Rounds[0].Matches {
				for _, s := range []Slot{m.Slot1, m.Slot2} {
					if id, ok := s.Participant(); ok {
						seen[id]++
					}
				}
			}
			assert.Len(t, seen, n)
			for _, count := range seen {
				assert.Equal(t, 1, count)
			}
		})
	}
}

func TestGenerateSingleElimination_FiveParticipants(t *testing.T) {
	participants := makeParticipants("A", "B", "C", "D", "E")
	tree, err := GenerateSingleElimination(uuid.New(), participants)
	require.NoError(t, err)

	require.Equal(t, 3, tree.TotalRounds())
	assert.Equal(t, 8, calcBracketSize(5))
	require.Len(t, tree.Rounds[0].Matches, 4)
	require.Len(t, tree.Rounds[1].Matches, 2)
	require.Len(t, tree.Rounds[2].Matches, 1)

	a, b, c, d, e := participants[0].ID, participants[1].ID, participants[2].ID, participants[3].ID, participants[4].ID

	byes := 0
	for _, m := range tree.Rounds[0].Matches {
		if m.Status == MatchBye {
			byes++
			assert.Nil(t, m.Team1Score)
			assert.Nil(t, m.Team2Score)
			assert.Nil(t, m.WinnerID)
			assert.Nil(t, m.LoserID)
		}
	}
	assert.Equal(t, 3, byes)

	played := tree.Rounds[0].Matches[1]
	assert.Equal(t, MatchPending, played.Status)
	assert.Equal(t, Assigned(d), played.Slot1)
	assert.Equal(t, Assigned(e), played.Slot2)

	// Top seeds get the byes and are already waiting in round 2
	assert.ElementsMatch(t, []uuid.UUID{a, b, c}, ByeRecipients(tree))
	semi1 := tree.Rounds[1].Matches[0]
	assert.Equal(t, Assigned(a), semi1.Slot1)
	assert.Equal(t, Unassigned(), semi1.Slot2)
	semi2 := tree.Rounds[1].Matches[1]
	assert.Equal(t, Assigned(b), semi2.Slot1)
	assert.Equal(t, Assigned(c), semi2.Slot2)

	final := tree.Rounds[2].Matches[0]
	assert.Equal(t, Unassigned(), final.Slot1)
	assert.Equal(t, Unassigned(), final.Slot2)
	assert.Equal(t, MatchPending, final.Status)
}

func TestGenerateSingleElimination_UsesSeeds(t *testing.T) {
	participants := makeParticipants("A", "B", "C", "D")
	one, two := 1, 2
	participants[3].Seed = &one
	participants[2].Seed = &two

	tree, err := GenerateSingleElimination(uuid.New(), participants)
	require.NoError(t, err)

	// Seeded D and C first, then A and B by registration order
	first := tree.Rounds[0].Matches[0]
	assert.Equal(t, Assigned(participants[3].ID), first.Slot1)
	assert.Equal(t, Assigned(participants[1].ID), first.Slot2)
	second := tree.Rounds[0].Matches[1]
	assert.Equal(t, Assigned(participants[2].ID), second.Slot1)
	assert.Equal(t, Assigned(participants[0].ID), second.Slot2)
}

func TestGenerateSingleElimination_MatchNumbering(t *testing.T) {
	tree, err := GenerateSingleElimination(uuid.New(), numbered(16))
	require.NoError(t, err)

	for _, round := range tree.Rounds {
		for i, m := range round.Matches {
			assert.Equal(t, round.Number, m.Round)
			assert.Equal(t, i+1, m.MatchNumber)
		}
	}
}

func TestGenerateSingleElimination_TooFew(t *testing.T) {
	_, err := GenerateSingleElimination(uuid.New(), numbered(1))
	assert.ErrorIs(t, err, ErrInsufficientParticipants)

	_, err = GenerateSingleElimination(uuid.New(), nil)
	assert.ErrorIs(t, err, ErrInsufficientParticipants)
}
