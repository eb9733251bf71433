package bracket

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLayout = LayoutConfig{
	MatchBoxWidth:      200,
	MatchBoxHeight:     60,
	RoundHorizontalGap: 50,
	MatchVerticalGap:   20,
	Margin:             10,
}

func boxesByRound(g Geometry) map[int][]MatchBox {
	out := make(map[int][]MatchBox)
	for _, b := range g.Matches {
		out[b.Round] = append(out[b.Round], b)
	}
	return out
}

func TestLayout_ThreeRounds(t *testing.T) {
	tree, err := GenerateSingleElimination(uuid.New(), numbered(8))
	require.NoError(t, err)

	g := Layout(tree.Matches(), 3, testLayout)
	rounds := boxesByRound(g)
	require.Len(t, rounds[1], 4)
	require.Len(t, rounds[2], 2)
	require.Len(t, rounds[3], 1)

	unit := testLayout.MatchBoxHeight + testLayout.MatchVerticalGap
	for i := 1; i < len(rounds[1]); i++ {
		assert.InDelta(t, unit, rounds[1][i].Y-rounds[1][i-1].Y, 1e-9)
	}
	assert.InDelta(t, testLayout.Margin, rounds[1][0].Y, 1e-9)

	for r := 2; r <= 3; r++ {
		for i, b := range rounds[r] {
			feederA, feederB := rounds[r-1][2*i], rounds[r-1][2*i+1]
			assert.InDelta(t, (feederA.CenterY+feederB.CenterY)/2, b.CenterY, 1e-9, "round %d match %d", r, i+1)
		}
	}

	for r, boxes := range rounds {
		for _, b := range boxes {
			assert.InDelta(t, float64(r-1)*(200+50)+10, b.X, 1e-9)
		}
	}

	assert.InDelta(t, 2*10+4*unit-20, g.Height, 1e-9)
	assert.InDelta(t, 2*10+3*200+2*50, g.Width, 1e-9)

	want := []RoundColumn{
		{Number: 1, Name: "Quarterfinal", X: 10},
		{Number: 2, Name: "Semifinal", X: 260},
		{Number: 3, Name: "Final", X: 510},
	}
	if diff := cmp.Diff(want, g.Rounds); diff != "" {
		t.Errorf("round columns mismatch (-want +got):\n%s", diff)
	}
}

func TestLayout_ConnectorsFollowPropagation(t *testing.T) {
	tree, err := GenerateSingleElimination(uuid.New(), numbered(8))
	require.NoError(t, err)
	matches := tree.Matches()

	g := Layout(matches, 3, testLayout)
	require.Len(t, g.Connectors, 6)

	ids := make(map[position]uuid.UUID)
	for _, m := range matches {
		ids[position{m.Round, m.MatchNumber}] = m.ID
	}
	boxes := make(map[uuid.UUID]MatchBox)
	for _, b := range g.Matches {
		boxes[b.MatchID] = b
	}

	for _, c := range g.Connectors {
		from := boxes[c.FromMatchID]
		to := boxes[c.ToMatchID]
		i := from.MatchNumber - 1

		assert.Equal(t, from.Round+1, to.Round)
		assert.Equal(t, ids[position{from.Round + 1, i/2 + 1}], c.ToMatchID)
		if i%2 == 0 {
			assert.Equal(t, 1, c.ToSlot)
		} else {
			assert.Equal(t, 2, c.ToSlot)
		}

		wantPoints := []Point{
			{X: from.X + from.Width, Y: from.CenterY},
			{X: from.X + from.Width + 25, Y: from.CenterY},
			{X: from.X + from.Width + 25, Y: to.SlotY(c.ToSlot)},
			{X: to.X, Y: to.SlotY(c.ToSlot)},
		}
		if diff := cmp.Diff(wantPoints, c.Points, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("connector path mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestLayout_IsPure(t *testing.T) {
	tree, err := GenerateSingleElimination(uuid.New(), numbered(6))
	require.NoError(t, err)
	matches := tree.Matches()
	before := append([]Match(nil), matches...)

	first := Layout(matches, tree.TotalRounds(), DefaultLayout)
	second := Layout(matches, tree.TotalRounds(), DefaultLayout)

	assert.Equal(t, before, matches)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("layout not repeatable (-first +second):\n%s", diff)
	}
}

func TestLayout_Empty(t *testing.T) {
	g := Layout(nil, 0, DefaultLayout)
	assert.Empty(t, g.Matches)
	assert.Empty(t, g.Connectors)
}

func TestRoundName(t *testing.T) {
	assert.Equal(t, "Final", RoundName(5, 5))
	assert.Equal(t, "Semifinal", RoundName(4, 5))
	assert.Equal(t, "Quarterfinal", RoundName(3, 5))
	assert.Equal(t, "Round 2", RoundName(2, 5))
	assert.Equal(t, "Round 1", RoundName(1, 5))
}
