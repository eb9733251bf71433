package export

import (
	"bytes"
	"testing"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestStandingsWorkbook(t *testing.T) {
	known, unknown := uuid.New(), uuid.New()
	standings := []bracket.StandingEntry{
		{ParticipantID: known, Position: 1, MatchesPlayed: 3, MatchesWon: 3, PointsFor: 30, PointsAgainst: 12, PointsDifference: 18, TournamentPoints: 9},
		{ParticipantID: unknown, Position: 2, MatchesPlayed: 3, MatchesLost: 3, PointsFor: 12, PointsAgainst: 30, PointsDifference: -18},
	}

	data, err := StandingsWorkbook(standings, map[uuid.UUID]string{known: "Quiz Khalifa"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{standingsSheet}, f.GetSheetList())

	rows, err := f.GetRows(standingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, standingsHeaders, rows[0])
	assert.Equal(t, []string{"1", "Quiz Khalifa", "3", "3", "0", "0", "30", "12", "18", "9"}, rows[1])
	assert.Equal(t, unknown.String(), rows[2][1])
	assert.Equal(t, "-18", rows[2][8])
}

func TestStandingsWorkbook_Empty(t *testing.T) {
	data, err := StandingsWorkbook(nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(standingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
