package export

import (
	"fmt"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const standingsSheet = "Standings"

var standingsHeaders = []string{"Pos", "Team", "Played", "Won", "Drawn", "Lost", "For", "Against", "Diff", "Points"}

// StandingsWorkbook renders a standings table as an .xlsx document. Teams are
// looked up by participant id and fall back to the id itself.
func StandingsWorkbook(standings []bracket.StandingEntry, teams map[uuid.UUID]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", standingsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, h := range standingsHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(standingsSheet, cell, h)
	}

	for i, s := range standings {
		team, ok := teams[s.ParticipantID]
		if !ok {
			team = s.ParticipantID.String()
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			s.Position, team, s.MatchesPlayed, s.MatchesWon, s.MatchesDrawn, s.MatchesLost,
			s.PointsFor, s.PointsAgainst, s.PointsDifference, s.TournamentPoints,
		}
		if err := f.SetSheetRow(standingsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(standingsSheet, "A", "A", 6)
	f.SetColWidth(standingsSheet, "B", "B", 28)
	f.SetColWidth(standingsSheet, "C", "J", 10)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
