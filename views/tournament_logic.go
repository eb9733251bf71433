package views

import (
	"strconv"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/google/uuid"
)

// BracketData resolves what each match box shows.
type BracketData struct {
	Rounds  []bracket.Round
	TeamMap map[uuid.UUID]string
}

func PrepareBracketData(participants []bracket.Participant, matches []bracket.Match) BracketData {
	teamMap := make(map[uuid.UUID]string, len(participants))
	for _, p := range participants {
		teamMap[p.ID] = p.TeamRef
	}
	return BracketData{
		Rounds:  bracket.GroupRounds(matches).Rounds,
		TeamMap: teamMap,
	}
}

// SlotLabel is the text shown for one side of a match.
func (d BracketData) SlotLabel(s bracket.Slot) string {
	switch s.Kind {
	case bracket.SlotBye:
		return "BYE"
	case bracket.SlotAssigned:
		if name, ok := d.TeamMap[s.ParticipantID]; ok {
			return name
		}
		return s.ParticipantID.String()
	default:
		return "TBD"
	}
}

// ScoreLabel is the score of one side, empty until the match is completed.
func ScoreLabel(m bracket.Match, slot int) string {
	if m.Status != bracket.MatchCompleted {
		return ""
	}
	score := m.Team1Score
	if slot == 2 {
		score = m.Team2Score
	}
	if score == nil {
		return ""
	}
	return strconv.Itoa(*score)
}
