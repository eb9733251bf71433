package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/a-h/templ"
	"github.com/google/uuid"
)

func StandingsTable(standings []bracket.StandingEntry, teams map[uuid.UUID]string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<table class="standings"><thead><tr>`)
		for _, h := range []string{"#", "Team", "P", "W", "D", "L", "For", "Against", "Diff", "Pts"} {
			fmt.Fprintf(&b, "<th>%s</th>", h)
		}
		b.WriteString(`</tr></thead><tbody>`)

		for _, s := range standings {
			team, ok := teams[s.ParticipantID]
			if !ok {
				team = s.ParticipantID.String()
			}
			fmt.Fprintf(&b, `<tr data-participant-id="%s"><td>%d</td><td>%s</td>`, s.ParticipantID, s.Position, templ.EscapeString(team))
			for _, v := range []int{s.MatchesPlayed, s.MatchesWon, s.MatchesDrawn, s.MatchesLost, s.PointsFor, s.PointsAgainst} {
				fmt.Fprintf(&b, "<td>%d</td>", v)
			}
			fmt.Fprintf(&b, "<td>%+d</td><td>%d</td></tr>", s.PointsDifference, s.TournamentPoints)
		}

		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Page wraps content in the host shell.
func Page(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var header string
		if h := GetHost(ctx); h != nil {
			header = fmt.Sprintf(`<header>Hosting as %s</header>`, templ.EscapeString(h.Username))
		}
		escaped := templ.EscapeString(title)
		if _, err := fmt.Fprintf(w, `<!doctype html><html><head><meta charset="utf-8"><title>%s</title></head><body>%s<h1>%s</h1>`,
			escaped, header, escaped); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
