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

const labelPadding = 8

// Bracket draws an elimination bracket from its layout geometry as inline SVG.
func Bracket(g bracket.Geometry, participants []bracket.Participant, matches []bracket.Match) templ.Component {
	data := PrepareBracketData(participants, matches)
	byID := make(map[uuid.UUID]bracket.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<svg class="bracket" xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`,
			g.Width, g.Height, g.Width, g.Height)

		for _, r := range g.Rounds {
			fmt.Fprintf(&b, `<text class="round-name" x="%g" y="%g">%s</text>`, r.X, 12.0, templ.EscapeString(r.Name))
		}

		for _, c := range g.Connectors {
			points := make([]string, len(c.Points))
			for i, p := range c.Points {
				points[i] = fmt.Sprintf("%g,%g", p.X, p.Y)
			}
			fmt.Fprintf(&b, `<polyline class="connector" fill="none" points="%s"/>`, strings.Join(points, " "))
		}

		for _, box := range g.Matches {
			m := byID[box.MatchID]
			fmt.Fprintf(&b, `<g class="match %s" data-match-id="%s">`, box.Status, box.MatchID)
			fmt.Fprintf(&b, `<rect x="%g" y="%g" width="%g" height="%g" rx="4"/>`, box.X, box.Y, box.Width, box.Height)
			fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g"/>`, box.X, box.CenterY, box.X+box.Width, box.CenterY)
			for slot, s := range []bracket.Slot{box.Slot1, box.Slot2} {
				n := slot + 1
				class := "slot"
				if m.IsWinner(n) {
					class += " winner"
				} else if m.IsLoser(n) {
					class += " loser"
				}
				y := box.SlotY(n)
				fmt.Fprintf(&b, `<text class="%s" x="%g" y="%g" dominant-baseline="middle">%s</text>`,
					class, box.X+labelPadding, y, templ.EscapeString(data.SlotLabel(s)))
				if score := ScoreLabel(m, n); score != "" {
					fmt.Fprintf(&b, `<text class="score" x="%g" y="%g" text-anchor="end" dominant-baseline="middle">%s</text>`,
						box.X+box.Width-labelPadding, y, score)
				}
			}
			b.WriteString(`</g>`)
		}

		b.WriteString(`</svg>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
