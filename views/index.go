package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/a-h/templ"
)

// TournamentList links each of the host's tournaments to its bracket page.
func TournamentList(tournaments []bracket.Tournament) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(tournaments) == 0 {
			_, err := io.WriteString(w, `<p class="empty">No tournaments yet.</p>`)
			return err
		}

		var b strings.Builder
		b.WriteString(`<ul class="tournaments">`)
		for _, t := range tournaments {
			fmt.Fprintf(&b, `<li><a href="/tournaments/%s/bracket">%s</a> <span class="format">%s</span> <span class="status status-%s">%s</span></li>`,
				t.ID, templ.EscapeString(t.Name), t.Format, t.Status, t.Status)
		}
		b.WriteString(`</ul>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func LoginPage() templ.Component {
	return Page("Log in", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<nav class="login">`+
			`<a href="/auth/discord">Log in with Discord</a>`+
			`<a href="/auth/google">Log in with Google</a>`+
			`<form method="post" action="/auth/guest"><button type="submit">Continue as guest</button></form>`+
			`</nav>`)
		return err
	}))
}
