package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/AdamBeresnev/trivia-tournament/internal/httputil"
	"github.com/AdamBeresnev/trivia-tournament/internal/service"
	"github.com/AdamBeresnev/trivia-tournament/views"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type scoreInput struct {
	Team1Score *int `json:"team_1_score"`
	Team2Score *int `json:"team_2_score"`
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.BadRequest(w, fmt.Sprintf("Invalid %s", name), err)
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return false
	}
	return true
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (app *application) index(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.GetTournamentsForHost(r.Context())
	if err != nil {
		httputil.Error(w, "Failed to get tournaments", err)
		return
	}
	if !wantsHTML(r) {
		httputil.WriteJSON(w, http.StatusOK, tournaments)
		return
	}
	if err := views.Render(w, r, views.Page("Your tournaments", views.TournamentList(tournaments))); err != nil {
		httputil.InternalServerError(w, "Failed to render tournaments", err)
	}
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTournamentInput
	if !decodeJSON(w, r, &input) {
		return
	}

	t, err := app.tournaments.CreateTournament(r.Context(), input)
	if err != nil {
		httputil.Error(w, "Failed to create tournament", err)
		return
	}
	w.Header().Set("Location", "/tournaments/"+t.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, t)
}

// transition wraps one of the tournament lifecycle actions.
func (app *application) transition(msg string, do func(context.Context, uuid.UUID) (*bracket.Tournament, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		t, err := do(r.Context(), id)
		if err != nil {
			httputil.Error(w, msg, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, t)
	}
}

func (app *application) registerParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var input service.ParticipantInput
	if !decodeJSON(w, r, &input) {
		return
	}

	p, err := app.tournaments.RegisterParticipant(r.Context(), id, input)
	if err != nil {
		httputil.Error(w, "Failed to register participant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (app *application) withdrawParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	participantID, ok := idParam(w, r, "participantID")
	if !ok {
		return
	}

	if err := app.tournaments.WithdrawParticipant(r.Context(), id, participantID); err != nil {
		httputil.Error(w, "Failed to withdraw participant", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) getStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	standings, err := app.tournaments.GetStandings(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to compute standings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, standings)
}

func (app *application) downloadStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	file, err := app.tournaments.StandingsWorkbook(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to export standings", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="standings-%s.xlsx"`, id))
	if _, err := w.Write(file); err != nil {
		slog.Warn("failed to send standings workbook", "tournament_id", id, "error", err)
	}
}

// bracketPage draws the elimination tree, or the table for round robin
// tournaments which have no tree to draw.
func (app *application) bracketPage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	view, err := app.tournaments.GetBracketLayout(r.Context(), id)
	if errors.Is(err, bracket.ErrLayoutUnavailable) {
		data, err := app.tournaments.GetTournamentData(r.Context(), id)
		if err != nil {
			httputil.Error(w, "Failed to get tournament", err)
			return
		}
		standings, err := app.tournaments.GetStandings(r.Context(), id)
		if err != nil {
			httputil.Error(w, "Failed to compute standings", err)
			return
		}
		page := views.Page(data.Tournament.Name, views.StandingsTable(standings, data.Teams()))
		if err := views.Render(w, r, page); err != nil {
			httputil.InternalServerError(w, "Failed to render standings", err)
		}
		return
	}
	if err != nil {
		httputil.Error(w, "Failed to lay out bracket", err)
		return
	}

	page := views.Page(view.Data.Tournament.Name, views.Bracket(view.Geometry, view.Data.Participants, view.Data.Matches))
	if err := views.Render(w, r, page); err != nil {
		httputil.InternalServerError(w, "Failed to render bracket", err)
	}
}

func (app *application) getLayout(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	view, err := app.tournaments.GetBracketLayout(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to lay out bracket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view.Geometry)
}

func (app *application) liveUpdates(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if _, err := app.tournaments.GetTournamentData(r.Context(), id); err != nil {
		httputil.Error(w, "Failed to get tournament", err)
		return
	}
	app.hub.ServeWS(w, r, id)
}

func (app *application) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	data, err := app.matches.GetMatchViewData(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) submitResult(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var input scoreInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Team1Score == nil || input.Team2Score == nil {
		httputil.BadRequest(w, "Both scores are required", nil)
		return
	}

	result, err := app.matches.SubmitResult(r.Context(), id, *input.Team1Score, *input.Team2Score)
	if err != nil {
		httputil.Error(w, "Failed to submit result", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (app *application) reopenMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.matches.ReopenMatch(r.Context(), id); err != nil {
		httputil.Error(w, "Failed to reopen match", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) startMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.matches.StartMatch(r.Context(), id); err != nil {
		httputil.Error(w, "Failed to start match", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
