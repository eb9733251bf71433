package httputil

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
)

// ErrorBody is the inline error surface shown next to the control that failed.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteJSON(w, http.StatusBadRequest, ErrorBody{Code: "BAD_REQUEST", Message: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// StatusFor maps an error from the services to an HTTP status.
func StatusFor(err error) int {
	if bracket.IsStructural(err) {
		return http.StatusInternalServerError
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound
	}

	switch bracket.CodeOf(err) {
	case bracket.CodeMatchNotFound, bracket.CodeTournamentNotFound, bracket.CodeParticipantNotFound:
		return http.StatusNotFound
	case bracket.CodeDrawNotAllowed, bracket.CodeInvalidScore, bracket.CodeInvalidConfig:
		return http.StatusUnprocessableEntity
	case bracket.CodeInvalidBracketState, bracket.CodeInvalidTransition, bracket.CodeRegistrationClosed,
		bracket.CodeTournamentFull, bracket.CodeDuplicateTeam, bracket.CodeDownstreamDecided,
		bracket.CodeInsufficientParticipants:
		return http.StatusConflict
	case bracket.CodeLayoutUnavailable:
		return http.StatusBadRequest
	case bracket.CodeForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// Error writes err as an ErrorBody. Engine errors keep their code; anything
// else is logged and reported as INTERNAL.
func Error(w http.ResponseWriter, msg string, err error) {
	status := StatusFor(err)
	body := ErrorBody{Code: string(bracket.CodeOf(err)), Message: err.Error()}

	switch {
	case bracket.IsStructural(err):
		slog.Error(msg, "error", err, "structural", true)
	case status == http.StatusForbidden:
		slog.Warn(msg, "error", err)
	case status == http.StatusInternalServerError:
		slog.Error(msg, "error", err)
		body = ErrorBody{Code: "INTERNAL", Message: "Internal Server Error"}
	case status == http.StatusNotFound && body.Code == "":
		body.Code = "NOT_FOUND"
	default:
		slog.Warn(msg, "error", err)
	}
	WriteJSON(w, status, body)
}
