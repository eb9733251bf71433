package bracket

import "errors"

type ErrorCode string

// Error is an engine error carrying a stable code the host UI can switch on.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

const (
	CodeDrawNotAllowed           ErrorCode = "DRAW_NOT_ALLOWED"
	CodeInsufficientParticipants ErrorCode = "INSUFFICIENT_PARTICIPANTS"
	CodeInvalidBracketState      ErrorCode = "INVALID_BRACKET_STATE"
	CodeMatchNotFound            ErrorCode = "MATCH_NOT_FOUND"
	CodeTournamentNotFound       ErrorCode = "TOURNAMENT_NOT_FOUND"
	CodeParticipantNotFound      ErrorCode = "PARTICIPANT_NOT_FOUND"
	CodeInvalidTransition        ErrorCode = "INVALID_TRANSITION"
	CodeRegistrationClosed       ErrorCode = "REGISTRATION_CLOSED"
	CodeTournamentFull           ErrorCode = "TOURNAMENT_FULL"
	CodeDuplicateTeam            ErrorCode = "DUPLICATE_TEAM"
	CodeInvalidScore             ErrorCode = "INVALID_SCORE"
	CodeInvalidConfig            ErrorCode = "INVALID_CONFIG"
	CodeDownstreamDecided        ErrorCode = "DOWNSTREAM_DECIDED"
	CodeLayoutUnavailable        ErrorCode = "LAYOUT_UNAVAILABLE"
	CodeForbidden                ErrorCode = "FORBIDDEN"
)

var (
	ErrDrawNotAllowed           = &Error{CodeDrawNotAllowed, "scores must differ, draws are not allowed"}
	ErrInsufficientParticipants = &Error{CodeInsufficientParticipants, "not enough participants to start the tournament"}
	ErrInvalidBracketState      = &Error{CodeInvalidBracketState, "match is not ready for a result"}
	ErrMatchNotFound            = &Error{CodeMatchNotFound, "match not found"}
	ErrTournamentNotFound       = &Error{CodeTournamentNotFound, "tournament not found"}
	ErrParticipantNotFound      = &Error{CodeParticipantNotFound, "participant not found"}
	ErrInvalidTransition        = &Error{CodeInvalidTransition, "invalid tournament status transition"}
	ErrRegistrationClosed       = &Error{CodeRegistrationClosed, "tournament registration is not open"}
	ErrTournamentFull           = &Error{CodeTournamentFull, "tournament has reached its maximum number of teams"}
	ErrDuplicateTeam            = &Error{CodeDuplicateTeam, "team is already registered for this tournament"}
	ErrInvalidScore             = &Error{CodeInvalidScore, "scores must be non-negative"}
	ErrInvalidConfig            = &Error{CodeInvalidConfig, "invalid tournament configuration"}
	ErrDownstreamDecided        = &Error{CodeDownstreamDecided, "the next match has already started, reopen it first"}
	ErrLayoutUnavailable        = &Error{CodeLayoutUnavailable, "bracket layout is only available for elimination tournaments"}
	ErrNotOwner                 = &Error{CodeForbidden, "tournament belongs to another host"}
)

// CodeOf returns the engine code of err, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ErrCorruptBracket marks a stored bracket that is inconsistent, such as a
// propagation target that does not exist. It travels alongside the engine code.
var ErrCorruptBracket = errors.New("bracket structure is inconsistent")

// IsStructural reports whether err signals a broken bracket rather than bad input.
func IsStructural(err error) bool {
	return errors.Is(err, ErrCorruptBracket)
}
