package bracket

import "fmt"

var transitions = map[TournamentStatus][]TournamentStatus{
	TournamentDraft:            {TournamentRegistrationOpen, TournamentCancelled},
	TournamentRegistrationOpen: {TournamentInProgress, TournamentCancelled},
	TournamentInProgress:       {TournamentCompleted, TournamentCancelled},
}

// CanTransition checks the status graph only; the participant guard on
// entering in_progress is checked by StartGuard.
func CanTransition(from, to TournamentStatus) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// StartGuard is the registration_open -> in_progress guard.
func StartGuard(t *Tournament, participantCount int) error {
	if err := CanTransition(t.Status, TournamentInProgress); err != nil {
		return err
	}
	if participantCount < t.MinTeams {
		return fmt.Errorf("%w: %d registered, %d required", ErrInsufficientParticipants, participantCount, t.MinTeams)
	}
	return nil
}

// RegistrationGuard checks a new participant may join.
func RegistrationGuard(t *Tournament, participantCount int) error {
	if t.Status != TournamentRegistrationOpen {
		return ErrRegistrationClosed
	}
	if participantCount >= t.MaxTeams {
		return ErrTournamentFull
	}
	return nil
}

// Generate builds the structure for the tournament's format. It is called
// exactly once, as part of the transition into in_progress.
func Generate(t *Tournament, participants []Participant) (*Tree, error) {
	switch t.Format {
	case SingleElimination:
		return GenerateSingleElimination(t.ID, participants)
	case RoundRobin:
		return GenerateRoundRobin(t.ID, participants)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidConfig, t.Format)
	}
}
