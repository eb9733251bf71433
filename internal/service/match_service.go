package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/AdamBeresnev/trivia-tournament/internal/metrics"
	"github.com/AdamBeresnev/trivia-tournament/internal/notify"
	"github.com/AdamBeresnev/trivia-tournament/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	locks    *TournamentLocks

	autoCompleteOnFinal bool
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, deps Deps) *MatchService {
	deps = deps.withDefaults()
	return &MatchService{
		db:                  db,
		store:               store,
		notifier:            deps.Notifier,
		metrics:             deps.Metrics,
		logger:              deps.Logger,
		locks:               deps.Locks,
		autoCompleteOnFinal: deps.AutoCompleteOnFinal,
	}
}

type MatchData struct {
	Match       *bracket.Match       `json:"match"`
	Team1       *bracket.Participant `json:"team_1,omitempty"`
	Team2       *bracket.Participant `json:"team_2,omitempty"`
	NextMatchID *uuid.UUID           `json:"next_match_id,omitempty"`
}

func (s *MatchService) GetMatchViewData(ctx context.Context, matchID uuid.UUID) (*MatchData, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.GetParticipants(ctx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	matches, err := s.store.GetMatches(ctx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	data := &MatchData{Match: match}
	for i := range participants {
		p := &participants[i]
		if match.Slot1.Holds(p.ID) {
			data.Team1 = p
		}
		if match.Slot2.Holds(p.ID) {
			data.Team2 = p
		}
	}
	for _, m := range matches {
		if m.ID != match.ID && m.Status == bracket.MatchPending && m.Ready() {
			id := m.ID
			data.NextMatchID = &id
			break
		}
	}
	return data, nil
}

// SubmitResult records a score line and moves the winner on. The match, its
// downstream match, participant statuses and the tournament's round counter
// are written in one transaction.
func (s *MatchService) SubmitResult(ctx context.Context, matchID uuid.UUID, team1Score, team2Score int) (*bracket.Result, error) {
	if err := bracket.ValidateScores(team1Score, team2Score); err != nil {
		s.metrics.ResultRejected(err)
		return nil, err
	}

	out, tournament, err := s.apply(ctx, matchID, func(p bracket.Progression, a *bracket.Arena) (*bracket.Outcome, error) {
		return p.SubmitResult(a, matchID, team1Score, team2Score)
	})
	if err != nil {
		s.metrics.ResultRejected(err)
		return nil, err
	}

	s.metrics.ResultAccepted(tournament.Format)
	if tournament.Status == bracket.TournamentCompleted {
		s.metrics.Transition(bracket.TournamentCompleted)
	}
	s.notifier.TournamentUpdated(tournament.ID, "result_submitted")
	s.logger.Info("result recorded",
		"tournament_id", tournament.ID,
		"match_id", matchID,
		"winner_id", out.WinnerID,
		"score", fmt.Sprintf("%d-%d", team1Score, team2Score),
	)
	return &out.Result, nil
}

// ReopenMatch clears a completed result so it can be played again.
func (s *MatchService) ReopenMatch(ctx context.Context, matchID uuid.UUID) error {
	_, tournament, err := s.apply(ctx, matchID, func(p bracket.Progression, a *bracket.Arena) (*bracket.Outcome, error) {
		return p.Reopen(a, matchID)
	})
	if err != nil {
		return err
	}

	s.notifier.TournamentUpdated(tournament.ID, "match_reopened")
	s.logger.Info("match reopened", "tournament_id", tournament.ID, "match_id", matchID)
	return nil
}

// StartMatch marks a ready match as being played.
func (s *MatchService) StartMatch(ctx context.Context, matchID uuid.UUID) error {
	_, tournament, err := s.apply(ctx, matchID, func(p bracket.Progression, a *bracket.Arena) (*bracket.Outcome, error) {
		m, err := p.Start(a, matchID)
		if err != nil {
			return nil, err
		}
		return &bracket.Outcome{Match: m}, nil
	})
	if err != nil {
		return err
	}

	s.notifier.TournamentUpdated(tournament.ID, "match_started")
	return nil
}

type engineOp func(p bracket.Progression, a *bracket.Arena) (*bracket.Outcome, error)

// apply runs op against the tournament's stored matches and persists every
// record the outcome touched.
func (s *MatchService) apply(ctx context.Context, matchID uuid.UUID, op engineOp) (*bracket.Outcome, *bracket.Tournament, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	tournamentID := match.TournamentID

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, nil, err
	}
	if tournament.Status != bracket.TournamentInProgress {
		return nil, nil, fmt.Errorf("%w: tournament is %s", bracket.ErrInvalidBracketState, tournament.Status)
	}

	matches, err := s.store.GetMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get matches: %w", err)
	}
	arena := bracket.NewArena(matches)
	progression := bracket.Progression{Format: tournament.Format, TotalRounds: tournament.TotalRounds}

	out, err := op(progression, arena)
	if err != nil {
		if bracket.IsStructural(err) {
			s.logger.Error("bracket structure is inconsistent",
				"tournament_id", tournamentID,
				"match_id", matchID,
				"error", err,
			)
		}
		return nil, nil, err
	}

	if err := s.store.UpdateMatch(ctx, tx, out.Match); err != nil {
		return nil, nil, fmt.Errorf("failed to update match: %w", err)
	}
	if out.Downstream != nil {
		if err := s.store.UpdateMatch(ctx, tx, out.Downstream); err != nil {
			return nil, nil, fmt.Errorf("failed to update next match: %w", err)
		}
	}
	if err := s.updateParticipants(ctx, tx, tournament, out); err != nil {
		return nil, nil, err
	}

	tournament.CurrentRound = bracket.CurrentRound(arena.Matches(), tournament.TotalRounds)
	if out.Final && s.autoCompleteOnFinal {
		tournament.Status = bracket.TournamentCompleted
	}
	if err := s.store.UpdateTournamentProgress(ctx, tx, tournament); err != nil {
		return nil, nil, fmt.Errorf("failed to update tournament: %w", err)
	}

	return out, tournament, tx.Commit()
}

func (s *MatchService) updateParticipants(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament, out *bracket.Outcome) error {
	if tournament.Format != bracket.SingleElimination {
		return nil
	}

	updates := make(map[uuid.UUID]bracket.ParticipantStatus)
	if out.Reinstated != nil {
		updates[*out.Reinstated] = bracket.ParticipantActive
	}
	if out.Match.Status == bracket.MatchCompleted && out.Match.WinnerID != nil {
		updates[*out.Match.WinnerID] = bracket.ParticipantActive
	}
	if out.Eliminated != nil {
		updates[*out.Eliminated] = bracket.ParticipantEliminated
	}

	for participantID, status := range updates {
		if err := s.store.UpdateParticipantStatus(ctx, tx, participantID, status); err != nil {
			return fmt.Errorf("failed to update participant %s: %w", participantID, err)
		}
	}
	return nil
}
