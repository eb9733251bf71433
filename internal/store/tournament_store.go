package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	createTournamentQuery = `
		INSERT INTO tournaments (id, owner_id, name, format, status, min_teams, max_teams, current_round, total_rounds,
			tiebreaker_rules, points_per_win, points_per_draw, points_per_loss)
		VALUES (:id, :owner_id, :name, :format, :status, :min_teams, :max_teams, :current_round, :total_rounds,
			:tiebreaker_rules, :points_per_win, :points_per_draw, :points_per_loss)
	`
	updateTournamentProgressQuery = `
		UPDATE tournaments SET
		status = :status,
		current_round = :current_round,
		total_rounds = :total_rounds
		WHERE id = :id
	`
	createParticipantQuery = `
		INSERT INTO participants (id, tournament_id, team_ref, seed, position, status)
		VALUES (:id, :tournament_id, :team_ref, :seed, :position, :status)
	`
	createMatchesQuery = `
		INSERT INTO matches (id, tournament_id, round, match_number, slot_1, slot_2, team_1_score, team_2_score,
			winner_id, loser_id, status)
		VALUES (:id, :tournament_id, :round, :match_number, :slot_1, :slot_2, :team_1_score, :team_2_score,
			:winner_id, :loser_id, :status)
	`
	updateMatchQuery = `
		UPDATE matches SET
		slot_1 = :slot_1,
		slot_2 = :slot_2,
		team_1_score = :team_1_score,
		team_2_score = :team_2_score,
		winner_id = :winner_id,
		loser_id = :loser_id,
		status = :status,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = :id
	`
)

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	return s.getTournament(ctx, tx, id)
}

func (s *TournamentStore) getTournament(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := sqlx.GetContext(ctx, q, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", bracket.ErrTournamentNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments WHERE owner_id = ? ORDER BY created_at DESC", ownerID)
	return tournaments, err
}

// UpdateTournamentProgress writes status, current round and total rounds.
func (s *TournamentStore) UpdateTournamentProgress(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	res, err := tx.NamedExecContext(ctx, updateTournamentProgressQuery, tournament)
	if err != nil {
		return err
	}
	return expectOneRow(res, bracket.ErrTournamentNotFound)
}

func (s *TournamentStore) CreateParticipant(ctx context.Context, tx *sqlx.Tx, participant *bracket.Participant) error {
	_, err := tx.NamedExecContext(ctx, createParticipantQuery, participant)
	return err
}

func (s *TournamentStore) DeleteParticipant(ctx context.Context, tx *sqlx.Tx, tournamentID, participantID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE id = ? AND tournament_id = ?", participantID, tournamentID)
	if err != nil {
		return err
	}
	return expectOneRow(res, bracket.ErrParticipantNotFound)
}

func (s *TournamentStore) GetParticipants(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Participant, error) {
	return s.getParticipants(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetParticipantsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Participant, error) {
	return s.getParticipants(ctx, tx, tournamentID)
}

func (s *TournamentStore) getParticipants(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Participant, error) {
	var participants []bracket.Participant
	err := sqlx.SelectContext(ctx, q, &participants, "SELECT * FROM participants WHERE tournament_id = ? ORDER BY position ASC", tournamentID)
	return participants, err
}

// NextParticipantPosition returns the registration position for a new participant.
func (s *TournamentStore) NextParticipantPosition(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var last sql.NullInt64
	err := tx.GetContext(ctx, &last, "SELECT MAX(position) FROM participants WHERE tournament_id = ?", tournamentID)
	if err != nil {
		return 0, err
	}
	return int(last.Int64) + 1, nil
}

func (s *TournamentStore) UpdateParticipantStatus(ctx context.Context, tx *sqlx.Tx, participantID uuid.UUID, status bracket.ParticipantStatus) error {
	res, err := tx.ExecContext(ctx, "UPDATE participants SET status = ? WHERE id = ?", status, participantID)
	if err != nil {
		return err
	}
	return expectOneRow(res, bracket.ErrParticipantNotFound)
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, createMatchesQuery, matches)
	return err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	return s.getMatch(ctx, s.db, id)
}

func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Match, error) {
	return s.getMatch(ctx, tx, id)
}

func (s *TournamentStore) getMatch(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	err := sqlx.GetContext(ctx, q, &match, "SELECT * FROM matches WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", bracket.ErrMatchNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return s.getMatches(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return s.getMatches(ctx, tx, tournamentID)
}

func (s *TournamentStore) getMatches(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := sqlx.SelectContext(ctx, q, &matches, "SELECT * FROM matches WHERE tournament_id = ? ORDER BY round ASC, match_number ASC", tournamentID)
	return matches, err
}

func (s *TournamentStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	res, err := tx.NamedExecContext(ctx, updateMatchQuery, match)
	if err != nil {
		return err
	}
	return expectOneRow(res, bracket.ErrMatchNotFound)
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
