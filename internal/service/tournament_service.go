package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/AdamBeresnev/trivia-tournament/internal/export"
	"github.com/AdamBeresnev/trivia-tournament/internal/metrics"
	"github.com/AdamBeresnev/trivia-tournament/internal/middleware"
	"github.com/AdamBeresnev/trivia-tournament/internal/notify"
	"github.com/AdamBeresnev/trivia-tournament/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	defaultMinTeams = 2
	defaultMaxTeams = 64
)

type TournamentService struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	locks    *TournamentLocks
	layout   bracket.LayoutConfig
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, deps Deps) *TournamentService {
	deps = deps.withDefaults()
	return &TournamentService{
		db:       db,
		store:    store,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		locks:    deps.Locks,
		layout:   deps.Layout,
	}
}

type CreateTournamentInput struct {
	Name            string                   `json:"name"`
	Format          bracket.TournamentFormat `json:"format"`
	MinTeams        int                      `json:"min_teams"`
	MaxTeams        int                      `json:"max_teams"`
	TiebreakerRules bracket.TiebreakerRules  `json:"tiebreaker_rules"`
	Points          *bracket.Points          `json:"points"`
}

type ParticipantInput struct {
	TeamRef string `json:"team_ref"`
	Seed    *int   `json:"seed"`
}

type TournamentData struct {
	Tournament   *bracket.Tournament   `json:"tournament"`
	Participants []bracket.Participant `json:"participants"`
	Matches      []bracket.Match       `json:"matches"`
	NextMatchID  *uuid.UUID            `json:"next_match_id,omitempty"`
}

// Teams maps participant ids to their team reference.
func (d *TournamentData) Teams() map[uuid.UUID]string {
	teams := make(map[uuid.UUID]string, len(d.Participants))
	for _, p := range d.Participants {
		teams[p.ID] = p.TeamRef
	}
	return teams
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*bracket.Tournament, error) {
	ownerID, ok := middleware.GetHostIDFromContext(ctx)
	if !ok {
		return nil, bracket.ErrNotOwner
	}

	points := bracket.DefaultPoints
	if input.Points != nil {
		points = *input.Points
	}
	tournament := &bracket.Tournament{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Name:            strings.TrimSpace(input.Name),
		Format:          input.Format,
		Status:          bracket.TournamentDraft,
		MinTeams:        input.MinTeams,
		MaxTeams:        input.MaxTeams,
		TiebreakerRules: input.TiebreakerRules,
		PointsPerWin:    points.Win,
		PointsPerDraw:   points.Draw,
		PointsPerLoss:   points.Loss,
	}
	if tournament.MinTeams == 0 {
		tournament.MinTeams = defaultMinTeams
	}
	if tournament.MaxTeams == 0 {
		tournament.MaxTeams = max(defaultMaxTeams, tournament.MinTeams)
	}
	if err := tournament.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("tournament created", "tournament_id", tournament.ID, "format", tournament.Format)
	return tournament, nil
}

func (s *TournamentService) OpenRegistration(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.transition(ctx, id, bracket.TournamentRegistrationOpen)
}

func (s *TournamentService) EndTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.transition(ctx, id, bracket.TournamentCompleted)
}

func (s *TournamentService) CancelTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.transition(ctx, id, bracket.TournamentCancelled)
}

// transition moves a tournament along an unguarded edge of the status graph.
func (s *TournamentService) transition(ctx context.Context, id uuid.UUID, to bracket.TournamentStatus) (*bracket.Tournament, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, err
	}
	if err := bracket.CanTransition(tournament.Status, to); err != nil {
		return nil, err
	}

	from := tournament.Status
	tournament.Status = to
	if err := s.store.UpdateTournamentProgress(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.metrics.Transition(to)
	s.notifier.TournamentUpdated(id, "status_"+string(to))
	s.logger.Info("tournament status changed", "tournament_id", id, "from", from, "to", to)
	return tournament, nil
}

// StartTournament closes registration and generates the bracket or schedule.
// Generation and the status change commit together or not at all.
func (s *TournamentService) StartTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, err
	}

	participants, err := s.store.GetParticipantsTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	if err := bracket.StartGuard(tournament, len(participants)); err != nil {
		return nil, err
	}

	tree, err := bracket.Generate(tournament, participants)
	if err != nil {
		return nil, err
	}
	matches := tree.Matches()
	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}

	if tournament.Format == bracket.SingleElimination {
		for _, participantID := range bracket.ByeRecipients(tree) {
			if err := s.store.UpdateParticipantStatus(ctx, tx, participantID, bracket.ParticipantBye); err != nil {
				return nil, fmt.Errorf("failed to mark bye: %w", err)
			}
		}
	}

	tournament.Status = bracket.TournamentInProgress
	tournament.TotalRounds = tree.TotalRounds()
	tournament.CurrentRound = bracket.CurrentRound(matches, tournament.TotalRounds)
	if err := s.store.UpdateTournamentProgress(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.metrics.StructureGenerated(tournament.Format)
	s.metrics.Transition(bracket.TournamentInProgress)
	s.notifier.TournamentUpdated(id, "tournament_started")
	s.logger.Info("tournament started",
		"tournament_id", id,
		"participants", len(participants),
		"matches", len(matches),
		"rounds", tournament.TotalRounds,
	)
	return tournament, nil
}

func (s *TournamentService) RegisterParticipant(ctx context.Context, tournamentID uuid.UUID, input ParticipantInput) (*bracket.Participant, error) {
	teamRef := strings.TrimSpace(input.TeamRef)
	if teamRef == "" {
		return nil, fmt.Errorf("%w: team is required", bracket.ErrInvalidConfig)
	}
	if input.Seed != nil && *input.Seed < 1 {
		return nil, fmt.Errorf("%w: seed must be at least 1", bracket.ErrInvalidConfig)
	}

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, err
	}

	existing, err := s.store.GetParticipantsTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	if err := bracket.RegistrationGuard(tournament, len(existing)); err != nil {
		return nil, err
	}
	for _, p := range existing {
		if strings.EqualFold(p.TeamRef, teamRef) {
			return nil, fmt.Errorf("%w: %s", bracket.ErrDuplicateTeam, teamRef)
		}
	}

	position, err := s.store.NextParticipantPosition(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	participant := &bracket.Participant{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		TeamRef:      teamRef,
		Seed:         input.Seed,
		Position:     position,
		Status:       bracket.ParticipantActive,
	}
	if err := s.store.CreateParticipant(ctx, tx, participant); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.notifier.TournamentUpdated(tournamentID, "participant_registered")
	return participant, nil
}

func (s *TournamentService) WithdrawParticipant(ctx context.Context, tournamentID, participantID uuid.UUID) error {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return err
	}
	if err := authorize(ctx, tournament); err != nil {
		return err
	}
	if tournament.Status != bracket.TournamentRegistrationOpen {
		return bracket.ErrRegistrationClosed
	}
	if err := s.store.DeleteParticipant(ctx, tx, tournamentID, participantID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.notifier.TournamentUpdated(tournamentID, "participant_withdrawn")
	return nil
}

// GetTournamentData loads the tournament, its participants and matches from
// one read transaction so the three agree with each other.
func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.GetParticipantsTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	matches, err := s.store.GetMatchesTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	data := &TournamentData{Tournament: tournament, Participants: participants, Matches: matches}
	for _, m := range data.Matches {
		if m.Status == bracket.MatchPending && m.Ready() {
			id := m.ID
			data.NextMatchID = &id
			break
		}
	}
	return data, nil
}

func (s *TournamentService) GetTournamentsForHost(ctx context.Context) ([]bracket.Tournament, error) {
	hostID, ok := middleware.GetHostIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("host ID not found in the context")
	}
	return s.store.GetTournamentsByOwner(ctx, hostID)
}

// GetStandings ranks the participants over every completed match so far.
func (s *TournamentService) GetStandings(ctx context.Context, id uuid.UUID) ([]bracket.StandingEntry, error) {
	data, err := s.GetTournamentData(ctx, id)
	if err != nil {
		return nil, err
	}
	return standingsOf(data), nil
}

func standingsOf(data *TournamentData) []bracket.StandingEntry {
	t := data.Tournament
	return bracket.ComputeStandings(data.Participants, data.Matches, t.TiebreakerRules, t.Points())
}

// StandingsWorkbook renders the current standings as an .xlsx file.
func (s *TournamentService) StandingsWorkbook(ctx context.Context, id uuid.UUID) ([]byte, error) {
	data, err := s.GetTournamentData(ctx, id)
	if err != nil {
		return nil, err
	}
	return export.StandingsWorkbook(standingsOf(data), data.Teams())
}

// BracketView is the geometry of an elimination bracket together with the
// data needed to label it.
type BracketView struct {
	Data     *TournamentData
	Geometry bracket.Geometry
}

func (s *TournamentService) GetBracketLayout(ctx context.Context, id uuid.UUID) (*BracketView, error) {
	data, err := s.GetTournamentData(ctx, id)
	if err != nil {
		return nil, err
	}
	if data.Tournament.Format != bracket.SingleElimination {
		return nil, bracket.ErrLayoutUnavailable
	}
	return &BracketView{
		Data:     data,
		Geometry: bracket.Layout(data.Matches, data.Tournament.TotalRounds, s.layout),
	}, nil
}
