package bracket

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft            TournamentStatus = "draft"
	TournamentRegistrationOpen TournamentStatus = "registration_open"
	TournamentInProgress       TournamentStatus = "in_progress"
	TournamentCompleted        TournamentStatus = "completed"
	TournamentCancelled        TournamentStatus = "cancelled"
)

type TournamentFormat string

const (
	SingleElimination TournamentFormat = "single_elimination"
	RoundRobin        TournamentFormat = "round_robin"
)

func (f TournamentFormat) Valid() bool {
	return f == SingleElimination || f == RoundRobin
}

type TiebreakerRule string

const (
	RulePoints           TiebreakerRule = "points"
	RuleHeadToHead       TiebreakerRule = "head_to_head"
	RulePointsDifference TiebreakerRule = "points_difference"
	RulePointsScored     TiebreakerRule = "points_scored"
)

// DefaultTiebreakers is the chain used when a tournament does not configure one.
var DefaultTiebreakers = TiebreakerRules{RulePoints, RuleHeadToHead, RulePointsDifference, RulePointsScored}

// TiebreakerRules persists as a comma separated list.
type TiebreakerRules []TiebreakerRule

func (r TiebreakerRules) Value() (driver.Value, error) {
	parts := make([]string, len(r))
	for i, rule := range r {
		parts[i] = string(rule)
	}
	return strings.Join(parts, ","), nil
}

func (r *TiebreakerRules) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into TiebreakerRules", src)
	}

	var rules TiebreakerRules
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			rules = append(rules, TiebreakerRule(part))
		}
	}
	*r = rules
	return nil
}

// Validate checks the rules are a duplicate-free subset of the known rules.
func (r TiebreakerRules) Validate() error {
	seen := make(map[TiebreakerRule]bool, len(r))
	for _, rule := range r {
		switch rule {
		case RulePoints, RuleHeadToHead, RulePointsDifference, RulePointsScored:
		default:
			return fmt.Errorf("%w: unknown tiebreaker rule %q", ErrInvalidConfig, rule)
		}
		if seen[rule] {
			return fmt.Errorf("%w: duplicate tiebreaker rule %q", ErrInvalidConfig, rule)
		}
		seen[rule] = true
	}
	return nil
}

// OrDefault returns the configured chain, or DefaultTiebreakers when none is set.
func (r TiebreakerRules) OrDefault() TiebreakerRules {
	if len(r) == 0 {
		return DefaultTiebreakers
	}
	return r
}

type Points struct {
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
}

var DefaultPoints = Points{Win: 3, Draw: 1, Loss: 0}

type Tournament struct {
	ID      uuid.UUID        `db:"id" json:"id"`
	OwnerID uuid.UUID        `db:"owner_id" json:"owner_id"`
	Name    string           `db:"name" json:"name"`
	Format  TournamentFormat `db:"format" json:"format"`
	Status  TournamentStatus `db:"status" json:"status"`

	MinTeams int `db:"min_teams" json:"min_teams"`
	MaxTeams int `db:"max_teams" json:"max_teams"`

	CurrentRound int `db:"current_round" json:"current_round"`
	TotalRounds  int `db:"total_rounds" json:"total_rounds"`

	TiebreakerRules TiebreakerRules `db:"tiebreaker_rules" json:"tiebreaker_rules"`
	PointsPerWin    int             `db:"points_per_win" json:"points_per_win"`
	PointsPerDraw   int             `db:"points_per_draw" json:"points_per_draw"`
	PointsPerLoss   int             `db:"points_per_loss" json:"points_per_loss"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (t *Tournament) Points() Points {
	return Points{Win: t.PointsPerWin, Draw: t.PointsPerDraw, Loss: t.PointsPerLoss}
}

// Validate checks the configuration accepted at creation.
func (t *Tournament) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if !t.Format.Valid() {
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidConfig, t.Format)
	}
	if t.MinTeams < 2 {
		return fmt.Errorf("%w: min teams must be at least 2", ErrInvalidConfig)
	}
	if t.MaxTeams < t.MinTeams {
		return fmt.Errorf("%w: max teams must not be below min teams", ErrInvalidConfig)
	}
	if t.PointsPerWin < 0 || t.PointsPerDraw < 0 || t.PointsPerLoss < 0 {
		return fmt.Errorf("%w: points must be non-negative", ErrInvalidConfig)
	}
	if t.PointsPerWin <= t.PointsPerLoss {
		return fmt.Errorf("%w: a win must be worth more than a loss", ErrInvalidConfig)
	}
	return t.TiebreakerRules.Validate()
}
