package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

// LayoutConfig holds the renderer-agnostic box and gap sizes.
type LayoutConfig struct {
	MatchBoxWidth      float64
	MatchBoxHeight     float64
	RoundHorizontalGap float64
	MatchVerticalGap   float64
	Margin             float64
}

var DefaultLayout = LayoutConfig{
	MatchBoxWidth:      220,
	MatchBoxHeight:     64,
	RoundHorizontalGap: 80,
	MatchVerticalGap:   24,
	Margin:             20,
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type RoundColumn struct {
	Number int     `json:"number"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
}

type MatchBox struct {
	MatchID     uuid.UUID   `json:"match_id"`
	Round       int         `json:"round"`
	MatchNumber int         `json:"match_number"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	CenterY     float64     `json:"center_y"`
	Slot1       Slot        `json:"-"`
	Slot2       Slot        `json:"-"`
	Status      MatchStatus `json:"status"`
}

// SlotY is the vertical anchor of an input slot, 1 in the upper half of the box.
func (b MatchBox) SlotY(slot int) float64 {
	if slot == 1 {
		return b.Y + b.Height/4
	}
	return b.Y + 3*b.Height/4
}

// Connector is an elbow path from a match's output edge into the input slot of
// the match its winner advances to.
type Connector struct {
	FromMatchID uuid.UUID `json:"from_match_id"`
	ToMatchID   uuid.UUID `json:"to_match_id"`
	ToSlot      int       `json:"to_slot"`
	Points      []Point   `json:"points"`
}

type Geometry struct {
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Rounds     []RoundColumn `json:"rounds"`
	Matches    []MatchBox    `json:"matches"`
	Connectors []Connector   `json:"connectors"`
}

// RoundName names a round by its distance from the final.
func RoundName(round, totalRounds int) string {
	switch totalRounds - round {
	case 0:
		return "Final"
	case 1:
		return "Semifinal"
	case 2:
		return "Quarterfinal"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}

// RoundX is the left edge of a round's column.
func (c LayoutConfig) RoundX(round int) float64 {
	return float64(round-1)*(c.MatchBoxWidth+c.RoundHorizontalGap) + c.Margin
}

// centerY places match index i of a round so that it sits on the midpoint of
// its two feeders: round 1 is spaced by one unit, round r by 2^(r-1) units.
func (c LayoutConfig) centerY(round, index int) float64 {
	unit := c.MatchBoxHeight + c.MatchVerticalGap
	span := float64(int(1) << (round - 1))
	return c.Margin + c.MatchBoxHeight/2 + unit*(span*float64(index)+(span-1)/2)
}

// Layout computes the bracket geometry for an elimination match arena. It is
// a pure function of its inputs.
func Layout(matches []Match, totalRounds int, cfg LayoutConfig) Geometry {
	g := Geometry{}
	if totalRounds < 1 {
		return g
	}

	firstRound := 1 << (totalRounds - 1)
	unit := cfg.MatchBoxHeight + cfg.MatchVerticalGap
	g.Height = 2*cfg.Margin + float64(firstRound)*unit - cfg.MatchVerticalGap
	g.Width = 2*cfg.Margin + float64(totalRounds)*cfg.MatchBoxWidth + float64(totalRounds-1)*cfg.RoundHorizontalGap

	for r := 1; r <= totalRounds; r++ {
		g.Rounds = append(g.Rounds, RoundColumn{Number: r, Name: RoundName(r, totalRounds), X: cfg.RoundX(r)})
	}

	tree := GroupRounds(matches)
	boxes := make(map[position]MatchBox, len(matches))
	for _, round := range tree.Rounds {
		if round.Number < 1 || round.Number > totalRounds {
			continue
		}
		for _, m := range round.Matches {
			cy := cfg.centerY(m.Round, m.MatchNumber-1)
			box := MatchBox{
				MatchID:     m.ID,
				Round:       m.Round,
				MatchNumber: m.MatchNumber,
				X:           cfg.RoundX(m.Round),
				Y:           cy - cfg.MatchBoxHeight/2,
				Width:       cfg.MatchBoxWidth,
				Height:      cfg.MatchBoxHeight,
				CenterY:     cy,
				Slot1:       m.Slot1,
				Slot2:       m.Slot2,
				Status:      m.Status,
			}
			boxes[position{m.Round, m.MatchNumber}] = box
			g.Matches = append(g.Matches, box)
		}
	}

	for _, from := range g.Matches {
		// Index i = matchNumber-1 feeds floor(i/2), slot 1 when i is even
		next, number, slot, ok := Destination(from.Round, from.MatchNumber, totalRounds)
		if !ok {
			continue
		}
		to, ok := boxes[position{next, number}]
		if !ok {
			continue
		}
		startX := from.X + from.Width
		elbowX := startX + cfg.RoundHorizontalGap/2
		targetY := to.SlotY(slot)
		g.Connectors = append(g.Connectors, Connector{
			FromMatchID: from.MatchID,
			ToMatchID:   to.MatchID,
			ToSlot:      slot,
			Points: []Point{
				{X: startX, Y: from.CenterY},
				{X: elbowX, Y: from.CenterY},
				{X: elbowX, Y: targetY},
				{X: to.X, Y: targetY},
			},
		})
	}

	return g
}
