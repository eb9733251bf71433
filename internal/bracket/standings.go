package bracket

import (
	"sort"

	"github.com/google/uuid"
)

type StandingEntry struct {
	ParticipantID    uuid.UUID `json:"participant_id"`
	MatchesPlayed    int       `json:"matches_played"`
	MatchesWon       int       `json:"matches_won"`
	MatchesLost      int       `json:"matches_lost"`
	MatchesDrawn     int       `json:"matches_drawn"`
	PointsFor        int       `json:"points_for"`
	PointsAgainst    int       `json:"points_against"`
	PointsDifference int       `json:"points_difference"`
	TournamentPoints int       `json:"tournament_points"`
	Position         int       `json:"position"`
}

// record is a single completed, non-bye game seen from both sides.
type record struct {
	a, b           uuid.UUID
	scoreA, scoreB int
}

// ComputeStandings ranks participants over completed matches. Ties are broken
// by the rule chain in order; a head_to_head rule ranks the tied group by a
// mini league of the games played among them and is applied again to any
// smaller group it leaves tied. Participants still level after every rule keep
// seed order.
func ComputeStandings(participants []Participant, matches []Match, rules TiebreakerRules, points Points) []StandingEntry {
	seeded := SeedOrder(participants)

	entries := make(map[uuid.UUID]*StandingEntry, len(seeded))
	order := make([]uuid.UUID, 0, len(seeded))
	for _, p := range seeded {
		entries[p.ID] = &StandingEntry{ParticipantID: p.ID}
		order = append(order, p.ID)
	}

	var games []record
	for _, m := range matches {
		g, ok := gameOf(m)
		if !ok {
			continue
		}
		ea, okA := entries[g.a]
		eb, okB := entries[g.b]
		if !okA || !okB {
			continue
		}
		games = append(games, g)
		tally(ea, g.scoreA, g.scoreB)
		tally(eb, g.scoreB, g.scoreA)
	}

	for _, e := range entries {
		e.PointsDifference = e.PointsFor - e.PointsAgainst
		e.TournamentPoints = e.MatchesWon*points.Win + e.MatchesDrawn*points.Draw + e.MatchesLost*points.Loss
	}

	r := ranker{entries: entries, games: games, rules: rules.OrDefault(), points: points}
	ranked := r.rank(order, 0)

	out := make([]StandingEntry, len(ranked))
	for i, id := range ranked {
		e := *entries[id]
		e.Position = i + 1
		out[i] = e
	}
	return out
}

func gameOf(m Match) (record, bool) {
	if m.Status != MatchCompleted || m.Team1Score == nil || m.Team2Score == nil {
		return record{}, false
	}
	a, okA := m.Slot1.Participant()
	b, okB := m.Slot2.Participant()
	if !okA || !okB {
		return record{}, false
	}
	return record{a: a, b: b, scoreA: *m.Team1Score, scoreB: *m.Team2Score}, true
}

func tally(e *StandingEntry, own, opp int) {
	e.MatchesPlayed++
	e.PointsFor += own
	e.PointsAgainst += opp
	switch {
	case own > opp:
		e.MatchesWon++
	case own < opp:
		e.MatchesLost++
	default:
		e.MatchesDrawn++
	}
}

type ranker struct {
	entries map[uuid.UUID]*StandingEntry
	games   []record
	rules   TiebreakerRules
	points  Points
}

// rank orders group (already in seed order) using rules[ruleIdx:].
func (r ranker) rank(group []uuid.UUID, ruleIdx int) []uuid.UUID {
	if len(group) < 2 || ruleIdx >= len(r.rules) {
		return group
	}

	rule := r.rules[ruleIdx]
	keys := r.keys(rule, group)

	sorted := make([]uuid.UUID, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return keys[sorted[i]] > keys[sorted[j]]
	})

	out := make([]uuid.UUID, 0, len(group))
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && keys[sorted[end]] == keys[sorted[start]] {
			end++
		}
		tied := sorted[start:end]

		switch {
		case len(tied) == 1:
			out = append(out, tied...)
		case rule == RuleHeadToHead && len(tied) < len(group):
			// Smaller tied group: the mini league is recomputed among them only
			out = append(out, r.rank(tied, ruleIdx)...)
		default:
			out = append(out, r.rank(tied, ruleIdx+1)...)
		}
		start = end
	}
	return out
}

func (r ranker) keys(rule TiebreakerRule, group []uuid.UUID) map[uuid.UUID]int {
	keys := make(map[uuid.UUID]int, len(group))
	switch rule {
	case RulePoints:
		for _, id := range group {
			keys[id] = r.entries[id].TournamentPoints
		}
	case RulePointsDifference:
		for _, id := range group {
			keys[id] = r.entries[id].PointsDifference
		}
	case RulePointsScored:
		for _, id := range group {
			keys[id] = r.entries[id].PointsFor
		}
	case RuleHeadToHead:
		keys = r.headToHead(group)
	}
	return keys
}

// headToHead awards tournament points for games played within group only.
func (r ranker) headToHead(group []uuid.UUID) map[uuid.UUID]int {
	inGroup := make(map[uuid.UUID]bool, len(group))
	keys := make(map[uuid.UUID]int, len(group))
	for _, id := range group {
		inGroup[id] = true
		keys[id] = 0
	}
	for _, g := range r.games {
		if !inGroup[g.a] || !inGroup[g.b] {
			continue
		}
		switch {
		case g.scoreA > g.scoreB:
			keys[g.a] += r.points.Win
			keys[g.b] += r.points.Loss
		case g.scoreA < g.scoreB:
			keys[g.b] += r.points.Win
			keys[g.a] += r.points.Loss
		default:
			keys[g.a] += r.points.Draw
			keys[g.b] += r.points.Draw
		}
	}
	return keys
}
