package draft

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

// ErrNoAvailablePlayers is returned when the ranking pool has nothing left to
// pick from.
var ErrNoAvailablePlayers = errors.New("no available players to pick from")

// Strategy names for autopick and recommendations.
const (
	StrategyBestAvailable  = "best_available"
	StrategyPositionalNeed = "positional_need"
	StrategyValue          = "value"
	StrategyBalanced       = "balanced"
)

// autopickPoolSize bounds how deep into the rankings the selector looks.
const autopickPoolSize = 500

// Position priorities shift across draft stages: skill positions dominate
// early rounds, onesie positions and depth fill in late.
var (
	positionPriorityEarly = []models.Position{models.PositionRB, models.PositionWR, models.PositionQB, models.PositionTE, models.PositionK, models.PositionDST}
	positionPriorityMid   = []models.Position{models.PositionRB, models.PositionWR, models.PositionTE, models.PositionQB, models.PositionK, models.PositionDST}
	positionPriorityLate  = []models.Position{models.PositionQB, models.PositionTE, models.PositionK, models.PositionDST, models.PositionRB, models.PositionWR}
)

// positionTargets is how many players at each position a finished roster
// typically carries, bench depth included.
var positionTargets = map[models.Position]int{
	models.PositionQB:  1,
	models.PositionRB:  3,
	models.PositionWR:  4,
	models.PositionTE:  2,
	models.PositionK:   1,
	models.PositionDST: 1,
}

// selector picks players for computer-controlled teams. The rand source is
// injected so tests can pin the choice.
type selector struct {
	rng *rand.Rand
}

func (s *selector) pick(strategy string, available []models.Player, team *models.DraftTeam, session *models.DraftSession) (*models.Player, error) {
	if len(available) == 0 {
		return nil, ErrNoAvailablePlayers
	}

	switch strategy {
	case StrategyBestAvailable:
		return s.bestAvailable(available), nil
	case StrategyPositionalNeed:
		return s.positionalNeed(available, team, session), nil
	case StrategyValue:
		return s.valuePick(available, session), nil
	case StrategyBalanced:
		return s.balanced(available, team, session), nil
	default:
		return nil, fmt.Errorf("unknown autopick strategy %q", strategy)
	}
}

// bestAvailable takes one of the top three ranked players, weighted toward
// the top, so repeated simulations do not all draft identically.
func (s *selector) bestAvailable(available []models.Player) *models.Player {
	n := len(available)
	if n > 3 {
		n = 3
	}
	// Weights 3:2:1 across the top slots.
	weights := []int{3, 2, 1}[:n]
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := s.rng.Intn(total)
	for i, w := range weights {
		if roll < w {
			return &available[i]
		}
		roll -= w
	}
	return &available[0]
}

// positionalNeed walks the stage-appropriate position priority and drafts the
// first position the team is still short at. Falls back to best available
// when every target is met.
func (s *selector) positionalNeed(available []models.Player, team *models.DraftTeam, session *models.DraftSession) *models.Player {
	priority := positionPriorityMid
	switch {
	case session.CurrentRound <= 3:
		priority = positionPriorityEarly
	case session.CurrentRound > 8:
		priority = positionPriorityLate
	}

	counts := countByPosition(team, session)
	for _, pos := range priority {
		if counts[pos] >= positionTargets[pos] {
			continue
		}
		var atPosition []models.Player
		for _, p := range available {
			if p.Position == pos {
				atPosition = append(atPosition, p)
				if len(atPosition) == 2 {
					break
				}
			}
		}
		if len(atPosition) > 0 {
			return &atPosition[s.rng.Intn(len(atPosition))]
		}
	}
	return s.bestAvailable(available)
}

// valuePick looks for players whose ranking beats their average draft
// position by more than ten picks.
func (s *selector) valuePick(available []models.Player, session *models.DraftSession) *models.Player {
	type scored struct {
		player models.Player
		value  float64
	}

	var candidates []scored
	limit := len(available)
	if limit > 50 {
		limit = 50
	}
	for _, p := range available[:limit] {
		rank, rankOK := p.Rank(session.ScoringType)
		adp, adpOK := p.ADP(session.ScoringType)
		if !rankOK || !adpOK {
			continue
		}
		if value := adp - float64(rank); value > 10 {
			candidates = append(candidates, scored{player: p, value: value})
		}
	}
	if len(candidates) == 0 {
		return s.bestAvailable(available)
	}

	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].value > candidates[j-1].value; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	n := len(candidates)
	if n > 3 {
		n = 3
	}
	return &candidates[s.rng.Intn(n)].player
}

// balanced mixes best-available and positional need, shifting toward need as
// the draft progresses.
func (s *selector) balanced(available []models.Player, team *models.DraftTeam, session *models.DraftSession) *models.Player {
	var bpaChance float64
	switch {
	case session.CurrentRound <= 4:
		bpaChance = 0.7
	case session.CurrentRound <= 10:
		bpaChance = 0.4
	default:
		bpaChance = 0.2
	}
	if s.rng.Float64() < bpaChance {
		return s.bestAvailable(available)
	}
	return s.positionalNeed(available, team, session)
}

// countByPosition projects the slot-kind roster counters back onto positions.
// Flexible slots cannot be attributed to a single position, so their players
// are credited to the first position the slot accepts that is still under
// target; this is a heuristic input, not ledger truth.
func countByPosition(team *models.DraftTeam, session *models.DraftSession) map[models.Position]int {
	counts := make(map[models.Position]int)
	for _, rule := range session.Roster {
		filled := team.Roster[rule.Kind]
		if filled == 0 {
			continue
		}
		if !rule.Kind.Flexible() {
			for pos := range positionTargets {
				if rule.Kind.Accepts(pos) {
					counts[pos] += filled
					break
				}
			}
			continue
		}
		for pos := range positionTargets {
			if filled == 0 {
				break
			}
			if rule.Kind.Accepts(pos) && counts[pos] < positionTargets[pos] {
				counts[pos]++
				filled--
			}
		}
	}
	return counts
}

// Autopick selects and records a pick for a computer-controlled team using
// the given strategy.
func (a *App) Autopick(ctx context.Context, sessionID, teamID uuid.UUID, strategy string) (*models.PickSlot, error) {
	state, err := a.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	team := teamByID(state.Teams, teamID)
	if team == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrTeamNotFound)
	}
	if team.IsHuman {
		return nil, fmt.Errorf("team %s is human-controlled, autopick refused", team.Name)
	}

	available, err := a.AvailablePlayers(ctx, sessionID, nil, autopickPoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list available players: %w", err)
	}

	player, err := a.selector().pick(strategy, available, team, state.Session)
	if err != nil {
		return nil, err
	}

	slot, _, err := a.RecordPick(ctx, RecordPickRequest{
		SessionID: sessionID,
		TeamID:    teamID,
		PlayerID:  player.ID,
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("session_id", sessionID.String()).
		Str("team", team.Name).
		Str("player", player.Name).
		Str("strategy", strategy).
		Msg("autopick recorded")
	return slot, nil
}

// Recommendations suggests players for a human team: one per strategy, then
// top-ranked fillers, deduplicated.
func (a *App) Recommendations(ctx context.Context, sessionID, teamID uuid.UUID, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = 5
	}

	state, err := a.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	team := teamByID(state.Teams, teamID)
	if team == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrTeamNotFound)
	}

	available, err := a.AvailablePlayers(ctx, sessionID, nil, autopickPoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list available players: %w", err)
	}
	if len(available) == 0 {
		return nil, nil
	}

	sel := a.selector()
	var recs []Recommendation
	seen := make(map[uuid.UUID]bool)
	add := func(p *models.Player, strategy, reasoning string) {
		if p == nil || seen[p.ID] || len(recs) >= limit {
			return
		}
		seen[p.ID] = true
		recs = append(recs, Recommendation{Player: *p, Strategy: strategy, Reasoning: reasoning})
	}

	add(&available[0], StrategyBestAvailable, "Best player available")
	need := sel.positionalNeed(available, team, state.Session)
	add(need, StrategyPositionalNeed, fmt.Sprintf("Fills %s need", need.Position))
	add(sel.valuePick(available, state.Session), StrategyValue, "Outperforms average draft position")

	for i := range available {
		if len(recs) >= limit {
			break
		}
		add(&available[i], StrategyBestAvailable, "High-ranked available player")
	}
	return recs, nil
}

func (a *App) selector() *selector {
	if a.rng != nil {
		return &selector{rng: a.rng}
	}
	return &selector{rng: rand.New(rand.NewSource(a.clock.Now().UnixNano()))}
}
