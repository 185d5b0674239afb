package draft

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/neerajsa/fantasy-football-assistant/internal/draft/turn"
	"github.com/neerajsa/fantasy-football-assistant/internal/models"
	"github.com/neerajsa/fantasy-football-assistant/internal/players"
)

// slotBounds caps how many slots of each kind a roster configuration may
// declare. Unknown slot kinds are rejected outright.
type slotBounds struct {
	min, max int
	required bool
}

var rosterSlotBounds = map[models.SlotKind]slotBounds{
	models.SlotQB:        {min: 1, max: 3, required: true},
	models.SlotRB:        {min: 1, max: 6, required: true},
	models.SlotWR:        {min: 1, max: 6, required: true},
	models.SlotTE:        {min: 1, max: 3, required: true},
	models.SlotK:         {min: 0, max: 2, required: true},
	models.SlotDST:       {min: 0, max: 2, required: true},
	models.SlotFlex:      {min: 0, max: 3},
	models.SlotSuperflex: {min: 0, max: 2},
	models.SlotBench:     {min: 1, max: 10, required: true},
}

const (
	minTotalRosterSlots = 10
	maxTotalRosterSlots = 20
	minTeams            = 2
	maxTeams            = 16
)

// ValidateCreation checks a creation request and returns every violation at
// once. An empty slice means the configuration is valid.
func ValidateCreation(req CreateSessionRequest) []string {
	var violations []string

	if req.NumTeams < minTeams || req.NumTeams > maxTeams {
		violations = append(violations,
			fmt.Sprintf("num_teams must be between %d and %d, got %d", minTeams, maxTeams, req.NumTeams))
	}
	switch req.DraftType {
	case models.DraftTypeSnake, models.DraftTypeLinear:
	default:
		violations = append(violations, fmt.Sprintf("unknown draft type %q", req.DraftType))
	}
	switch req.ScoringType {
	case models.ScoringStandard, models.ScoringPPR, models.ScoringHalfPPR:
	default:
		violations = append(violations, fmt.Sprintf("unknown scoring type %q", req.ScoringType))
	}

	if len(req.Teams) != req.NumTeams {
		violations = append(violations,
			fmt.Sprintf("num_teams is %d but %d teams were supplied", req.NumTeams, len(req.Teams)))
	}

	violations = append(violations, validateTeamList(req.NumTeams, req.Teams)...)
	violations = append(violations, validateRosterRules(req.Roster)...)
	return violations
}

func validateTeamList(numTeams int, teams []TeamConfig) []string {
	var violations []string

	seenIndex := make(map[int]bool, len(teams))
	seenName := make(map[string]bool, len(teams))
	humans := 0
	for _, t := range teams {
		if t.TeamIndex < 0 || t.TeamIndex >= numTeams {
			violations = append(violations,
				fmt.Sprintf("team %q has index %d, want 0..%d", t.Name, t.TeamIndex, numTeams-1))
		} else if seenIndex[t.TeamIndex] {
			violations = append(violations,
				fmt.Sprintf("duplicate team index %d", t.TeamIndex))
		}
		seenIndex[t.TeamIndex] = true

		if t.Name == "" {
			violations = append(violations, "team name must not be empty")
		} else if seenName[t.Name] {
			violations = append(violations, fmt.Sprintf("duplicate team name %q", t.Name))
		}
		seenName[t.Name] = true

		if t.IsHuman {
			humans++
		}
	}
	if humans != 1 {
		violations = append(violations,
			fmt.Sprintf("exactly one team must be human-controlled, got %d", humans))
	}
	return violations
}

func validateRosterRules(rules models.RosterRules) []string {
	var violations []string

	seen := make(map[models.SlotKind]bool, len(rules))
	for _, rule := range rules {
		bounds, known := rosterSlotBounds[rule.Kind]
		if !known {
			violations = append(violations, fmt.Sprintf("unknown roster slot %q", rule.Kind))
			continue
		}
		if seen[rule.Kind] {
			violations = append(violations, fmt.Sprintf("roster slot %q configured twice", rule.Kind))
			continue
		}
		seen[rule.Kind] = true

		if rule.Count < bounds.min || rule.Count > bounds.max {
			violations = append(violations,
				fmt.Sprintf("roster slot %q count %d out of range %d..%d",
					rule.Kind, rule.Count, bounds.min, bounds.max))
		}
	}
	for kind, bounds := range rosterSlotBounds {
		if bounds.required && !seen[kind] {
			violations = append(violations, fmt.Sprintf("roster slot %q is required", kind))
		}
	}

	total := rules.TotalSlots()
	if total < minTotalRosterSlots || total > maxTotalRosterSlots {
		violations = append(violations,
			fmt.Sprintf("total roster size %d out of range %d..%d",
				total, minTotalRosterSlots, maxTotalRosterSlots))
	}
	return violations
}

// pickValidator checks one pick attempt against a consistent session snapshot.
type pickValidator struct {
	pool players.Pool
}

// validate resolves the player and returns advisory roster warnings on
// success. Blocking problems come back as the typed errors the caller is
// expected to distinguish: WrongTurnError, DuplicatePickError,
// DuplicatePlayerError, CorruptLedgerError.
func (v *pickValidator) validate(ctx context.Context, state *State, req RecordPickRequest) (*models.Player, []string, error) {
	session := state.Session

	if session.Status != models.DraftStatusInProgress {
		return nil, nil, fmt.Errorf("draft is %s, picks can only be recorded while in progress", session.Status)
	}

	team := teamByID(state.Teams, req.TeamID)
	if team == nil {
		return nil, nil, fmt.Errorf("team %s: %w", req.TeamID, ErrTeamNotFound)
	}

	onClockIndex, err := turn.TeamOnClock(session.DraftType, session.NumTeams, session.CurrentRound, session.CurrentPick)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve team on the clock: %w", err)
	}
	if team.TeamIndex != onClockIndex {
		expected := teamByIndex(state.Teams, onClockIndex)
		wrongTurn := &WrongTurnError{
			ExpectedTeamIndex: onClockIndex,
			GotTeamIndex:      team.TeamIndex,
			GotTeamName:       team.Name,
		}
		if expected != nil {
			wrongTurn.ExpectedTeamName = expected.Name
		}
		return nil, nil, wrongTurn
	}

	player, err := v.pool.Get(ctx, req.PlayerID)
	if err != nil {
		if errors.Is(err, players.ErrPlayerNotFound) {
			return nil, nil, fmt.Errorf("player %s does not exist in the ranking pool", req.PlayerID)
		}
		return nil, nil, fmt.Errorf("failed to resolve player: %w", err)
	}

	// Duplicate-drafted-player is a different violation from slot-already-
	// filled: scan every filled slot before looking at the target slot.
	var target *models.PickSlot
	for i := range state.Ledger {
		slot := &state.Ledger[i]
		if slot.PlayerID != nil && *slot.PlayerID == req.PlayerID {
			dup := &DuplicatePlayerError{
				PlayerID:    req.PlayerID,
				PlayerName:  player.Name,
				DraftedInRd: slot.Round,
			}
			if by := teamByID(state.Teams, slot.TeamID); by != nil {
				dup.DraftedBy = by.Name
			}
			return nil, nil, dup
		}
		if slot.OverallPick == session.CurrentPick {
			target = slot
		}
	}

	if target == nil {
		return nil, nil, &CorruptLedgerError{
			SessionID:   session.ID,
			OverallPick: session.CurrentPick,
			Detail:      "no slot materialized for the current pick",
		}
	}
	if target.TeamID != team.ID {
		return nil, nil, &CorruptLedgerError{
			SessionID:   session.ID,
			OverallPick: session.CurrentPick,
			Detail: fmt.Sprintf("slot belongs to team %s but %s (index %d) is on the clock",
				target.TeamID, team.Name, team.TeamIndex),
		}
	}
	if target.Filled() {
		return nil, nil, &DuplicatePickError{
			OverallPick: target.OverallPick,
			TeamName:    team.Name,
		}
	}

	return player, rosterWarnings(session.Roster, team, player), nil
}

// rosterWarnings flags over-target slot counts. Advisory only.
func rosterWarnings(rules models.RosterRules, team *models.DraftTeam, player *models.Player) []string {
	kind, ok := rules.SlotForPosition(player.Position)
	if !ok {
		return []string{fmt.Sprintf("no roster slot accepts position %s; pick will not count toward the lineup", player.Position)}
	}

	target := rules.Count(kind)
	have := team.Roster[kind]
	if target > 0 && have >= target {
		return []string{fmt.Sprintf("%s already has %d of %d %s slots filled", team.Name, have, target, kind)}
	}
	return nil
}

// BuildIntegrityReport recomputes the expected team for every filled slot and
// compares it against the ledger.
func BuildIntegrityReport(session *models.DraftSession, teams []models.DraftTeam, slots []models.PickSlot) IntegrityReport {
	report := IntegrityReport{
		SessionID:          session.ID,
		Status:             session.Status,
		TotalPicksExpected: session.TotalPicks(),
	}

	indexByTeam := make(map[uuid.UUID]int, len(teams))
	for _, t := range teams {
		indexByTeam[t.ID] = t.TeamIndex
	}

	for _, slot := range slots {
		if !slot.Filled() {
			continue
		}
		report.PicksMade++

		expected, err := turn.TeamOnClock(session.DraftType, session.NumTeams, slot.Round, slot.OverallPick)
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("pick %d: %v", slot.OverallPick, err))
			continue
		}
		actual, ok := indexByTeam[slot.TeamID]
		if !ok {
			report.Errors = append(report.Errors,
				fmt.Sprintf("pick %d: slot assigned to unknown team %s", slot.OverallPick, slot.TeamID))
			continue
		}
		if actual != expected {
			report.Errors = append(report.Errors,
				fmt.Sprintf("pick %d: expected team index %d, slot belongs to team index %d",
					slot.OverallPick, expected, actual))
		}
	}

	report.PicksRemaining = report.TotalPicksExpected - report.PicksMade
	if report.TotalPicksExpected > 0 {
		report.CompletionPercent = float64(report.PicksMade) / float64(report.TotalPicksExpected) * 100
	}
	report.Valid = len(report.Errors) == 0
	return report
}

func teamByID(teams []models.DraftTeam, id uuid.UUID) *models.DraftTeam {
	for i := range teams {
		if teams[i].ID == id {
			return &teams[i]
		}
	}
	return nil
}

func teamByIndex(teams []models.DraftTeam, index int) *models.DraftTeam {
	for i := range teams {
		if teams[i].TeamIndex == index {
			return &teams[i]
		}
	}
	return nil
}
