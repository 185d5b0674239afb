// Package turn maps pick numbers to the team on the clock for snake and
// linear drafts. Everything here is pure: no state, no I/O, fully
// deterministic, so both the state machine and the validator can call it and
// always agree on whose turn it is.
package turn

import (
	"errors"

	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

var (
	// ErrTooFewTeams is returned when fewer than two teams are supplied.
	ErrTooFewTeams = errors.New("turn: draft requires at least 2 teams")
	// ErrUnknownDraftType is returned for draft types outside {snake, linear}.
	ErrUnknownDraftType = errors.New("turn: unknown draft type")
)

// Position locates one pick in the draft: its round, its 1-based position
// within the round, and the 0-based index of the team on the clock.
type Position struct {
	OverallPick     int
	Round           int
	PositionInRound int
	TeamIndex       int
}

// TotalRounds derives the round count from roster requirements: one round per
// roster slot, bench included.
func TotalRounds(rules models.RosterRules) int {
	return rules.TotalSlots()
}

// TeamOnClock returns the 0-based index of the team picking at the given
// round and overall pick. Snake drafts reverse direction every round; linear
// drafts repeat the same order.
func TeamOnClock(draftType models.DraftType, numTeams, round, overallPick int) (int, error) {
	if numTeams < 2 {
		return 0, ErrTooFewTeams
	}
	pickInRound := (overallPick - 1) % numTeams

	switch draftType {
	case models.DraftTypeSnake:
		if (round-1)%2 == 0 {
			return pickInRound, nil
		}
		return numTeams - 1 - pickInRound, nil
	case models.DraftTypeLinear:
		return pickInRound, nil
	default:
		return 0, ErrUnknownDraftType
	}
}

// PositionInfo resolves an arbitrary absolute pick number without simulating
// any prior pick, which is what lets the bootstrapper build the whole ledger
// in one pass.
func PositionInfo(pickNumber int, draftType models.DraftType, numTeams int) (Position, error) {
	round := ((pickNumber - 1) / numTeams) + 1
	teamIndex, err := TeamOnClock(draftType, numTeams, round, pickNumber)
	if err != nil {
		return Position{}, err
	}
	return Position{
		OverallPick:     pickNumber,
		Round:           round,
		PositionInRound: ((pickNumber - 1) % numTeams) + 1,
		TeamIndex:       teamIndex,
	}, nil
}

// Next advances from the current pick. The second return value reports
// whether the draft still has picks left: ok=false means the current pick was
// the final one and the draft is complete. Exhaustion is an expected terminal
// outcome, not an error.
func Next(draftType models.DraftType, numTeams, totalRounds, currentPick int) (Position, bool, error) {
	if numTeams < 2 {
		return Position{}, false, ErrTooFewTeams
	}
	nextPick := currentPick + 1
	if nextPick > numTeams*totalRounds {
		return Position{}, false, nil
	}
	pos, err := PositionInfo(nextPick, draftType, numTeams)
	if err != nil {
		return Position{}, false, err
	}
	return pos, true, nil
}

// Complete reports whether the progress pointer has moved past the final pick.
func Complete(currentPick, numTeams, totalRounds int) bool {
	return currentPick > numTeams*totalRounds
}

// Order returns the per-round team index order for the whole draft, one inner
// slice per round. Used by board-state consumers.
func Order(draftType models.DraftType, numTeams, totalRounds int) ([][]int, error) {
	if numTeams < 2 {
		return nil, ErrTooFewTeams
	}
	if draftType != models.DraftTypeSnake && draftType != models.DraftTypeLinear {
		return nil, ErrUnknownDraftType
	}

	order := make([][]int, totalRounds)
	for r := 0; r < totalRounds; r++ {
		roundOrder := make([]int, numTeams)
		for i := 0; i < numTeams; i++ {
			roundOrder[i] = i
		}
		if draftType == models.DraftTypeSnake && r%2 == 1 {
			for i, j := 0, numTeams-1; i < j; i, j = i+1, j-1 {
				roundOrder[i], roundOrder[j] = roundOrder[j], roundOrder[i]
			}
		}
		order[r] = roundOrder
	}
	return order, nil
}
