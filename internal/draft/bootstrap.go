package draft

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/neerajsa/fantasy-football-assistant/internal/draft/turn"
	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

// materializeLedger builds the complete empty pick ledger for a session in a
// single pass: every overall pick resolved to its round, team, and per-team
// sequence number up front, so recording a pick only ever has to locate an
// existing slot.
func materializeLedger(session *models.DraftSession, teams []models.DraftTeam) ([]models.PickSlot, error) {
	teamByIndex := make(map[int]uuid.UUID, len(teams))
	for _, t := range teams {
		teamByIndex[t.TeamIndex] = t.ID
	}

	total := session.TotalPicks()
	slots := make([]models.PickSlot, 0, total)
	teamSeq := make(map[uuid.UUID]int, len(teams))

	for pick := 1; pick <= total; pick++ {
		pos, err := turn.PositionInfo(pick, session.DraftType, session.NumTeams)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pick %d: %w", pick, err)
		}
		teamID, ok := teamByIndex[pos.TeamIndex]
		if !ok {
			return nil, fmt.Errorf("no team configured at draft index %d", pos.TeamIndex)
		}
		teamSeq[teamID]++

		slots = append(slots, models.PickSlot{
			ID:             uuid.New(),
			SessionID:      session.ID,
			TeamID:         teamID,
			Round:          pos.Round,
			OverallPick:    pos.OverallPick,
			TeamPickNumber: teamSeq[teamID],
		})
	}
	return slots, nil
}
