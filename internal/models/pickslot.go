package models

import (
	"time"

	"github.com/google/uuid"
)

// PickSlot represents a single slot in a session's pick ledger. The full
// ledger is materialized empty at creation time; a slot transitions once from
// empty to filled when its pick is recorded.
type PickSlot struct {
	ID             uuid.UUID  `json:"id"`
	SessionID      uuid.UUID  `json:"session_id"`
	TeamID         uuid.UUID  `json:"team_id"`
	Round          int        `json:"round"`
	OverallPick    int        `json:"overall_pick"`     // 1-based, unique per session
	TeamPickNumber int        `json:"team_pick_number"` // which Nth pick for the team, 1-based
	PlayerID       *uuid.UUID `json:"player_id,omitempty"`
	PickedAt       *time.Time `json:"picked_at,omitempty"`
	PickSeconds    *int       `json:"pick_seconds,omitempty"` // elapsed time if the caller supplied it
}

// Filled reports whether the slot's pick has been recorded.
func (p *PickSlot) Filled() bool {
	return p.PlayerID != nil
}
