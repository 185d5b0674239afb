package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftTeam belongs to exactly one session and holds a fixed 0-based slot in
// the draft order. Exactly one team per session is human-controlled.
type DraftTeam struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	TeamIndex int       `json:"team_index"` // 0-based, unique per session
	Name      string    `json:"name"`
	IsHuman   bool      `json:"is_human"`

	// Roster counts drafted players per configured slot kind. Initialized to
	// zero for every slot in the session's roster rules.
	Roster map[SlotKind]int `json:"roster"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
