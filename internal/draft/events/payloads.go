// Package events defines the payloads of the domain events the draft core
// publishes for collaborators (gateways, recommendation UIs, analytics).
package events

import (
	"time"
)

// Event type names as they appear on the wire.
const (
	TypeDraftStarted   = "DraftStarted"
	TypeDraftCompleted = "DraftCompleted"
	TypeDraftAbandoned = "DraftAbandoned"
	TypePickMade       = "PickMade"
	TypePickStarted    = "PickStarted"
)

// DraftStartedPayload is emitted when a session moves to in_progress.
type DraftStartedPayload struct {
	SessionID   string    `json:"session_id"`
	DraftType   string    `json:"draft_type"`
	StartedAt   time.Time `json:"started_at"`
	TotalRounds int       `json:"total_rounds"`
	TotalPicks  int       `json:"total_picks"`
}

// PickMadePayload is emitted every time a pick is recorded.
type PickMadePayload struct {
	SlotID      string    `json:"slot_id"`
	TeamID      string    `json:"team_id"`
	TeamName    string    `json:"team_name"`
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Round       int       `json:"round"`
	Pick        int       `json:"pick"` // position within the round
	OverallPick int       `json:"overall_pick"`
	MadeAt      time.Time `json:"made_at"`
}

// PickStartedPayload announces the next team on the clock after a pick is
// recorded (or after the draft starts). The core does not run a pick clock;
// TimeoutAt is left to collaborators that do.
type PickStartedPayload struct {
	SlotID      string    `json:"slot_id"`
	TeamID      string    `json:"team_id"`
	TeamName    string    `json:"team_name"`
	Round       int       `json:"round"`
	Pick        int       `json:"pick"`
	OverallPick int       `json:"overall_pick"`
	StartedAt   time.Time `json:"started_at"`
}

// DraftCompletedPayload is emitted when the final slot fills.
type DraftCompletedPayload struct {
	SessionID   string    `json:"session_id"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    string    `json:"duration"`
	TotalPicks  int       `json:"total_picks"`
}

// DraftAbandonedPayload is emitted on explicit operator abandonment.
type DraftAbandonedPayload struct {
	SessionID   string    `json:"session_id"`
	AbandonedAt time.Time `json:"abandoned_at"`
	Reason      string    `json:"reason,omitempty"`
}
