package draft

import (
	"github.com/google/uuid"

	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

// TeamConfig describes one team in a creation request.
type TeamConfig struct {
	TeamIndex int    `json:"team_index"`
	Name      string `json:"name"`
	IsHuman   bool   `json:"is_human"`
}

// CreateSessionRequest is the full configuration for a new draft session.
type CreateSessionRequest struct {
	NumTeams    int                `json:"num_teams"`
	DraftType   models.DraftType   `json:"draft_type"`
	ScoringType models.ScoringType `json:"scoring_type"`
	Roster      models.RosterRules `json:"roster_rules"`
	Teams       []TeamConfig       `json:"teams"`
}

// RecordPickRequest identifies one pick attempt. PickSeconds is optional
// elapsed time supplied by a caller that runs its own pick clock; the core
// records it but never enforces a clock itself.
type RecordPickRequest struct {
	SessionID   uuid.UUID `json:"session_id"`
	TeamID      uuid.UUID `json:"team_id"`
	PlayerID    uuid.UUID `json:"player_id"`
	PickSeconds *int      `json:"pick_seconds,omitempty"`
}

// State is a consistent snapshot of a session for collaborators. No pick is
// ever observed half-applied: the snapshot is taken under one repository read.
type State struct {
	Session     *models.DraftSession `json:"session"`
	Teams       []models.DraftTeam   `json:"teams"`
	OnClockTeam *models.DraftTeam    `json:"on_clock_team,omitempty"`
	Order       [][]int              `json:"order"` // per-round team index order
	Ledger      []models.PickSlot    `json:"ledger"`
	RecentPicks []models.PickSlot    `json:"recent_picks"`
}

// IntegrityReport recomputes the expected team for every filled slot and
// compares it to the ledger. Any mismatch is a structural error.
type IntegrityReport struct {
	SessionID          uuid.UUID          `json:"session_id"`
	Status             models.DraftStatus `json:"status"`
	Valid              bool               `json:"valid"`
	Errors             []string           `json:"errors"`
	TotalPicksExpected int                `json:"total_picks_expected"`
	PicksMade          int                `json:"picks_made"`
	PicksRemaining     int                `json:"picks_remaining"`
	CompletionPercent  float64            `json:"completion_percent"`
}

// Recommendation pairs a suggested player with the strategy reasoning behind
// it. Advisory only, never blocking.
type Recommendation struct {
	Player    models.Player `json:"player"`
	Strategy  string        `json:"strategy"`
	Reasoning string        `json:"reasoning"`
}
