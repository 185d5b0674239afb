package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftType defines how the turn order moves between rounds.
type DraftType string

const (
	DraftTypeSnake  DraftType = "snake"
	DraftTypeLinear DraftType = "linear"
)

// DraftStatus defines the lifecycle status of a draft session.
type DraftStatus string

const (
	DraftStatusCreated    DraftStatus = "created"
	DraftStatusInProgress DraftStatus = "in_progress"
	DraftStatusCompleted  DraftStatus = "completed"
	DraftStatusAbandoned  DraftStatus = "abandoned"
)

// ScoringType selects which precomputed ranking variant orders the player pool.
type ScoringType string

const (
	ScoringStandard ScoringType = "standard"
	ScoringPPR      ScoringType = "ppr"
	ScoringHalfPPR  ScoringType = "half_ppr"
)

// DraftSession represents one live draft. Config fields (NumTeams, DraftType,
// ScoringType, Roster, TotalRounds) are immutable after creation; progress
// fields move forward one pick at a time.
type DraftSession struct {
	ID          uuid.UUID   `json:"id"`
	NumTeams    int         `json:"num_teams"`
	DraftType   DraftType   `json:"draft_type"`
	ScoringType ScoringType `json:"scoring_type"`
	Roster      RosterRules `json:"roster_rules"`
	TotalRounds int         `json:"total_rounds"`

	Status           DraftStatus `json:"status"`
	CurrentRound     int         `json:"current_round"`      // 1-based
	CurrentPick      int         `json:"current_pick"`       // 1-based overall pick
	CurrentTeamIndex int         `json:"current_team_index"` // 0-based

	// Version increments on every progress mutation. Repositories reject
	// updates whose version does not match the stored row.
	Version int64 `json:"version"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TotalPicks returns the size of the full pick ledger.
func (s *DraftSession) TotalPicks() int {
	return s.NumTeams * s.TotalRounds
}
