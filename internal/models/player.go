package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is an entry in the external ranking pool. The draft core looks
// players up by ID but never manages their lifecycle.
type Player struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position Position  `json:"position"`
	NFLTeam  string    `json:"nfl_team"`
	ByeWeek  *int      `json:"bye_week,omitempty"`

	// Expert consensus rank per scoring variant, lower is better.
	ECRRankStandard *int `json:"ecr_rank_standard,omitempty"`
	ECRRankPPR      *int `json:"ecr_rank_ppr,omitempty"`
	ECRRankHalfPPR  *int `json:"ecr_rank_half_ppr,omitempty"`

	// Average draft position per scoring variant.
	ADPStandard *float64 `json:"adp_standard,omitempty"`
	ADPPPR      *float64 `json:"adp_ppr,omitempty"`
	ADPHalfPPR  *float64 `json:"adp_half_ppr,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Rank returns the consensus rank for the given scoring variant. Unranked
// players return ok=false and sort after ranked ones.
func (p *Player) Rank(scoring ScoringType) (int, bool) {
	var r *int
	switch scoring {
	case ScoringStandard:
		r = p.ECRRankStandard
	case ScoringHalfPPR:
		r = p.ECRRankHalfPPR
	default:
		r = p.ECRRankPPR
	}
	if r == nil {
		return 0, false
	}
	return *r, true
}

// ADP returns the average draft position for the given scoring variant.
func (p *Player) ADP(scoring ScoringType) (float64, bool) {
	var a *float64
	switch scoring {
	case ScoringStandard:
		a = p.ADPStandard
	case ScoringHalfPPR:
		a = p.ADPHalfPPR
	default:
		a = p.ADPPPR
	}
	if a == nil {
		return 0, false
	}
	return *a, true
}
