// Package players exposes the ranked player pool the draft core consumes.
// The pool owns player lifecycle; the core only looks players up and asks for
// availability-ordered listings.
package players

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

// ErrPlayerNotFound is returned when a player ID resolves to nothing.
var ErrPlayerNotFound = errors.New("players: player not found")

// Filter narrows and orders an availability listing. Exclude holds IDs that
// are already drafted; Scoring selects which precomputed ranking variant
// orders the result.
type Filter struct {
	Exclude  map[uuid.UUID]bool
	Position *models.Position
	Scoring  models.ScoringType
	Limit    int
}

// Pool is the ranked, filterable player pool collaborator.
type Pool interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Player, error)
	// ListAvailable returns undrafted players ordered best-rank-first for the
	// filter's scoring variant. Unranked players sort last.
	ListAvailable(ctx context.Context, f Filter) ([]models.Player, error)
}
