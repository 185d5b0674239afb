package players

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

func rankedPlayer(name string, pos models.Position, pprRank int) models.Player {
	return models.Player{
		ID:         uuid.New(),
		Name:       name,
		Position:   pos,
		ECRRankPPR: &pprRank,
	}
}

func TestMemoryPoolGet(t *testing.T) {
	p := rankedPlayer("Ja'Marr Chase", models.PositionWR, 1)
	pool := NewMemoryPool([]models.Player{p})

	got, err := pool.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)

	_, err = pool.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestMemoryPoolListAvailableOrdering(t *testing.T) {
	unranked := models.Player{ID: uuid.New(), Name: "Camp Body", Position: models.PositionWR}
	ps := []models.Player{
		rankedPlayer("Third", models.PositionRB, 3),
		rankedPlayer("First", models.PositionWR, 1),
		unranked,
		rankedPlayer("Second", models.PositionQB, 2),
	}
	pool := NewMemoryPool(ps)

	out, err := pool.ListAvailable(context.Background(), Filter{Scoring: models.ScoringPPR})
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, "First", out[0].Name)
	assert.Equal(t, "Second", out[1].Name)
	assert.Equal(t, "Third", out[2].Name)
	// Unranked players sort last.
	assert.Equal(t, "Camp Body", out[3].Name)
}

func TestMemoryPoolListAvailableFilters(t *testing.T) {
	wr1 := rankedPlayer("WR One", models.PositionWR, 1)
	wr2 := rankedPlayer("WR Two", models.PositionWR, 2)
	rb := rankedPlayer("RB One", models.PositionRB, 3)
	pool := NewMemoryPool([]models.Player{wr1, wr2, rb})

	posWR := models.PositionWR
	out, err := pool.ListAvailable(context.Background(), Filter{
		Exclude:  map[uuid.UUID]bool{wr1.ID: true},
		Position: &posWR,
		Scoring:  models.ScoringPPR,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "WR Two", out[0].Name)

	out, err = pool.ListAvailable(context.Background(), Filter{Scoring: models.ScoringPPR, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestMemoryPoolScoringVariants(t *testing.T) {
	std, ppr := 5, 1
	a := models.Player{ID: uuid.New(), Name: "A", Position: models.PositionWR,
		ECRRankStandard: &std, ECRRankPPR: &ppr}
	std2, ppr2 := 1, 5
	b := models.Player{ID: uuid.New(), Name: "B", Position: models.PositionRB,
		ECRRankStandard: &std2, ECRRankPPR: &ppr2}
	pool := NewMemoryPool([]models.Player{a, b})

	out, err := pool.ListAvailable(context.Background(), Filter{Scoring: models.ScoringPPR})
	require.NoError(t, err)
	assert.Equal(t, "A", out[0].Name)

	out, err = pool.ListAvailable(context.Background(), Filter{Scoring: models.ScoringStandard})
	require.NoError(t, err)
	assert.Equal(t, "B", out[0].Name)
}
