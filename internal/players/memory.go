package players

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

// MemoryPool is an in-memory Pool, used in tests and single-process setups
// where rankings are loaded once at startup.
type MemoryPool struct {
	mu      sync.RWMutex
	players map[uuid.UUID]models.Player
}

func NewMemoryPool(players []models.Player) *MemoryPool {
	byID := make(map[uuid.UUID]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return &MemoryPool{players: byID}
}

func (m *MemoryPool) Get(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[id]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", id, ErrPlayerNotFound)
	}
	return &p, nil
}

func (m *MemoryPool) ListAvailable(ctx context.Context, f Filter) ([]models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Player
	for _, p := range m.players {
		if f.Exclude[p.ID] {
			continue
		}
		if f.Position != nil && p.Position != *f.Position {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		ri, iok := out[i].Rank(f.Scoring)
		rj, jok := out[j].Rank(f.Scoring)
		if iok != jok {
			return iok // ranked players before unranked
		}
		if !iok {
			return out[i].Name < out[j].Name
		}
		if ri != rj {
			return ri < rj
		}
		return out[i].Name < out[j].Name
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
