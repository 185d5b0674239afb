package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neerajsa/fantasy-football-assistant/internal/draft/outbox"
	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

// Memory is an in-process Repository. One mutex guards all state, which makes
// every write trivially atomic; copies go in and out so callers never alias
// stored structs.
type Memory struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.DraftSession
	teams    map[uuid.UUID][]models.DraftTeam // by session ID
	slots    map[uuid.UUID][]models.PickSlot  // by session ID, ordered by overall pick
	events   []outbox.Event
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[uuid.UUID]*models.DraftSession),
		teams:    make(map[uuid.UUID][]models.DraftTeam),
		slots:    make(map[uuid.UUID][]models.PickSlot),
	}
}

func (m *Memory) CreateSession(ctx context.Context, session *models.DraftSession, teams []models.DraftTeam, slots []models.PickSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}

	stored := *session
	m.sessions[session.ID] = &stored
	m.teams[session.ID] = copyTeams(teams)
	m.slots[session.ID] = copySlots(slots)
	return nil
}

func (m *Memory) GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	out := *session
	return &out, nil
}

func (m *Memory) ListSessions(ctx context.Context, limit int) ([]models.DraftSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.DraftSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	delete(m.sessions, id)
	delete(m.teams, id)
	delete(m.slots, id)

	kept := m.events[:0]
	for _, e := range m.events {
		if e.SessionID != id {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

func (m *Memory) GetTeams(ctx context.Context, sessionID uuid.UUID) ([]models.DraftTeam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	teams, ok := m.teams[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return copyTeams(teams), nil
}

func (m *Memory) GetSlots(ctx context.Context, sessionID uuid.UUID) ([]models.PickSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	slots, ok := m.slots[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return copySlots(slots), nil
}

func (m *Memory) UpdateStatus(ctx context.Context, update ProgressUpdate, events []outbox.Event) (*models.DraftSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.applyProgress(update)
	if err != nil {
		return nil, err
	}
	m.appendEvents(events)

	out := *session
	return &out, nil
}

func (m *Memory) RecordPick(ctx context.Context, write PickWrite) (*models.PickSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[write.Progress.SessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", write.Progress.SessionID, ErrNotFound)
	}

	slots := m.slots[session.ID]
	idx := -1
	for i := range slots {
		if slots[i].ID == write.SlotID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("slot %s: %w", write.SlotID, ErrNotFound)
	}
	if slots[idx].PlayerID != nil {
		return nil, ErrSlotAlreadyFilled
	}

	// Version check happens before any mutation so a conflict leaves
	// everything untouched.
	if session.Version != write.Progress.ExpectedVersion {
		return nil, fmt.Errorf("session %s version %d, expected %d: %w",
			session.ID, session.Version, write.Progress.ExpectedVersion, ErrVersionConflict)
	}

	playerID := write.PlayerID
	pickedAt := write.PickedAt
	slots[idx].PlayerID = &playerID
	slots[idx].PickedAt = &pickedAt
	slots[idx].PickSeconds = write.PickSeconds

	teams := m.teams[session.ID]
	for i := range teams {
		if teams[i].ID == write.TeamID {
			teams[i].Roster = copyRoster(write.Roster)
			teams[i].UpdatedAt = pickedAt
			break
		}
	}

	if _, err := m.applyProgress(write.Progress); err != nil {
		return nil, err
	}
	m.appendEvents(write.Events)

	out := slots[idx]
	return &out, nil
}

// applyProgress assumes m.mu is held for writing.
func (m *Memory) applyProgress(update ProgressUpdate) (*models.DraftSession, error) {
	session, ok := m.sessions[update.SessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", update.SessionID, ErrNotFound)
	}
	if session.Version != update.ExpectedVersion {
		return nil, fmt.Errorf("session %s version %d, expected %d: %w",
			session.ID, session.Version, update.ExpectedVersion, ErrVersionConflict)
	}

	session.Status = update.Status
	session.CurrentRound = update.CurrentRound
	session.CurrentPick = update.CurrentPick
	session.CurrentTeamIndex = update.CurrentTeamIndex
	if update.StartedAt != nil {
		session.StartedAt = update.StartedAt
	}
	if update.CompletedAt != nil {
		session.CompletedAt = update.CompletedAt
	}
	session.Version++
	session.UpdatedAt = time.Now().UTC()
	return session, nil
}

// appendEvents assumes m.mu is held for writing.
func (m *Memory) appendEvents(events []outbox.Event) {
	for _, e := range events {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		m.events = append(m.events, e)
	}
}

// FetchUnsentEvents implements outbox.Store.
func (m *Memory) FetchUnsentEvents(ctx context.Context, limit int) ([]outbox.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []outbox.Event
	for _, e := range m.events {
		if e.SentAt == nil {
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// MarkEventsSent implements outbox.Store.
func (m *Memory) MarkEventsSent(ctx context.Context, ids []uuid.UUID, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sent := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		sent[id] = true
	}
	for i := range m.events {
		if sent[m.events[i].ID] {
			at := sentAt
			m.events[i].SentAt = &at
		}
	}
	return nil
}

func copyTeams(teams []models.DraftTeam) []models.DraftTeam {
	out := make([]models.DraftTeam, len(teams))
	for i, t := range teams {
		out[i] = t
		out[i].Roster = copyRoster(t.Roster)
	}
	return out
}

func copySlots(slots []models.PickSlot) []models.PickSlot {
	out := make([]models.PickSlot, len(slots))
	copy(out, slots)
	return out
}

func copyRoster(roster map[models.SlotKind]int) map[models.SlotKind]int {
	out := make(map[models.SlotKind]int, len(roster))
	for k, v := range roster {
		out[k] = v
	}
	return out
}
