// Package repository persists draft sessions, teams, pick ledgers, and the
// transactional outbox. Implementations must apply each write request
// atomically: a pick fill, its roster update, the progress advance, and the
// emitted events land together or not at all.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/neerajsa/fantasy-football-assistant/internal/draft/outbox"
	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

var (
	// ErrNotFound is returned when a session, team, or slot does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrVersionConflict means the session row changed underneath the caller.
	// With the per-session lock held this indicates a concurrency bug.
	ErrVersionConflict = errors.New("repository: session version conflict")
	// ErrSlotAlreadyFilled means the target slot already has a player.
	ErrSlotAlreadyFilled = errors.New("repository: pick slot already filled")
)

// ProgressUpdate moves a session's status and progress pointer forward.
// ExpectedVersion is compared against the stored row and the row's version is
// incremented on success.
type ProgressUpdate struct {
	SessionID        uuid.UUID
	Status           models.DraftStatus
	CurrentRound     int
	CurrentPick      int
	CurrentTeamIndex int
	StartedAt        *time.Time
	CompletedAt      *time.Time
	ExpectedVersion  int64
}

// PickWrite is the atomic unit of recording one pick.
type PickWrite struct {
	SlotID      uuid.UUID
	PlayerID    uuid.UUID
	PickedAt    time.Time
	PickSeconds *int

	TeamID uuid.UUID
	Roster map[models.SlotKind]int

	Progress ProgressUpdate
	Events   []outbox.Event
}

// Repository is what the draft application needs from persistence.
type Repository interface {
	// CreateSession stores a session together with its teams and the fully
	// materialized empty pick ledger.
	CreateSession(ctx context.Context, session *models.DraftSession, teams []models.DraftTeam, slots []models.PickSlot) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
	ListSessions(ctx context.Context, limit int) ([]models.DraftSession, error)
	// DeleteSession removes the session and cascades to its teams, slots, and
	// outbox rows.
	DeleteSession(ctx context.Context, id uuid.UUID) error

	GetTeams(ctx context.Context, sessionID uuid.UUID) ([]models.DraftTeam, error)
	GetSlots(ctx context.Context, sessionID uuid.UUID) ([]models.PickSlot, error)

	// UpdateStatus applies a status/progress transition and appends events in
	// one transaction.
	UpdateStatus(ctx context.Context, update ProgressUpdate, events []outbox.Event) (*models.DraftSession, error)
	// RecordPick fills a slot, updates the team roster, advances progress, and
	// appends events in one transaction. Returns the filled slot.
	RecordPick(ctx context.Context, write PickWrite) (*models.PickSlot, error)
}
