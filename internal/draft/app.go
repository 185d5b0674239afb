// Package draft implements the draft turn/state engine: session creation and
// bootstrapping, the lifecycle state machine, pick validation, and the
// integrity report. Persistence and the player ranking pool are injected.
package draft

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/neerajsa/fantasy-football-assistant/internal/draft/events"
	"github.com/neerajsa/fantasy-football-assistant/internal/draft/outbox"
	"github.com/neerajsa/fantasy-football-assistant/internal/draft/repository"
	"github.com/neerajsa/fantasy-football-assistant/internal/draft/turn"
	"github.com/neerajsa/fantasy-football-assistant/internal/models"
	"github.com/neerajsa/fantasy-football-assistant/internal/players"
)

// allowedTransitions defines the legal status graph. Completed and abandoned
// are terminal.
var allowedTransitions = map[models.DraftStatus][]models.DraftStatus{
	models.DraftStatusCreated:    {models.DraftStatusInProgress, models.DraftStatusAbandoned},
	models.DraftStatusInProgress: {models.DraftStatusCompleted, models.DraftStatusAbandoned},
	models.DraftStatusCompleted:  {},
	models.DraftStatusAbandoned:  {},
}

func canTransition(from, to models.DraftStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// recentPicksShown caps how many filled slots a state snapshot carries in
// RecentPicks.
const recentPicksShown = 5

// App orchestrates draft sessions. All mutations on one session are
// serialized through a per-session lock; the repository additionally rejects
// writes whose session version does not match.
type App struct {
	repo      repository.Repository
	pool      players.Pool
	validator pickValidator
	clock     clockwork.Clock

	// rng, when set, seeds autopick selection; nil means a fresh time-seeded
	// source per pick.
	rng *rand.Rand

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// SetRand pins the random source used by autopick and recommendations.
// Intended for deterministic tests.
func (a *App) SetRand(rng *rand.Rand) {
	a.rng = rng
}

func NewApp(repo repository.Repository, pool players.Pool) *App {
	return NewAppWithClock(repo, pool, clockwork.NewRealClock())
}

// NewAppWithClock injects the clock, letting tests control every timestamp.
func NewAppWithClock(repo repository.Repository, pool players.Pool, clock clockwork.Clock) *App {
	return &App{
		repo:      repo,
		pool:      pool,
		validator: pickValidator{pool: pool},
		clock:     clock,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing mutations for one session.
func (a *App) sessionLock(id uuid.UUID) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[id] = lock
	}
	return lock
}

// CreateSession validates the configuration, materializes the full pick
// ledger, and stores everything atomically. Every configuration violation is
// reported together in a ConfigurationError.
func (a *App) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.DraftSession, error) {
	if violations := ValidateCreation(req); len(violations) > 0 {
		return nil, &ConfigurationError{Violations: violations}
	}

	now := a.clock.Now().UTC()
	session := &models.DraftSession{
		ID:               uuid.New(),
		NumTeams:         req.NumTeams,
		DraftType:        req.DraftType,
		ScoringType:      req.ScoringType,
		Roster:           req.Roster,
		TotalRounds:      turn.TotalRounds(req.Roster),
		Status:           models.DraftStatusCreated,
		CurrentRound:     1,
		CurrentPick:      1,
		CurrentTeamIndex: 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	teams := make([]models.DraftTeam, 0, len(req.Teams))
	for _, tc := range req.Teams {
		teams = append(teams, models.DraftTeam{
			ID:        uuid.New(),
			SessionID: session.ID,
			TeamIndex: tc.TeamIndex,
			Name:      tc.Name,
			IsHuman:   tc.IsHuman,
			Roster:    req.Roster.EmptyRoster(),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	slots, err := materializeLedger(session, teams)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize pick ledger: %w", err)
	}

	if err := a.repo.CreateSession(ctx, session, teams, slots); err != nil {
		return nil, fmt.Errorf("failed to store draft session: %w", err)
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("draft_type", string(session.DraftType)).
		Int("num_teams", session.NumTeams).
		Int("total_rounds", session.TotalRounds).
		Int("ledger_size", len(slots)).
		Msg("draft session created")
	return session, nil
}

// StartDraft moves a session from created to in_progress. Every unmet
// precondition is reported together in a NotReadyError.
func (a *App) StartDraft(ctx context.Context, sessionID uuid.UUID) (*models.DraftSession, error) {
	lock := a.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := a.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session := state.Session

	var violations []string
	if !canTransition(session.Status, models.DraftStatusInProgress) {
		violations = append(violations,
			fmt.Sprintf("draft is %s, can only start from %s", session.Status, models.DraftStatusCreated))
	}
	if len(state.Teams) != session.NumTeams {
		violations = append(violations,
			fmt.Sprintf("session declares %d teams but %d are configured", session.NumTeams, len(state.Teams)))
	}
	seen := make(map[int]bool, len(state.Teams))
	humans := 0
	for _, t := range state.Teams {
		seen[t.TeamIndex] = true
		if t.IsHuman {
			humans++
		}
	}
	for i := 0; i < session.NumTeams; i++ {
		if !seen[i] {
			violations = append(violations, fmt.Sprintf("no team at draft index %d", i))
		}
	}
	if humans != 1 {
		violations = append(violations,
			fmt.Sprintf("exactly one team must be human-controlled, got %d", humans))
	}
	if len(state.Ledger) != session.TotalPicks() {
		violations = append(violations,
			fmt.Sprintf("pick ledger has %d slots, want %d", len(state.Ledger), session.TotalPicks()))
	}
	if len(violations) > 0 {
		return nil, &NotReadyError{Violations: violations}
	}

	now := a.clock.Now().UTC()
	evts, err := a.startEvents(session, state, now)
	if err != nil {
		return nil, err
	}

	updated, err := a.repo.UpdateStatus(ctx, repository.ProgressUpdate{
		SessionID:        session.ID,
		Status:           models.DraftStatusInProgress,
		CurrentRound:     1,
		CurrentPick:      1,
		CurrentTeamIndex: session.CurrentTeamIndex,
		StartedAt:        &now,
		ExpectedVersion:  session.Version,
	}, evts)
	if err != nil {
		return nil, fmt.Errorf("failed to start draft: %w", err)
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Int("total_picks", session.TotalPicks()).
		Msg("draft started")
	return updated, nil
}

func (a *App) startEvents(session *models.DraftSession, state *State, now time.Time) ([]outbox.Event, error) {
	started, err := outbox.NewEvent(session.ID, events.TypeDraftStarted, events.DraftStartedPayload{
		SessionID:   session.ID.String(),
		DraftType:   string(session.DraftType),
		StartedAt:   now,
		TotalRounds: session.TotalRounds,
		TotalPicks:  session.TotalPicks(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build DraftStarted event: %w", err)
	}

	evts := []outbox.Event{started}
	if first := slotByOverallPick(state.Ledger, 1); first != nil {
		evt, err := a.pickStartedEvent(session, state.Teams, first, now)
		if err != nil {
			return nil, err
		}
		evts = append(evts, evt)
	}
	return evts, nil
}

// RecordPick validates and records one pick, advancing the progress pointer
// or completing the draft on the final slot. The returned strings are
// advisory roster warnings; they never block the pick.
func (a *App) RecordPick(ctx context.Context, req RecordPickRequest) (*models.PickSlot, []string, error) {
	lock := a.sessionLock(req.SessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := a.loadState(ctx, req.SessionID)
	if err != nil {
		return nil, nil, err
	}
	session := state.Session

	player, warnings, err := a.validator.validate(ctx, state, req)
	if err != nil {
		return nil, nil, err
	}
	target := slotByOverallPick(state.Ledger, session.CurrentPick)
	team := teamByID(state.Teams, req.TeamID)

	roster := make(map[models.SlotKind]int, len(team.Roster))
	for k, v := range team.Roster {
		roster[k] = v
	}
	if kind, ok := session.Roster.SlotForPosition(player.Position); ok {
		roster[kind]++
	}

	now := a.clock.Now().UTC()
	progress := repository.ProgressUpdate{
		SessionID:       session.ID,
		ExpectedVersion: session.Version,
	}

	next, more, err := turn.Next(session.DraftType, session.NumTeams, session.TotalRounds, session.CurrentPick)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to advance draft: %w", err)
	}

	evts, err := a.pickMadeEvents(session, team, target, player, now)
	if err != nil {
		return nil, nil, err
	}

	if more {
		progress.Status = models.DraftStatusInProgress
		progress.CurrentRound = next.Round
		progress.CurrentPick = next.OverallPick
		progress.CurrentTeamIndex = next.TeamIndex

		if nextSlot := slotByOverallPick(state.Ledger, next.OverallPick); nextSlot != nil {
			evt, err := a.pickStartedEvent(session, state.Teams, nextSlot, now)
			if err != nil {
				return nil, nil, err
			}
			evts = append(evts, evt)
		}
	} else {
		progress.Status = models.DraftStatusCompleted
		progress.CurrentRound = session.CurrentRound
		progress.CurrentPick = session.CurrentPick
		progress.CurrentTeamIndex = session.CurrentTeamIndex
		progress.CompletedAt = &now

		evt, err := a.completedEvent(session, now)
		if err != nil {
			return nil, nil, err
		}
		evts = append(evts, evt)
	}

	filled, err := a.repo.RecordPick(ctx, repository.PickWrite{
		SlotID:      target.ID,
		PlayerID:    player.ID,
		PickedAt:    now,
		PickSeconds: req.PickSeconds,
		TeamID:      team.ID,
		Roster:      roster,
		Progress:    progress,
		Events:      evts,
	})
	if err != nil {
		// The validator saw the slot empty; a fill conflict here means another
		// writer slipped in between snapshot and write.
		if errors.Is(err, repository.ErrSlotAlreadyFilled) {
			return nil, nil, &DuplicatePickError{OverallPick: target.OverallPick, TeamName: team.Name}
		}
		return nil, nil, fmt.Errorf("failed to record pick: %w", err)
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("team", team.Name).
		Str("player", player.Name).
		Int("round", target.Round).
		Int("overall_pick", target.OverallPick).
		Bool("draft_complete", !more).
		Msg("pick recorded")
	return filled, warnings, nil
}

func (a *App) pickMadeEvents(session *models.DraftSession, team *models.DraftTeam, slot *models.PickSlot, player *models.Player, now time.Time) ([]outbox.Event, error) {
	made, err := outbox.NewEvent(session.ID, events.TypePickMade, events.PickMadePayload{
		SlotID:      slot.ID.String(),
		TeamID:      team.ID.String(),
		TeamName:    team.Name,
		PlayerID:    player.ID.String(),
		PlayerName:  player.Name,
		Round:       slot.Round,
		Pick:        ((slot.OverallPick - 1) % session.NumTeams) + 1,
		OverallPick: slot.OverallPick,
		MadeAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build PickMade event: %w", err)
	}
	return []outbox.Event{made}, nil
}

func (a *App) pickStartedEvent(session *models.DraftSession, teams []models.DraftTeam, slot *models.PickSlot, now time.Time) (outbox.Event, error) {
	payload := events.PickStartedPayload{
		SlotID:      slot.ID.String(),
		TeamID:      slot.TeamID.String(),
		Round:       slot.Round,
		Pick:        ((slot.OverallPick - 1) % session.NumTeams) + 1,
		OverallPick: slot.OverallPick,
		StartedAt:   now,
	}
	if t := teamByID(teams, slot.TeamID); t != nil {
		payload.TeamName = t.Name
	}

	evt, err := outbox.NewEvent(session.ID, events.TypePickStarted, payload)
	if err != nil {
		return outbox.Event{}, fmt.Errorf("failed to build PickStarted event: %w", err)
	}
	return evt, nil
}

func (a *App) completedEvent(session *models.DraftSession, now time.Time) (outbox.Event, error) {
	payload := events.DraftCompletedPayload{
		SessionID:   session.ID.String(),
		CompletedAt: now,
		TotalPicks:  session.TotalPicks(),
	}
	if session.StartedAt != nil {
		payload.Duration = now.Sub(*session.StartedAt).Round(time.Second).String()
	}

	evt, err := outbox.NewEvent(session.ID, events.TypeDraftCompleted, payload)
	if err != nil {
		return outbox.Event{}, fmt.Errorf("failed to build DraftCompleted event: %w", err)
	}
	return evt, nil
}

// AbandonDraft terminates a session by explicit operator action. Legal from
// created or in_progress.
func (a *App) AbandonDraft(ctx context.Context, sessionID uuid.UUID, reason string) (*models.DraftSession, error) {
	lock := a.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := a.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canTransition(session.Status, models.DraftStatusAbandoned) {
		return nil, fmt.Errorf("cannot abandon a %s draft", session.Status)
	}

	now := a.clock.Now().UTC()
	evt, err := outbox.NewEvent(session.ID, events.TypeDraftAbandoned, events.DraftAbandonedPayload{
		SessionID:   session.ID.String(),
		AbandonedAt: now,
		Reason:      reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build DraftAbandoned event: %w", err)
	}

	updated, err := a.repo.UpdateStatus(ctx, repository.ProgressUpdate{
		SessionID:        session.ID,
		Status:           models.DraftStatusAbandoned,
		CurrentRound:     session.CurrentRound,
		CurrentPick:      session.CurrentPick,
		CurrentTeamIndex: session.CurrentTeamIndex,
		CompletedAt:      &now,
		ExpectedVersion:  session.Version,
	}, []outbox.Event{evt})
	if err != nil {
		return nil, fmt.Errorf("failed to abandon draft: %w", err)
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("reason", reason).
		Msg("draft abandoned")
	return updated, nil
}

// CurrentState returns a full snapshot: session, teams, round-by-round order,
// the ledger, the team on the clock, and the most recent picks.
func (a *App) CurrentState(ctx context.Context, sessionID uuid.UUID) (*State, error) {
	state, err := a.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session := state.Session

	order, err := turn.Order(session.DraftType, session.NumTeams, session.TotalRounds)
	if err != nil {
		return nil, fmt.Errorf("failed to compute draft order: %w", err)
	}
	state.Order = order

	if session.Status == models.DraftStatusInProgress {
		state.OnClockTeam = teamByIndex(state.Teams, session.CurrentTeamIndex)
	}

	for i := len(state.Ledger) - 1; i >= 0 && len(state.RecentPicks) < recentPicksShown; i-- {
		if state.Ledger[i].Filled() {
			state.RecentPicks = append(state.RecentPicks, state.Ledger[i])
		}
	}
	return state, nil
}

// Integrity recomputes the expected team for every filled slot.
func (a *App) Integrity(ctx context.Context, sessionID uuid.UUID) (IntegrityReport, error) {
	state, err := a.loadState(ctx, sessionID)
	if err != nil {
		return IntegrityReport{}, err
	}
	return BuildIntegrityReport(state.Session, state.Teams, state.Ledger), nil
}

// AvailablePlayers lists undrafted players for a session, ordered by the
// session's scoring variant ranking.
func (a *App) AvailablePlayers(ctx context.Context, sessionID uuid.UUID, position *models.Position, limit int) ([]models.Player, error) {
	state, err := a.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	drafted := make(map[uuid.UUID]bool)
	for _, slot := range state.Ledger {
		if slot.PlayerID != nil {
			drafted[*slot.PlayerID] = true
		}
	}

	return a.pool.ListAvailable(ctx, players.Filter{
		Exclude:  drafted,
		Position: position,
		Scoring:  state.Session.ScoringType,
		Limit:    limit,
	})
}

// ListSessions returns the most recently created sessions.
func (a *App) ListSessions(ctx context.Context, limit int) ([]models.DraftSession, error) {
	return a.repo.ListSessions(ctx, limit)
}

// DeleteSession removes a session and everything it owns.
func (a *App) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	lock := a.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := a.repo.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	a.mu.Lock()
	delete(a.locks, sessionID)
	a.mu.Unlock()

	log.Info().Str("session_id", sessionID.String()).Msg("draft session deleted")
	return nil
}

func (a *App) getSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	session, err := a.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// loadState reads session, teams, and ledger. Mutating callers hold the
// session lock across this read and the subsequent write, so the snapshot
// cannot go stale underneath them.
func (a *App) loadState(ctx context.Context, sessionID uuid.UUID) (*State, error) {
	session, err := a.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	teams, err := a.repo.GetTeams(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	slots, err := a.repo.GetSlots(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pick ledger: %w", err)
	}
	return &State{Session: session, Teams: teams, Ledger: slots}, nil
}

func slotByOverallPick(slots []models.PickSlot, overallPick int) *models.PickSlot {
	for i := range slots {
		if slots[i].OverallPick == overallPick {
			return &slots[i]
		}
	}
	return nil
}
