package draft

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neerajsa/fantasy-football-assistant/internal/draft/repository"
	"github.com/neerajsa/fantasy-football-assistant/internal/draft/turn"
	"github.com/neerajsa/fantasy-football-assistant/internal/models"
	"github.com/neerajsa/fantasy-football-assistant/internal/players"
)

// testRoster is a compact 10-round lineup so round-trip tests stay small.
func testRoster() models.RosterRules {
	return models.RosterRules{
		{Kind: models.SlotQB, Count: 1},
		{Kind: models.SlotRB, Count: 2},
		{Kind: models.SlotWR, Count: 2},
		{Kind: models.SlotTE, Count: 1},
		{Kind: models.SlotK, Count: 1},
		{Kind: models.SlotDST, Count: 1},
		{Kind: models.SlotBench, Count: 2},
	}
}

func testTeams(n int) []TeamConfig {
	teams := make([]TeamConfig, n)
	for i := 0; i < n; i++ {
		teams[i] = TeamConfig{TeamIndex: i, Name: fmt.Sprintf("Team %d", i), IsHuman: i == 0}
	}
	return teams
}

// testPlayers builds enough ranked players for a full draft.
func testPlayers(n int) []models.Player {
	positions := []models.Position{
		models.PositionQB, models.PositionRB, models.PositionWR,
		models.PositionTE, models.PositionK, models.PositionDST,
	}
	out := make([]models.Player, n)
	for i := 0; i < n; i++ {
		rank := i + 1
		out[i] = models.Player{
			ID:         uuid.New(),
			Name:       fmt.Sprintf("Player %03d", i),
			Position:   positions[i%len(positions)],
			NFLTeam:    "FA",
			ECRRankPPR: &rank,
		}
	}
	return out
}

func newTestApp(t *testing.T, pool []models.Player) (*App, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 27, 19, 0, 0, 0, time.UTC))
	return NewAppWithClock(repository.NewMemory(), players.NewMemoryPool(pool), clock), clock
}

func createAndStart(t *testing.T, app *App, numTeams int) *models.DraftSession {
	t.Helper()
	session, err := app.CreateSession(context.Background(), CreateSessionRequest{
		NumTeams:    numTeams,
		DraftType:   models.DraftTypeSnake,
		ScoringType: models.ScoringPPR,
		Roster:      testRoster(),
		Teams:       testTeams(numTeams),
	})
	require.NoError(t, err)

	started, err := app.StartDraft(context.Background(), session.ID)
	require.NoError(t, err)
	return started
}

func TestCreateSessionAccumulatesViolations(t *testing.T) {
	app, _ := newTestApp(t, nil)

	// Three teams supplied for a four-team draft, and nobody is human.
	teams := testTeams(3)
	teams[0].IsHuman = false

	_, err := app.CreateSession(context.Background(), CreateSessionRequest{
		NumTeams:    4,
		DraftType:   models.DraftTypeSnake,
		ScoringType: models.ScoringPPR,
		Roster:      testRoster(),
		Teams:       teams,
	})
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "4")
	assert.Contains(t, cfgErr.Error(), "3 teams were supplied")
	assert.Contains(t, cfgErr.Error(), "human-controlled")
	assert.GreaterOrEqual(t, len(cfgErr.Violations), 2)
}

func TestCreateSessionMaterializesFullLedger(t *testing.T) {
	app, _ := newTestApp(t, nil)

	session, err := app.CreateSession(context.Background(), CreateSessionRequest{
		NumTeams:    4,
		DraftType:   models.DraftTypeSnake,
		ScoringType: models.ScoringPPR,
		Roster:      testRoster(),
		Teams:       testTeams(4),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusCreated, session.Status)
	assert.Equal(t, 10, session.TotalRounds)

	state, err := app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, state.Ledger, 40)

	// Every slot must agree with the pure turn math, and per-team sequence
	// numbers must count up from 1.
	teamSeq := make(map[uuid.UUID]int)
	for i, slot := range state.Ledger {
		assert.Equal(t, i+1, slot.OverallPick)
		assert.False(t, slot.Filled())

		pos, err := turn.PositionInfo(slot.OverallPick, session.DraftType, session.NumTeams)
		require.NoError(t, err)
		assert.Equal(t, pos.Round, slot.Round)

		teamSeq[slot.TeamID]++
		assert.Equal(t, teamSeq[slot.TeamID], slot.TeamPickNumber)
	}
	for _, seq := range teamSeq {
		assert.Equal(t, 10, seq)
	}
}

func TestStartDraftNotReadyFromWrongStatus(t *testing.T) {
	pool := testPlayers(60)
	app, _ := newTestApp(t, pool)
	session := createAndStart(t, app, 4)

	_, err := app.StartDraft(context.Background(), session.ID)
	require.Error(t, err)

	var notReady *NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Contains(t, notReady.Error(), string(models.DraftStatusInProgress))
}

func TestStartDraftSetsProgressPointer(t *testing.T) {
	pool := testPlayers(60)
	app, clock := newTestApp(t, pool)
	session := createAndStart(t, app, 4)

	assert.Equal(t, models.DraftStatusInProgress, session.Status)
	assert.Equal(t, 1, session.CurrentRound)
	assert.Equal(t, 1, session.CurrentPick)
	assert.Equal(t, 0, session.CurrentTeamIndex)
	require.NotNil(t, session.StartedAt)
	assert.Equal(t, clock.Now().UTC(), *session.StartedAt)
}

func TestRecordPickRejectsWrongTurn(t *testing.T) {
	pool := testPlayers(60)
	app, _ := newTestApp(t, pool)
	session := createAndStart(t, app, 4)

	state, err := app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)

	// Team index 2 tries to pick while team 0 is on the clock.
	var impostor *models.DraftTeam
	for i := range state.Teams {
		if state.Teams[i].TeamIndex == 2 {
			impostor = &state.Teams[i]
		}
	}
	require.NotNil(t, impostor)

	_, _, err = app.RecordPick(context.Background(), RecordPickRequest{
		SessionID: session.ID,
		TeamID:    impostor.ID,
		PlayerID:  pool[0].ID,
	})
	require.Error(t, err)

	var wrongTurn *WrongTurnError
	require.ErrorAs(t, err, &wrongTurn)
	assert.Equal(t, 0, wrongTurn.ExpectedTeamIndex)
	assert.Equal(t, "Team 0", wrongTurn.ExpectedTeamName)
	assert.Equal(t, "Team 2", wrongTurn.GotTeamName)
}

func TestRecordPickRejectsDuplicatePlayer(t *testing.T) {
	pool := testPlayers(60)
	app, _ := newTestApp(t, pool)
	session := createAndStart(t, app, 4)

	state, err := app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)
	onClock := state.OnClockTeam
	require.NotNil(t, onClock)

	_, _, err = app.RecordPick(context.Background(), RecordPickRequest{
		SessionID: session.ID,
		TeamID:    onClock.ID,
		PlayerID:  pool[0].ID,
	})
	require.NoError(t, err)

	// Next team tries to draft the same player.
	state, err = app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)

	_, _, err = app.RecordPick(context.Background(), RecordPickRequest{
		SessionID: session.ID,
		TeamID:    state.OnClockTeam.ID,
		PlayerID:  pool[0].ID,
	})
	require.Error(t, err)

	var dup *DuplicatePlayerError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, pool[0].ID, dup.PlayerID)
	assert.Equal(t, "Team 0", dup.DraftedBy)
	assert.Equal(t, 1, dup.DraftedInRd)
}

func TestRecordPickSameTeamTwiceIsWrongTurn(t *testing.T) {
	pool := testPlayers(60)
	app, _ := newTestApp(t, pool)
	session := createAndStart(t, app, 4)

	state, err := app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)
	first := state.OnClockTeam

	_, _, err = app.RecordPick(context.Background(), RecordPickRequest{
		SessionID: session.ID,
		TeamID:    first.ID,
		PlayerID:  pool[0].ID,
	})
	require.NoError(t, err)

	// The pointer advanced, so repeating the same team is a turn violation,
	// and the roster must not double-count.
	_, _, err = app.RecordPick(context.Background(), RecordPickRequest{
		SessionID: session.ID,
		TeamID:    first.ID,
		PlayerID:  pool[1].ID,
	})
	var wrongTurn *WrongTurnError
	require.ErrorAs(t, err, &wrongTurn)

	state, err = app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)
	for _, team := range state.Teams {
		if team.ID != first.ID {
			continue
		}
		total := 0
		for _, n := range team.Roster {
			total += n
		}
		assert.Equal(t, 1, total)
	}
}

func TestRecordPickRejectsAlreadyFilledSlot(t *testing.T) {
	pool := testPlayers(60)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 27, 19, 0, 0, 0, time.UTC))
	repo := repository.NewMemory()
	app := NewAppWithClock(repo, players.NewMemoryPool(pool), clock)
	session := createAndStart(t, app, 4)

	state, err := app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)
	onClock := state.OnClockTeam
	require.NotNil(t, onClock)

	// Fill the current slot through the repository without advancing the
	// progress pointer, the way a misbehaving writer would.
	filledBy := pool[5].ID
	_, err = repo.RecordPick(context.Background(), repository.PickWrite{
		SlotID:   state.Ledger[0].ID,
		PlayerID: filledBy,
		PickedAt: clock.Now().UTC(),
		TeamID:   onClock.ID,
		Roster:   session.Roster.EmptyRoster(),
		Progress: repository.ProgressUpdate{
			SessionID:        session.ID,
			Status:           models.DraftStatusInProgress,
			CurrentRound:     1,
			CurrentPick:      1,
			CurrentTeamIndex: 0,
			ExpectedVersion:  state.Session.Version,
		},
	})
	require.NoError(t, err)

	// Recording the same logical pick again must fail with DuplicatePick,
	// not overwrite the slot or double-count the roster.
	_, _, err = app.RecordPick(context.Background(), RecordPickRequest{
		SessionID: session.ID,
		TeamID:    onClock.ID,
		PlayerID:  pool[6].ID,
	})
	require.Error(t, err)

	var dup *DuplicatePickError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, dup.OverallPick)
	assert.Equal(t, onClock.Name, dup.TeamName)

	slots, err := repo.GetSlots(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, slots[0].PlayerID)
	assert.Equal(t, filledBy, *slots[0].PlayerID)
}

func TestRecordPickIncrementsRosterSlot(t *testing.T) {
	rb := 1
	pool := []models.Player{{
		ID: uuid.New(), Name: "Bijan Robinson", Position: models.PositionRB,
		NFLTeam: "ATL", ECRRankPPR: &rb,
	}}
	pool = append(pool, testPlayers(60)...)

	app, _ := newTestApp(t, pool)
	session := createAndStart(t, app, 4)

	state, err := app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)
	onClock := state.OnClockTeam

	slot, warnings, err := app.RecordPick(context.Background(), RecordPickRequest{
		SessionID: session.ID,
		TeamID:    onClock.ID,
		PlayerID:  pool[0].ID,
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotNil(t, slot.PlayerID)
	assert.Equal(t, pool[0].ID, *slot.PlayerID)
	assert.Equal(t, 1, slot.OverallPick)

	state, err = app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)
	for _, team := range state.Teams {
		if team.ID == onClock.ID {
			assert.Equal(t, 1, team.Roster[models.SlotRB])
		}
	}
	assert.Equal(t, 2, state.Session.CurrentPick)
	assert.Equal(t, 1, state.Session.CurrentTeamIndex)
}

func TestDraftRoundTripCompletes(t *testing.T) {
	const numTeams = 4
	pool := testPlayers(numTeams * 10)
	app, clock := newTestApp(t, pool)
	session := createAndStart(t, app, numTeams)

	// Fold picks over the whole ledger in turn order.
	for pick := 0; pick < numTeams*10; pick++ {
		state, err := app.CurrentState(context.Background(), session.ID)
		require.NoError(t, err)
		require.NotNil(t, state.OnClockTeam, "pick %d", pick+1)

		_, _, err = app.RecordPick(context.Background(), RecordPickRequest{
			SessionID: session.ID,
			TeamID:    state.OnClockTeam.ID,
			PlayerID:  pool[pick].ID,
		})
		require.NoError(t, err, "pick %d", pick+1)
		clock.Advance(30 * time.Second)
	}

	state, err := app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusCompleted, state.Session.Status)
	require.NotNil(t, state.Session.CompletedAt)
	assert.Nil(t, state.OnClockTeam)

	for _, slot := range state.Ledger {
		assert.True(t, slot.Filled(), "pick %d left empty", slot.OverallPick)
	}
	for _, team := range state.Teams {
		total := 0
		for _, n := range team.Roster {
			total += n
		}
		assert.Equal(t, 10, total, "team %s roster", team.Name)
	}

	// No further picks once completed.
	_, _, err = app.RecordPick(context.Background(), RecordPickRequest{
		SessionID: session.ID,
		TeamID:    state.Teams[0].ID,
		PlayerID:  pool[0].ID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(models.DraftStatusCompleted))

	report, err := app.Integrity(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, 40, report.PicksMade)
	assert.Equal(t, 0, report.PicksRemaining)
	assert.InDelta(t, 100, report.CompletionPercent, 0.001)
}

func TestAbandonDraft(t *testing.T) {
	pool := testPlayers(60)
	app, _ := newTestApp(t, pool)
	session := createAndStart(t, app, 4)

	abandoned, err := app.AbandonDraft(context.Background(), session.ID, "league gave up")
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusAbandoned, abandoned.Status)

	// Terminal: cannot abandon twice or restart.
	_, err = app.AbandonDraft(context.Background(), session.ID, "again")
	require.Error(t, err)
	_, err = app.StartDraft(context.Background(), session.ID)
	require.Error(t, err)
}

func TestAvailablePlayersExcludesDrafted(t *testing.T) {
	pool := testPlayers(20)
	app, _ := newTestApp(t, pool)
	session := createAndStart(t, app, 4)

	state, err := app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)
	_, _, err = app.RecordPick(context.Background(), RecordPickRequest{
		SessionID: session.ID,
		TeamID:    state.OnClockTeam.ID,
		PlayerID:  pool[0].ID,
	})
	require.NoError(t, err)

	available, err := app.AvailablePlayers(context.Background(), session.ID, nil, 0)
	require.NoError(t, err)
	assert.Len(t, available, 19)
	for _, p := range available {
		assert.NotEqual(t, pool[0].ID, p.ID)
	}

	pos := models.PositionQB
	qbs, err := app.AvailablePlayers(context.Background(), session.ID, &pos, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(qbs), 2)
	for _, p := range qbs {
		assert.Equal(t, models.PositionQB, p.Position)
	}
}

func TestDeleteSession(t *testing.T) {
	pool := testPlayers(60)
	app, _ := newTestApp(t, pool)
	session := createAndStart(t, app, 4)

	require.NoError(t, app.DeleteSession(context.Background(), session.ID))

	_, err := app.CurrentState(context.Background(), session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	err = app.DeleteSession(context.Background(), session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListSessionsNewestFirst(t *testing.T) {
	pool := testPlayers(60)
	app, clock := newTestApp(t, pool)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		session, err := app.CreateSession(context.Background(), CreateSessionRequest{
			NumTeams:    4,
			DraftType:   models.DraftTypeSnake,
			ScoringType: models.ScoringPPR,
			Roster:      testRoster(),
			Teams:       testTeams(4),
		})
		require.NoError(t, err)
		ids = append(ids, session.ID)
		clock.Advance(time.Minute)
	}

	sessions, err := app.ListSessions(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, ids[2], sessions[0].ID)
	assert.Equal(t, ids[1], sessions[1].ID)
}

func TestCurrentStateRecentPicks(t *testing.T) {
	pool := testPlayers(60)
	app, _ := newTestApp(t, pool)
	session := createAndStart(t, app, 4)

	for pick := 0; pick < 7; pick++ {
		state, err := app.CurrentState(context.Background(), session.ID)
		require.NoError(t, err)
		_, _, err = app.RecordPick(context.Background(), RecordPickRequest{
			SessionID: session.ID,
			TeamID:    state.OnClockTeam.ID,
			PlayerID:  pool[pick].ID,
		})
		require.NoError(t, err)
	}

	state, err := app.CurrentState(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, state.RecentPicks, 5)
	assert.Equal(t, 7, state.RecentPicks[0].OverallPick)
	assert.Equal(t, 3, state.RecentPicks[4].OverallPick)
	assert.Len(t, state.Order, 10)
}
