package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neerajsa/fantasy-football-assistant/internal/draft/outbox"
	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

// Postgres implements Repository on a pgx connection pool. Roster rules and
// roster counters are stored as JSONB; all multi-row writes run in a single
// transaction.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) CreateSession(ctx context.Context, session *models.DraftSession, teams []models.DraftTeam, slots []models.PickSlot) error {
	rosterRules, err := json.Marshal(session.Roster)
	if err != nil {
		return fmt.Errorf("failed to marshal roster rules: %w", err)
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO draft_sessions
			(id, num_teams, draft_type, scoring_type, roster_rules, total_rounds,
			 status, current_round, current_pick, current_team_index, version,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		session.ID, session.NumTeams, session.DraftType, session.ScoringType,
		rosterRules, session.TotalRounds, session.Status, session.CurrentRound,
		session.CurrentPick, session.CurrentTeamIndex, session.Version,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for _, t := range teams {
		roster, err := json.Marshal(t.Roster)
		if err != nil {
			return fmt.Errorf("failed to marshal team roster: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO draft_teams
				(id, session_id, team_index, name, is_human, roster, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
			t.ID, t.SessionID, t.TeamIndex, t.Name, t.IsHuman, roster, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert team %s: %w", t.Name, err)
		}
	}

	// Batch the ledger: a 12-team 15-round draft is 180 rows.
	batch := &pgx.Batch{}
	for _, s := range slots {
		batch.Queue(`
			INSERT INTO pick_slots
				(id, session_id, team_id, round, overall_pick, team_pick_number)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, s.SessionID, s.TeamID, s.Round, s.OverallPick, s.TeamPickNumber,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert pick slots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session creation: %w", err)
	}
	return nil
}

const sessionColumns = `id, num_teams, draft_type, scoring_type, roster_rules,
	total_rounds, status, current_round, current_pick, current_team_index,
	version, started_at, completed_at, created_at, updated_at`

func (p *Postgres) GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	row := p.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM draft_sessions WHERE id = $1`, sessionColumns), id)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (p *Postgres) ListSessions(ctx context.Context, limit int) ([]models.DraftSession, error) {
	rows, err := p.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM draft_sessions ORDER BY created_at DESC LIMIT $1`, sessionColumns),
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []models.DraftSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, *session)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteSession(ctx context.Context, id uuid.UUID) error {
	// Teams, slots, and outbox rows cascade via foreign keys.
	tag, err := p.db.Exec(ctx, `DELETE FROM draft_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (p *Postgres) GetTeams(ctx context.Context, sessionID uuid.UUID) ([]models.DraftTeam, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, session_id, team_index, name, is_human, roster, created_at, updated_at
		FROM draft_teams WHERE session_id = $1 ORDER BY team_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	defer rows.Close()

	var out []models.DraftTeam
	for rows.Next() {
		var (
			t      models.DraftTeam
			roster []byte
		)
		if err := rows.Scan(&t.ID, &t.SessionID, &t.TeamIndex, &t.Name, &t.IsHuman,
			&roster, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		if err := json.Unmarshal(roster, &t.Roster); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team roster: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) GetSlots(ctx context.Context, sessionID uuid.UUID) ([]models.PickSlot, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, session_id, team_id, round, overall_pick, team_pick_number,
		       player_id, picked_at, pick_seconds
		FROM pick_slots WHERE session_id = $1 ORDER BY overall_pick`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pick slots: %w", err)
	}
	defer rows.Close()

	var out []models.PickSlot
	for rows.Next() {
		var s models.PickSlot
		if err := rows.Scan(&s.ID, &s.SessionID, &s.TeamID, &s.Round, &s.OverallPick,
			&s.TeamPickNumber, &s.PlayerID, &s.PickedAt, &s.PickSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan pick slot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateStatus(ctx context.Context, update ProgressUpdate, events []outbox.Event) (*models.DraftSession, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err := applyProgressTx(ctx, tx, update)
	if err != nil {
		return nil, err
	}
	if err := insertEventsTx(ctx, tx, events); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return session, nil
}

func (p *Postgres) RecordPick(ctx context.Context, write PickWrite) (*models.PickSlot, error) {
	roster, err := json.Marshal(write.Roster)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal team roster: %w", err)
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Fill the slot only if still empty; a zero row count means a concurrent
	// writer beat us to it.
	var slot models.PickSlot
	err = tx.QueryRow(ctx, `
		UPDATE pick_slots
		SET player_id = $2, picked_at = $3, pick_seconds = $4
		WHERE id = $1 AND player_id IS NULL
		RETURNING id, session_id, team_id, round, overall_pick, team_pick_number,
		          player_id, picked_at, pick_seconds`,
		write.SlotID, write.PlayerID, write.PickedAt, write.PickSeconds,
	).Scan(&slot.ID, &slot.SessionID, &slot.TeamID, &slot.Round, &slot.OverallPick,
		&slot.TeamPickNumber, &slot.PlayerID, &slot.PickedAt, &slot.PickSeconds)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotAlreadyFilled
		}
		return nil, fmt.Errorf("failed to fill pick slot: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE draft_teams SET roster = $2, updated_at = $3 WHERE id = $1`,
		write.TeamID, roster, write.PickedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update team roster: %w", err)
	}

	if _, err := applyProgressTx(ctx, tx, write.Progress); err != nil {
		return nil, err
	}
	if err := insertEventsTx(ctx, tx, write.Events); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit pick: %w", err)
	}
	return &slot, nil
}

func applyProgressTx(ctx context.Context, tx pgx.Tx, update ProgressUpdate) (*models.DraftSession, error) {
	row := tx.QueryRow(ctx, fmt.Sprintf(`
		UPDATE draft_sessions
		SET status = $2,
		    current_round = $3,
		    current_pick = $4,
		    current_team_index = $5,
		    started_at = COALESCE($6, started_at),
		    completed_at = COALESCE($7, completed_at),
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND version = $8
		RETURNING %s`, sessionColumns),
		update.SessionID, update.Status, update.CurrentRound, update.CurrentPick,
		update.CurrentTeamIndex, update.StartedAt, update.CompletedAt,
		update.ExpectedVersion,
	)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s at version %d: %w",
				update.SessionID, update.ExpectedVersion, ErrVersionConflict)
		}
		return nil, fmt.Errorf("failed to update session progress: %w", err)
	}
	return session, nil
}

func insertEventsTx(ctx context.Context, tx pgx.Tx, events []outbox.Event) error {
	for _, e := range events {
		_, err := tx.Exec(ctx, `
			INSERT INTO draft_outbox (id, session_id, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, NOW())`,
			e.ID, e.SessionID, e.EventType, e.Payload)
		if err != nil {
			return fmt.Errorf("failed to insert outbox event %s: %w", e.EventType, err)
		}
	}
	return nil
}

// FetchUnsentEvents implements outbox.Store. SKIP LOCKED keeps concurrent
// workers from fetching the same batch, but the single-statement transaction
// releases the locks before publishing, so delivery is at-least-once; the
// JetStream publisher deduplicates by event ID.
func (p *Postgres) FetchUnsentEvents(ctx context.Context, limit int) ([]outbox.Event, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, session_id, event_type, payload, created_at, sent_at
		FROM draft_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent events: %w", err)
	}
	defer rows.Close()

	var out []outbox.Event
	for rows.Next() {
		var e outbox.Event
		if err := rows.Scan(&e.ID, &e.SessionID, &e.EventType, &e.Payload,
			&e.CreatedAt, &e.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkEventsSent implements outbox.Store.
func (p *Postgres) MarkEventsSent(ctx context.Context, ids []uuid.UUID, sentAt time.Time) error {
	_, err := p.db.Exec(ctx,
		`UPDATE draft_outbox SET sent_at = $2 WHERE id = ANY($1)`, ids, sentAt)
	if err != nil {
		return fmt.Errorf("failed to mark outbox events sent: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row) (*models.DraftSession, error) {
	var (
		s           models.DraftSession
		rosterRules []byte
	)
	err := row.Scan(&s.ID, &s.NumTeams, &s.DraftType, &s.ScoringType, &rosterRules,
		&s.TotalRounds, &s.Status, &s.CurrentRound, &s.CurrentPick,
		&s.CurrentTeamIndex, &s.Version, &s.StartedAt, &s.CompletedAt,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rosterRules, &s.Roster); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roster rules: %w", err)
	}
	return &s, nil
}
