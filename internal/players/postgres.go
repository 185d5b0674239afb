package players

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neerajsa/fantasy-football-assistant/internal/models"
)

// PostgresPool reads the custom-rankings player table maintained by the
// ranking import pipeline.
type PostgresPool struct {
	db *pgxpool.Pool
}

func NewPostgresPool(db *pgxpool.Pool) *PostgresPool {
	return &PostgresPool{db: db}
}

const playerColumns = `id, name, position, nfl_team, bye_week,
	ecr_rank_standard, ecr_rank_ppr, ecr_rank_half_ppr,
	adp_standard, adp_ppr, adp_half_ppr, updated_at`

func (p *PostgresPool) Get(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row := p.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM players WHERE id = $1`, playerColumns), id)

	player, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("player %s: %w", id, ErrPlayerNotFound)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (p *PostgresPool) ListAvailable(ctx context.Context, f Filter) ([]models.Player, error) {
	var (
		conds []string
		args  []any
	)

	if len(f.Exclude) > 0 {
		ids := make([]uuid.UUID, 0, len(f.Exclude))
		for id := range f.Exclude {
			ids = append(ids, id)
		}
		args = append(args, ids)
		conds = append(conds, fmt.Sprintf("id != ALL($%d)", len(args)))
	}
	if f.Position != nil {
		args = append(args, string(*f.Position))
		conds = append(conds, fmt.Sprintf("position = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM players`, playerColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s ASC NULLS LAST, name ASC", rankColumn(f.Scoring))
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list available players: %w", err)
	}
	defer rows.Close()

	var out []models.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		out = append(out, *player)
	}
	return out, rows.Err()
}

func rankColumn(scoring models.ScoringType) string {
	switch scoring {
	case models.ScoringStandard:
		return "ecr_rank_standard"
	case models.ScoringHalfPPR:
		return "ecr_rank_half_ppr"
	default:
		return "ecr_rank_ppr"
	}
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID, &p.Name, &p.Position, &p.NFLTeam, &p.ByeWeek,
		&p.ECRRankStandard, &p.ECRRankPPR, &p.ECRRankHalfPPR,
		&p.ADPStandard, &p.ADPPPR, &p.ADPHalfPPR, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
