package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
)

type modeRepository struct{ pool *pgxpool.Pool }

func NewModeRepository(pool *pgxpool.Pool) repository.ModeRepository {
	return &modeRepository{pool: pool}
}

const modeColumns = `id, name, points_to_win, serves_before_change, rules_description, deuce_enabled, serves_in_deuce, serve_type, created_at, updated_at`

func scanMode(row pgx.Row) (model.GameMode, error) {
	var out model.GameMode
	err := row.Scan(&out.ID, &out.Name, &out.PointsToWin, &out.ServesBeforeChange, &out.RulesDescription, &out.DeuceEnabled, &out.ServesInDeuce, &out.ServeType, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}

func (r *modeRepository) Create(ctx context.Context, m model.GameMode) (model.GameMode, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GameMode{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO game_modes (name, points_to_win, serves_before_change, rules_description, deuce_enabled, serves_in_deuce, serve_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+modeColumns,
		m.Name, m.PointsToWin, m.ServesBeforeChange, m.RulesDescription, m.DeuceEnabled, m.ServesInDeuce, m.ServeType,
	)
	out, err := scanMode(row)
	if err != nil {
		return model.GameMode{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *modeRepository) GetByID(ctx context.Context, id int64) (model.GameMode, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GameMode{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+modeColumns+` FROM game_modes WHERE id = $1`, id)
	out, err := scanMode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GameMode{}, repository.ErrNotFound
		}
		return model.GameMode{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *modeRepository) List(ctx context.Context) ([]model.GameMode, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT `+modeColumns+` FROM game_modes ORDER BY id`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.GameMode, 0, 8)
	for rows.Next() {
		it, err := scanMode(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r *modeRepository) Count(ctx context.Context) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	var n int64
	exec := getQ(ctx, r.pool)
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM game_modes`).Scan(&n); err != nil {
		return 0, repository.MapPgError(err)
	}
	return n, nil
}

var _ repository.ModeRepository = (*modeRepository)(nil)
