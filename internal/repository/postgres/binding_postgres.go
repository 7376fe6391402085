package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
)

type bindingRepository struct{ pool *pgxpool.Pool }

func NewBindingRepository(pool *pgxpool.Pool) repository.BindingRepository {
	return &bindingRepository{pool: pool}
}

const bindingColumns = `id, action, key_code, label, is_default`

func scanBinding(row pgx.Row) (model.KeyBinding, error) {
	var out model.KeyBinding
	err := row.Scan(&out.ID, &out.Action, &out.KeyCode, &out.Label, &out.IsDefault)
	return out, err
}

func (r *bindingRepository) List(ctx context.Context) ([]model.KeyBinding, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT `+bindingColumns+` FROM key_bindings ORDER BY action, key_code`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.KeyBinding, 0, 16)
	for rows.Next() {
		it, err := scanBinding(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

// Upsert inserts a binding or relabels an existing (action, key_code) pair.
func (r *bindingRepository) Upsert(ctx context.Context, b model.KeyBinding) (model.KeyBinding, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.KeyBinding{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO key_bindings (action, key_code, label, is_default)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (action, key_code)
		 DO UPDATE SET label = EXCLUDED.label, is_default = EXCLUDED.is_default
		 RETURNING `+bindingColumns,
		b.Action, b.KeyCode, b.Label, b.IsDefault,
	)
	out, err := scanBinding(row)
	if err != nil {
		return model.KeyBinding{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *bindingRepository) Delete(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM key_bindings WHERE id = $1`, id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *bindingRepository) DeleteAll(ctx context.Context) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	if _, err := exec.Exec(ctx, `DELETE FROM key_bindings`); err != nil {
		return repository.MapPgError(err)
	}
	return nil
}

var _ repository.BindingRepository = (*bindingRepository)(nil)
