package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pinger exposes pool health for readiness probes.
type Pinger struct{ pool *pgxpool.Pool }

func NewPinger(pool *pgxpool.Pool) *Pinger { return &Pinger{pool: pool} }

func (p *Pinger) Ping(ctx context.Context) error {
	if err := ensurePool(p.pool); err != nil {
		return err
	}
	return p.pool.Ping(ctx)
}
