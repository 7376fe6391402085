package repository

import (
	"context"

	"github.com/avolkov/pingpong-stats-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// Match finalize and its undo rely on this: the match row update and the
// player counter deltas must land as one durable unit or not at all.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// PlayerRepository declares persistence operations for players.
// I return domain models and surface domain errors from errors.go rather than PG codes.
type PlayerRepository interface {
	Create(ctx context.Context, p model.Player) (model.Player, error)
	Update(ctx context.Context, p model.Player) (model.Player, error)
	GetByID(ctx context.Context, id int64) (model.Player, error)
	List(ctx context.Context) ([]model.Player, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// AdjustCounters applies a signed delta to a player's cumulative wins and
	// matches-played counters. Finalize issues up to four of these inside one
	// transaction; undo issues the exact inverse.
	AdjustCounters(ctx context.Context, id int64, winsDelta, playedDelta int64) error
}

// ModeRepository declares persistence operations for game modes.
type ModeRepository interface {
	Create(ctx context.Context, m model.GameMode) (model.GameMode, error)
	GetByID(ctx context.Context, id int64) (model.GameMode, error)
	List(ctx context.Context) ([]model.GameMode, error)
	Count(ctx context.Context) (int64, error)
}

// MatchRepository declares persistence operations for matches. Update must
// persist score, status, event log, rules, end time and winner together.
type MatchRepository interface {
	Create(ctx context.Context, m model.Match) (model.Match, error)
	GetByID(ctx context.Context, id int64) (model.Match, error)
	Update(ctx context.Context, m model.Match) (model.Match, error)
	// ListByPlayer returns matches where the player holds any seat, newest first.
	ListByPlayer(ctx context.Context, playerID int64, p Page) (PageResult[model.Match], error)
	// ListFinishedByPlayer returns finished matches where the player holds any
	// seat, ordered by start time ascending. Streak computation depends on the
	// ordering.
	ListFinishedByPlayer(ctx context.Context, playerID int64) ([]model.Match, error)
}

// BindingRepository declares persistence operations for key bindings.
type BindingRepository interface {
	List(ctx context.Context) ([]model.KeyBinding, error)
	Upsert(ctx context.Context, b model.KeyBinding) (model.KeyBinding, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}
