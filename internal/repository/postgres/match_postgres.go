package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
	"github.com/avolkov/pingpong-stats-service/internal/scoring"
)

type matchRepository struct{ pool *pgxpool.Pool }

func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &matchRepository{pool: pool}
}

const matchColumns = `id, player1_id, player2_id, player3_id, player4_id, game_mode_id, status, score_a, score_b, events, match_rules, winner_id, start_time, end_time`

// scanMatch decodes one match row. The event log and rules live in JSONB
// columns; a corrupt document degrades to an empty log / default rules so a
// bad row never makes the match unreadable.
func scanMatch(row pgx.Row) (model.Match, error) {
	var (
		out      model.Match
		rawLog   []byte
		rawRules []byte
	)
	err := row.Scan(&out.ID, &out.Player1ID, &out.Player2ID, &out.Player3ID, &out.Player4ID,
		&out.GameModeID, &out.Status, &out.ScoreA, &out.ScoreB, &rawLog, &rawRules,
		&out.WinnerID, &out.StartTime, &out.EndTime)
	if err != nil {
		return model.Match{}, err
	}
	out.Events = scoring.DecodeEventLog(rawLog)
	out.Rules = scoring.DecodeRules(rawRules)
	return out, nil
}

func (r *matchRepository) Create(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	rawRules, err := scoring.EncodeRules(m.Rules)
	if err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO matches (player1_id, player2_id, player3_id, player4_id, game_mode_id, status, match_rules, events)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, '[]'::jsonb)
		 RETURNING `+matchColumns,
		m.Player1ID, m.Player2ID, m.Player3ID, m.Player4ID, m.GameModeID, model.StatusInProgress, rawRules,
	)
	out, err := scanMatch(row)
	if err != nil {
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id int64) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	out, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, repository.ErrNotFound
		}
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

// Update persists score, status, event log, rules, end time and winner in one
// statement, keeping the row internally consistent.
func (r *matchRepository) Update(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	rawLog, err := scoring.EncodeEventLog(m.Events)
	if err != nil {
		return model.Match{}, err
	}
	rawRules, err := scoring.EncodeRules(m.Rules)
	if err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`UPDATE matches
		 SET score_a = $2, score_b = $3, events = $4, match_rules = $5, status = $6, end_time = $7, winner_id = $8
		 WHERE id = $1
		 RETURNING `+matchColumns,
		m.ID, m.ScoreA, m.ScoreB, rawLog, rawRules, m.Status, m.EndTime, m.WinnerID,
	)
	out, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, repository.ErrNotFound
		}
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) ListByPlayer(ctx context.Context, playerID int64, p repository.Page) (repository.PageResult[model.Match], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Match]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+matchColumns+`, COUNT(*) OVER() AS total
		 FROM matches
		 WHERE player1_id = $1 OR player2_id = $1 OR player3_id = $1 OR player4_id = $1
		 ORDER BY start_time DESC
		 LIMIT $2 OFFSET $3`,
		playerID, limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Match]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Match]{Items: make([]model.Match, 0, limit)}
	for rows.Next() {
		var (
			it       model.Match
			rawLog   []byte
			rawRules []byte
			total    int
		)
		if err := rows.Scan(&it.ID, &it.Player1ID, &it.Player2ID, &it.Player3ID, &it.Player4ID,
			&it.GameModeID, &it.Status, &it.ScoreA, &it.ScoreB, &rawLog, &rawRules,
			&it.WinnerID, &it.StartTime, &it.EndTime, &total); err != nil {
			return repository.PageResult[model.Match]{}, repository.MapPgError(err)
		}
		it.Events = scoring.DecodeEventLog(rawLog)
		it.Rules = scoring.DecodeRules(rawRules)
		res.Items = append(res.Items, it)
		res.Total = total
	}
	return res, rows.Err()
}

func (r *matchRepository) ListFinishedByPlayer(ctx context.Context, playerID int64) ([]model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+matchColumns+`
		 FROM matches
		 WHERE (player1_id = $1 OR player2_id = $1 OR player3_id = $1 OR player4_id = $1)
		   AND status = $2
		 ORDER BY start_time ASC`,
		playerID, model.StatusFinished,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.Match, 0, 32)
	for rows.Next() {
		it, err := scanMatch(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

var _ repository.MatchRepository = (*matchRepository)(nil)
