package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
	"github.com/avolkov/pingpong-stats-service/internal/scoring"
)

type matchService struct {
	matches repository.MatchRepository
	players repository.PlayerRepository
	modes   repository.ModeRepository
	tx      repository.TxManager
	locks   *matchLocks
	now     func() time.Time
	log     zerolog.Logger
}

func NewMatchService(matches repository.MatchRepository, players repository.PlayerRepository, modes repository.ModeRepository, tx repository.TxManager, logger zerolog.Logger) MatchService {
	l := logger.With().Str("module", "service").Str("component", "match").Logger()
	return &matchService{
		matches: matches,
		players: players,
		modes:   modes,
		tx:      tx,
		locks:   newMatchLocks(),
		now:     time.Now,
		log:     l,
	}
}

func (s *matchService) StartMatch(ctx context.Context, in StartMatchInput) (model.MatchDetail, error) {
	var ferrs []FieldError
	if in.Player1ID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "player1_id", Message: "must be > 0"})
	}
	if in.Player2ID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "player2_id", Message: "must be > 0"})
	}
	if in.GameModeID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "game_mode_id", Message: "must be > 0"})
	}
	seats := map[int64]bool{in.Player1ID: true, in.Player2ID: true}
	if in.Player1ID == in.Player2ID {
		ferrs = append(ferrs, FieldError{Field: "player2_id", Message: "seats must be distinct"})
	}
	for field, id := range map[string]*int64{"player3_id": in.Player3ID, "player4_id": in.Player4ID} {
		if id == nil {
			continue
		}
		if *id <= 0 {
			ferrs = append(ferrs, FieldError{Field: field, Message: "must be > 0"})
		} else if seats[*id] {
			ferrs = append(ferrs, FieldError{Field: field, Message: "seats must be distinct"})
		} else {
			seats[*id] = true
		}
	}
	if in.ServeType != nil && !isValidServeType(*in.ServeType) {
		ferrs = append(ferrs, FieldError{Field: "serve_type", Message: "must be one of free, cross"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.MatchDetail{}, err
	}

	gm, err := s.modes.GetByID(ctx, in.GameModeID)
	if err != nil {
		return model.MatchDetail{}, err
	}

	// Effective rules start as a copy of the mode defaults; overrides apply per match.
	rules := scoring.Rules{ServesInDeuce: gm.ServesInDeuce, ServeType: gm.ServeType}
	if rules.ServeType == "" {
		rules.ServeType = scoring.DefaultServeType
	}
	if in.ServesInDeuce != nil {
		rules.ServesInDeuce = *in.ServesInDeuce
	}
	if in.ServeType != nil {
		rules.ServeType = *in.ServeType
	}

	created, err := s.matches.Create(ctx, model.Match{
		Player1ID:  in.Player1ID,
		Player2ID:  in.Player2ID,
		Player3ID:  in.Player3ID,
		Player4ID:  in.Player4ID,
		GameModeID: in.GameModeID,
		Rules:      rules,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("p1", in.Player1ID).Int64("p2", in.Player2ID).Msg("start match failed")
		return model.MatchDetail{}, err
	}
	s.log.Info().Int64("match_id", created.ID).Int64("mode_id", gm.ID).Msg("match started")
	return s.populate(ctx, created)
}

func (s *matchService) GetMatch(ctx context.Context, id int64) (model.MatchDetail, error) {
	if id <= 0 {
		return model.MatchDetail{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return model.MatchDetail{}, err
	}
	return s.populate(ctx, m)
}

// AddPoint increments the acting player's side, appends the point event and
// finalizes the match when the win condition is met. The match row and the
// four counter deltas of a finalize commit as one transaction, under the
// per-match lock.
func (s *matchService) AddPoint(ctx context.Context, matchID, playerID int64) (model.MatchDetail, error) {
	var ferrs []FieldError
	if matchID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "match_id", Message: "must be > 0"})
	}
	if playerID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "player_id", Message: "must be > 0"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.MatchDetail{}, err
	}

	release := s.locks.acquire(matchID)
	defer release()

	var updated model.Match
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.matches.GetByID(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status != model.StatusInProgress {
			return ErrMatchFinished
		}
		side, ok := m.SideOf(playerID)
		if !ok {
			return ErrNotParticipant
		}

		if side == scoring.SideA {
			m.ScoreA++
		} else {
			m.ScoreB++
		}
		m.Events.Append(scoring.NewPointEvent(playerID, s.now(), m.Score()))

		gm, err := s.modes.GetByID(ctx, m.GameModeID)
		if err != nil {
			return err
		}
		if winner, over := scoring.Evaluate(m.ScoreA, m.ScoreB, gm.PointsToWin, gm.DeuceEnabled); over {
			if err := s.finalize(ctx, &m, winner); err != nil {
				return err
			}
		}

		updated, err = s.matches.Update(ctx, m)
		return err
	})
	if err != nil {
		return model.MatchDetail{}, err
	}
	if updated.Status == model.StatusFinished {
		s.log.Info().Int64("match_id", updated.ID).Int("score_a", updated.ScoreA).Int("score_b", updated.ScoreB).Msg("match finished")
	}
	return s.populate(ctx, updated)
}

// finalize transitions the match to finished and issues the four counter
// deltas: winning captain and partner get wins+1/played+1, losing captain and
// partner get played+1. The winner of record is always the captain seat.
func (s *matchService) finalize(ctx context.Context, m *model.Match, winner scoring.Side) error {
	m.Status = model.StatusFinished
	end := s.now()
	m.EndTime = &end
	captain := m.CaptainOf(winner)
	m.WinnerID = &captain

	loser := winner.Other()
	if err := s.players.AdjustCounters(ctx, captain, 1, 1); err != nil {
		return err
	}
	if p := m.PartnerOf(winner); p != nil {
		if err := s.players.AdjustCounters(ctx, *p, 1, 1); err != nil {
			return err
		}
	}
	if err := s.players.AdjustCounters(ctx, m.CaptainOf(loser), 0, 1); err != nil {
		return err
	}
	if p := m.PartnerOf(loser); p != nil {
		if err := s.players.AdjustCounters(ctx, *p, 0, 1); err != nil {
			return err
		}
	}
	return nil
}

// UndoLastPoint pops the most recent event and reverses its effects. Undoing
// the finishing point also reverses the finalize: status back to in_progress,
// end time and winner cleared, and the exact inverse of the four counter
// deltas applied.
func (s *matchService) UndoLastPoint(ctx context.Context, matchID int64) (model.MatchDetail, error) {
	if matchID <= 0 {
		return model.MatchDetail{}, NewInvalidInputError([]FieldError{{Field: "match_id", Message: "must be > 0"}})
	}

	release := s.locks.acquire(matchID)
	defer release()

	var updated model.Match
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.matches.GetByID(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status == model.StatusAbandoned {
			return ErrMatchFinished
		}

		ev, ok := m.Events.PopLast()
		if !ok {
			return ErrNothingToUndo
		}
		if ev.Type == scoring.EventPoint {
			// Resolve the side by seat membership so partner-scored points
			// reverse correctly. Floor at zero; a consistent log never needs it.
			if side, seated := m.SideOf(ev.PlayerID); seated {
				if side == scoring.SideA && m.ScoreA > 0 {
					m.ScoreA--
				} else if side == scoring.SideB && m.ScoreB > 0 {
					m.ScoreB--
				}
			}
		}

		if m.Status == model.StatusFinished {
			if err := s.unfinalize(ctx, &m); err != nil {
				return err
			}
		}

		updated, err = s.matches.Update(ctx, m)
		return err
	})
	if err != nil {
		return model.MatchDetail{}, err
	}
	s.log.Debug().Int64("match_id", updated.ID).Int("events", updated.Events.Len()).Msg("last event undone")
	return s.populate(ctx, updated)
}

// unfinalize is the exact inverse of finalize.
func (s *matchService) unfinalize(ctx context.Context, m *model.Match) error {
	if m.WinnerID != nil {
		winner, _ := m.SideOf(*m.WinnerID)
		loser := winner.Other()
		if err := s.players.AdjustCounters(ctx, m.CaptainOf(winner), -1, -1); err != nil {
			return err
		}
		if p := m.PartnerOf(winner); p != nil {
			if err := s.players.AdjustCounters(ctx, *p, -1, -1); err != nil {
				return err
			}
		}
		if err := s.players.AdjustCounters(ctx, m.CaptainOf(loser), 0, -1); err != nil {
			return err
		}
		if p := m.PartnerOf(loser); p != nil {
			if err := s.players.AdjustCounters(ctx, *p, 0, -1); err != nil {
				return err
			}
		}
	}
	m.Status = model.StatusInProgress
	m.EndTime = nil
	m.WinnerID = nil
	return nil
}

// SetFirstServer records who serves first. Pure rules metadata; no score or
// status effect. Any of the four seats is accepted.
func (s *matchService) SetFirstServer(ctx context.Context, matchID, playerID int64) (model.MatchDetail, error) {
	var ferrs []FieldError
	if matchID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "match_id", Message: "must be > 0"})
	}
	if playerID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "player_id", Message: "must be > 0"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.MatchDetail{}, err
	}

	release := s.locks.acquire(matchID)
	defer release()

	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return model.MatchDetail{}, err
	}
	if _, seated := m.SideOf(playerID); !seated {
		return model.MatchDetail{}, ErrNotParticipant
	}
	m.Rules.FirstServerID = &playerID

	updated, err := s.matches.Update(ctx, m)
	if err != nil {
		return model.MatchDetail{}, err
	}
	return s.populate(ctx, updated)
}

// CancelMatch abandons an in-progress match. Terminal: no undo path, no
// counter effects.
func (s *matchService) CancelMatch(ctx context.Context, matchID int64) error {
	if matchID <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "match_id", Message: "must be > 0"}})
	}

	release := s.locks.acquire(matchID)
	defer release()

	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if m.Status != model.StatusInProgress {
		return ErrMatchFinished
	}
	m.Status = model.StatusAbandoned
	end := s.now()
	m.EndTime = &end
	if _, err := s.matches.Update(ctx, m); err != nil {
		return err
	}
	s.log.Info().Int64("match_id", matchID).Msg("match abandoned")
	return nil
}

func (s *matchService) ListPlayerMatches(ctx context.Context, playerID int64, page repository.Page) (repository.PageResult[model.MatchDetail], error) {
	if playerID <= 0 {
		return repository.PageResult[model.MatchDetail]{}, NewInvalidInputError([]FieldError{{Field: "player_id", Message: "must be > 0"}})
	}
	p := normalizePage(page)
	res, err := s.matches.ListByPlayer(ctx, playerID, p)
	if err != nil {
		s.log.Error().Err(err).Int64("player_id", playerID).Msg("list matches failed")
		return repository.PageResult[model.MatchDetail]{}, err
	}
	out := repository.PageResult[model.MatchDetail]{
		Items: make([]model.MatchDetail, 0, len(res.Items)),
		Total: res.Total,
	}
	for _, m := range res.Items {
		d, err := s.populate(ctx, m)
		if err != nil {
			return repository.PageResult[model.MatchDetail]{}, err
		}
		out.Items = append(out.Items, d)
	}
	return out, nil
}

// populate resolves the match's referenced rows into the read model.
func (s *matchService) populate(ctx context.Context, m model.Match) (model.MatchDetail, error) {
	p1, err := s.players.GetByID(ctx, m.Player1ID)
	if err != nil {
		return model.MatchDetail{}, err
	}
	p2, err := s.players.GetByID(ctx, m.Player2ID)
	if err != nil {
		return model.MatchDetail{}, err
	}
	gm, err := s.modes.GetByID(ctx, m.GameModeID)
	if err != nil {
		return model.MatchDetail{}, err
	}

	d := model.MatchDetail{
		ID:          m.ID,
		Player1:     p1,
		Player2:     p2,
		GameMode:    gm,
		Status:      m.Status,
		Score:       m.Score(),
		Events:      m.Events.Events(),
		Rules:       m.Rules,
		FirstServer: m.Rules.FirstServerID,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
	}
	if m.Player3ID != nil {
		p3, err := s.players.GetByID(ctx, *m.Player3ID)
		if err != nil {
			return model.MatchDetail{}, err
		}
		d.Player3 = &p3
	}
	if m.Player4ID != nil {
		p4, err := s.players.GetByID(ctx, *m.Player4ID)
		if err != nil {
			return model.MatchDetail{}, err
		}
		d.Player4 = &p4
	}
	if m.WinnerID != nil {
		w, err := s.players.GetByID(ctx, *m.WinnerID)
		if err != nil {
			return model.MatchDetail{}, err
		}
		d.Winner = &w
	}
	return d, nil
}

var _ MatchService = (*matchService)(nil)
