package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
	"github.com/avolkov/pingpong-stats-service/internal/scoring"
)

const recentMatchLimit = 10

type statsService struct {
	matches repository.MatchRepository
	players repository.PlayerRepository
	modes   repository.ModeRepository
	log     zerolog.Logger
}

func NewStatsService(matches repository.MatchRepository, players repository.PlayerRepository, modes repository.ModeRepository, logger zerolog.Logger) StatsService {
	l := logger.With().Str("module", "service").Str("component", "stats").Logger()
	return &statsService{matches: matches, players: players, modes: modes, log: l}
}

// PlayerStatistics walks the player's finished matches in start-time order
// and derives streaks, per-mode records, opponent records and the recent
// history. Win/loss classification uses captain parity: the player's side won
// iff the recorded winner equals that side's captain seat, so partners
// inherit their captain's result. The opponent of record is always the other
// side's captain.
func (s *statsService) PlayerStatistics(ctx context.Context, playerID int64) (model.PlayerStatistics, error) {
	if playerID <= 0 {
		return model.PlayerStatistics{}, NewInvalidInputError([]FieldError{{Field: "player_id", Message: "must be > 0"}})
	}
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return model.PlayerStatistics{}, err
	}

	matches, err := s.matches.ListFinishedByPlayer(ctx, playerID)
	if err != nil {
		s.log.Error().Err(err).Int64("player_id", playerID).Msg("load finished matches failed")
		return model.PlayerStatistics{}, err
	}

	nameByPlayer, err := s.playerNames(ctx)
	if err != nil {
		return model.PlayerStatistics{}, err
	}
	nameByMode, err := s.modeNames(ctx)
	if err != nil {
		return model.PlayerStatistics{}, err
	}

	type record struct{ wins, losses int }
	stats := model.PlayerStatistics{PlayerID: playerID}
	modeRecs := make(map[string]*record)
	oppRecs := make(map[int64]*record)
	recent := make([]model.RecentMatch, 0, len(matches))

	for _, m := range matches {
		side, seated := m.SideOf(playerID)
		if !seated {
			continue // defensive; the query filters by seat
		}
		opponent := m.CaptainOf(side.Other())

		playerScore, oppScore := m.ScoreA, m.ScoreB
		if side == scoring.SideB {
			playerScore, oppScore = m.ScoreB, m.ScoreA
		}
		stats.PointsScored += playerScore
		stats.PointsConceded += oppScore

		won := m.WinnerID != nil && *m.WinnerID == m.CaptainOf(side)

		modeName := nameByMode[m.GameModeID]
		if modeName == "" {
			modeName = "Unknown"
		}
		mr := modeRecs[modeName]
		if mr == nil {
			mr = &record{}
			modeRecs[modeName] = mr
		}
		or := oppRecs[opponent]
		if or == nil {
			or = &record{}
			oppRecs[opponent] = or
		}

		if won {
			stats.Wins++
			stats.CurrentStreak++
			if stats.CurrentStreak > stats.BestStreak {
				stats.BestStreak = stats.CurrentStreak
			}
			mr.wins++
			or.wins++
		} else {
			stats.Losses++
			stats.CurrentStreak = 0
			mr.losses++
			or.losses++
		}

		result := "Loss"
		if won {
			result = "Win"
		}
		recent = append(recent, model.RecentMatch{
			MatchID:       m.ID,
			Date:          m.StartTime.Format(time.RFC3339),
			OpponentName:  s.playerName(nameByPlayer, opponent),
			Result:        result,
			ScoreUser:     playerScore,
			ScoreOpponent: oppScore,
			ModeName:      modeName,
		})
	}

	// Most recent first, capped.
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	if len(recent) > recentMatchLimit {
		recent = recent[:recentMatchLimit]
	}
	stats.RecentMatches = recent

	stats.MatchesPlayed = stats.Wins + stats.Losses
	if stats.MatchesPlayed > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.MatchesPlayed)
	}

	stats.ModeStats = make([]model.ModeStat, 0, len(modeRecs))
	for name, rec := range modeRecs {
		total := rec.wins + rec.losses
		rate := 0.0
		if total > 0 {
			rate = float64(rec.wins) / float64(total)
		}
		stats.ModeStats = append(stats.ModeStats, model.ModeStat{
			ModeName: name,
			Wins:     rec.wins,
			Losses:   rec.losses,
			WinRate:  rate,
		})
	}

	// Nemesis: most losses against; victim: most wins against. Ties follow map
	// iteration order and are not deterministic.
	var nemesis, victim *model.OpponentStat
	for id, rec := range oppRecs {
		if nemesis == nil || rec.losses > nemesis.Count {
			nemesis = &model.OpponentStat{OpponentID: id, OpponentName: s.playerName(nameByPlayer, id), Count: rec.losses}
		}
		if victim == nil || rec.wins > victim.Count {
			victim = &model.OpponentStat{OpponentID: id, OpponentName: s.playerName(nameByPlayer, id), Count: rec.wins}
		}
	}
	stats.Nemesis = nemesis
	stats.Victim = victim

	return stats, nil
}

func (s *statsService) playerNames(ctx context.Context) (map[int64]string, error) {
	players, err := s.players.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(players))
	for _, p := range players {
		out[p.ID] = p.Name
	}
	return out, nil
}

func (s *statsService) modeNames(ctx context.Context) (map[int64]string, error) {
	modes, err := s.modes.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(modes))
	for _, m := range modes {
		out[m.ID] = m.Name
	}
	return out, nil
}

func (s *statsService) playerName(names map[int64]string, id int64) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return "Unknown"
}

var _ StatsService = (*statsService)(nil)
