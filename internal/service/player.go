package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
)

type playerService struct {
	players repository.PlayerRepository
	log     zerolog.Logger
}

func NewPlayerService(players repository.PlayerRepository, logger zerolog.Logger) PlayerService {
	l := logger.With().Str("module", "service").Str("component", "player").Logger()
	return &playerService{players: players, log: l}
}

func (s *playerService) CreatePlayer(ctx context.Context, name, nickname, color, icon string) (model.Player, error) {
	start := time.Now()

	// Normalize early so validation and persistence see canonical values.
	name = strings.TrimSpace(name)
	nickname = strings.TrimSpace(nickname)

	var ferrs []FieldError
	if name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	} else if ln := len([]rune(name)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "length must be <= 50"})
	}
	if ln := len([]rune(nickname)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "nickname", Message: "length must be <= 50"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("player validation failed")
		return model.Player{}, err
	}

	out, err := s.players.Create(ctx, model.Player{Name: name, Nickname: nickname, Color: color, Icon: icon})
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("create player failed")
		return model.Player{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("player_id", out.ID).Msg("player created")
	return out, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int64, name, color, icon string) (model.Player, error) {
	name = strings.TrimSpace(name)

	var ferrs []FieldError
	if id <= 0 {
		ferrs = append(ferrs, FieldError{Field: "id", Message: "must be > 0"})
	}
	if name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	} else if ln := len([]rune(name)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "length must be <= 50"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.Player{}, err
	}

	current, err := s.players.GetByID(ctx, id)
	if err != nil {
		return model.Player{}, err
	}
	current.Name = name
	current.Color = color
	current.Icon = icon
	out, err := s.players.Update(ctx, current)
	if err != nil {
		s.log.Error().Err(err).Int64("player_id", id).Msg("update player failed")
		return model.Player{}, err
	}
	return out, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int64) (model.Player, error) {
	if id <= 0 {
		return model.Player{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.players.GetByID(ctx, id)
}

func (s *playerService) ListPlayers(ctx context.Context) ([]model.Player, error) {
	return s.players.List(ctx)
}

var _ PlayerService = (*playerService)(nil)
