package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
	"github.com/avolkov/pingpong-stats-service/internal/scoring"
)

// defaultModes are seeded on first start so a fresh install can score a match
// without any setup.
var defaultModes = []model.GameMode{
	{
		Name:               "Standard 11",
		PointsToWin:        11,
		ServesBeforeChange: 2,
		RulesDescription:   "Classic game to 11 points (2 serves each)",
		DeuceEnabled:       true,
		ServesInDeuce:      1,
		ServeType:          scoring.DefaultServeType,
	},
	{
		Name:               "Classic 21",
		PointsToWin:        21,
		ServesBeforeChange: 5,
		RulesDescription:   "Old school game to 21 points (5 serves each)",
		DeuceEnabled:       true,
		ServesInDeuce:      1,
		ServeType:          scoring.DefaultServeType,
	},
}

type modeService struct {
	modes repository.ModeRepository
	log   zerolog.Logger
}

func NewModeService(modes repository.ModeRepository, logger zerolog.Logger) ModeService {
	l := logger.With().Str("module", "service").Str("component", "mode").Logger()
	return &modeService{modes: modes, log: l}
}

func (s *modeService) CreateMode(ctx context.Context, in CreateModeInput) (model.GameMode, error) {
	in.Name = strings.TrimSpace(in.Name)

	var ferrs []FieldError
	if in.Name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	}
	if in.PointsToWin < 1 {
		ferrs = append(ferrs, FieldError{Field: "points_to_win", Message: "must be >= 1"})
	}
	if in.ServesBeforeChange < 1 {
		ferrs = append(ferrs, FieldError{Field: "serves_before_change", Message: "must be >= 1"})
	}
	if in.ServesInDeuce < 1 {
		ferrs = append(ferrs, FieldError{Field: "serves_in_deuce", Message: "must be >= 1"})
	}
	if !isValidServeType(in.ServeType) {
		ferrs = append(ferrs, FieldError{Field: "serve_type", Message: "must be one of free, cross"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.GameMode{}, err
	}

	out, err := s.modes.Create(ctx, model.GameMode{
		Name:               in.Name,
		PointsToWin:        in.PointsToWin,
		ServesBeforeChange: in.ServesBeforeChange,
		RulesDescription:   in.RulesDescription,
		DeuceEnabled:       in.DeuceEnabled,
		ServesInDeuce:      in.ServesInDeuce,
		ServeType:          in.ServeType,
	})
	if err != nil {
		s.log.Error().Err(err).Str("name", in.Name).Msg("create mode failed")
		return model.GameMode{}, err
	}
	s.log.Info().Int64("mode_id", out.ID).Str("name", out.Name).Msg("game mode created")
	return out, nil
}

func (s *modeService) GetMode(ctx context.Context, id int64) (model.GameMode, error) {
	if id <= 0 {
		return model.GameMode{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.modes.GetByID(ctx, id)
}

func (s *modeService) ListModes(ctx context.Context) ([]model.GameMode, error) {
	return s.modes.List(ctx)
}

// EnsureDefaultModes seeds the standard modes when the table is empty.
func (s *modeService) EnsureDefaultModes(ctx context.Context) error {
	n, err := s.modes.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, m := range defaultModes {
		if _, err := s.modes.Create(ctx, m); err != nil {
			return err
		}
	}
	s.log.Info().Int("count", len(defaultModes)).Msg("seeded default game modes")
	return nil
}

var _ ModeService = (*modeService)(nil)
