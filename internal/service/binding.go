package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
)

// defaultBindings is the factory key map restored by ResetBindings.
var defaultBindings = []model.KeyBinding{
	{Action: "nav_up", KeyCode: "ArrowUp", Label: "Arrow Up", IsDefault: true},
	{Action: "nav_down", KeyCode: "ArrowDown", Label: "Arrow Down", IsDefault: true},
	{Action: "nav_left", KeyCode: "ArrowLeft", Label: "Arrow Left", IsDefault: true},
	{Action: "nav_right", KeyCode: "ArrowRight", Label: "Arrow Right", IsDefault: true},
	{Action: "confirm", KeyCode: "Enter", Label: "Enter", IsDefault: true},
	{Action: "confirm", KeyCode: "Space", Label: "Space", IsDefault: true},
	{Action: "back", KeyCode: "Escape", Label: "Escape", IsDefault: true},
	{Action: "back", KeyCode: "Backspace", Label: "Backspace", IsDefault: true},
	{Action: "add_point_left", KeyCode: "KeyA", Label: "A", IsDefault: true},
	{Action: "add_point_left", KeyCode: "Digit1", Label: "1", IsDefault: true},
	{Action: "add_point_right", KeyCode: "KeyL", Label: "L", IsDefault: true},
	{Action: "add_point_right", KeyCode: "Digit0", Label: "0", IsDefault: true},
	{Action: "undo", KeyCode: "KeyZ", Label: "Z", IsDefault: true},
}

type bindingService struct {
	bindings repository.BindingRepository
	tx       repository.TxManager
	log      zerolog.Logger
}

func NewBindingService(bindings repository.BindingRepository, tx repository.TxManager, logger zerolog.Logger) BindingService {
	l := logger.With().Str("module", "service").Str("component", "binding").Logger()
	return &bindingService{bindings: bindings, tx: tx, log: l}
}

func (s *bindingService) ListBindings(ctx context.Context) ([]model.KeyBinding, error) {
	return s.bindings.List(ctx)
}

func (s *bindingService) SetBinding(ctx context.Context, action, keyCode, label string) (model.KeyBinding, error) {
	action = strings.TrimSpace(action)
	keyCode = strings.TrimSpace(keyCode)

	var ferrs []FieldError
	if action == "" {
		ferrs = append(ferrs, FieldError{Field: "action", Message: "must not be empty"})
	}
	if keyCode == "" {
		ferrs = append(ferrs, FieldError{Field: "key_code", Message: "must not be empty"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.KeyBinding{}, err
	}
	if label == "" {
		label = keyCode
	}

	out, err := s.bindings.Upsert(ctx, model.KeyBinding{Action: action, KeyCode: keyCode, Label: label})
	if err != nil {
		s.log.Error().Err(err).Str("action", action).Str("key", keyCode).Msg("set binding failed")
		return model.KeyBinding{}, err
	}
	return out, nil
}

func (s *bindingService) DeleteBinding(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.bindings.Delete(ctx, id)
}

// ResetBindings wipes all bindings and restores the factory map in one
// transaction, so readers never observe an empty key map.
func (s *bindingService) ResetBindings(ctx context.Context) ([]model.KeyBinding, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.bindings.DeleteAll(ctx); err != nil {
			return err
		}
		for _, b := range defaultBindings {
			if _, err := s.bindings.Upsert(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Msg("key bindings reset to defaults")
	return s.bindings.List(ctx)
}

var _ BindingService = (*bindingService)(nil)
