// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidState marks operations attempted against a match in the wrong
// status: a point on a finished match, undo with an empty log, cancel of an
// already terminal match. Maps to HTTP 409.
var ErrInvalidState = errors.New("invalid match state")

var (
	// ErrMatchFinished rejects scoring operations on a match that is no longer in progress.
	ErrMatchFinished = fmt.Errorf("%w: match is not in progress", ErrInvalidState)
	// ErrNothingToUndo rejects undo when the event log is empty.
	ErrNothingToUndo = fmt.Errorf("%w: no events to undo", ErrInvalidState)
)

// ErrNotParticipant rejects scoring actions by a player who holds no seat in
// the match. Maps to HTTP 403.
var ErrNotParticipant = errors.New("player is not seated in this match")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error if any field errors are present.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	if v, ok := err.(feIface); ok && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// PlayerService defines player-oriented use cases.
type PlayerService interface {
	CreatePlayer(ctx context.Context, name, nickname, color, icon string) (model.Player, error)
	UpdatePlayer(ctx context.Context, id int64, name, color, icon string) (model.Player, error)
	GetPlayer(ctx context.Context, id int64) (model.Player, error)
	ListPlayers(ctx context.Context) ([]model.Player, error)
}

// CreateModeInput carries the fields of a new game mode.
type CreateModeInput struct {
	Name               string
	PointsToWin        int
	ServesBeforeChange int
	RulesDescription   string
	DeuceEnabled       bool
	ServesInDeuce      int
	ServeType          string
}

// ModeService defines game-mode use cases.
type ModeService interface {
	CreateMode(ctx context.Context, in CreateModeInput) (model.GameMode, error)
	GetMode(ctx context.Context, id int64) (model.GameMode, error)
	ListModes(ctx context.Context) ([]model.GameMode, error)
	// EnsureDefaultModes seeds the standard modes when none exist yet.
	EnsureDefaultModes(ctx context.Context) error
}

// StartMatchInput carries the participants and rule overrides of a new match.
// Seats 3 and 4 are the doubles partners and may be nil; nil ServesInDeuce and
// ServeType fall back to the mode defaults.
type StartMatchInput struct {
	Player1ID     int64
	Player2ID     int64
	Player3ID     *int64
	Player4ID     *int64
	GameModeID    int64
	ServesInDeuce *int
	ServeType     *string
}

// MatchService defines the live-match use cases: the scoring state machine
// plus match lifecycle management.
type MatchService interface {
	StartMatch(ctx context.Context, in StartMatchInput) (model.MatchDetail, error)
	GetMatch(ctx context.Context, id int64) (model.MatchDetail, error)
	AddPoint(ctx context.Context, matchID, playerID int64) (model.MatchDetail, error)
	UndoLastPoint(ctx context.Context, matchID int64) (model.MatchDetail, error)
	SetFirstServer(ctx context.Context, matchID, playerID int64) (model.MatchDetail, error)
	CancelMatch(ctx context.Context, matchID int64) error
	ListPlayerMatches(ctx context.Context, playerID int64, page repository.Page) (repository.PageResult[model.MatchDetail], error)
}

// StatsService defines the read-only statistics aggregation use case.
type StatsService interface {
	PlayerStatistics(ctx context.Context, playerID int64) (model.PlayerStatistics, error)
}

// BindingService defines key-binding management use cases.
type BindingService interface {
	ListBindings(ctx context.Context) ([]model.KeyBinding, error)
	SetBinding(ctx context.Context, action, keyCode, label string) (model.KeyBinding, error)
	DeleteBinding(ctx context.Context, id int64) error
	ResetBindings(ctx context.Context) ([]model.KeyBinding, error)
}
