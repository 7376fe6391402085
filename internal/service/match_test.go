package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
)

type matchFixture struct {
	players *fakePlayerRepo
	modes   *fakeModeRepo
	matches *fakeMatchRepo
	svc     MatchService

	p1, p2, p3, p4 model.Player
	mode           model.GameMode
}

func newMatchFixture(t *testing.T, pointsToWin int, deuce bool) *matchFixture {
	t.Helper()
	f := &matchFixture{
		players: newFakePlayerRepo(),
		modes:   newFakeModeRepo(),
		matches: newFakeMatchRepo(),
	}
	ctx := context.Background()
	var err error
	f.p1, err = f.players.Create(ctx, model.Player{Name: "Alice"})
	require.NoError(t, err)
	f.p2, err = f.players.Create(ctx, model.Player{Name: "Bob"})
	require.NoError(t, err)
	f.p3, err = f.players.Create(ctx, model.Player{Name: "Carol"})
	require.NoError(t, err)
	f.p4, err = f.players.Create(ctx, model.Player{Name: "Dave"})
	require.NoError(t, err)
	f.mode, err = f.modes.Create(ctx, model.GameMode{
		Name:               "Test Mode",
		PointsToWin:        pointsToWin,
		ServesBeforeChange: 2,
		DeuceEnabled:       deuce,
		ServesInDeuce:      1,
		ServeType:          "free",
	})
	require.NoError(t, err)

	f.svc = NewMatchService(f.matches, f.players, f.modes, fakeTxManager{}, zerolog.Nop())
	return f
}

func (f *matchFixture) startSingles(t *testing.T) model.MatchDetail {
	t.Helper()
	d, err := f.svc.StartMatch(context.Background(), StartMatchInput{
		Player1ID:  f.p1.ID,
		Player2ID:  f.p2.ID,
		GameModeID: f.mode.ID,
	})
	require.NoError(t, err)
	return d
}

func (f *matchFixture) startDoubles(t *testing.T) model.MatchDetail {
	t.Helper()
	d, err := f.svc.StartMatch(context.Background(), StartMatchInput{
		Player1ID:  f.p1.ID,
		Player2ID:  f.p2.ID,
		Player3ID:  &f.p3.ID,
		Player4ID:  &f.p4.ID,
		GameModeID: f.mode.ID,
	})
	require.NoError(t, err)
	return d
}

func (f *matchFixture) addPoints(t *testing.T, matchID, playerID int64, n int) model.MatchDetail {
	t.Helper()
	var d model.MatchDetail
	var err error
	for i := 0; i < n; i++ {
		d, err = f.svc.AddPoint(context.Background(), matchID, playerID)
		require.NoError(t, err)
	}
	return d
}

func (f *matchFixture) counters(t *testing.T, id int64) (wins, played int64) {
	t.Helper()
	p, err := f.players.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Wins, p.MatchesPlayed
}

func TestStartMatchValidation(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	ctx := context.Background()

	cases := []struct {
		name string
		in   StartMatchInput
	}{
		{"missing players", StartMatchInput{GameModeID: f.mode.ID}},
		{"same player on both sides", StartMatchInput{Player1ID: f.p1.ID, Player2ID: f.p1.ID, GameModeID: f.mode.ID}},
		{"partner duplicates captain", StartMatchInput{Player1ID: f.p1.ID, Player2ID: f.p2.ID, Player3ID: &f.p1.ID, GameModeID: f.mode.ID}},
		{"bad serve type", StartMatchInput{Player1ID: f.p1.ID, Player2ID: f.p2.ID, GameModeID: f.mode.ID, ServeType: strPtr("sideways")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.StartMatch(ctx, tc.in)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.NotEmpty(t, FieldErrors(err))
		})
	}

	t.Run("unknown mode", func(t *testing.T) {
		_, err := f.svc.StartMatch(ctx, StartMatchInput{Player1ID: f.p1.ID, Player2ID: f.p2.ID, GameModeID: 999})
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestStartMatchCopiesModeRulesWithOverrides(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	ctx := context.Background()

	d, err := f.svc.StartMatch(ctx, StartMatchInput{
		Player1ID:  f.p1.ID,
		Player2ID:  f.p2.ID,
		GameModeID: f.mode.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Rules.ServesInDeuce)
	assert.Equal(t, "free", d.Rules.ServeType)

	two := 2
	cross := "cross"
	d, err = f.svc.StartMatch(ctx, StartMatchInput{
		Player1ID:     f.p1.ID,
		Player2ID:     f.p2.ID,
		GameModeID:    f.mode.ID,
		ServesInDeuce: &two,
		ServeType:     &cross,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Rules.ServesInDeuce)
	assert.Equal(t, "cross", d.Rules.ServeType)
}

func TestAddPointIncrementsScoreAndLog(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startDoubles(t)

	d := f.addPoints(t, m.ID, f.p1.ID, 1)
	assert.Equal(t, 1, d.Score.A)
	assert.Equal(t, 0, d.Score.B)

	// Partner seats score for their side.
	d = f.addPoints(t, m.ID, f.p4.ID, 1)
	assert.Equal(t, 1, d.Score.A)
	assert.Equal(t, 1, d.Score.B)

	require.Len(t, d.Events, 2)
	assert.Equal(t, f.p1.ID, d.Events[0].PlayerID)
	assert.Equal(t, f.p4.ID, d.Events[1].PlayerID)
	assert.Equal(t, d.Score, d.Events[1].Snapshot)
}

func TestAddPointByNonParticipant(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startSingles(t)
	f.addPoints(t, m.ID, f.p1.ID, 3)

	_, err := f.svc.AddPoint(context.Background(), m.ID, f.p3.ID)
	require.ErrorIs(t, err, ErrNotParticipant)

	d, err := f.svc.GetMatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Score.A)
	assert.Equal(t, 0, d.Score.B)
	assert.Len(t, d.Events, 3)
}

func TestAddPointFinalizesSingles(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startSingles(t)

	f.addPoints(t, m.ID, f.p2.ID, 5)
	d := f.addPoints(t, m.ID, f.p1.ID, 11)

	require.Equal(t, model.StatusFinished, d.Status)
	require.NotNil(t, d.Winner)
	assert.Equal(t, f.p1.ID, d.Winner.ID)
	require.NotNil(t, d.EndTime)

	wins, played := f.counters(t, f.p1.ID)
	assert.Equal(t, int64(1), wins)
	assert.Equal(t, int64(1), played)
	wins, played = f.counters(t, f.p2.ID)
	assert.Equal(t, int64(0), wins)
	assert.Equal(t, int64(1), played)
}

func TestAddPointFinalizesDoublesAllFourCounters(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startDoubles(t)

	f.addPoints(t, m.ID, f.p1.ID, 4)
	d := f.addPoints(t, m.ID, f.p2.ID, 11)

	require.Equal(t, model.StatusFinished, d.Status)
	require.NotNil(t, d.Winner)
	// The winner of record is side B's captain, not the partner.
	assert.Equal(t, f.p2.ID, d.Winner.ID)

	for _, tc := range []struct {
		id           int64
		wins, played int64
	}{
		{f.p1.ID, 0, 1},
		{f.p2.ID, 1, 1},
		{f.p3.ID, 0, 1},
		{f.p4.ID, 1, 1},
	} {
		wins, played := f.counters(t, tc.id)
		assert.Equal(t, tc.wins, wins, "player %d wins", tc.id)
		assert.Equal(t, tc.played, played, "player %d played", tc.id)
	}
}

func TestAddPointOnFinishedMatch(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startSingles(t)
	f.addPoints(t, m.ID, f.p1.ID, 11)

	_, err := f.svc.AddPoint(context.Background(), m.ID, f.p2.ID)
	require.ErrorIs(t, err, ErrMatchFinished)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDeuceProgression(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startSingles(t)

	// Walk to 10-10 alternating so no win fires early.
	for i := 0; i < 10; i++ {
		f.addPoints(t, m.ID, f.p1.ID, 1)
		f.addPoints(t, m.ID, f.p2.ID, 1)
	}

	d := f.addPoints(t, m.ID, f.p1.ID, 1) // 11-10
	assert.Equal(t, model.StatusInProgress, d.Status)

	d = f.addPoints(t, m.ID, f.p2.ID, 1) // 11-11
	assert.Equal(t, model.StatusInProgress, d.Status)

	d = f.addPoints(t, m.ID, f.p1.ID, 1) // 12-11
	assert.Equal(t, model.StatusInProgress, d.Status)

	d = f.addPoints(t, m.ID, f.p1.ID, 1) // 13-11
	require.Equal(t, model.StatusFinished, d.Status)
	require.NotNil(t, d.Winner)
	assert.Equal(t, f.p1.ID, d.Winner.ID)
}

func TestNoDeuceFinishesAtThresholdWithTwoPointLead(t *testing.T) {
	f := newMatchFixture(t, 11, false)
	m := f.startSingles(t)

	for i := 0; i < 10; i++ {
		f.addPoints(t, m.ID, f.p1.ID, 1)
		f.addPoints(t, m.ID, f.p2.ID, 1)
	}
	d := f.addPoints(t, m.ID, f.p1.ID, 1) // 11-10, lead of one
	assert.Equal(t, model.StatusInProgress, d.Status)

	d = f.addPoints(t, m.ID, f.p1.ID, 1) // 12-10
	assert.Equal(t, model.StatusFinished, d.Status)
}

func TestUndoRestoresStateExactly(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startDoubles(t)
	ctx := context.Background()

	scorers := []int64{f.p1.ID, f.p4.ID, f.p3.ID, f.p2.ID, f.p1.ID}
	for _, id := range scorers {
		f.addPoints(t, m.ID, id, 1)
	}

	var last model.MatchDetail
	var err error
	for range scorers {
		last, err = f.svc.UndoLastPoint(ctx, m.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, 0, last.Score.A)
	assert.Equal(t, 0, last.Score.B)
	assert.Empty(t, last.Events)
	assert.Equal(t, model.StatusInProgress, last.Status)

	for _, id := range []int64{f.p1.ID, f.p2.ID, f.p3.ID, f.p4.ID} {
		wins, played := f.counters(t, id)
		assert.Zero(t, wins)
		assert.Zero(t, played)
	}
}

func TestUndoReversesFinalize(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startDoubles(t)
	ctx := context.Background()

	f.addPoints(t, m.ID, f.p2.ID, 7)
	d := f.addPoints(t, m.ID, f.p3.ID, 11)
	require.Equal(t, model.StatusFinished, d.Status)

	d, err := f.svc.UndoLastPoint(ctx, m.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusInProgress, d.Status)
	assert.Nil(t, d.Winner)
	assert.Nil(t, d.EndTime)
	assert.Equal(t, 10, d.Score.A)
	assert.Equal(t, 7, d.Score.B)

	for _, id := range []int64{f.p1.ID, f.p2.ID, f.p3.ID, f.p4.ID} {
		wins, played := f.counters(t, id)
		assert.Zero(t, wins, "player %d", id)
		assert.Zero(t, played, "player %d", id)
	}

	// Scoring may resume after the undo.
	d = f.addPoints(t, m.ID, f.p1.ID, 1)
	require.Equal(t, model.StatusFinished, d.Status)
	require.NotNil(t, d.Winner)
	assert.Equal(t, f.p1.ID, d.Winner.ID)
}

func TestUndoOnEmptyLog(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startSingles(t)

	_, err := f.svc.UndoLastPoint(context.Background(), m.ID)
	require.ErrorIs(t, err, ErrNothingToUndo)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestUndoOnAbandonedMatch(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startSingles(t)
	f.addPoints(t, m.ID, f.p1.ID, 2)
	require.NoError(t, f.svc.CancelMatch(context.Background(), m.ID))

	_, err := f.svc.UndoLastPoint(context.Background(), m.ID)
	require.ErrorIs(t, err, ErrMatchFinished)
}

func TestSetFirstServer(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startDoubles(t)
	ctx := context.Background()

	d, err := f.svc.SetFirstServer(ctx, m.ID, f.p4.ID)
	require.NoError(t, err)
	require.NotNil(t, d.FirstServer)
	assert.Equal(t, f.p4.ID, *d.FirstServer)
	assert.Equal(t, 0, d.Score.A+d.Score.B)

	outsider, err := f.players.Create(ctx, model.Player{Name: "Eve"})
	require.NoError(t, err)
	_, err = f.svc.SetFirstServer(ctx, m.ID, outsider.ID)
	require.ErrorIs(t, err, ErrNotParticipant)
}

func TestCancelMatch(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startSingles(t)
	ctx := context.Background()

	f.addPoints(t, m.ID, f.p1.ID, 3)
	require.NoError(t, f.svc.CancelMatch(ctx, m.ID))

	d, err := f.svc.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbandoned, d.Status)
	require.NotNil(t, d.EndTime)
	assert.Nil(t, d.Winner)

	// No counter effects on abandon.
	wins, played := f.counters(t, f.p1.ID)
	assert.Zero(t, wins)
	assert.Zero(t, played)

	require.ErrorIs(t, f.svc.CancelMatch(ctx, m.ID), ErrMatchFinished)
}

func TestCancelFinishedMatch(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	m := f.startSingles(t)
	f.addPoints(t, m.ID, f.p1.ID, 11)

	require.ErrorIs(t, f.svc.CancelMatch(context.Background(), m.ID), ErrMatchFinished)
}

func TestConcurrentAddPointsSerialize(t *testing.T) {
	f := newMatchFixture(t, 1000, true) // threshold far away; no finalize during the race
	m := f.startSingles(t)
	ctx := context.Background()

	const perPlayer = 25
	var wg sync.WaitGroup
	for _, id := range []int64{f.p1.ID, f.p2.ID} {
		for i := 0; i < perPlayer; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := f.svc.AddPoint(ctx, m.ID, id)
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	d, err := f.svc.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, perPlayer, d.Score.A)
	assert.Equal(t, perPlayer, d.Score.B)
	require.Len(t, d.Events, 2*perPlayer)

	// Every snapshot must be the cumulative tally of the events before it.
	a, b := 0, 0
	for i, ev := range d.Events {
		if ev.PlayerID == f.p1.ID {
			a++
		} else {
			b++
		}
		require.Equal(t, a, ev.Snapshot.A, "event %d", i)
		require.Equal(t, b, ev.Snapshot.B, "event %d", i)
	}
}

func TestListPlayerMatchesPaging(t *testing.T) {
	f := newMatchFixture(t, 11, true)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		d := f.startSingles(t)
		ids = append(ids, d.ID)
	}

	res, err := f.svc.ListPlayerMatches(ctx, f.p1.ID, repository.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	// Newest first.
	assert.Equal(t, ids[2], res.Items[0].ID)
	assert.Equal(t, ids[1], res.Items[1].ID)

	res, err = f.svc.ListPlayerMatches(ctx, f.p1.ID, repository.Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, ids[0], res.Items[0].ID)
}

func TestMatchLocksIndependentIDs(t *testing.T) {
	l := newMatchLocks()
	release1 := l.acquire(1)
	done := make(chan struct{})
	go func() {
		release2 := l.acquire(2)
		release2()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on match 2 blocked by lock on match 1")
	}
	release1()
}

func strPtr(s string) *string { return &s }
