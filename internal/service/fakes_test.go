package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avolkov/pingpong-stats-service/internal/model"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
	"github.com/avolkov/pingpong-stats-service/internal/scoring"
)

// In-memory repository fakes. They honor the same contracts as the postgres
// implementations, including domain errors, so the services under test cannot
// tell the difference. All fakes are safe for concurrent use.

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

type fakePlayerRepo struct {
	mu      sync.Mutex
	nextID  int64
	players map[int64]model.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int64]model.Player)}
}

func (r *fakePlayerRepo) Create(_ context.Context, p model.Player) (model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.players[p.ID] = p
	return p, nil
}

func (r *fakePlayerRepo) Update(_ context.Context, p model.Player) (model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[p.ID]; !ok {
		return model.Player{}, repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	r.players[p.ID] = p
	return p, nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int64) (model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakePlayerRepo) List(_ context.Context) ([]model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[id]
	return ok, nil
}

func (r *fakePlayerRepo) AdjustCounters(_ context.Context, id int64, winsDelta, playedDelta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Wins += winsDelta
	p.MatchesPlayed += playedDelta
	r.players[id] = p
	return nil
}

type fakeModeRepo struct {
	mu     sync.Mutex
	nextID int64
	modes  map[int64]model.GameMode
}

func newFakeModeRepo() *fakeModeRepo {
	return &fakeModeRepo{modes: make(map[int64]model.GameMode)}
}

func (r *fakeModeRepo) Create(_ context.Context, m model.GameMode) (model.GameMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	r.modes[m.ID] = m
	return m, nil
}

func (r *fakeModeRepo) GetByID(_ context.Context, id int64) (model.GameMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modes[id]
	if !ok {
		return model.GameMode{}, repository.ErrNotFound
	}
	return m, nil
}

func (r *fakeModeRepo) List(_ context.Context) ([]model.GameMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.GameMode, 0, len(r.modes))
	for _, m := range r.modes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeModeRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.modes)), nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	nextID  int64
	matches map[int64]model.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int64]model.Match)}
}

// cloneMatch detaches the event log's backing slice so the stored copy never
// aliases the caller's, mirroring the round trip through JSONB.
func cloneMatch(m model.Match) model.Match {
	out := m
	var log scoring.EventLog
	for _, ev := range m.Events.Events() {
		log.Append(ev)
	}
	out.Events = log
	return out
}

func (r *fakeMatchRepo) Create(_ context.Context, m model.Match) (model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	m.Status = model.StatusInProgress
	if m.StartTime.IsZero() {
		// Spread start times so ordering assertions are meaningful.
		m.StartTime = time.Unix(1700000000+r.nextID*60, 0).UTC()
	}
	r.matches[m.ID] = cloneMatch(m)
	return cloneMatch(m), nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int64) (model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	return cloneMatch(m), nil
}

func (r *fakeMatchRepo) Update(_ context.Context, m model.Match) (model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[m.ID]; !ok {
		return model.Match{}, repository.ErrNotFound
	}
	r.matches[m.ID] = cloneMatch(m)
	return cloneMatch(m), nil
}

func (r *fakeMatchRepo) seated(m model.Match, playerID int64) bool {
	_, ok := m.SideOf(playerID)
	return ok
}

func (r *fakeMatchRepo) ListByPlayer(_ context.Context, playerID int64, p repository.Page) (repository.PageResult[model.Match], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]model.Match, 0)
	for _, m := range r.matches {
		if r.seated(m, playerID) {
			all = append(all, cloneMatch(m))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartTime.After(all[j].StartTime) })
	total := len(all)
	if p.Offset >= len(all) {
		return repository.PageResult[model.Match]{Items: []model.Match{}, Total: total}, nil
	}
	end := p.Offset + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return repository.PageResult[model.Match]{Items: all[p.Offset:end], Total: total}, nil
}

func (r *fakeMatchRepo) ListFinishedByPlayer(_ context.Context, playerID int64) ([]model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Match, 0)
	for _, m := range r.matches {
		if m.Status == model.StatusFinished && r.seated(m, playerID) {
			out = append(out, cloneMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

type fakeBindingRepo struct {
	mu       sync.Mutex
	nextID   int64
	bindings map[int64]model.KeyBinding
}

func newFakeBindingRepo() *fakeBindingRepo {
	return &fakeBindingRepo{bindings: make(map[int64]model.KeyBinding)}
}

func (r *fakeBindingRepo) List(_ context.Context) ([]model.KeyBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Action != out[j].Action {
			return out[i].Action < out[j].Action
		}
		return out[i].KeyCode < out[j].KeyCode
	})
	return out, nil
}

func (r *fakeBindingRepo) Upsert(_ context.Context, b model.KeyBinding) (model.KeyBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.bindings {
		if existing.Action == b.Action && existing.KeyCode == b.KeyCode {
			b.ID = id
			r.bindings[id] = b
			return b, nil
		}
	}
	r.nextID++
	b.ID = r.nextID
	r.bindings[b.ID] = b
	return b, nil
}

func (r *fakeBindingRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bindings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.bindings, id)
	return nil
}

func (r *fakeBindingRepo) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = make(map[int64]model.KeyBinding)
	return nil
}

var (
	_ repository.PlayerRepository  = (*fakePlayerRepo)(nil)
	_ repository.ModeRepository    = (*fakeModeRepo)(nil)
	_ repository.MatchRepository   = (*fakeMatchRepo)(nil)
	_ repository.BindingRepository = (*fakeBindingRepo)(nil)
	_ repository.TxManager         = fakeTxManager{}
)
