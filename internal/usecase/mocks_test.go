//go:build !integration

package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/repository"
)

// memSessionRepo is a small in-memory session store used by unit tests.
// Save/Find exchange deep copies like the real backends.
type memSessionRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Session
	saveErr error // simulate save failures
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{store: make(map[string]*model.Session)}
}

func (m *memSessionRepo) Save(ctx context.Context, s *model.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[s.ID] = s.Clone()
	return nil
}

func (m *memSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *memSessionRepo) ListByGuild(ctx context.Context, guildID string) ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Session
	for _, s := range m.store {
		if s.GuildID == guildID {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (m *memSessionRepo) ListAll(ctx context.Context) ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Session, 0, len(m.store))
	for _, s := range m.store {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (m *memSessionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

func (m *memSessionRepo) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// memHistoryRepo backs the history use case in tests.
type memHistoryRepo struct {
	mu        sync.Mutex
	records   []*model.HistoryRecord
	appendErr error
}

func (m *memHistoryRepo) Append(_ context.Context, _ repository.Tx, rec *model.HistoryRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	cp.Entries = append([]model.HistoryEntry(nil), rec.Entries...)
	m.records = append(m.records, &cp)
	return nil
}

func (m *memHistoryRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memHistoryRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.HistoryRecord(nil), m.records...), nil
}

func (m *memHistoryRepo) ListRecent(_ context.Context, _ repository.Tx, limit int) ([]*model.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*model.HistoryRecord(nil), m.records...)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memHistoryRepo) Search(_ context.Context, _ repository.Tx, query string) ([]*model.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []*model.HistoryRecord
	for _, rec := range m.records {
		if strings.Contains(strings.ToLower(rec.GroupName), q) ||
			strings.Contains(strings.ToLower(rec.FractalNumber), q) {
			out = append(out, rec)
			continue
		}
		for _, e := range rec.Entries {
			if strings.Contains(strings.ToLower(e.DisplayName), q) || e.MemberID == query {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func (m *memHistoryRepo) ListByMember(_ context.Context, _ repository.Tx, memberID string) ([]*model.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.HistoryRecord
	for _, rec := range m.records {
		if _, ok := rec.EntryFor(memberID); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memHistoryRepo) Count(_ context.Context, _ repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

// mockNotifier records every event synchronously.
type mockNotifier struct {
	mu        sync.Mutex
	resolved  []string // winner ids in resolution order
	completed []string // session ids
	aborted   []string // session ids
}

func (n *mockNotifier) RoundResolved(_ context.Context, _ model.SessionView, _ int, winnerID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved = append(n.resolved, winnerID)
}

func (n *mockNotifier) SessionCompleted(_ context.Context, result model.CompletionResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, result.Session.ID)
}

func (n *mockNotifier) SessionAborted(_ context.Context, view model.SessionView) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.aborted = append(n.aborted, view.ID)
}

// nameFunc adapts a func to the directory lookups.
type nameFunc func(memberID string) string

func (f nameFunc) DisplayName(_ context.Context, memberID string) (string, error) {
	return f(memberID), nil
}

func (f nameFunc) Wallet(_ context.Context, memberID string) (string, error) {
	return f(memberID), nil
}

func testLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

type gameFixture struct {
	sessions *memSessionRepo
	histRepo *memHistoryRepo
	history  HistoryUseCase
	notifier *mockNotifier
	ranking  RankingUseCase
	override OverrideUseCase
}

func newGameFixture(cfg GameConfig) *gameFixture {
	f := &gameFixture{
		sessions: newMemSessionRepo(),
		histRepo: &memHistoryRepo{},
		notifier: &mockNotifier{},
	}
	f.history = NewHistoryUseCase(f.histRepo, testLogger())
	names := nameFunc(func(id string) string { return "name-" + id })
	wallets := nameFunc(func(id string) string {
		if id == "nowallet" {
			return ""
		}
		return "0x" + id
	})
	f.ranking, f.override = NewGameUseCases(f.sessions, f.history, f.notifier, names, wallets, cfg, testLogger())
	return f
}
