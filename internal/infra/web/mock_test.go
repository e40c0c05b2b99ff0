//go:build !integration

package web

import (
	"context"
	"strings"
	"sync"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/repository"
)

// ---------------- in-memory history repo ----------------

type memHistoryRepo struct {
	mu      sync.Mutex
	records []*model.HistoryRecord
}

func (m *memHistoryRepo) Append(_ context.Context, _ repository.Tx, rec *model.HistoryRecord) error {
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
	// newest first
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

// ---------------- static directory lookups ----------------

type staticDirectory struct {
	names   map[string]string
	wallets map[string]string
}

func (d staticDirectory) DisplayName(_ context.Context, memberID string) (string, error) {
	return d.names[memberID], nil
}

func (d staticDirectory) Wallet(_ context.Context, memberID string) (string, error) {
	return d.wallets[memberID], nil
}

func (d staticDirectory) Upsert(_ context.Context, memberID, displayName, wallet string) error {
	if memberID == "" {
		return domain.ErrInvalidArgument
	}
	if displayName != "" {
		d.names[memberID] = displayName
	}
	if wallet != "" {
		d.wallets[memberID] = wallet
	}
	return nil
}
