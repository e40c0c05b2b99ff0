package memory

import (
	"context"
	"sync"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps live sessions in-process. Find and Save exchange deep
// copies, so a mutation in flight never becomes visible until it commits.
type SessionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{store: make(map[string]*model.Session)}
}

func (r *SessionRepo) Save(ctx context.Context, s *model.Session) error {
	if s == nil || s.ID == "" {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[s.ID] = s.Clone()
	return nil
}

func (r *SessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.store[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (r *SessionRepo) ListByGuild(ctx context.Context, guildID string) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Session
	for _, s := range r.store {
		if s.GuildID == guildID {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (r *SessionRepo) ListAll(ctx context.Context) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Session, 0, len(r.store))
	for _, s := range r.store {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

func (r *SessionRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store), nil
}
