package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps live sessions in Redis so a process restart does not
// drop running games. Sessions are JSON blobs keyed by id, with per-guild
// and global index sets. No TTL: a session leaves the store only through
// completion or an explicit end.
type SessionRepo struct {
	client RedisClient
	locker Locker
}

// NewSessionRepo builds a Redis-backed live-session store. A non-nil locker
// serializes the multi-step blob+index writes across replicas; pass nil for
// single-instance deployments.
func NewSessionRepo(client RedisClient, locker Locker) *SessionRepo {
	return &SessionRepo{client: client, locker: locker}
}

func sessionKey(id string) string    { return "rg:session:" + id }
func guildKey(guildID string) string { return "rg:guild:" + guildID }

const allSessionsKey = "rg:sessions"

func (r *SessionRepo) Save(ctx context.Context, s *model.Session) error {
	if s == nil || s.ID == "" {
		return domain.ErrInvalidArgument
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	unlock, err := r.guard(ctx, s.ID)
	if err != nil {
		return err
	}
	defer unlock()
	if err := r.client.Set(ctx, sessionKey(s.ID), data, 0); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := r.client.SAdd(ctx, guildKey(s.GuildID), s.ID); err != nil {
		return err
	}
	return r.client.SAdd(ctx, allSessionsKey, s.ID)
}

func (r *SessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &s, nil
}

func (r *SessionRepo) ListByGuild(ctx context.Context, guildID string) ([]*model.Session, error) {
	ids, err := r.client.SMembers(ctx, guildKey(guildID))
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, guildKey(guildID), ids)
}

func (r *SessionRepo) ListAll(ctx context.Context) ([]*model.Session, error) {
	ids, err := r.client.SMembers(ctx, allSessionsKey)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, allSessionsKey, ids)
}

// collect loads sessions by id, self-healing index entries whose blob is
// gone (e.g. a crash between Delete steps).
func (r *SessionRepo) collect(ctx context.Context, indexKey string, ids []string) ([]*model.Session, error) {
	out := make([]*model.Session, 0, len(ids))
	for _, id := range ids {
		s, err := r.FindByID(ctx, id)
		if err == domain.ErrSessionNotFound {
			_ = r.client.SRem(ctx, indexKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// guard takes the cross-replica lock for a session when a locker is
// configured. The returned func releases it and is always safe to call.
func (r *SessionRepo) guard(ctx context.Context, id string) (func(), error) {
	if r.locker == nil {
		return func() {}, nil
	}
	key := "rg:lock:session:" + id
	token, err := r.locker.TryLock(ctx, key, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return func() { _ = r.locker.Unlock(ctx, key, token) }, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	unlock, err := r.guard(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	s, err := r.FindByID(ctx, id)
	if err == domain.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.client.Del(ctx, sessionKey(id)); err != nil {
		return err
	}
	_ = r.client.SRem(ctx, guildKey(s.GuildID), id)
	return r.client.SRem(ctx, allSessionsKey, id)
}

func (r *SessionRepo) Count(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, allSessionsKey)
	return int(n), err
}
