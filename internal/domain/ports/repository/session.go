package repository

import (
	"context"

	"fractal-respect-game/internal/domain/model"
)

// SessionRepository is the live store of running sessions, keyed by session
// id. Completed and aborted sessions are deleted from it; only the history
// log keeps them.
type SessionRepository interface {
	Save(ctx context.Context, s *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// ListByGuild returns every live session of one guild, order unspecified.
	ListByGuild(ctx context.Context, guildID string) ([]*model.Session, error)
	ListAll(ctx context.Context) ([]*model.Session, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
