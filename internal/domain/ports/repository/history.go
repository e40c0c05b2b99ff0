package repository

import (
	"context"

	"fractal-respect-game/internal/domain/model"
)

// HistoryRepository is the append-only log of finished sessions. Append is
// the only write; records are immutable afterwards.
type HistoryRepository interface {
	Append(ctx context.Context, tx Tx, rec *model.HistoryRecord) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.HistoryRecord, error)
	// ListAll returns records ordered by completion time ascending.
	ListAll(ctx context.Context, tx Tx) ([]*model.HistoryRecord, error)
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.HistoryRecord, error)
	// Search matches a case-insensitive substring against group name, member
	// display name and fractal number.
	Search(ctx context.Context, tx Tx, query string) ([]*model.HistoryRecord, error)
	ListByMember(ctx context.Context, tx Tx, memberID string) ([]*model.HistoryRecord, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
