package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/repository"
)

var _ repository.HistoryRepository = (*historyRepo)(nil)

type historyRepo struct{ pool *pgxpool.Pool }

func NewHistoryRepo(pool *pgxpool.Pool) *historyRepo {
	return &historyRepo{pool: pool}
}

const recordColumns = `id, session_id, guild_id, group_name, fractal_number, group_number, facilitator_id, facilitator_name, aborted, completed_at`

func (r *historyRepo) Append(ctx context.Context, tx repository.Tx, rec *model.HistoryRecord) error {
	if rec == nil || rec.ID == "" {
		return domain.ErrInvalidArgument
	}
	// The record and its entries land together or not at all; an orphaned
	// record row would leak into search and leaderboard folds.
	if tx == nil {
		pgTx, err := r.pool.Begin(ctx)
		if err != nil {
			return domain.ErrOperationFailed
		}
		defer func() { _ = pgTx.Rollback(ctx) }()
		if err := r.append(ctx, pgTx, rec); err != nil {
			return err
		}
		if err := pgTx.Commit(ctx); err != nil {
			return domain.ErrOperationFailed
		}
		return nil
	}
	return r.append(ctx, tx, rec)
}

func (r *historyRepo) append(ctx context.Context, tx repository.Tx, rec *model.HistoryRecord) error {
	const qRec = `
INSERT INTO history_records (` + recordColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`

	_, err := execSQL(ctx, r.pool, tx, qRec,
		rec.ID, rec.SessionID, rec.GuildID, rec.GroupName, rec.FractalNumber, rec.GroupNumber,
		rec.FacilitatorID, rec.FacilitatorName, rec.Aborted, rec.CompletedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}

	const qEntry = `
INSERT INTO history_entries (record_id, place, member_id, display_name, level, respect)
VALUES ($1,$2,$3,$4,$5,$6);`
	for _, e := range rec.Entries {
		if _, err := execSQL(ctx, r.pool, tx, qEntry, rec.ID, e.Place, e.MemberID, e.DisplayName, e.Level, e.Respect); err != nil {
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *historyRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.HistoryRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM history_records WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	rec, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadEntries(ctx, tx, []*model.HistoryRecord{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *historyRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.HistoryRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM history_records ORDER BY completed_at ASC;`
	return r.listRecords(ctx, tx, q)
}

func (r *historyRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.HistoryRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `SELECT ` + recordColumns + ` FROM history_records ORDER BY completed_at DESC LIMIT $1;`
	return r.listRecords(ctx, tx, q, limit)
}

func (r *historyRepo) Search(ctx context.Context, tx repository.Tx, query string) ([]*model.HistoryRecord, error) {
	const q = `
SELECT DISTINCT ` + prefixedRecordColumns + `
  FROM history_records r
  LEFT JOIN history_entries e ON e.record_id = r.id
 WHERE r.group_name ILIKE $1 OR r.fractal_number ILIKE $1 OR e.display_name ILIKE $1 OR e.member_id = $2
 ORDER BY r.completed_at DESC;`
	return r.listRecords(ctx, tx, q, "%"+query+"%", query)
}

func (r *historyRepo) ListByMember(ctx context.Context, tx repository.Tx, memberID string) ([]*model.HistoryRecord, error) {
	const q = `
SELECT ` + prefixedRecordColumns + `
  FROM history_records r
  JOIN history_entries e ON e.record_id = r.id
 WHERE e.member_id = $1
 ORDER BY r.completed_at ASC;`
	return r.listRecords(ctx, tx, q, memberID)
}

func (r *historyRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM history_records;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

const prefixedRecordColumns = `r.id, r.session_id, r.guild_id, r.group_name, r.fractal_number, r.group_number, r.facilitator_id, r.facilitator_name, r.aborted, r.completed_at`

func (r *historyRepo) listRecords(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.HistoryRecord, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.HistoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrOperationFailed
	}
	if err := r.loadEntries(ctx, tx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*model.HistoryRecord, error) {
	rec := &model.HistoryRecord{}
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.GuildID, &rec.GroupName, &rec.FractalNumber, &rec.GroupNumber,
		&rec.FacilitatorID, &rec.FacilitatorName, &rec.Aborted, &rec.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rec, nil
}

// loadEntries attaches the place-ordered entry rows to each record in one
// round trip.
func (r *historyRepo) loadEntries(ctx context.Context, tx repository.Tx, recs []*model.HistoryRecord) error {
	if len(recs) == 0 {
		return nil
	}
	byID := make(map[string]*model.HistoryRecord, len(recs))
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	const q = `
SELECT record_id, place, member_id, display_name, level, respect
  FROM history_entries
 WHERE record_id = ANY($1)
 ORDER BY record_id, place ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, ids)
	if err != nil {
		return domain.ErrOperationFailed
	}
	defer rows.Close()

	for rows.Next() {
		var recordID string
		var e model.HistoryEntry
		if err := rows.Scan(&recordID, &e.Place, &e.MemberID, &e.DisplayName, &e.Level, &e.Respect); err != nil {
			return domain.ErrReadDatabaseRow
		}
		if rec, ok := byID[recordID]; ok {
			rec.Entries = append(rec.Entries, e)
		}
	}
	return rows.Err()
}
