package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/repository"
	"fractal-respect-game/internal/infra/logging"
	"fractal-respect-game/internal/infra/metrics"
)

var _ HistoryUseCase = (*historyUC)(nil)

// HistoryUseCase owns the durable record of finished sessions and the
// read-side statistics over it. Aborted records are kept when configured
// but never count toward stats or the leaderboard.
type HistoryUseCase interface {
	Record(ctx context.Context, rec *model.HistoryRecord) error
	Search(ctx context.Context, query string) ([]*model.HistoryRecord, error)
	Recent(ctx context.Context, limit int) ([]*model.HistoryRecord, error)
	MemberStats(ctx context.Context, memberID string) (*model.MemberStats, error)
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
	Count(ctx context.Context) (int, error)
}

type historyUC struct {
	records repository.HistoryRepository
	log     *zerolog.Logger
}

func NewHistoryUseCase(records repository.HistoryRepository, logger *zerolog.Logger) *historyUC {
	return &historyUC{records: records, log: logger}
}

// Record appends a completed (or aborted, when configured) session snapshot.
func (u *historyUC) Record(ctx context.Context, rec *model.HistoryRecord) error {
	defer logging.TraceDuration(u.log, "HistoryUC.Record")()
	if rec == nil || rec.SessionID == "" {
		return domain.ErrInvalidArgument
	}
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if err := u.records.Append(ctx, repository.NoTX, rec); err != nil {
		return err
	}
	metrics.HistoryRecorded(rec.Aborted)
	u.log.Info().
		Str("record_id", rec.ID).
		Str("session_id", rec.SessionID).
		Bool("aborted", rec.Aborted).
		Int("entries", len(rec.Entries)).
		Msg("history record appended")
	return nil
}

// Search runs a case-insensitive substring match over group name, member
// display names and fractal number. An empty query returns recent records.
func (u *historyUC) Search(ctx context.Context, query string) ([]*model.HistoryRecord, error) {
	defer logging.TraceDuration(u.log, "HistoryUC.Search")()
	metrics.HistoryQuery("search")
	query = strings.TrimSpace(query)
	if query == "" {
		return u.records.ListRecent(ctx, repository.NoTX, 10)
	}
	return u.records.Search(ctx, repository.NoTX, query)
}

func (u *historyUC) Recent(ctx context.Context, limit int) ([]*model.HistoryRecord, error) {
	metrics.HistoryQuery("recent")
	if limit <= 0 {
		limit = 10
	}
	return u.records.ListRecent(ctx, repository.NoTX, limit)
}

// MemberStats folds a member's full participation history into cumulative
// figures. Members with no history get zeroed stats, not an error.
func (u *historyUC) MemberStats(ctx context.Context, memberID string) (*model.MemberStats, error) {
	defer logging.TraceDuration(u.log, "HistoryUC.MemberStats")()
	metrics.HistoryQuery("member_stats")
	if memberID == "" {
		return nil, domain.ErrInvalidArgument
	}

	recs, err := u.records.ListByMember(ctx, repository.NoTX, memberID)
	if err != nil {
		return nil, err
	}

	stats := &model.MemberStats{MemberID: memberID}
	for _, rec := range recs {
		if rec.Aborted {
			continue
		}
		entry, ok := rec.EntryFor(memberID)
		if !ok {
			continue
		}
		stats.Participations++
		stats.TotalRespect += entry.Respect
		switch entry.Place {
		case 1:
			stats.FirstPlace++
		case 2:
			stats.SecondPlace++
		case 3:
			stats.ThirdPlace++
		}
		stats.History = append(stats.History, model.Participation{
			RecordID:    rec.ID,
			GroupName:   rec.GroupName,
			Place:       entry.Place,
			Level:       entry.Level,
			Respect:     entry.Respect,
			CompletedAt: rec.CompletedAt,
		})
	}
	if stats.Participations > 0 {
		stats.AvgRespect = float64(stats.TotalRespect) / float64(stats.Participations)
	}
	return stats, nil
}

// Leaderboard sums Respect per member across all completed records,
// descending; ties order by participation count then member id so the
// output is stable.
func (u *historyUC) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	defer logging.TraceDuration(u.log, "HistoryUC.Leaderboard")()
	metrics.HistoryQuery("leaderboard")

	recs, err := u.records.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*model.LeaderboardEntry)
	for _, rec := range recs {
		if rec.Aborted {
			continue
		}
		for _, e := range rec.Entries {
			le, ok := totals[e.MemberID]
			if !ok {
				le = &model.LeaderboardEntry{MemberID: e.MemberID}
				totals[e.MemberID] = le
			}
			le.TotalRespect += e.Respect
			le.Participations++
			// Latest record wins the display name.
			le.DisplayName = e.DisplayName
		}
	}

	board := make([]model.LeaderboardEntry, 0, len(totals))
	for _, le := range totals {
		board = append(board, *le)
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].TotalRespect != board[j].TotalRespect {
			return board[i].TotalRespect > board[j].TotalRespect
		}
		if board[i].Participations != board[j].Participations {
			return board[i].Participations > board[j].Participations
		}
		return board[i].MemberID < board[j].MemberID
	})
	for i := range board {
		board[i].Rank = i + 1
	}
	return board, nil
}

func (u *historyUC) Count(ctx context.Context) (int, error) {
	return u.records.Count(ctx, repository.NoTX)
}
