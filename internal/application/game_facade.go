// Package application composes the use cases into the high-level commands
// front ends call. The facade owns presentation-adjacent concerns like the
// default group naming scheme; game rules stay in usecase and model.
package application

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/usecase"
)

// GameFacade bundles the ranking engine, the override controller and the
// history reader behind one surface.
type GameFacade struct {
	Ranking  usecase.RankingUseCase
	Override usecase.OverrideUseCase
	History  usecase.HistoryUseCase

	now func() time.Time

	mu       sync.Mutex
	counters map[string]int // guildID+date -> groups started today
}

func NewGameFacade(ranking usecase.RankingUseCase, override usecase.OverrideUseCase, history usecase.HistoryUseCase) *GameFacade {
	return &GameFacade{
		Ranking:  ranking,
		Override: override,
		History:  history,
		now:      time.Now,
		counters: make(map[string]int),
	}
}

// StartGame creates a session, filling in a default name and group number
// when the caller supplied none. Names follow the running per-guild per-day
// counter: "Fractal Group 2 - Aug 31, 2026".
func (f *GameFacade) StartGame(ctx context.Context, guildID, facilitatorID string, participants []string, meta usecase.SessionMeta) (model.SessionView, error) {
	if meta.Name == "" || meta.GroupNumber == "" {
		n := f.nextGroupNumber(guildID)
		if meta.GroupNumber == "" {
			meta.GroupNumber = strconv.Itoa(n)
		}
		if meta.Name == "" {
			meta.Name = fmt.Sprintf("Fractal Group %d - %s", n, f.now().Format("Jan 02, 2006"))
		}
	}
	return f.Ranking.Start(ctx, guildID, facilitatorID, participants, meta)
}

func (f *GameFacade) CastVote(ctx context.Context, sessionID, voterID, candidateID string) (usecase.VoteOutcome, error) {
	return f.Ranking.SubmitVote(ctx, sessionID, voterID, candidateID)
}

func (f *GameFacade) EndGame(ctx context.Context, sessionID, requesterID string) error {
	return f.Ranking.End(ctx, sessionID, requesterID)
}

func (f *GameFacade) SessionStatus(ctx context.Context, sessionID string) (model.SessionView, error) {
	return f.Ranking.Status(ctx, sessionID)
}

func (f *GameFacade) ActiveSessions(ctx context.Context, guildID string) ([]model.SessionView, error) {
	return f.Ranking.ListActive(ctx, guildID)
}

func (f *GameFacade) ApplyOverride(ctx context.Context, sessionID string, op usecase.OverrideOp) (model.SessionView, error) {
	return f.Override.Apply(ctx, sessionID, op)
}

func (f *GameFacade) SearchHistory(ctx context.Context, query string) ([]*model.HistoryRecord, error) {
	return f.History.Search(ctx, query)
}

func (f *GameFacade) RecentHistory(ctx context.Context, limit int) ([]*model.HistoryRecord, error) {
	return f.History.Recent(ctx, limit)
}

func (f *GameFacade) MemberStats(ctx context.Context, memberID string) (*model.MemberStats, error) {
	return f.History.MemberStats(ctx, memberID)
}

func (f *GameFacade) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return f.History.Leaderboard(ctx)
}

func (f *GameFacade) HistoryCount(ctx context.Context) (int, error) {
	return f.History.Count(ctx)
}

// nextGroupNumber counts groups per guild per calendar day. The counter is
// in-process only; a restart begins the day's numbering again, which the
// scheme tolerates since names are informational.
func (f *GameFacade) nextGroupNumber(guildID string) int {
	key := guildID + "|" + f.now().Format("2006-01-02")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[key]++
	return f.counters[key]
}
