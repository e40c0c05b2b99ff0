// Command demo runs one full ranking session in memory and prints each
// round. Handy for eyeballing the vote flow without Postgres or Redis.
package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/adapter"
	"fractal-respect-game/internal/domain/ports/repository"
	"fractal-respect-game/internal/infra/memory"
	"fractal-respect-game/internal/usecase"
)

// inMemHistory is a throwaway history store; the demo only needs Append to
// succeed when the session completes.
type inMemHistory struct {
	mu   sync.Mutex
	recs []*model.HistoryRecord
}

func (h *inMemHistory) Append(_ context.Context, _ repository.Tx, rec *model.HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, rec)
	return nil
}

func (h *inMemHistory) FindByID(_ context.Context, _ repository.Tx, id string) (*model.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.recs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("record %s not found", id)
}

func (h *inMemHistory) ListAll(context.Context, repository.Tx) ([]*model.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*model.HistoryRecord(nil), h.recs...), nil
}

func (h *inMemHistory) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.HistoryRecord, error) {
	all, _ := h.ListAll(ctx, tx)
	sort.Slice(all, func(i, j int) bool { return all[i].CompletedAt.After(all[j].CompletedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (h *inMemHistory) Search(ctx context.Context, tx repository.Tx, _ string) ([]*model.HistoryRecord, error) {
	return h.ListAll(ctx, tx)
}

func (h *inMemHistory) ListByMember(ctx context.Context, tx repository.Tx, memberID string) ([]*model.HistoryRecord, error) {
	all, _ := h.ListAll(ctx, tx)
	var out []*model.HistoryRecord
	for _, r := range all {
		for _, e := range r.Entries {
			if e.MemberID == memberID {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (h *inMemHistory) Count(context.Context, repository.Tx) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.recs), nil
}

type demoDirectory struct{}

func (demoDirectory) DisplayName(_ context.Context, memberID string) (string, error) {
	return "Member " + memberID, nil
}

func (demoDirectory) Wallet(_ context.Context, memberID string) (string, error) {
	return "0x" + memberID, nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: log.Writer()}).With().Timestamp().Logger()

	sessions := memory.NewSessionRepo()
	histUC := usecase.NewHistoryUseCase(&inMemHistory{}, &logger)
	ranking, _ := usecase.NewGameUseCases(sessions, histUC, adapter.NopNotifier{}, demoDirectory{}, demoDirectory{},
		usecase.GameConfig{SubmissionBaseURL: "https://zao.frapps.xyz"}, &logger)

	members := []string{"A", "B", "C", "D", "E"}
	view, err := ranking.Start(ctx, "demo-guild", "A", members, usecase.SessionMeta{Name: "Demo Group"})
	if err != nil {
		log.Fatalf("start: %v", err)
	}
	fmt.Printf("started %q with %d members, ranking from level %d\n", view.Name, len(members), view.CurrentLevel)

	// Everyone converges on one candidate per level, walking the roster in
	// reverse so the run exercises every level down to the auto-assigned
	// last member.
	for winner := len(members) - 1; winner >= 1; winner-- {
		pick := members[winner-1]
		for _, voter := range members {
			if voter == pick {
				continue
			}
			out, err := ranking.SubmitVote(ctx, view.ID, voter, pick)
			if err != nil {
				log.Fatalf("vote %s->%s: %v", voter, pick, err)
			}
			if out.Completed {
				fmt.Println("\nfinal ranking:")
				for _, r := range out.Result.Rankings {
					fmt.Printf("  %d. %s (level %d, %d respect)\n", r.Place, r.DisplayName, r.Level, r.Respect)
				}
				fmt.Printf("\nsubmission: %s\n", out.Result.Submission.URL)
				return
			}
			if out.RoundResolved {
				fmt.Printf("level %d goes to %s\n", winner+1, out.WinnerID)
				break
			}
		}
	}
}
