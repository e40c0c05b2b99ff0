// Command seed fills an empty database with sample members and a few
// completed sessions so the history and leaderboard endpoints have data to
// show during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"fractal-respect-game/internal/config"
	"fractal-respect-game/internal/domain/model"
	pg "fractal-respect-game/internal/infra/db/postgres"
	"fractal-respect-game/internal/infra/logging"
	"fractal-respect-game/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	logger := logging.New(cfg.Log, false)
	histUC := usecase.NewHistoryUseCase(pg.NewHistoryRepo(pool), logger)

	// If history already exists, do nothing.
	n, err := histUC.Count(ctx)
	if err != nil {
		log.Fatalf("count history: %v", err)
	}
	if n > 0 {
		fmt.Printf("%d history records already present. No changes.\n", n)
		return
	}

	directory := pg.NewMemberDirectory(pool)
	members := []struct{ id, name, wallet string }{
		{"alice", "Alice", "0xA11CE"},
		{"bob", "Bob", "0xB0B"},
		{"carol", "Carol", "0xCA401"},
		{"dave", "Dave", ""},
		{"erin", "Erin", "0xE417"},
		{"frank", "Frank", "0xF4A7C"},
	}
	for _, m := range members {
		if err := directory.Upsert(ctx, m.id, m.name, m.wallet); err != nil {
			log.Fatalf("upsert member %s: %v", m.id, err)
		}
	}

	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.id] = m.name
	}

	now := time.Now()
	games := []struct {
		name    string
		daysAgo int
		places  []string
	}{
		{"Fractal Group 1 - week 1", 21, []string{"alice", "bob", "carol", "dave", "erin", "frank"}},
		{"Fractal Group 1 - week 2", 14, []string{"bob", "carol", "alice", "frank", "erin", "dave"}},
		{"Fractal Group 1 - week 3", 7, []string{"carol", "alice", "bob", "erin", "dave", "frank"}},
	}
	for i, g := range games {
		entries := make([]model.HistoryEntry, 0, len(g.places))
		for place, id := range g.places {
			level := len(g.places) - place
			entries = append(entries, model.HistoryEntry{
				Place:       place + 1,
				MemberID:    id,
				DisplayName: names[id],
				Level:       level,
				Respect:     model.RespectForLevel(level),
			})
		}
		rec := &model.HistoryRecord{
			ID:            ulid.Make().String(),
			SessionID:     fmt.Sprintf("seed-%d", i+1),
			GuildID:       "seed-guild",
			GroupName:     g.name,
			GroupNumber:   "1",
			FacilitatorID: g.places[0],
			Entries:       entries,
			CompletedAt:   now.AddDate(0, 0, -g.daysAgo),
		}
		if err := histUC.Record(ctx, rec); err != nil {
			log.Fatalf("record %s: %v", g.name, err)
		}
		fmt.Printf("seeded %q\n", g.name)
	}
	fmt.Printf("seeded %d members and %d sessions.\n", len(members), len(games))
}
