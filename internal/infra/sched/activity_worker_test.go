//go:build !integration

package sched

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/infra/memory"
)

func TestActivityWorker_SweepCountsLiveSessions(t *testing.T) {
	repo := memory.NewSessionRepo()
	ctx := context.Background()
	for _, id := range []string{"s1", "s2"} {
		s, err := model.NewSession(id, "g1", "group", "a"+id, []string{"a" + id, "b" + id}, "", "")
		if err != nil {
			t.Fatalf("new session: %v", err)
		}
		if err := repo.Save(ctx, s); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	logger := zerolog.Nop()
	w := NewActivityWorker(time.Minute, time.Hour, repo, &logger)
	// sweep must not error or mutate state
	w.sweep(ctx)

	n, err := repo.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 live sessions, got %d (err=%v)", n, err)
	}
}

func TestActivityWorker_RunStopsOnContextCancel(t *testing.T) {
	repo := memory.NewSessionRepo()
	logger := zerolog.Nop()
	w := NewActivityWorker(10*time.Millisecond, time.Hour, repo, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
