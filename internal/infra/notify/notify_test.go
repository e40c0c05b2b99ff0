//go:build !integration

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/infra/worker"
)

type captureNotifier struct {
	mu        sync.Mutex
	resolved  []string
	completed []string
	aborted   []string
}

func (c *captureNotifier) RoundResolved(_ context.Context, view model.SessionView, _ int, winnerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = append(c.resolved, winnerID)
}

func (c *captureNotifier) SessionCompleted(_ context.Context, result model.CompletionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = append(c.completed, result.Session.ID)
}

func (c *captureNotifier) SessionAborted(_ context.Context, view model.SessionView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aborted = append(c.aborted, view.ID)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestAsyncDeliversAllEvents(t *testing.T) {
	logger := zerolog.Nop()
	pool := worker.NewPool(2, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	sink := &captureNotifier{}
	async := NewAsync(sink, pool, &logger)

	view := model.SessionView{ID: "s1", GuildID: "g1"}
	async.RoundResolved(ctx, view, 3, "alice")
	async.SessionCompleted(ctx, model.CompletionResult{Session: view})
	async.SessionAborted(ctx, view)

	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.resolved) == 1 && len(sink.completed) == 1 && len(sink.aborted) == 1
	})
	if sink.resolved[0] != "alice" {
		t.Fatalf("expected winner alice, got %q", sink.resolved[0])
	}
}

func TestWebhookPostsEnvelope(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env struct {
			Event string `json:"event"`
		}
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			t.Errorf("decode body: %v", err)
		}
		mu.Lock()
		events = append(events, env.Event)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	wh := NewWebhookNotifier(srv.URL, &logger)

	ctx := context.Background()
	view := model.SessionView{ID: "s1", GuildID: "g1"}
	wh.RoundResolved(ctx, view, 2, "bob")
	wh.SessionCompleted(ctx, model.CompletionResult{Session: view})
	wh.SessionAborted(ctx, view)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"round_resolved", "session_completed", "session_aborted"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, e := range events {
		if e != want[i] {
			t.Fatalf("event %d: expected %q, got %q", i, want[i], e)
		}
	}
}

func TestFanoutForwardsToEverySink(t *testing.T) {
	a, b := &captureNotifier{}, &captureNotifier{}
	f := Fanout{a, b}
	f.SessionAborted(context.Background(), model.SessionView{ID: "s9"})
	if len(a.aborted) != 1 || len(b.aborted) != 1 {
		t.Fatal("expected both sinks to receive the event")
	}
}
