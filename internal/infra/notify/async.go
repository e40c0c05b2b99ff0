package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/adapter"
	"fractal-respect-game/internal/infra/worker"
)

var _ adapter.Notifier = (*Async)(nil)

// Async decorates a Notifier with a worker pool so callers return as soon as
// the event is queued. Each dispatch gets its own deadline detached from the
// request context, which is usually done by the time the task runs.
type Async struct {
	next    adapter.Notifier
	pool    *worker.Pool
	log     *zerolog.Logger
	timeout time.Duration
}

func NewAsync(next adapter.Notifier, pool *worker.Pool, logger *zerolog.Logger) *Async {
	l := logger.With().Str("component", "async_notifier").Logger()
	return &Async{next: next, pool: pool, log: &l, timeout: 15 * time.Second}
}

func (a *Async) RoundResolved(ctx context.Context, view model.SessionView, level int, winnerID string) {
	a.submit("round_resolved", func(ctx context.Context) error {
		a.next.RoundResolved(ctx, view, level, winnerID)
		return nil
	})
}

func (a *Async) SessionCompleted(ctx context.Context, result model.CompletionResult) {
	a.submit("session_completed", func(ctx context.Context) error {
		a.next.SessionCompleted(ctx, result)
		return nil
	})
}

func (a *Async) SessionAborted(ctx context.Context, view model.SessionView) {
	a.submit("session_aborted", func(ctx context.Context) error {
		a.next.SessionAborted(ctx, view)
		return nil
	})
}

func (a *Async) submit(event string, task worker.Task) {
	err := a.pool.Submit(func(poolCtx context.Context) error {
		ctx, cancel := context.WithTimeout(poolCtx, a.timeout)
		defer cancel()
		return task(ctx)
	})
	if err != nil {
		a.log.Warn().Err(err).Str("event", event).Msg("notification dropped")
	}
}
