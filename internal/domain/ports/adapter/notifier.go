package adapter

import (
	"context"

	"fractal-respect-game/internal/domain/model"
)

// Notifier is the post-commit event sink consumed by front ends (chat
// messages, voice cues, dashboards). Calls happen after the state
// transition has committed and are best-effort: a failed notification never
// rolls back or re-opens a round.
type Notifier interface {
	RoundResolved(ctx context.Context, view model.SessionView, level int, winnerID string)
	SessionCompleted(ctx context.Context, result model.CompletionResult)
	SessionAborted(ctx context.Context, view model.SessionView)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) RoundResolved(context.Context, model.SessionView, int, string) {}
func (NopNotifier) SessionCompleted(context.Context, model.CompletionResult)      {}
func (NopNotifier) SessionAborted(context.Context, model.SessionView)             {}
