// Package notify holds the outbound side of session events: a logging sink,
// an optional webhook sink, and an async decorator that moves dispatch off
// the request path.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*LogNotifier)(nil)

// LogNotifier writes each event as a structured log line. Always wired as
// the innermost sink so every resolution leaves a trace even with no
// webhook configured.
type LogNotifier struct {
	log *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	l := logger.With().Str("component", "notifier").Logger()
	return &LogNotifier{log: &l}
}

func (n *LogNotifier) RoundResolved(ctx context.Context, view model.SessionView, level int, winnerID string) {
	n.log.Info().
		Str("session_id", view.ID).
		Str("guild_id", view.GuildID).
		Int("level", level).
		Str("winner_id", winnerID).
		Msg("round resolved")
}

func (n *LogNotifier) SessionCompleted(ctx context.Context, result model.CompletionResult) {
	n.log.Info().
		Str("session_id", result.Session.ID).
		Str("guild_id", result.Session.GuildID).
		Str("record_id", result.RecordID).
		Int("rankings", len(result.Rankings)).
		Msg("session completed")
}

func (n *LogNotifier) SessionAborted(ctx context.Context, view model.SessionView) {
	n.log.Info().
		Str("session_id", view.ID).
		Str("guild_id", view.GuildID).
		Msg("session aborted")
}

// Fanout forwards every event to each sink in order.
type Fanout []adapter.Notifier

func (f Fanout) RoundResolved(ctx context.Context, view model.SessionView, level int, winnerID string) {
	for _, n := range f {
		n.RoundResolved(ctx, view, level, winnerID)
	}
}

func (f Fanout) SessionCompleted(ctx context.Context, result model.CompletionResult) {
	for _, n := range f {
		n.SessionCompleted(ctx, result)
	}
}

func (f Fanout) SessionAborted(ctx context.Context, view model.SessionView) {
	for _, n := range f {
		n.SessionAborted(ctx, view)
	}
}
