package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain/ports/repository"
	"fractal-respect-game/internal/infra/metrics"
)

// ActivityWorker periodically refreshes the live-session gauge and flags
// sessions that have gone quiet. It never mutates game state; stalled groups
// are an operator decision (pause, force a round, end).
type ActivityWorker struct {
	interval  time.Duration
	idleAfter time.Duration
	sessions  repository.SessionRepository
	log       *zerolog.Logger
}

func NewActivityWorker(interval, idleAfter time.Duration, sessions repository.SessionRepository, logger *zerolog.Logger) *ActivityWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if idleAfter <= 0 {
		idleAfter = 30 * time.Minute
	}
	actLog := logger.With().Str("component", "ActivityWorker").Logger()
	return &ActivityWorker{
		interval:  interval,
		idleAfter: idleAfter,
		sessions:  sessions,
		log:       &actLog,
	}
}

func (w *ActivityWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting activity worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping activity worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ActivityWorker) sweep(ctx context.Context) {
	live, err := w.sessions.ListAll(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("activity sweep failed")
		return
	}
	metrics.SetActiveSessions(len(live))

	cutoff := time.Now().Add(-w.idleAfter)
	for _, s := range live {
		if s.LastActivity.Before(cutoff) {
			w.log.Warn().
				Str("session_id", s.ID).
				Str("guild_id", s.GuildID).
				Time("last_activity", s.LastActivity).
				Msg("session idle past threshold")
		}
	}
}
