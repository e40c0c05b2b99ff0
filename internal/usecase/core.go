package usecase

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/adapter"
	"fractal-respect-game/internal/domain/ports/repository"
	"fractal-respect-game/internal/infra/metrics"
)

// GameConfig is the slice of configuration the engine cares about.
type GameConfig struct {
	// SubmissionBaseURL is the external ledger front end, e.g.
	// "https://zao.frapps.xyz".
	SubmissionBaseURL string
	// RecordAborted controls whether facilitator-ended sessions leave a
	// partial history record (marked aborted) or vanish without trace.
	RecordAborted bool
}

// sessionCore bundles the collaborators shared by the ranking engine and the
// override controller, including the per-session lock table that serializes
// their mutations against each other.
type sessionCore struct {
	sessions repository.SessionRepository
	history  HistoryUseCase
	locks    *sessionLocks
	notifier adapter.Notifier
	names    adapter.DisplayNameLookup
	wallets  adapter.WalletLookup
	cfg      GameConfig
	log      *zerolog.Logger
}

func (c *sessionCore) load(ctx context.Context, sessionID string) (*model.Session, error) {
	s, err := c.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// displayName resolves best-effort; history must never fail because the
// directory collaborator is down.
func (c *sessionCore) displayName(ctx context.Context, memberID string) string {
	if c.names == nil {
		return memberID
	}
	name, err := c.names.DisplayName(ctx, memberID)
	if err != nil || name == "" {
		return memberID
	}
	return name
}

func (c *sessionCore) buildRecord(ctx context.Context, s *model.Session, aborted bool) *model.HistoryRecord {
	entries := make([]model.HistoryEntry, 0, len(s.Ranks))
	for i, r := range s.Ranks {
		entries = append(entries, model.HistoryEntry{
			Place:       i + 1,
			MemberID:    r.MemberID,
			DisplayName: c.displayName(ctx, r.MemberID),
			Level:       r.Level,
			Respect:     r.Respect,
		})
	}
	return &model.HistoryRecord{
		ID:              ulid.Make().String(),
		SessionID:       s.ID,
		GuildID:         s.GuildID,
		GroupName:       s.Name,
		FractalNumber:   s.FractalNumber,
		GroupNumber:     s.GroupNumber,
		FacilitatorID:   s.FacilitatorID,
		FacilitatorName: c.displayName(ctx, s.FacilitatorID),
		Entries:         entries,
		Aborted:         aborted,
		CompletedAt:     time.Now(),
	}
}

func (c *sessionCore) buildSubmission(ctx context.Context, rec *model.HistoryRecord) model.SubmissionPayload {
	wallets := make([]model.RankedWallet, 0, len(rec.Entries))
	for _, e := range rec.Entries {
		var addr string
		if c.wallets != nil {
			a, err := c.wallets.Wallet(ctx, e.MemberID)
			if err != nil {
				c.log.Warn().Err(err).Str("member_id", e.MemberID).Msg("wallet lookup failed")
			} else {
				addr = a
			}
		}
		wallets = append(wallets, model.RankedWallet{
			Place:       e.Place,
			MemberID:    e.MemberID,
			DisplayName: e.DisplayName,
			Wallet:      addr,
		})
	}
	return model.BuildSubmissionPayload(c.cfg.SubmissionBaseURL, rec.GroupNumber, wallets)
}

// commitResolved persists a session after ResolveRound. Completed sessions
// are appended to history and dropped from the live store in that order; if
// the history append fails the session stays in its last committed state and
// the error surfaces to the caller for an idempotent retry. Returns the
// completion result when the session finished.
func (c *sessionCore) commitResolved(ctx context.Context, s *model.Session) (*model.CompletionResult, error) {
	if s.Status != model.SessionCompleted {
		if err := c.sessions.Save(ctx, s); err != nil {
			return nil, err
		}
		return nil, nil
	}

	rec := c.buildRecord(ctx, s, false)
	if err := c.history.Record(ctx, rec); err != nil {
		return nil, err
	}
	if err := c.sessions.Delete(ctx, s.ID); err != nil {
		// The record is durable; a dangling live entry is the lesser evil
		// and the next delete attempt is idempotent.
		c.log.Error().Err(err).Str("session_id", s.ID).Msg("failed to drop completed session from live store")
	}
	metrics.SessionCompleted(s.GuildID)

	result := &model.CompletionResult{
		Session:  s.View(),
		Rankings: rec.Entries,
		RecordID: rec.ID,
	}
	result.Submission = c.buildSubmission(ctx, rec)
	return result, nil
}

// notifyResolution dispatches post-commit events. The notifier itself is
// expected to be asynchronous (see infra/notify); failures there never reach
// this path.
func (c *sessionCore) notifyResolution(ctx context.Context, view model.SessionView, level int, winnerID string, result *model.CompletionResult) {
	if c.notifier == nil {
		return
	}
	c.notifier.RoundResolved(ctx, view, level, winnerID)
	if result != nil {
		c.notifier.SessionCompleted(ctx, *result)
	}
}
