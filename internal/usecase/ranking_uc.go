package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/adapter"
	"fractal-respect-game/internal/domain/ports/repository"
	"fractal-respect-game/internal/infra/logging"
	"fractal-respect-game/internal/infra/metrics"
)

var _ RankingUseCase = (*rankingUC)(nil)

// SessionMeta is the optional naming metadata supplied at start.
type SessionMeta struct {
	Name          string
	FractalNumber string
	GroupNumber   string
}

// VoteOutcome reports what a single vote did to the session.
type VoteOutcome struct {
	RoundResolved bool
	Completed     bool
	WinnerID      string
	Session       model.SessionView
	// Result is non-nil only when the vote completed the session.
	Result *model.CompletionResult
}

// RankingUseCase drives a session from formation through the ranking rounds
// to completion.
type RankingUseCase interface {
	Start(ctx context.Context, guildID, facilitatorID string, participants []string, meta SessionMeta) (model.SessionView, error)
	SubmitVote(ctx context.Context, sessionID, voterID, candidateID string) (VoteOutcome, error)
	End(ctx context.Context, sessionID, requesterID string) error
	Status(ctx context.Context, sessionID string) (model.SessionView, error)
	ListActive(ctx context.Context, guildID string) ([]model.SessionView, error)
}

type rankingUC struct {
	*sessionCore
}

// NewGameUseCases builds the ranking engine and the override controller on
// one shared core, so both mutate any given session under the same lock.
func NewGameUseCases(
	sessions repository.SessionRepository,
	history HistoryUseCase,
	notifier adapter.Notifier,
	names adapter.DisplayNameLookup,
	wallets adapter.WalletLookup,
	cfg GameConfig,
	logger *zerolog.Logger,
) (RankingUseCase, OverrideUseCase) {
	core := &sessionCore{
		sessions: sessions,
		history:  history,
		locks:    newSessionLocks(),
		notifier: notifier,
		names:    names,
		wallets:  wallets,
		cfg:      cfg,
		log:      logger,
	}
	return &rankingUC{sessionCore: core}, &overrideUC{sessionCore: core}
}

// Start validates the group and creates a session at level n. A member
// already contesting another live session of the same guild blocks creation.
func (u *rankingUC) Start(ctx context.Context, guildID, facilitatorID string, participants []string, meta SessionMeta) (model.SessionView, error) {
	defer logging.TraceDuration(u.log, "RankingUC.Start")()

	s, err := model.NewSession("", guildID, meta.Name, facilitatorID, participants, meta.FractalNumber, meta.GroupNumber)
	if err != nil {
		return model.SessionView{}, err
	}

	// Guild-scoped lock: the duplicate-participant scan and the save must
	// not interleave with a concurrent start for the same guild.
	unlock := u.locks.Acquire("start:" + guildID)
	defer unlock()

	live, err := u.sessions.ListByGuild(ctx, guildID)
	if err != nil {
		return model.SessionView{}, err
	}
	for _, other := range live {
		for _, p := range participants {
			if other.IsParticipant(p) {
				return model.SessionView{}, domain.ErrDuplicateParticipant
			}
		}
	}

	if err := u.sessions.Save(ctx, s); err != nil {
		return model.SessionView{}, err
	}
	metrics.SessionStarted(guildID, len(participants))
	u.log.Info().
		Str("session_id", s.ID).
		Str("guild_id", guildID).
		Str("facilitator", facilitatorID).
		Int("participants", len(participants)).
		Msg("session started")
	return s.View(), nil
}

// SubmitVote writes one vote and evaluates the threshold rule. The whole
// read-decide-write path runs under the session lock.
func (u *rankingUC) SubmitVote(ctx context.Context, sessionID, voterID, candidateID string) (VoteOutcome, error) {
	defer logging.TraceDuration(u.log, "RankingUC.SubmitVote")()
	unlock := u.locks.Acquire(sessionID)
	defer unlock()

	s, err := u.load(ctx, sessionID)
	if err != nil {
		return VoteOutcome{}, err
	}
	if err := s.CastVote(voterID, candidateID, time.Now()); err != nil {
		return VoteOutcome{}, err
	}
	metrics.VoteCast(s.GuildID)

	winnerID, converged := s.Converged()
	if !converged {
		if err := u.sessions.Save(ctx, s); err != nil {
			return VoteOutcome{}, err
		}
		return VoteOutcome{Session: s.View()}, nil
	}

	level := s.CurrentLevel
	if err := s.ResolveRound(winnerID); err != nil {
		return VoteOutcome{}, err
	}
	result, err := u.commitResolved(ctx, s)
	if err != nil {
		return VoteOutcome{}, err
	}
	metrics.RoundResolved(s.GuildID, false)
	u.log.Info().
		Str("session_id", s.ID).
		Int("level", level).
		Str("winner", winnerID).
		Bool("completed", result != nil).
		Msg("round resolved")

	view := s.View()
	u.notifyResolution(ctx, view, level, winnerID, result)
	if result != nil {
		u.locks.Forget(sessionID)
	}
	return VoteOutcome{
		RoundResolved: true,
		Completed:     result != nil,
		WinnerID:      winnerID,
		Session:       view,
		Result:        result,
	}, nil
}

// End aborts a session on the facilitator's request and removes it from the
// live store. Depending on configuration the abort leaves a marked partial
// history record.
func (u *rankingUC) End(ctx context.Context, sessionID, requesterID string) error {
	defer logging.TraceDuration(u.log, "RankingUC.End")()
	unlock := u.locks.Acquire(sessionID)
	defer unlock()

	s, err := u.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.FacilitatorID != requesterID {
		return domain.ErrNotFacilitator
	}
	s.Status = model.SessionAborted

	if u.cfg.RecordAborted {
		if err := u.history.Record(ctx, u.buildRecord(ctx, s, true)); err != nil {
			return err
		}
	}
	if err := u.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	metrics.SessionAborted(s.GuildID)
	u.log.Info().Str("session_id", sessionID).Str("requester", requesterID).Msg("session aborted")

	if u.notifier != nil {
		u.notifier.SessionAborted(ctx, s.View())
	}
	u.locks.Forget(sessionID)
	return nil
}

// Status snapshots a session without side effects. The lock is held only
// for the duration of the copy.
func (u *rankingUC) Status(ctx context.Context, sessionID string) (model.SessionView, error) {
	unlock := u.locks.Acquire(sessionID)
	defer unlock()

	s, err := u.load(ctx, sessionID)
	if err != nil {
		return model.SessionView{}, err
	}
	return s.View(), nil
}

// ListActive lists every live session of a guild (all guilds when empty).
func (u *rankingUC) ListActive(ctx context.Context, guildID string) ([]model.SessionView, error) {
	var (
		live []*model.Session
		err  error
	)
	if guildID == "" {
		live, err = u.sessions.ListAll(ctx)
	} else {
		live, err = u.sessions.ListByGuild(ctx, guildID)
	}
	if err != nil {
		return nil, err
	}
	views := make([]model.SessionView, 0, len(live))
	for _, s := range live {
		views = append(views, s.View())
	}
	return views, nil
}
