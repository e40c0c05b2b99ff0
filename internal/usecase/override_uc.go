package usecase

import (
	"context"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/infra/logging"
	"fractal-respect-game/internal/infra/metrics"
)

var _ OverrideUseCase = (*overrideUC)(nil)

// OverrideKind enumerates the closed set of administrative mutations. The
// original system took loosely-typed payloads; here unknown ops and
// malformed argument shapes are rejected at the boundary.
type OverrideKind string

const (
	OverridePause             OverrideKind = "pause"
	OverrideResume            OverrideKind = "resume"
	OverrideForceRound        OverrideKind = "force_round"
	OverrideResetVotes        OverrideKind = "reset_votes"
	OverrideDeclareWinner     OverrideKind = "declare_winner"
	OverrideAddMember         OverrideKind = "add_member"
	OverrideRemoveMember      OverrideKind = "remove_member"
	OverrideChangeFacilitator OverrideKind = "change_facilitator"
	OverrideRestart           OverrideKind = "restart"
)

// OverrideOp is one admin mutation. MemberID is required for the member
// ops and declare_winner, optional for force_round (an explicit winner
// bypasses the plurality pick), and must be empty elsewhere.
type OverrideOp struct {
	Kind     OverrideKind `json:"kind"`
	MemberID string       `json:"member_id,omitempty"`
}

// Validate checks the argument shape per variant.
func (op OverrideOp) Validate() error {
	switch op.Kind {
	case OverridePause, OverrideResume, OverrideResetVotes, OverrideRestart:
		if op.MemberID != "" {
			return domain.ErrInvalidArgument
		}
	case OverrideForceRound:
		// member optional
	case OverrideDeclareWinner, OverrideAddMember, OverrideRemoveMember, OverrideChangeFacilitator:
		if op.MemberID == "" {
			return domain.ErrInvalidArgument
		}
	default:
		return domain.ErrUnknownOverride
	}
	return nil
}

// OverrideUseCase applies privileged mutations to a session, serialized
// against concurrent votes on the same session.
type OverrideUseCase interface {
	Apply(ctx context.Context, sessionID string, op OverrideOp) (model.SessionView, error)
}

type overrideUC struct {
	*sessionCore
}

func (u *overrideUC) Apply(ctx context.Context, sessionID string, op OverrideOp) (model.SessionView, error) {
	defer logging.TraceDuration(u.log, "OverrideUC.Apply")()
	if err := op.Validate(); err != nil {
		return model.SessionView{}, err
	}

	unlock := u.locks.Acquire(sessionID)
	defer unlock()

	s, err := u.load(ctx, sessionID)
	if err != nil {
		return model.SessionView{}, err
	}

	var (
		resolvedLevel  int
		resolvedWinner string
		result         *model.CompletionResult
	)

	switch op.Kind {
	case OverridePause:
		err = s.Pause()
	case OverrideResume:
		err = s.Resume()
	case OverrideResetVotes:
		s.ResetVotes()
	case OverrideRestart:
		s.Restart()
	case OverrideAddMember:
		err = s.AddMember(op.MemberID)
	case OverrideRemoveMember:
		err = s.RemoveMember(op.MemberID)
	case OverrideChangeFacilitator:
		err = s.ChangeFacilitator(op.MemberID)
	case OverrideForceRound, OverrideDeclareWinner:
		winnerID := op.MemberID
		if op.Kind == OverrideForceRound && winnerID == "" {
			winnerID, err = s.PluralityWinner()
			if err != nil {
				return model.SessionView{}, err
			}
		}
		resolvedLevel = s.CurrentLevel
		if err = s.ResolveRound(winnerID); err == nil {
			resolvedWinner = winnerID
		}
	}
	if err != nil {
		return model.SessionView{}, err
	}

	if resolvedWinner != "" {
		result, err = u.commitResolved(ctx, s)
		if err != nil {
			return model.SessionView{}, err
		}
		metrics.RoundResolved(s.GuildID, true)
	} else if err = u.sessions.Save(ctx, s); err != nil {
		return model.SessionView{}, err
	}
	metrics.OverrideApplied(string(op.Kind))
	u.log.Info().
		Str("session_id", sessionID).
		Str("op", string(op.Kind)).
		Str("member_id", op.MemberID).
		Msg("override applied")

	view := s.View()
	if resolvedWinner != "" {
		u.notifyResolution(ctx, view, resolvedLevel, resolvedWinner, result)
		if result != nil {
			u.locks.Forget(sessionID)
		}
	}
	return view, nil
}
