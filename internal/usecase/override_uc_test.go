//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/domain/model"
)

func apply(t *testing.T, f *gameFixture, sessionID string, op OverrideOp) model.SessionView {
	t.Helper()
	view, err := f.override.Apply(context.Background(), sessionID, op)
	if err != nil {
		t.Fatalf("apply %s: %v", op.Kind, err)
	}
	return view
}

func TestOverride_ValidateShapes(t *testing.T) {
	cases := []struct {
		name string
		op   OverrideOp
		want error
	}{
		{"unknown kind", OverrideOp{Kind: "explode"}, domain.ErrUnknownOverride},
		{"pause takes no member", OverrideOp{Kind: OverridePause, MemberID: "A"}, domain.ErrInvalidArgument},
		{"restart takes no member", OverrideOp{Kind: OverrideRestart, MemberID: "A"}, domain.ErrInvalidArgument},
		{"declare_winner needs member", OverrideOp{Kind: OverrideDeclareWinner}, domain.ErrInvalidArgument},
		{"add_member needs member", OverrideOp{Kind: OverrideAddMember}, domain.ErrInvalidArgument},
	}
	f := newGameFixture(GameConfig{})
	view := mustStart(t, f, "g1", "A", "B", "C")

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.override.Apply(context.Background(), view.ID, tc.op)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestOverride_PauseResume(t *testing.T) {
	f := newGameFixture(GameConfig{})
	view := mustStart(t, f, "g1", "A", "B", "C")

	paused := apply(t, f, view.ID, OverrideOp{Kind: OverridePause})
	if paused.Status != model.SessionPaused {
		t.Fatalf("want paused, got %s", paused.Status)
	}

	if _, err := f.ranking.SubmitVote(context.Background(), view.ID, "A", "B"); !errors.Is(err, domain.ErrSessionNotActive) {
		t.Fatalf("vote while paused: %v", err)
	}
	if _, err := f.override.Apply(context.Background(), view.ID, OverrideOp{Kind: OverridePause}); !errors.Is(err, domain.ErrSessionNotActive) {
		t.Fatalf("double pause: %v", err)
	}

	resumed := apply(t, f, view.ID, OverrideOp{Kind: OverrideResume})
	if resumed.Status != model.SessionActive {
		t.Fatalf("want active, got %s", resumed.Status)
	}
	if _, err := f.override.Apply(context.Background(), view.ID, OverrideOp{Kind: OverrideResume}); !errors.Is(err, domain.ErrNotPaused) {
		t.Fatalf("double resume: %v", err)
	}

	// Pause survives restarts of the process: state round-trips the store.
	if got, _ := f.ranking.Status(context.Background(), view.ID); got.Status != model.SessionActive {
		t.Fatalf("status after resume: %s", got.Status)
	}
}

func TestOverride_ForceRoundPluralityAndTiebreak(t *testing.T) {
	f := newGameFixture(GameConfig{})
	view := mustStart(t, f, "g1", "A", "B", "C", "D")

	// Threshold for 4 candidates is 3. Stuck 2-2: B has two votes cast
	// earlier than D's two.
	mustVote(t, f, view.ID, "A", "B")
	mustVote(t, f, view.ID, "C", "D")
	mustVote(t, f, view.ID, "B", "D")
	mustVote(t, f, view.ID, "D", "B")

	out := apply(t, f, view.ID, OverrideOp{Kind: OverrideForceRound})
	if len(out.Ranks) != 1 || out.Ranks[0].MemberID != "B" {
		t.Fatalf("expected earliest-supported B to win, got %+v", out.Ranks)
	}
	if out.CurrentLevel != 3 {
		t.Fatalf("expected level 3 next, got %d", out.CurrentLevel)
	}
}

func TestOverride_ForceRoundExplicitWinnerAndNoVotes(t *testing.T) {
	f := newGameFixture(GameConfig{})
	view := mustStart(t, f, "g1", "A", "B", "C")

	if _, err := f.override.Apply(context.Background(), view.ID, OverrideOp{Kind: OverrideForceRound}); !errors.Is(err, domain.ErrNoVotes) {
		t.Fatalf("force with no votes: %v", err)
	}

	out := apply(t, f, view.ID, OverrideOp{Kind: OverrideForceRound, MemberID: "C"})
	if len(out.Ranks) != 1 || out.Ranks[0].MemberID != "C" {
		t.Fatalf("expected explicit winner C, got %+v", out.Ranks)
	}
}

func TestOverride_DeclareWinnerCascadesToCompletion(t *testing.T) {
	f := newGameFixture(GameConfig{})
	view := mustStart(t, f, "g1", "A", "B", "C")

	apply(t, f, view.ID, OverrideOp{Kind: OverrideDeclareWinner, MemberID: "B"})
	out := apply(t, f, view.ID, OverrideOp{Kind: OverrideDeclareWinner, MemberID: "A"})
	if out.Status != model.SessionCompleted {
		t.Fatalf("expected completion, got %s", out.Status)
	}
	// C auto-assigned the final level.
	if len(out.Ranks) != 3 || out.Ranks[2].MemberID != "C" || out.Ranks[2].Level != 1 {
		t.Fatalf("unexpected ranks: %+v", out.Ranks)
	}
	if len(f.notifier.completed) != 1 {
		t.Fatalf("expected completion event, got %d", len(f.notifier.completed))
	}
	if _, err := f.ranking.Status(context.Background(), view.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
}

func TestOverride_ResetVotes(t *testing.T) {
	f := newGameFixture(GameConfig{})
	view := mustStart(t, f, "g1", "A", "B", "C")
	mustVote(t, f, view.ID, "A", "B")

	out := apply(t, f, view.ID, OverrideOp{Kind: OverrideResetVotes})
	if out.VotesCast != 0 {
		t.Fatalf("expected cleared votes, got %d", out.VotesCast)
	}
}

func TestOverride_Membership(t *testing.T) {
	f := newGameFixture(GameConfig{})
	view := mustStart(t, f, "g1", "A", "B", "C")

	t.Run("add renormalizes level", func(t *testing.T) {
		out := apply(t, f, view.ID, OverrideOp{Kind: OverrideAddMember, MemberID: "D"})
		if out.CurrentLevel != 4 || len(out.Participants) != 4 {
			t.Fatalf("unexpected view after add: level=%d participants=%d", out.CurrentLevel, len(out.Participants))
		}
	})

	t.Run("remove voter drops their vote", func(t *testing.T) {
		mustVote(t, f, view.ID, "D", "B")
		out := apply(t, f, view.ID, OverrideOp{Kind: OverrideRemoveMember, MemberID: "D"})
		if out.CurrentLevel != 3 || out.VotesCast != 0 {
			t.Fatalf("unexpected view after remove: level=%d votes=%d", out.CurrentLevel, out.VotesCast)
		}
	})

	t.Run("facilitator cannot be removed", func(t *testing.T) {
		_, err := f.override.Apply(context.Background(), view.ID, OverrideOp{Kind: OverrideRemoveMember, MemberID: "A"})
		if !errors.Is(err, domain.ErrNotFacilitator) {
			t.Fatalf("want ErrNotFacilitator, got %v", err)
		}
	})

	t.Run("change facilitator then remove old one", func(t *testing.T) {
		out := apply(t, f, view.ID, OverrideOp{Kind: OverrideChangeFacilitator, MemberID: "B"})
		if out.FacilitatorID != "B" {
			t.Fatalf("want facilitator B, got %s", out.FacilitatorID)
		}
		out = apply(t, f, view.ID, OverrideOp{Kind: OverrideRemoveMember, MemberID: "A"})
		if len(out.Participants) != 2 || out.CurrentLevel != 2 {
			t.Fatalf("unexpected view: %+v", out)
		}
	})

	t.Run("add after first rank is rejected", func(t *testing.T) {
		f2 := newGameFixture(GameConfig{})
		v2 := mustStart(t, f2, "g1", "A", "B", "C")
		apply(t, f2, v2.ID, OverrideOp{Kind: OverrideDeclareWinner, MemberID: "B"})
		_, err := f2.override.Apply(context.Background(), v2.ID, OverrideOp{Kind: OverrideAddMember, MemberID: "D"})
		if !errors.Is(err, domain.ErrRanksAssigned) {
			t.Fatalf("want ErrRanksAssigned, got %v", err)
		}
	})

	t.Run("ranked member cannot be removed", func(t *testing.T) {
		f2 := newGameFixture(GameConfig{})
		v2 := mustStart(t, f2, "g1", "A", "B", "C")
		apply(t, f2, v2.ID, OverrideOp{Kind: OverrideDeclareWinner, MemberID: "B"})
		_, err := f2.override.Apply(context.Background(), v2.ID, OverrideOp{Kind: OverrideRemoveMember, MemberID: "B"})
		if !errors.Is(err, domain.ErrMemberAlreadyRanked) {
			t.Fatalf("want ErrMemberAlreadyRanked, got %v", err)
		}
	})
}

func TestOverride_RestartRewindsEverything(t *testing.T) {
	f := newGameFixture(GameConfig{})
	view := mustStart(t, f, "g1", "A", "B", "C")
	apply(t, f, view.ID, OverrideOp{Kind: OverrideDeclareWinner, MemberID: "B"})

	out := apply(t, f, view.ID, OverrideOp{Kind: OverrideRestart})
	if out.CurrentLevel != 3 || len(out.Ranks) != 0 || len(out.Candidates) != 3 {
		t.Fatalf("unexpected view after restart: %+v", out)
	}
	if out.Status != model.SessionActive {
		t.Fatalf("want active after restart, got %s", out.Status)
	}
}

func TestOverride_OnMissingSession(t *testing.T) {
	f := newGameFixture(GameConfig{})
	_, err := f.override.Apply(context.Background(), "ghost", OverrideOp{Kind: OverridePause})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("want ErrSessionNotFound, got %v", err)
	}
}
