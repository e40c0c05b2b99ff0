//go:build !integration

package application

import (
	"context"
	"testing"
	"time"

	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/usecase"
)

// stubRanking captures Start calls so naming behavior can be asserted
// without spinning up the whole engine.
type stubRanking struct {
	metas []usecase.SessionMeta
}

func (s *stubRanking) Start(_ context.Context, guildID, facilitatorID string, participants []string, meta usecase.SessionMeta) (model.SessionView, error) {
	s.metas = append(s.metas, meta)
	return model.SessionView{GuildID: guildID, Name: meta.Name, GroupNumber: meta.GroupNumber}, nil
}

func (s *stubRanking) SubmitVote(context.Context, string, string, string) (usecase.VoteOutcome, error) {
	return usecase.VoteOutcome{}, nil
}

func (s *stubRanking) End(context.Context, string, string) error { return nil }

func (s *stubRanking) Status(context.Context, string) (model.SessionView, error) {
	return model.SessionView{}, nil
}

func (s *stubRanking) ListActive(context.Context, string) ([]model.SessionView, error) {
	return nil, nil
}

func TestStartGame_AutoNaming(t *testing.T) {
	stub := &stubRanking{}
	f := NewGameFacade(stub, nil, nil)
	f.now = func() time.Time { return time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	participants := []string{"alice", "bob"}

	v1, err := f.StartGame(ctx, "g1", "alice", participants, usecase.SessionMeta{})
	if err != nil {
		t.Fatalf("start 1: %v", err)
	}
	if v1.Name != "Fractal Group 1 - Aug 31, 2026" {
		t.Fatalf("unexpected name: %q", v1.Name)
	}
	if v1.GroupNumber != "1" {
		t.Fatalf("unexpected group number: %q", v1.GroupNumber)
	}

	// Same guild, same day: the counter advances.
	v2, _ := f.StartGame(ctx, "g1", "alice", participants, usecase.SessionMeta{})
	if v2.Name != "Fractal Group 2 - Aug 31, 2026" || v2.GroupNumber != "2" {
		t.Fatalf("unexpected second group: name=%q number=%q", v2.Name, v2.GroupNumber)
	}

	// Another guild starts its own count.
	v3, _ := f.StartGame(ctx, "g2", "alice", participants, usecase.SessionMeta{})
	if v3.GroupNumber != "1" {
		t.Fatalf("expected fresh counter per guild, got %q", v3.GroupNumber)
	}

	// A new day resets the numbering.
	f.now = func() time.Time { return time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC) }
	v4, _ := f.StartGame(ctx, "g1", "alice", participants, usecase.SessionMeta{})
	if v4.Name != "Fractal Group 1 - Sep 01, 2026" {
		t.Fatalf("unexpected next-day name: %q", v4.Name)
	}

	// Caller-supplied naming is left alone and does not advance the counter.
	v5, _ := f.StartGame(ctx, "g1", "alice", participants, usecase.SessionMeta{Name: "custom", GroupNumber: "7"})
	if v5.Name != "custom" || v5.GroupNumber != "7" {
		t.Fatalf("expected caller naming preserved, got %+v", v5)
	}
	v6, _ := f.StartGame(ctx, "g1", "alice", participants, usecase.SessionMeta{})
	if v6.GroupNumber != "2" {
		t.Fatalf("expected counter untouched by custom naming, got %q", v6.GroupNumber)
	}
}
