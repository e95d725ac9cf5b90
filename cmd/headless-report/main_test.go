package main

import (
	"testing"

	"github.com/Garsondee/vr-targets/internal/game"
)

func TestFirstTick_MatchesCategoryKeyAndSubstring(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 3, Category: "state", Key: "reset", Value: "mode=1 shots=10"},
		{Tick: 40, Category: "state", Key: "level", Value: "level 2"},
		{Tick: 90, Category: "state", Key: "level", Value: "level 3"},
	}
	if got := firstTick(entries, "state", "level", ""); got != 40 {
		t.Fatalf("expected first level at 40, got %d", got)
	}
	if got := firstTick(entries, "state", "level", "level 3"); got != 90 {
		t.Fatalf("expected level 3 at 90, got %d", got)
	}
	if got := firstTick(entries, "score", "hit", ""); got != -1 {
		t.Fatalf("expected -1 for missing event, got %d", got)
	}
}

func TestAccuracy_NoShotsIsZero(t *testing.T) {
	if got := accuracy(0, 0); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
	if got := accuracy(3, 1); got != 0.75 {
		t.Fatalf("expected 0.75, got %f", got)
	}
}

func TestOutcome_Classification(t *testing.T) {
	cases := []struct {
		rs   runStats
		want string
	}{
		{runStats{gameOverTick: 500, triggers: 40}, "game_over"},
		{runStats{gameOverTick: -1}, "idle"},
		{runStats{gameOverTick: -1, triggers: 12, final: game.GameState{Mode: game.ModeBeam}}, "beam_levels"},
		{runStats{gameOverTick: -1, triggers: 3, final: game.GameState{Mode: game.ModeThrow}}, "throwing"},
	}
	for _, c := range cases {
		if got := outcome(c.rs); got != c.want {
			t.Fatalf("outcome(%+v) = %s, want %s", c.rs.final, got, c.want)
		}
	}
}

func TestJoinLevels_Sorted(t *testing.T) {
	got := joinLevels(map[int]struct{}{3: {}, 1: {}, 2: {}})
	if got != "1,2,3" {
		t.Fatalf("expected 1,2,3, got %s", got)
	}
	if joinLevels(nil) != "none" {
		t.Fatalf("expected none for empty set")
	}
}

func TestReady_BlocksWhileProjectileInFlight(t *testing.T) {
	ts := game.NewTestSim(game.WithAutofire(0))
	if !ready(ts.Session) {
		t.Fatalf("expected fresh session to be ready")
	}
	ts.Trigger()
	if ready(ts.Session) {
		t.Fatalf("expected not ready with a projectile in flight")
	}
}

func TestRunSession_ScriptedPlayerShoots(t *testing.T) {
	rs, err := runSession(1, 7, runOptions{variant: "targetvr", frames: 120})
	if err != nil {
		t.Fatalf("runSession: %v", err)
	}
	if rs.frames < 120 {
		t.Fatalf("expected at least 120 frames, got %d", rs.frames)
	}
	if rs.triggers == 0 {
		t.Fatalf("expected the scripted player to pull the trigger")
	}
	if rs.final.Shots >= 10 {
		t.Fatalf("expected shots to be consumed, got %d", rs.final.Shots)
	}
}
