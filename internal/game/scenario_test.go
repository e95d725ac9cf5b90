package game

import (
	"strings"
	"testing"

	"github.com/Garsondee/vr-targets/internal/vmath"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, ts *TestSim) {
	t.Helper()
	entries := ts.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

// --- Scenario: thrown cube hits a stationary target ---

func TestScenario_ThrowHitsTarget(t *testing.T) {
	ts := NewTestSim(WithAutofire(0), WithTargetAt(0, 0, -2))
	ts.RunFrames(1)
	ts.Trigger()
	thrownAt := ts.State().Frame

	hitFrame := ts.RunUntil(func(ts *TestSim) bool {
		return ts.SimLog.CountCategory("score", "hit") > 0
	}, 60)
	if hitFrame < 0 {
		dumpLog(t, ts)
		t.Fatal("projectile never hit the target")
	}
	if got := hitFrame - thrownAt; got != 14 {
		t.Fatalf("expected hit 14 frames after the throw, got %d", got)
	}
	st := ts.State()
	if st.Score != 2 || st.Shots != 9 || st.Mode != ModeThrow {
		t.Fatalf("unexpected state after hit: %+v", st)
	}
	if !ts.Session.Projectile.Out {
		t.Fatal("projectile should be marked out after a hit")
	}
	if n := ts.SimLog.CountCategory("score", "miss"); n != 0 {
		t.Fatalf("a hit must suppress the miss classification, got %d misses", n)
	}
	placed, ok := ts.SimLog.LastOf("target", "placed")
	if !ok || placed.Tick != hitFrame {
		t.Fatalf("target should be repositioned on the hit frame, last placement %+v", placed)
	}
	if !strings.HasPrefix(ts.Session.Sign.Text, "You hit it.\nScore: 2\n9 Shots left") {
		t.Fatalf("unexpected toast %q", ts.Session.Sign.Text)
	}

	// Keep running: the resolved projectile must not score again.
	ts.RunFrames(120)
	if got := ts.State().Score; got != 2 {
		dumpLog(t, ts)
		t.Fatalf("score changed after the projectile resolved: %d", got)
	}
}

// --- Scenario: ten misses advance to the first beam level ---

func TestScenario_TenMissesAdvanceLevel(t *testing.T) {
	ts := NewTestSim(
		WithAutofire(0),
		WithTargetAt(0, 0, -2),
		WithHeadPose(PoseFromYawPitch(180, 0)),
	)
	ts.RunFrames(1)

	for i := 0; i < 10; i++ {
		ts.Trigger()
		if ts.Session.Projectile.Out {
			t.Fatalf("throw %d did not launch", i)
		}
		if f := ts.RunUntil(func(ts *TestSim) bool { return ts.Session.Projectile.Out }, 120); f < 0 {
			t.Fatalf("throw %d never resolved", i)
		}
	}

	st := ts.State()
	if st.Mode != ModeBeam {
		t.Fatalf("expected mode %d after 10 misses, got %d", ModeBeam, st.Mode)
	}
	if st.Shots != 10 {
		t.Fatalf("shots should reset to 10 on level change, got %d", st.Shots)
	}
	if st.Score != -20 {
		t.Fatalf("expected score -20 (double decrement per miss), got %d", st.Score)
	}
	if n := ts.SimLog.CountCategory("score", "miss"); n != 10 {
		t.Fatalf("expected 10 miss events, got %d", n)
	}
	if !strings.Contains(ts.Session.Sign.Text, "Level 2") {
		t.Fatalf("expected a Level 2 message, got %q", ts.Session.Sign.Text)
	}
	if !ts.SimLog.HasEntry("state", "level", "level 2") {
		t.Fatal("level change not logged")
	}
}

// --- Scenario: unanswered beam times out ---

func TestScenario_BeamTimesOut(t *testing.T) {
	ts := NewTestSim(WithAutofire(0), WithMode(ModeBeam), WithTargetAt(0, 0, 3))
	ts.RunFrames(1)
	ts.Trigger()
	if !ts.Session.Beam.Firing {
		t.Fatal("trigger in beam mode should start firing")
	}
	if got := ts.State().Shots; got != 9 {
		t.Fatalf("firing should consume a shot, got %d left", got)
	}

	ts.RunFrames(37)
	if !ts.Session.Beam.Firing {
		t.Fatalf("beam stopped early at distance %.2f", ts.Session.Beam.Distance)
	}
	ts.RunFrames(1)
	if ts.Session.Beam.Firing {
		t.Fatal("beam should stop once travel exceeds 15")
	}
	if ts.Session.Beam.Distance != 0 {
		t.Fatalf("distance should reset, got %.2f", ts.Session.Beam.Distance)
	}
	if got := ts.State().Score; got != -2 {
		t.Fatalf("expected -2 for an unanswered beam, got %d", got)
	}
	if n := ts.SimLog.CountCategory("score", "beam_timeout"); n != 1 {
		t.Fatalf("expected one timeout event, got %d", n)
	}
}

func TestScenario_BeamTriggerWhileFiringIgnored(t *testing.T) {
	ts := NewTestSim(WithAutofire(0), WithMode(ModeBeam), WithTargetAt(0, 0, 3))
	ts.RunFrames(1)
	ts.Trigger()
	ts.RunFrames(5)
	ts.Trigger()
	ts.Trigger()
	if got := ts.State().Shots; got != 9 {
		t.Fatalf("triggers while firing must not consume shots, got %d left", got)
	}
	if len(ts.Pulses) != 3 {
		t.Fatalf("every trigger pull should pulse, got %d pulses", len(ts.Pulses))
	}
}

// --- Scenario: aimed beam scores ---

func TestScenario_AimedBeamHits(t *testing.T) {
	target := vmath.V3(0.5, 0.3, -3)
	ts := NewTestSim(WithAutofire(0), WithMode(ModeBeam), WithTargetAt(target.X, target.Y, target.Z))
	if !ts.AimBeamAt(target) {
		t.Fatal("could not aim at target")
	}
	ts.Trigger()
	hitFrame := ts.RunUntil(func(ts *TestSim) bool { return ts.Session.Beam.Hit }, 40)
	if hitFrame < 0 {
		dumpLog(t, ts)
		t.Fatal("aimed beam never hit")
	}
	if got := ts.State().Score; got != 2 {
		t.Fatalf("expected +2 for a beam hit, got %d", got)
	}
	// The beam front has to reach the target before the hit counts.
	if d := ts.Session.Beam.Distance; d < 2.5 {
		t.Fatalf("hit registered before the beam travelled far enough: %.2f", d)
	}

	ts.RunFrames(1)
	sc := ts.Session.Scene()
	if !sc.FlareVisible {
		t.Fatal("flare should be visible the frame after a hit")
	}
	if sc.FlareRadius <= 0 || sc.FlareRadius > 1 {
		t.Fatalf("flare radius out of range: %.3f", sc.FlareRadius)
	}

	ts.RunFrames(40)
	if n := ts.SimLog.CountCategory("score", "beam_timeout"); n != 0 {
		t.Fatalf("a beam that hit must not time out with a penalty, got %d", n)
	}
	if ts.State().Score < 2 {
		t.Fatalf("score dropped after a hit: %d", ts.State().Score)
	}
}

func TestScenario_BeamScoresOncePerFiring(t *testing.T) {
	ts := NewTestSim(WithAutofire(0), WithMode(ModeBeam), WithTargetAt(0.5, 0.3, -3))
	if !ts.AimBeamAt(vmath.V3(0.5, 0.3, -3)) {
		t.Fatal("could not aim at target")
	}
	ts.Trigger()
	// Long enough for the beam to exhaust its travel past the re-placed target.
	ts.RunFrames(60)

	if n := ts.SimLog.CountCategory("score", "beam_hit"); n != 1 {
		dumpLog(t, ts)
		t.Fatalf("one firing must score at most once, got %d beam hits", n)
	}
	st := ts.State()
	if st.Score != 2 || st.Shots != 9 {
		t.Fatalf("expected score 2 with 9 shots left, got %+v", st)
	}
	hit, _ := ts.SimLog.LastOf("score", "beam_hit")
	if ts.Session.Flare.StartFrame != hit.Tick {
		t.Fatalf("flare restarted at %d, hit was at %d", ts.Session.Flare.StartFrame, hit.Tick)
	}
	if n := ts.SimLog.CountCategory("score", "beam_timeout"); n != 0 {
		t.Fatalf("a beam that hit must not time out, got %d", n)
	}
}

// --- Scenario: game over and reset ---

func TestScenario_GameOverThenReset(t *testing.T) {
	ts := NewTestSim(WithAutofire(0), WithMode(4), WithShots(1), WithTargetAt(0, 0, 3))
	ts.RunFrames(1)
	ts.Trigger()
	ts.RunFrames(38)

	st := ts.State()
	if st.Mode != ModeGameOver {
		t.Fatalf("expected game over, got mode %d", st.Mode)
	}
	if !strings.Contains(ts.Session.Sign.Text, "Game Over") {
		t.Fatalf("expected game over message, got %q", ts.Session.Sign.Text)
	}
	if ts.Session.Sign.FadeFrame-st.Frame != 625 {
		t.Fatalf("game over message should last 10s, fade in %d frames", ts.Session.Sign.FadeFrame-st.Frame)
	}
	if ts.Session.Scene().TargetVisible {
		t.Fatal("target should be hidden on the game over screen")
	}

	ts.Trigger()
	st = ts.State()
	if st.Mode != ModeThrow || st.Shots != 10 || st.Score != 0 {
		t.Fatalf("trigger on game over should reset, got %+v", st)
	}
	if len(ts.Pulses) != 2 {
		t.Fatalf("expected 2 haptic pulses, got %d", len(ts.Pulses))
	}
}

func TestScenario_TriggerWhileInFlight(t *testing.T) {
	ts := NewTestSim(WithAutofire(0), WithTargetAt(0, 0, 3))
	ts.RunFrames(1)
	ts.Trigger()
	ts.RunFrames(2)
	ts.Trigger()
	ts.Trigger()

	if got := ts.State().Shots; got != 9 {
		t.Fatalf("only the first trigger should throw, %d shots left", got)
	}
	if len(ts.Pulses) != 3 {
		t.Fatalf("expected a pulse per trigger pull, got %d", len(ts.Pulses))
	}
	for i, d := range ts.Pulses {
		if d != hapticPulse {
			t.Fatalf("pulse %d lasted %v, want %v", i, d, hapticPulse)
		}
	}
}

func TestScenario_Autofire(t *testing.T) {
	ts := NewTestSim()
	ts.RunFrames(1)
	if !ts.Session.Projectile.Out {
		t.Fatal("nothing should be in flight before the autofire frame")
	}
	ts.RunFrames(1)
	if ts.Session.Projectile.Out {
		t.Fatal("autofire should launch on frame 2")
	}
	if got := ts.State().Shots; got != 9 {
		t.Fatalf("autofire consumes a shot, got %d", got)
	}
	ts.RunFrames(200)
	if n := ts.SimLog.CountCategory("throw", "autofire"); n != 1 {
		t.Fatalf("autofire should happen exactly once, got %d", n)
	}
	if len(ts.Pulses) != 0 {
		t.Fatal("autofire must not pulse the haptics")
	}
}

func TestScenario_TrafficThrowScores(t *testing.T) {
	target := vmath.V3(0.3, 0.2, -2.5)
	ts := NewTestSim(WithVariant(true), WithSeed(7), WithTargetAt(target.X, target.Y, target.Z))
	pose, miss := AimThrow(ThrowForward, target)
	if miss > projectileHitTolerance {
		t.Fatalf("aim search found no scoring throw, best miss %.3f", miss)
	}
	ts.SetPose(pose)
	ts.RunFrames(1)
	ts.Trigger()
	if f := ts.RunUntil(func(ts *TestSim) bool { return ts.Session.Projectile.Out }, 200); f < 0 {
		t.Fatal("throw never resolved")
	}
	if n := ts.SimLog.CountCategory("score", "hit"); n != 1 {
		dumpLog(t, ts)
		t.Fatalf("expected the aimed throw to hit, got %d hits", n)
	}
}
