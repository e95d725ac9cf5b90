package game

import (
	"fmt"
	"time"

	"github.com/Garsondee/vr-targets/internal/vmath"
)

const (
	toastShort    = 1500 * time.Millisecond
	toastGameOver = 10 * time.Second
	toastWelcome  = 10 * time.Second
	hapticPulse   = 20 * time.Millisecond

	welcomeMessage = "Find the target cube then pull the magnet"
)

var (
	throwOrigin        = vmath.V4(0, -0.75, 0, 1)
	throwLocalVelocity = vmath.V4(0, 4, -8, 1)
)

// Reset restores the starting shots, mode and score.
func (s *Session) Reset() {
	s.State.Shots = s.cfg.ShotsPerLevel
	s.State.Mode = s.cfg.StartMode
	s.State.Score = 0
	s.SimLog.Add(s.State.Frame, "--", "state", "reset", fmt.Sprintf("mode=%d shots=%d", s.State.Mode, s.State.Shots), 0)
}

// shotFinished applies a score delta and advances the level once the shots
// for the current level are used up. Shots are consumed by the trigger, not here.
func (s *Session) shotFinished(delta int) {
	s.State.Score += delta
	msg := "You missed it.\n"
	if delta > 0 {
		msg = "You hit it.\n"
	}
	d := toastShort
	if s.State.Shots > 0 {
		msg += fmt.Sprintf("Score: %d\n%d Shots left", s.State.Score, s.State.Shots)
	} else {
		s.State.Mode++
		s.State.Shots = s.cfg.ShotsPerLevel
		if s.State.Mode == s.cfg.TerminalMode {
			msg += fmt.Sprintf("Game Over\nScore: %d", s.State.Score)
			d = toastGameOver
			s.State.Mode = ModeGameOver
			s.SimLog.Add(s.State.Frame, "--", "state", "game_over", fmt.Sprintf("score=%d", s.State.Score), float64(s.State.Score))
		} else {
			msg += fmt.Sprintf("Level %d\nScore: %d", s.State.Mode, s.State.Score)
			s.SimLog.Add(s.State.Frame, "--", "state", "level", fmt.Sprintf("level %d", s.State.Mode), float64(s.State.Mode))
		}
	}
	s.SimLog.Add(s.State.Frame, "--", "score", "delta", fmt.Sprintf("%+d → %d", delta, s.State.Score), float64(delta))
	s.toast(msg, d)
}

// Trigger handles one trigger pull. In throw mode it launches a projectile
// when none is in flight; on beam levels it starts the beam; on the game-over
// screen it resets. Every pull produces a haptic pulse.
func (s *Session) Trigger() {
	s.SimLog.Add(s.State.Frame, "player", "input", "trigger", fmt.Sprintf("mode=%d shots=%d", s.State.Mode, s.State.Shots), 0)
	switch {
	case s.State.Mode == ModeThrow:
		if s.Projectile.Out && s.State.Shots > 0 {
			s.throw()
			s.State.Shots--
		}
	case s.State.Mode >= ModeBeam:
		if s.Projectile.Out && s.State.Shots > 0 && !s.Beam.Firing {
			s.fire()
			s.State.Shots--
		}
	default:
		s.Reset()
	}
	if s.haptics != nil {
		s.haptics.Pulse(hapticPulse)
	}
}

// throw launches the projectile from just below the eye.
func (s *Session) throw() {
	vel := s.invHead.MulVec(throwLocalVelocity)
	if s.cfg.Throw == ThrowForward {
		vel = ThrowVelocity(ThrowForward, s.head)
	}
	s.launch(vel)
	s.SimLog.Add(s.State.Frame, "player", "throw", "launch", fmtVec(vel.XYZ()), vel.XYZ().Len())
}

func (s *Session) launch(vel vmath.Vec4) {
	s.Projectile.Position = throwOrigin
	s.Projectile.Velocity = vel
	s.Projectile.Out = false
}

// fire starts a beam episode anchored at the current head pose.
func (s *Session) fire() {
	s.Beam.Firing = true
	s.Beam.Hit = false
	s.Beam.Origin = s.invHead
	p1, p2 := BeamEndpoints(s.Beam.Origin)
	s.SimLog.Add(s.State.Frame, "player", "beam", "fire", fmtVec(p2.Sub(p1).Normalize()), 0)
}

// autofire performs one synthetic throw so the capture has something in flight.
func (s *Session) autofire() {
	if s.cfg.AutofireFrame <= 0 || s.State.Frame != s.cfg.AutofireFrame {
		return
	}
	s.launch(throwLocalVelocity)
	s.State.Shots--
	s.SimLog.Add(s.State.Frame, "player", "throw", "autofire", fmtVec(throwLocalVelocity.XYZ()), 0)
}

// toast queues a message for the sign quad.
func (s *Session) toast(msg string, d time.Duration) {
	s.Sign.Text = msg
	s.Sign.FadeFrame = s.State.Frame + int(d/time.Millisecond)/16
	if s.overlay == nil {
		s.Sign.Ready = true
	}
	s.Messages.Add(s.State.Frame, msg)
	if s.overlay != nil {
		s.overlay.ShowMessage(msg, d)
	}
}
