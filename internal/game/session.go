package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/Garsondee/vr-targets/internal/vmath"
)

// ErrRecorderAttached is returned when a second capture sink is attached.
var ErrRecorderAttached = errors.New("capture recorder already attached")

// Haptics receives the fixed-length pulse issued on every trigger pull.
type Haptics interface {
	Pulse(d time.Duration)
}

// Overlay regenerates the sign and reticle bitmaps off the update thread.
// Poll is called once per frame and must never block; it reports whether a
// new sign bitmap was uploaded.
type Overlay interface {
	ShowMessage(text string, d time.Duration)
	RequestReticle(kind int)
	Poll() (signUploaded bool)
}

// Session owns all per-game state and advances it one displayed frame at a
// time. It is not safe for concurrent use: hosts deliver trigger events on
// the same goroutine that calls Frame.
type Session struct {
	cfg Config
	rng *rand.Rand

	State      GameState
	Target     TargetCube
	Projectile Projectile
	Beam       Beam
	Flare      Marker
	Reticle    Marker
	Sign       Sign

	camera  vmath.Mat4
	floor   vmath.Mat4
	head    HeadPose
	invHead vmath.Mat4

	SimLog   *SimLog
	Messages *MessageLog

	// sweep evaluates the beam each frame; EvaluateBeam outside tests.
	sweep func(origin vmath.Mat4, distance float64, target vmath.Vec3) BeamHit

	haptics  Haptics
	overlay  Overlay
	recorder *Recorder

	// Fatalf terminates on broken setup invariants. Defaults to log.Fatalf.
	Fatalf func(format string, args ...any)
}

// NewSession builds a session in its starting state: shots and mode reset,
// target placed, welcome message queued.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", cfg.Name, err)
	}
	camera, _ := vmath.LookAt(vmath.V3(0, 0, 0.01), vmath.V3(0, 0, 0), vmath.V3(0, 1, 0))
	s := &Session{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(cfg.Seed)), // #nosec G404 -- gameplay only
		camera:   camera,
		floor:    vmath.Translation(0, FloorY, 0),
		head:     IdentityPose(),
		invHead:  vmath.Identity(),
		SimLog:   NewSimLog(false),
		Messages: NewMessageLog(),
		sweep:    EvaluateBeam,
		Fatalf:   log.Fatalf,
	}
	s.Projectile = Projectile{
		Position: vmath.V4(1, 0, 0, 1),
		Velocity: vmath.V4(1, 1, 0, 0),
		Spin:     vmath.Identity(),
		Out:      true,
	}
	s.Beam.Origin = vmath.Identity()
	s.Flare.StartFrame = -flareFrames
	s.Reticle.Transform = vmath.Identity()
	s.Sign.FadeFrame = -200
	s.Reset()
	s.hideObject()
	s.toast(welcomeMessage, toastWelcome)
	return s, nil
}

// Config returns the variant configuration.
func (s *Session) Config() Config { return s.cfg }

// Camera returns the fixed base camera transform.
func (s *Session) Camera() vmath.Mat4 { return s.camera }

// Head returns the most recent head pose.
func (s *Session) Head() HeadPose { return s.head }

// AttachHaptics sets the vibration sink.
func (s *Session) AttachHaptics(h Haptics) { s.haptics = h }

// AttachOverlay sets the background texture producer and requests the
// initial reticle bitmap. The pending welcome message is re-sent so the sign
// has a bitmap to show.
func (s *Session) AttachOverlay(o Overlay) {
	s.overlay = o
	if o == nil {
		return
	}
	o.RequestReticle(1)
	s.Sign.Ready = false
	o.ShowMessage(s.Sign.Text, time.Duration(s.Sign.FadeFrame-s.State.Frame)*16*time.Millisecond)
}

// AttachRecorder installs the panorama capture pipeline. A second attach is a
// setup error and is fatal.
func (s *Session) AttachRecorder(r *Recorder) error {
	if s.recorder != nil {
		s.Fatalf("attach recorder: %v", ErrRecorderAttached)
		return ErrRecorderAttached
	}
	s.recorder = r
	return nil
}

// Frame advances the session by one displayed frame using the given head pose.
// Order: beam travel, physics, hit-testing, texture handoff, autofire, capture.
func (s *Session) Frame(pose HeadPose) {
	s.State.Frame++
	s.advanceBeam()

	s.head = pose
	if inv, ok := pose.View.Invert(); ok {
		s.invHead = inv
	}
	s.stepPhysics()
	s.stepBeam()

	if s.overlay != nil && s.overlay.Poll() {
		s.Sign.Ready = true
	}

	s.autofire()

	if s.recorder != nil && !s.recorder.Done() {
		if s.State.Frame <= s.recorder.frames {
			s.SimLog.Add(s.State.Frame, "--", "capture", "frame", PresentationTime(s.State.Frame).String(), float64(s.State.Frame))
		}
		if err := s.recorder.Step(s.State.Frame, s.Scene()); err != nil {
			s.SimLog.Add(s.State.Frame, "--", "capture", "error", err.Error(), 0)
			s.Fatalf("capture frame %d: %v", s.State.Frame, err)
		}
	}
}

func fmtVec(v vmath.Vec3) string {
	return fmt.Sprintf("(%.3f,%.3f,%.3f)", v.X, v.Y, v.Z)
}
