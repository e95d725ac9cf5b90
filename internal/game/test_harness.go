package game

import (
	"time"

	"github.com/Garsondee/vr-targets/internal/vmath"
)

// TestSim is a headless session harness used by tests and the headless
// report. It drives Session.Frame with a scripted head pose and records
// every haptic pulse.
type TestSim struct {
	Session *Session
	SimLog  *SimLog
	Pulses  []time.Duration
	Pose    HeadPose

	cfg     Config
	verbose bool
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptConfig  simOptionKind = iota // variant, seed, verbose: applied before the session exists
	simOptSession                      // mode, shots, target placement: applied to the live session
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithConfig replaces the whole variant configuration.
func WithConfig(cfg Config) SimOption {
	return SimOption{simOptConfig, func(ts *TestSim) { ts.cfg = cfg }}
}

// WithVariant selects the TrafficVR configuration when traffic is true.
func WithVariant(traffic bool) SimOption {
	return SimOption{simOptConfig, func(ts *TestSim) {
		seed := ts.cfg.Seed
		if traffic {
			ts.cfg = TrafficVR()
		} else {
			ts.cfg = TargetVR()
		}
		ts.cfg.Seed = seed
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptConfig, func(ts *TestSim) { ts.cfg.Seed = seed }}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptConfig, func(ts *TestSim) { ts.verbose = v }}
}

// WithAutofire sets the autofire frame; 0 disables it.
func WithAutofire(frame int) SimOption {
	return SimOption{simOptConfig, func(ts *TestSim) { ts.cfg.AutofireFrame = frame }}
}

// WithMode forces the session mode.
func WithMode(mode int) SimOption {
	return SimOption{simOptSession, func(ts *TestSim) { ts.Session.State.Mode = mode }}
}

// WithShots forces the remaining shot count.
func WithShots(n int) SimOption {
	return SimOption{simOptSession, func(ts *TestSim) { ts.Session.State.Shots = n }}
}

// WithTargetAt pins a stationary target.
func WithTargetAt(x, y, z float64) SimOption {
	return SimOption{simOptSession, func(ts *TestSim) {
		ts.Session.Target = TargetCube{Position: vmath.V3(x, y, z)}
	}}
}

// WithTargetVelocity sets the target velocity (units per second).
func WithTargetVelocity(x, y, z float64) SimOption {
	return SimOption{simOptSession, func(ts *TestSim) {
		ts.Session.Target.Velocity = vmath.V3(x, y, z)
	}}
}

// WithHeadPose sets the initial head pose.
func WithHeadPose(p HeadPose) SimOption {
	return SimOption{simOptSession, func(ts *TestSim) { ts.Pose = p }}
}

// NewTestSim constructs a TestSim from the given options in two ordered passes:
//  1. Config (variant, seed, verbose, autofire)
//  2. Session state (mode, shots, target)
//
// It panics on an invalid configuration.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{cfg: TargetVR(), Pose: IdentityPose()}
	for _, o := range opts {
		if o.kind == simOptConfig {
			o.fn(ts)
		}
	}
	s, err := NewSession(ts.cfg)
	if err != nil {
		panic(err)
	}
	s.SimLog.SetVerbose(ts.verbose)
	s.AttachHaptics(ts)
	ts.Session = s
	ts.SimLog = s.SimLog
	for _, o := range opts {
		if o.kind == simOptSession {
			o.fn(ts)
		}
	}
	return ts
}

// Pulse implements Haptics.
func (ts *TestSim) Pulse(d time.Duration) { ts.Pulses = append(ts.Pulses, d) }

// SetPose changes the scripted head pose used by subsequent frames.
func (ts *TestSim) SetPose(p HeadPose) { ts.Pose = p }

// AimBeamAt points the head so the beam passes through p. The pose takes
// effect on the next frame, so one frame is run before returning.
func (ts *TestSim) AimBeamAt(p vmath.Vec3) bool {
	pose, ok := AimBeam(p)
	if ok {
		ts.SetPose(pose)
		ts.RunFrames(1)
	}
	return ok
}

// Trigger pulls the trigger between frames.
func (ts *TestSim) Trigger() { ts.Session.Trigger() }

// RunFrames advances the session n frames.
func (ts *TestSim) RunFrames(n int) {
	for i := 0; i < n; i++ {
		ts.Session.Frame(ts.Pose)
	}
}

// RunUntil advances up to maxFrames, stopping early if predicate returns
// true. Returns the frame at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxFrames int) int {
	for i := 0; i < maxFrames; i++ {
		ts.Session.Frame(ts.Pose)
		if predicate(ts) {
			return ts.Session.State.Frame
		}
	}
	return -1
}

// State returns the current score/shots/mode aggregate.
func (ts *TestSim) State() GameState { return ts.Session.State }
