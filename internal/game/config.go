package game

import (
	"fmt"
	"strings"
)

// Placement selects how hideObject chooses a new target position.
type Placement int

const (
	// PlacementSimple puts the target in a narrow fixed box straight ahead.
	PlacementSimple Placement = iota
	// PlacementRadial samples an azimuth, distance and height around the player.
	PlacementRadial
)

func (p Placement) String() string {
	if p == PlacementRadial {
		return "radial"
	}
	return "simple"
}

// ThrowStyle selects how the initial projectile velocity is derived from head tracking.
type ThrowStyle int

const (
	// ThrowHeadView transforms a fixed local velocity by the inverse head view.
	ThrowHeadView ThrowStyle = iota
	// ThrowForward builds the velocity from the tracker's forward vector.
	ThrowForward
)

func (t ThrowStyle) String() string {
	if t == ThrowForward {
		return "forward"
	}
	return "head-view"
}

// Config parameterises one game variant. The two shipped games only differ in
// these fields; everything else in the session is shared.
type Config struct {
	Name string

	ShotsPerLevel int // shots granted at start and on every level change
	StartMode     int // mode after reset (throw mode)
	TerminalMode  int // reaching this mode ends the game and wraps to 0

	// Target motion on repositioning: velocity is randomised once mode >=
	// VelocityFromMode, acceleration only at AccelMode.
	VelocityFromMode int
	AccelMode        int
	AccelMin         float64
	AccelMax         float64

	Placement Placement
	Throw     ThrowStyle

	// AutofireFrame performs one synthetic throw on that frame number. 0 disables.
	AutofireFrame int

	// Panorama capture: number of initial frames recorded and output size.
	CaptureFrames int
	CaptureWidth  int
	CaptureHeight int

	Seed int64
}

// TargetVR returns the configuration of the recording variant.
func TargetVR() Config {
	return Config{
		Name:             "targetvr",
		ShotsPerLevel:    10,
		StartMode:        1,
		TerminalMode:     5,
		VelocityFromMode: 3,
		AccelMode:        4,
		AccelMin:         -0.2,
		AccelMax:         0.2,
		Placement:        PlacementSimple,
		Throw:            ThrowHeadView,
		AutofireFrame:    2,
		CaptureFrames:    1,
		CaptureWidth:     1920,
		CaptureHeight:    1080,
		Seed:             1,
	}
}

// TrafficVR returns the configuration of the radial-placement variant.
func TrafficVR() Config {
	return Config{
		Name:             "trafficvr",
		ShotsPerLevel:    10,
		StartMode:        1,
		TerminalMode:     5,
		VelocityFromMode: 3,
		AccelMode:        4,
		AccelMin:         -0.8,
		AccelMax:         -0.4,
		Placement:        PlacementRadial,
		Throw:            ThrowForward,
		Seed:             1,
	}
}

// ConfigFor resolves a variant name.
func ConfigFor(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "targetvr", "target", "":
		return TargetVR(), nil
	case "trafficvr", "traffic":
		return TrafficVR(), nil
	default:
		return Config{}, fmt.Errorf("unknown variant %q (supported: targetvr, trafficvr)", name)
	}
}

// Validate reports configuration values the session cannot run with.
func (c Config) Validate() error {
	if c.ShotsPerLevel <= 0 {
		return fmt.Errorf("shots per level must be > 0, got %d", c.ShotsPerLevel)
	}
	if c.StartMode < 1 || c.StartMode >= c.TerminalMode {
		return fmt.Errorf("start mode %d must be in [1,%d)", c.StartMode, c.TerminalMode)
	}
	if c.AccelMax < c.AccelMin {
		return fmt.Errorf("accel range [%g,%g) is inverted", c.AccelMin, c.AccelMax)
	}
	if c.CaptureFrames < 0 {
		return fmt.Errorf("capture frames must be >= 0, got %d", c.CaptureFrames)
	}
	return nil
}
