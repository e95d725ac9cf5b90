package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-play reports (~10s at 60TPS).
const reportWindowTicks = 600

// SessionSnapshot captures the session at one frame.
type SessionSnapshot struct {
	Tick  int
	Mode  int
	Score int
	Shots int

	TargetDistance float64 // distance from the eye to the target centre
	TargetSpeed    float64
	InFlight       bool // a thrown projectile has not yet resolved
	BeamFiring     bool

	// Cumulative event counts up to this frame.
	ThrowHits, ThrowMisses int
	BeamHits, BeamTimeouts int
	Throws, Beams          int
}

// SessionReporter collects periodic snapshots of a session and summarises
// them over a sliding window.
type SessionReporter struct {
	history     []SessionSnapshot
	windowTicks int
}

// NewSessionReporter creates a reporter with the given window size.
func NewSessionReporter(windowTicks int) *SessionReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SessionReporter{windowTicks: windowTicks}
}

// Collect gathers a snapshot from the current session state.
// Call this periodically (e.g. every 60 ticks / 1s).
func (r *SessionReporter) Collect(s *Session) {
	sl := s.SimLog
	snap := SessionSnapshot{
		Tick:           s.State.Frame,
		Mode:           s.State.Mode,
		Score:          s.State.Score,
		Shots:          s.State.Shots,
		TargetDistance: s.Target.Position.Len(),
		TargetSpeed:    s.Target.Velocity.Len(),
		InFlight:       !s.Projectile.Out,
		BeamFiring:     s.Beam.Firing,
		ThrowHits:      sl.CountCategory("score", "hit"),
		ThrowMisses:    sl.CountCategory("score", "miss"),
		BeamHits:       sl.CountCategory("score", "beam_hit"),
		BeamTimeouts:   sl.CountCategory("score", "beam_timeout"),
		Throws:         sl.CountCategory("throw", ""),
		Beams:          sl.CountCategory("beam", "fire"),
	}
	r.history = append(r.history, snap)

	// Prune old history beyond 2x window to prevent unbounded growth.
	maxKeep := r.windowTicks / 60 * 2
	if maxKeep < 100 {
		maxKeep = 100
	}
	if len(r.history) > maxKeep {
		r.history = r.history[len(r.history)-maxKeep:]
	}
}

// Latest returns the most recent snapshot, or nil.
func (r *SessionReporter) Latest() *SessionSnapshot {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all retained snapshots.
func (r *SessionReporter) History() []SessionSnapshot {
	return r.history
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	ScoreDelta int
	ModeFrom   int
	ModeTo     int

	Hits, Misses int
	Accuracy     float64 // hits / (hits+misses), 0..1

	AvgTargetDistance float64
	AvgTargetSpeed    float64
	PctInFlight       float64
	PctBeamFiring     float64
}

// WindowSummary aggregates the snapshots inside the recent window.
func (r *SessionReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []SessionSnapshot
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}

	first, last := window[len(window)-1], window[0]
	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    first.Tick,
		ToTick:      last.Tick,
		SampleCount: len(window),
		ScoreDelta:  last.Score - first.Score,
		ModeFrom:    first.Mode,
		ModeTo:      last.Mode,
		Hits:        (last.ThrowHits + last.BeamHits) - (first.ThrowHits + first.BeamHits),
		Misses:      (last.ThrowMisses + last.BeamTimeouts) - (first.ThrowMisses + first.BeamTimeouts),
	}
	for _, s := range window {
		wr.AvgTargetDistance += s.TargetDistance
		wr.AvgTargetSpeed += s.TargetSpeed
		if s.InFlight {
			wr.PctInFlight++
		}
		if s.BeamFiring {
			wr.PctBeamFiring++
		}
	}
	wr.AvgTargetDistance /= n
	wr.AvgTargetSpeed /= n
	wr.PctInFlight = wr.PctInFlight / n * 100
	wr.PctBeamFiring = wr.PctBeamFiring / n * 100
	if total := wr.Hits + wr.Misses; total > 0 {
		wr.Accuracy = float64(wr.Hits) / float64(total)
	}
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Play Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)
	fmt.Fprintf(&sb, "  mode %d -> %d   score %+d\n", wr.ModeFrom, wr.ModeTo, wr.ScoreDelta)
	fmt.Fprintf(&sb, "  hits=%d misses=%d accuracy=%.0f%% (%s)\n",
		wr.Hits, wr.Misses, wr.Accuracy*100, accuracyLabel(wr.Accuracy, wr.Hits+wr.Misses))
	fmt.Fprintf(&sb, "  target: avg distance=%.2f avg speed=%.2f\n", wr.AvgTargetDistance, wr.AvgTargetSpeed)
	fmt.Fprintf(&sb, "  projectile in flight %.0f%%  beam firing %.0f%%\n", wr.PctInFlight, wr.PctBeamFiring)
	return sb.String()
}

func accuracyLabel(acc float64, shots int) string {
	switch {
	case shots == 0:
		return "no shots"
	case acc > 0.75:
		return "sharp"
	case acc > 0.4:
		return "steady"
	case acc > 0.1:
		return "wild"
	default:
		return "blind"
	}
}

// FormatLatest returns a concise snapshot of the most recent collected report.
func (r *SessionReporter) FormatLatest() string {
	s := r.Latest()
	if s == nil {
		return "No data.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d ---\n", s.Tick)
	fmt.Fprintf(&sb, "mode=%d score=%d shots=%d\n", s.Mode, s.Score, s.Shots)
	fmt.Fprintf(&sb, "throws=%d hits=%d misses=%d  beams=%d hits=%d timeouts=%d\n",
		s.Throws, s.ThrowHits, s.ThrowMisses, s.Beams, s.BeamHits, s.BeamTimeouts)
	fmt.Fprintf(&sb, "target dist=%.2f speed=%.2f in_flight=%v firing=%v\n",
		s.TargetDistance, s.TargetSpeed, s.InFlight, s.BeamFiring)
	return sb.String()
}
