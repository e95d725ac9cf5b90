package game

import (
	"fmt"
	"strings"
)

// DebugReport renders the last lastTicks frames of the event log plus the
// current state as plain text. The desktop viewer copies it to the clipboard.
func (s *Session) DebugReport(lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 600
	}
	toTick := s.State.Frame
	fromTick := toTick - lastTicks + 1
	if fromTick < 0 {
		fromTick = 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s debug report ---\n", s.cfg.Name)
	fmt.Fprintf(&b, "seed=%d tick_range=[%d..%d] ticks=%d\n", s.cfg.Seed, fromTick, toTick, toTick-fromTick+1)
	fmt.Fprintf(&b, "mode=%d score=%d shots=%d firing=%v dist=%.1f in_flight=%v\n",
		s.State.Mode, s.State.Score, s.State.Shots, s.Beam.Firing, s.Beam.Distance, !s.Projectile.Out)
	fmt.Fprintf(&b, "target pos=%s vel=%s acc=%s\n\n",
		fmtVec(s.Target.Position), fmtVec(s.Target.Velocity), fmtVec(s.Target.Acceleration))

	entries := s.SimLog.FormatRange(fromTick, toTick)
	stages := buildStages(s.SimLog.Entries(), fromTick, toTick)
	b.WriteString("stages:\n")
	for i, st := range stages {
		fmt.Fprintf(&b, "  %02d) T=%d..%d mode=%d events=%d score %+d\n",
			i+1, st.startTick, st.endTick, st.mode, st.events, st.scoreDelta)
	}
	b.WriteString("\nactors:\n")
	for _, a := range reportActors {
		n, last := 0, -1
		for _, e := range s.SimLog.FilterActor(a) {
			if e.Tick >= fromTick && e.Tick <= toTick {
				n++
				last = e.Tick
			}
		}
		if n > 0 {
			fmt.Fprintf(&b, "  %-6s events=%d last=T%d\n", a, n, last)
		}
	}
	b.WriteString("\nevents:\n")
	if entries == "" {
		b.WriteString("(no events recorded yet)\n")
	}
	b.WriteString(entries)
	return b.String()
}

// reportActors are the SimLog actor labels, in report order.
var reportActors = []string{"player", "proj", "beam", "target", "--"}

// reportStage is a run of frames spent at one mode.
type reportStage struct {
	startTick, endTick int
	mode               int
	events             int
	scoreDelta         int
}

// buildStages splits the log on reset, level and game-over transitions.
func buildStages(entries []SimLogEntry, fromTick, toTick int) []reportStage {
	var stages []reportStage
	cur := reportStage{startTick: fromTick, endTick: fromTick, mode: -1}
	for _, e := range entries {
		if e.Tick < fromTick || e.Tick > toTick {
			continue
		}
		if e.Category == "state" {
			if cur.events > 0 {
				stages = append(stages, cur)
			}
			cur = reportStage{startTick: e.Tick, endTick: e.Tick, mode: stageMode(e)}
		}
		cur.events++
		cur.endTick = e.Tick
		if e.Category == "score" && e.Key == "delta" {
			cur.scoreDelta += int(e.NumVal)
		}
	}
	if cur.events > 0 {
		stages = append(stages, cur)
	}
	return stages
}

func stageMode(e SimLogEntry) int {
	switch e.Key {
	case "level":
		return int(e.NumVal)
	case "game_over":
		return ModeGameOver
	default:
		return ModeThrow
	}
}
