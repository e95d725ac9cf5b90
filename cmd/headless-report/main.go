package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/Garsondee/vr-targets/internal/game"
	"github.com/Garsondee/vr-targets/internal/render"
	"github.com/Garsondee/vr-targets/internal/vmath"
)

type runStats struct {
	runIndex int
	seed     int64
	frames   int

	final game.GameState

	firstHitTick      int
	firstBeamHitTick  int
	firstLevelTick    int
	gameOverTick      int
	throwHits         int
	throwMisses       int
	beamHits          int
	beamTimeouts      int
	refineFailures    int
	triggers          int
	levelsReached     map[int]struct{}
	captureFrames     int
	aimFailures       int
	windowSummary     *game.WindowReport
	latestSnapshotFmt string
}

type runOptions struct {
	variant       string
	frames        int
	jitterDeg     float64
	captureDir    string
	captureFormat string
	captureFrames int
	captureWidth  int
	captureHeight int
}

func main() {
	var runs int
	var seedBase int64
	var seedStep int64
	var opts runOptions

	flag.IntVar(&runs, "runs", 5, "number of headless sessions")
	flag.IntVar(&opts.frames, "frames", 3600, "frames per run")
	flag.Int64Var(&seedBase, "seed-base", 1, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&opts.variant, "variant", "targetvr", "game variant (targetvr, trafficvr)")
	flag.Float64Var(&opts.jitterDeg, "jitter", 1.5, "max aim error of the scripted player in degrees")
	flag.StringVar(&opts.captureDir, "capture-dir", "", "write the panorama capture of run 1 into this directory")
	flag.StringVar(&opts.captureFormat, "capture-format", "png", "capture image format (png, bmp, tiff)")
	flag.IntVar(&opts.captureFrames, "capture-frames", 0, "frames to capture (0 = variant default, min 1)")
	flag.IntVar(&opts.captureWidth, "capture-width", 0, "capture width (0 = variant default)")
	flag.IntVar(&opts.captureHeight, "capture-height", 0, "capture height (0 = variant default)")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if opts.frames <= 0 {
		fmt.Println("error: -frames must be > 0")
		return
	}
	if _, err := game.ConfigFor(opts.variant); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless Session Report ===\n")
	fmt.Printf("variant=%s runs=%d frames=%d seed_base=%d seed_step=%d jitter=%.1f\n\n",
		opts.variant, runs, opts.frames, seedBase, seedStep, opts.jitterDeg)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		o := opts
		if i > 0 {
			o.captureDir = ""
		}
		stats, err := runSession(i+1, seed, o)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			return
		}
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

// runSession plays one seeded session with a scripted player that aims at
// the current target and pulls the trigger whenever a shot is available.
func runSession(runIndex int, seed int64, o runOptions) (runStats, error) {
	cfg, err := game.ConfigFor(o.variant)
	if err != nil {
		return runStats{}, err
	}
	cfg.Seed = seed
	ts := game.NewTestSim(game.WithConfig(cfg))
	rng := rand.New(rand.NewSource(seed * 7919)) // #nosec G404 -- scripted aim noise

	var sink *render.DirSink
	if o.captureDir != "" {
		sink, err = attachCapture(ts.Session, o)
		if err != nil {
			return runStats{}, err
		}
	}

	rs := runStats{runIndex: runIndex, seed: seed, levelsReached: map[int]struct{}{}}
	reporter := game.NewSessionReporter(0)
	for ts.Session.State.Frame < o.frames {
		st := ts.State()
		if st.Mode == game.ModeGameOver {
			break
		}
		rs.levelsReached[st.Mode] = struct{}{}
		if ready(ts.Session) {
			if !aim(ts, rng, o.jitterDeg) {
				rs.aimFailures++
			}
			ts.RunFrames(1)
			ts.Trigger()
			rs.triggers++
		}
		ts.RunFrames(1)
		if ts.Session.State.Frame%60 == 0 {
			reporter.Collect(ts.Session)
		}
	}
	reporter.Collect(ts.Session)

	sl := ts.SimLog
	entries := sl.Entries()
	rs.frames = ts.Session.State.Frame
	rs.final = ts.State()
	rs.firstHitTick = firstTick(entries, "score", "hit", "")
	rs.firstBeamHitTick = firstTick(entries, "score", "beam_hit", "")
	rs.firstLevelTick = firstTick(entries, "state", "level", "")
	rs.gameOverTick = firstTick(entries, "state", "game_over", "")
	rs.throwHits = sl.CountCategory("score", "hit")
	rs.throwMisses = sl.CountCategory("score", "miss")
	rs.beamHits = sl.CountCategory("score", "beam_hit")
	rs.beamTimeouts = sl.CountCategory("score", "beam_timeout")
	rs.refineFailures = sl.CountCategory("beam", "refine_failed")
	rs.windowSummary = reporter.WindowSummary()
	rs.latestSnapshotFmt = reporter.FormatLatest()
	if sink != nil {
		rs.captureFrames = sink.Frames()
	}
	return rs, nil
}

// ready reports whether a trigger pull now would consume a shot.
func ready(s *game.Session) bool {
	if s.State.Shots <= 0 || !s.Projectile.Out {
		return false
	}
	if s.State.Mode >= game.ModeBeam {
		return !s.Beam.Firing
	}
	return s.State.Mode == game.ModeThrow
}

// aim points the scripted head at the target and perturbs it by up to
// jitterDeg on each axis.
func aim(ts *game.TestSim, rng *rand.Rand, jitterDeg float64) bool {
	s := ts.Session
	var pose game.HeadPose
	ok := true
	if s.State.Mode >= game.ModeBeam {
		pose, ok = game.AimBeam(s.Target.Position)
	} else {
		pose, _ = game.AimThrow(s.Config().Throw, s.Target.Position)
	}
	if !ok {
		return false
	}
	if jitterDeg > 0 {
		jx := (rng.Float64()*2 - 1) * jitterDeg
		jy := (rng.Float64()*2 - 1) * jitterDeg
		pose = game.PoseFromView(vmath.Rotation(jx, 1, 0, 0).Mul(vmath.Rotation(jy, 0, 1, 0)).Mul(pose.View))
	}
	ts.SetPose(pose)
	return true
}

func attachCapture(s *game.Session, o runOptions) (*render.DirSink, error) {
	cfg := s.Config()
	frames := firstPositive(o.captureFrames, cfg.CaptureFrames, 1)
	w := firstPositive(o.captureWidth, cfg.CaptureWidth, 1920)
	h := firstPositive(o.captureHeight, cfg.CaptureHeight, 1080)
	pano, err := game.NewPanorama(w, h, s.Camera(), render.NewRaycaster())
	if err != nil {
		return nil, err
	}
	sink, err := render.NewDirSink(o.captureDir, o.captureFormat)
	if err != nil {
		return nil, err
	}
	if err := s.AttachRecorder(game.NewRecorder(pano, sink, frames)); err != nil {
		return nil, err
	}
	return sink, nil
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("final: frame=%d mode=%d score=%d shots=%d outcome=%s\n",
		rs.frames, rs.final.Mode, rs.final.Score, rs.final.Shots, outcome(rs))
	fmt.Printf("phase_markers: first_hit=%d first_level=%d first_beam_hit=%d game_over=%d\n",
		rs.firstHitTick, rs.firstLevelTick, rs.firstBeamHitTick, rs.gameOverTick)
	fmt.Printf("shots: triggers=%d throw_hits=%d throw_misses=%d beam_hits=%d beam_timeouts=%d accuracy=%.0f%%\n",
		rs.triggers, rs.throwHits, rs.throwMisses, rs.beamHits, rs.beamTimeouts,
		accuracy(rs.throwHits+rs.beamHits, rs.throwMisses+rs.beamTimeouts)*100)
	fmt.Printf("levels_reached: %s\n", joinLevels(rs.levelsReached))
	if rs.refineFailures > 0 || rs.aimFailures > 0 {
		fmt.Printf("warnings: refine_failed=%d aim_failed=%d\n", rs.refineFailures, rs.aimFailures)
	}
	if rs.captureFrames > 0 {
		fmt.Printf("capture: %d frame(s) written\n", rs.captureFrames)
	}
	if rs.windowSummary != nil {
		fmt.Print(rs.windowSummary.Format())
	}
	fmt.Print(rs.latestSnapshotFmt)
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalHits := 0
	totalMisses := 0
	totalScore := 0
	totalTriggers := 0
	completed := 0
	totalRefine := 0

	hitTicks := make([]int, 0, len(all))
	levelTicks := make([]int, 0, len(all))
	beamTicks := make([]int, 0, len(all))
	overTicks := make([]int, 0, len(all))
	levelCounts := map[int]int{}

	for _, rs := range all {
		totalHits += rs.throwHits + rs.beamHits
		totalMisses += rs.throwMisses + rs.beamTimeouts
		totalScore += rs.final.Score
		totalTriggers += rs.triggers
		totalRefine += rs.refineFailures
		if rs.gameOverTick >= 0 {
			completed++
			overTicks = append(overTicks, rs.gameOverTick)
		}
		if rs.firstHitTick >= 0 {
			hitTicks = append(hitTicks, rs.firstHitTick)
		}
		if rs.firstLevelTick >= 0 {
			levelTicks = append(levelTicks, rs.firstLevelTick)
		}
		if rs.firstBeamHitTick >= 0 {
			beamTicks = append(beamTicks, rs.firstBeamHitTick)
		}
		for m := range rs.levelsReached {
			levelCounts[m]++
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d completed=%d\n", len(all), completed)
	fmt.Printf("avg_per_run: score=%.1f triggers=%.1f hits=%.1f misses=%.1f refine_failed=%.1f\n",
		avg(totalScore, len(all)), avg(totalTriggers, len(all)), avg(totalHits, len(all)), avg(totalMisses, len(all)), avg(totalRefine, len(all)))
	fmt.Printf("accuracy=%.0f%%\n", accuracy(totalHits, totalMisses)*100)
	fmt.Printf("phase_marker_avg_ticks: first_hit=%s first_level=%s first_beam_hit=%s game_over=%s\n",
		avgTickString(hitTicks), avgTickString(levelTicks), avgTickString(beamTicks), avgTickString(overTicks))

	modes := make([]int, 0, len(levelCounts))
	for m := range levelCounts {
		modes = append(modes, m)
	}
	sort.Ints(modes)
	for _, m := range modes {
		fmt.Printf("  level %d reached in %d/%d runs\n", m, levelCounts[m], len(all))
	}
}

// outcome classifies how a run ended.
func outcome(rs runStats) string {
	switch {
	case rs.gameOverTick >= 0:
		return "game_over"
	case rs.triggers == 0:
		return "idle"
	case rs.final.Mode >= game.ModeBeam:
		return "beam_levels"
	default:
		return "throwing"
	}
}

func accuracy(hits, misses int) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinLevels(s map[int]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	levels := make([]int, 0, len(s))
	for k := range s {
		levels = append(levels, k)
	}
	sort.Ints(levels)
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ",")
}
