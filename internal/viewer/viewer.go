// Package viewer is the desktop stereo front end: both eyes side by side,
// keyboard/mouse head tracking and trigger, and a message log panel.
package viewer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/vr-targets/internal/game"
	"github.com/Garsondee/vr-targets/internal/haptics"
	"github.com/Garsondee/vr-targets/internal/overlay"
	"github.com/Garsondee/vr-targets/internal/vmath"
)

const (
	eyeSize       = 640
	logPanelWidth = 320
	hudHeight     = 48

	viewerIPD     = 0.064
	viewerFOV     = 90
	viewerNear    = 0.1
	viewerFar     = 50
	turnRateDeg   = 1.5
	maxPitchDeg   = 85
	reportEvery   = 60
	reportWindow  = 600
	debugLastTick = 1200
)

var (
	bgColor        = color.RGBA{R: 12, G: 14, B: 18, A: 255}
	floorLineColor = color.RGBA{R: 70, G: 80, B: 70, A: 255}
	wallLineColor  = color.RGBA{R: 90, G: 110, B: 140, A: 255}
	targetLine     = color.RGBA{R: 230, G: 60, B: 60, A: 255}
	projectileLine = color.RGBA{R: 70, G: 130, B: 240, A: 255}
	beamLine       = color.RGBA{R: 250, G: 220, B: 80, A: 255}
	flareLine      = color.RGBA{R: 255, G: 170, B: 60, A: 255}
)

// Viewer implements ebiten.Game around one session.
type Viewer struct {
	session  *game.Session
	worker   *overlay.Worker
	speaker  *haptics.Speaker
	pulses   *haptics.Recorder
	reporter *game.SessionReporter
	cancel   context.CancelFunc

	signTex    *ebiten.Image
	reticleTex *ebiten.Image

	yaw, pitch    float64
	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool
	showHUD       bool
	status        string

	width, height int
	projection    vmath.Mat4
}

// New builds a viewer for the given variant configuration. Audio is optional:
// without a device the haptic buzz is silently dropped.
func New(cfg game.Config) (*Viewer, error) {
	s, err := game.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	v := &Viewer{
		session:    s,
		speaker:    haptics.NewSpeaker(),
		pulses:     &haptics.Recorder{},
		reporter:   game.NewSessionReporter(reportWindow),
		prevKeys:   make(map[ebiten.Key]bool),
		showHUD:    true,
		width:      eyeSize*2 + logPanelWidth,
		height:     eyeSize + hudHeight,
		projection: vmath.Perspective(viewerFOV, 1, viewerNear, viewerFar),
	}
	if err := v.speaker.Initialize(); err != nil {
		log.Printf("audio unavailable, haptic buzz disabled: %v", err)
	}
	s.AttachHaptics(haptics.Multi{v.speaker, v.pulses})

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.worker = overlay.NewWorker(v)
	v.worker.Start(ctx)
	s.AttachOverlay(v.worker)
	return v, nil
}

// Session exposes the running session, e.g. to attach a recorder.
func (v *Viewer) Session() *game.Session { return v.session }

// Close stops the overlay worker and audio.
func (v *Viewer) Close() {
	v.cancel()
	v.speaker.Close()
}

// UploadSign implements overlay.Uploader.
func (v *Viewer) UploadSign(img *image.RGBA) { v.signTex = upload(v.signTex, img) }

// UploadReticle implements overlay.Uploader.
func (v *Viewer) UploadReticle(img *image.RGBA) { v.reticleTex = upload(v.reticleTex, img) }

func upload(dst *ebiten.Image, img *image.RGBA) *ebiten.Image {
	b := img.Bounds()
	if dst == nil || dst.Bounds().Size() != b.Size() {
		dst = ebiten.NewImage(b.Dx(), b.Dy())
	}
	dst.WritePixels(img.Pix)
	return dst
}

// Update advances one session frame.
func (v *Viewer) Update() error {
	v.handleInput()
	v.session.Frame(game.PoseFromYawPitch(v.yaw, v.pitch))
	if v.session.State.Frame%reportEvery == 0 {
		v.reporter.Collect(v.session)
	}
	return nil
}

func (v *Viewer) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !v.prevKeys[k]
	}

	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.yaw += turnRateDeg
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.yaw -= turnRateDeg
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.pitch = min(v.pitch+turnRateDeg, maxPitchDeg)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.pitch = max(v.pitch-turnRateDeg, -maxPitchDeg)
	}

	if pressed(ebiten.KeySpace) {
		v.session.Trigger()
	}
	mouse := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if mouse && !v.prevMouseLeft {
		v.session.Trigger()
	}
	v.prevMouseLeft = mouse

	if pressed(ebiten.KeyR) {
		v.yaw, v.pitch = 0, 0
	}
	if pressed(ebiten.KeyH) {
		v.showHUD = !v.showHUD
	}
	if pressed(ebiten.KeyC) {
		v.copyReport()
	}
	v.prevKeys = currentKeys
}

// copyReport puts the debug report and play summary on the clipboard.
func (v *Viewer) copyReport() {
	text := v.session.DebugReport(debugLastTick) + "\n" + v.reporter.WindowSummary().Format()
	if err := clipboard.WriteAll(text); err != nil {
		v.status = "clipboard: " + err.Error()
		log.Printf("copy report: %v", err)
		return
	}
	v.status = fmt.Sprintf("report copied (%d bytes)", len(text))
}

// Draw renders both eyes, the HUD and the message panel.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	sc := v.session.Scene()
	head := v.session.Head().View
	for eye := 0; eye < 2; eye++ {
		vp := viewport{x: float64(eye * eyeSize), y: 0, w: eyeSize, h: eyeSize}
		view := eyeView(eye, head, sc.Camera, viewerIPD)
		v.drawEye(screen, sc, vp, v.projection.Mul(view))
	}
	vector.StrokeLine(screen, eyeSize, 0, eyeSize, eyeSize, 2, color.RGBA{R: 40, G: 40, B: 40, A: 255}, false)
	if v.showHUD {
		v.drawHUD(screen, sc)
	}
	drawMessagePanel(screen, v.session.Messages, eyeSize*2, v.height)
}

func (v *Viewer) drawEye(screen *ebiten.Image, sc game.Scene, vp viewport, vpMat vmath.Mat4) {
	line := func(model vmath.Mat4, a, b vmath.Vec3, c color.RGBA) {
		mvp := vpMat.Mul(model)
		a, b, ok := clipSegment(mvp, a, b)
		if !ok {
			return
		}
		x0, y0, ok0 := vp.project(mvp, a)
		x1, y1, ok1 := vp.project(mvp, b)
		if ok0 && ok1 {
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, c, true)
		}
	}

	// Floor grid, one line per metre.
	for i := -4.0; i <= 4; i++ {
		line(sc.Floor, vmath.V3(i, 0, -4), vmath.V3(i, 0, 4), floorLineColor)
		line(sc.Floor, vmath.V3(-4, 0, i), vmath.V3(4, 0, i), floorLineColor)
	}
	// Room outline.
	room := vmath.Translation(0, (game.FloorY+game.CeilingY)/2, 0).
		Scale(game.ArenaHalfExtent, (game.CeilingY-game.FloorY)/2, game.ArenaHalfExtent)
	for _, e := range cubeEdges(1) {
		line(room, e[0], e[1], wallLineColor)
	}

	if sc.TargetVisible {
		for _, e := range cubeEdges(0.1) {
			line(sc.Target, e[0], e[1], targetLine)
		}
	}
	for _, e := range cubeEdges(0.1) {
		line(sc.Projectile, e[0], e[1], projectileLine)
	}
	if a, b, ok := beamSegment(sc); ok {
		line(vmath.Identity(), a, b, beamLine)
	}
	if sc.FlareVisible {
		pts := circle(sc.FlareRadius, 16)
		for i := range pts {
			line(sc.Flare, pts[i], pts[(i+1)%len(pts)], flareLine)
		}
	}
	if v.reticleTex != nil {
		drawQuad(screen, vp, vpMat.Mul(sc.Reticle), v.reticleTex, 1)
	}
	if sc.SignVisible && v.signTex != nil && sc.SignAlpha > 0 {
		for _, m := range sc.Signs {
			drawQuad(screen, vp, vpMat.Mul(m), v.signTex, float32(sc.SignAlpha))
		}
	}
}

// drawQuad maps tex onto the unit quad (-1..1 in local XY) under mvp.
func drawQuad(screen *ebiten.Image, vp viewport, mvp vmath.Mat4, tex *ebiten.Image, alpha float32) {
	corners := [4]vmath.Vec3{
		vmath.V3(-1, 1, 0), vmath.V3(1, 1, 0), vmath.V3(1, -1, 0), vmath.V3(-1, -1, 0),
	}
	w, h := float32(tex.Bounds().Dx()), float32(tex.Bounds().Dy())
	uv := [4][2]float32{{0, 0}, {w, 0}, {w, h}, {0, h}}
	var vs [4]ebiten.Vertex
	for i, c := range corners {
		x, y, ok := vp.project(mvp, c)
		if !ok {
			return
		}
		vs[i] = ebiten.Vertex{
			DstX: x, DstY: y,
			SrcX: uv[i][0], SrcY: uv[i][1],
			ColorR: alpha, ColorG: alpha, ColorB: alpha, ColorA: alpha,
		}
	}
	screen.DrawTriangles(vs[:], []uint16{0, 1, 2, 0, 2, 3}, tex, &ebiten.DrawTrianglesOptions{})
}

func (v *Viewer) drawHUD(screen *ebiten.Image, sc game.Scene) {
	y := eyeSize + 4
	vector.FillRect(screen, 0, float32(eyeSize), float32(eyeSize*2), hudHeight, color.RGBA{R: 6, G: 10, B: 6, A: 230}, false)
	weapon := "throw"
	switch {
	case sc.Mode == game.ModeGameOver:
		weapon = "game over"
	case sc.Mode >= game.ModeBeam:
		weapon = "beam"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  level %d [%s]  score %d  shots %d  frame %d  yaw %.0f pitch %.0f  pulses %d",
		v.session.Config().Name, sc.Mode, weapon, sc.Score, sc.Shots, sc.Frame, v.yaw, v.pitch, v.pulses.Count()), 6, y)
	ebitenutil.DebugPrintAt(screen, "WASD/arrows=look  space/click=trigger  R=recentre  C=copy report  H=hud", 6, y+14)
	if v.status != "" {
		ebitenutil.DebugPrintAt(screen, v.status, 6, y+28)
	}
}

// Layout returns the fixed window size.
func (v *Viewer) Layout(_, _ int) (int, int) {
	return v.width, v.height
}

// Size is the window size the viewer lays out.
func (v *Viewer) Size() (int, int) { return v.width, v.height }
