package game

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/Garsondee/vr-targets/internal/vmath"
)

// countingRenderer fills the strip with a colour derived from the call count.
type countingRenderer struct {
	calls int
	views []vmath.Mat4
}

func (r *countingRenderer) RenderView(_ Scene, view, _ vmath.Mat4, dst *image.RGBA) {
	r.calls++
	r.views = append(r.views, view)
	c := color.RGBA{R: uint8(r.calls), G: 0x80, B: 0, A: 0xff}
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x, y, c)
		}
	}
}

type memorySink struct {
	pts    []time.Duration
	sizes  []image.Point
	closed int
	err    error
}

func (s *memorySink) WriteFrame(f *image.RGBA, pts time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.pts = append(s.pts, pts)
	s.sizes = append(s.sizes, f.Bounds().Size())
	return nil
}

func (s *memorySink) Close() error {
	s.closed++
	return nil
}

func TestPanorama_ColumnAzimuths(t *testing.T) {
	r := &countingRenderer{}
	p, err := NewPanorama(4, 8, vmath.Identity(), r)
	if err != nil {
		t.Fatalf("NewPanorama: %v", err)
	}
	var angles []float64
	p.SampleBand(Scene{}, 0, 0, nil, func(col int, a float64) {
		if col != len(angles) {
			t.Fatalf("columns out of order: got %d after %d", col, len(angles))
		}
		angles = append(angles, a)
	})
	want := []float64{-180, -90, 0, 90}
	if r.calls != 4 {
		t.Fatalf("expected 4 sub-renders, got %d", r.calls)
	}
	for i, a := range want {
		if math.Abs(angles[i]-a) > 1e-9 {
			t.Fatalf("column %d azimuth %.1f, want %.1f", i, angles[i], a)
		}
	}
}

func TestPanorama_CaptureRenderCount(t *testing.T) {
	r := &countingRenderer{}
	p, err := NewPanorama(6, 8, vmath.Identity(), r)
	if err != nil {
		t.Fatalf("NewPanorama: %v", err)
	}
	img := p.Capture(Scene{})
	if r.calls != 6*2*2 {
		t.Fatalf("expected width x 2 bands x 2 eyes renders, got %d", r.calls)
	}
	if got := img.Bounds().Size(); got != image.Pt(6, 8) {
		t.Fatalf("output size %v", got)
	}
	// Every quarter received a strip; nothing left transparent.
	for y := 0; y < 8; y++ {
		for x := 0; x < 6; x++ {
			if img.RGBAAt(x, y).A == 0 {
				t.Fatalf("pixel (%d,%d) never composited", x, y)
			}
		}
	}
}

func TestPanorama_EyeOffsetsOpposite(t *testing.T) {
	p, err := NewPanorama(4, 8, vmath.Identity(), &countingRenderer{})
	if err != nil {
		t.Fatalf("NewPanorama: %v", err)
	}
	for col := 0; col < 4; col++ {
		l, _ := p.ColumnView(0, 0, col).Invert()
		r, _ := p.ColumnView(1, 0, col).Invert()
		el := l.TransformPoint(vmath.Vec3{})
		er := r.TransformPoint(vmath.Vec3{})
		if d := el.Sub(er).Len(); math.Abs(d-panoramaIPD) > 1e-9 {
			t.Fatalf("column %d: eye separation %.4f, want %.2f", col, d, panoramaIPD)
		}
		if mid := el.Add(er).Scale(0.5); mid.Len() > 1e-9 {
			t.Fatalf("column %d: eyes not centred on the camera: %v", col, mid)
		}
	}
}

func TestPanorama_BandsTiltOpposite(t *testing.T) {
	p, err := NewPanorama(4, 8, vmath.Identity(), &countingRenderer{})
	if err != nil {
		t.Fatalf("NewPanorama: %v", err)
	}
	up, _ := p.ColumnView(0, 0, 2).Invert()
	down, _ := p.ColumnView(0, 1, 2).Invert()
	fwd := vmath.V3(0, 0, -1)
	upDir := up.TransformPoint(fwd).Sub(up.TransformPoint(vmath.Vec3{}))
	downDir := down.TransformPoint(fwd).Sub(down.TransformPoint(vmath.Vec3{}))
	if upDir.Y <= 0 || downDir.Y >= 0 {
		t.Fatalf("band 0 should look up and band 1 down: %v / %v", upDir, downDir)
	}
}

func TestNewPanorama_Rejects(t *testing.T) {
	if _, err := NewPanorama(0, 8, vmath.Identity(), &countingRenderer{}); !errors.Is(err, ErrStripTarget) {
		t.Fatalf("zero width: got %v", err)
	}
	if _, err := NewPanorama(4, 2, vmath.Identity(), &countingRenderer{}); !errors.Is(err, ErrStripTarget) {
		t.Fatalf("short output: got %v", err)
	}
	if _, err := NewPanorama(4, 8, vmath.Identity(), nil); !errors.Is(err, ErrStripTarget) {
		t.Fatalf("nil renderer: got %v", err)
	}
}

func TestPresentationTime(t *testing.T) {
	if got := PresentationTime(0); got != 0 {
		t.Fatalf("frame 0 at %v", got)
	}
	if got := PresentationTime(30); got < time.Second-time.Nanosecond || got > time.Second+time.Nanosecond {
		t.Fatalf("frame 30 at %v, want 1s", got)
	}
	for f := 1; f < 100; f++ {
		if PresentationTime(f) <= PresentationTime(f-1) {
			t.Fatalf("timestamps not increasing at %d", f)
		}
	}
}

func TestRecorder_CapturesWindowThenCloses(t *testing.T) {
	cfg := TargetVR()
	cfg.AutofireFrame = 0
	cfg.CaptureFrames = 2
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	r := &countingRenderer{}
	p, err := NewPanorama(4, 8, s.Camera(), r)
	if err != nil {
		t.Fatalf("NewPanorama: %v", err)
	}
	sink := &memorySink{}
	if err := s.AttachRecorder(NewRecorder(p, sink, cfg.CaptureFrames)); err != nil {
		t.Fatalf("AttachRecorder: %v", err)
	}
	for i := 0; i < 5; i++ {
		s.Frame(IdentityPose())
	}
	if len(sink.pts) != 2 {
		t.Fatalf("expected 2 captured frames, got %d", len(sink.pts))
	}
	if sink.pts[0] != PresentationTime(1) || sink.pts[1] != PresentationTime(2) {
		t.Fatalf("unexpected timestamps %v", sink.pts)
	}
	if sink.closed != 1 {
		t.Fatalf("stream should close exactly once, closed %d times", sink.closed)
	}
	if r.calls != 2*16 {
		t.Fatalf("expected 16 sub-renders per frame, got %d", r.calls)
	}
	if n := s.SimLog.CountCategory("capture", "frame"); n != 2 {
		t.Fatalf("expected 2 capture log entries, got %d", n)
	}
}

func TestRecorder_SinkErrorIsFatal(t *testing.T) {
	s, err := NewSession(TargetVR())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	var fatal string
	s.Fatalf = func(format string, args ...any) { fatal = format }
	p, _ := NewPanorama(2, 4, s.Camera(), &countingRenderer{})
	_ = s.AttachRecorder(NewRecorder(p, &memorySink{err: errors.New("disk full")}, 1))
	s.Frame(IdentityPose())
	if fatal == "" {
		t.Fatal("a failing sink should be fatal")
	}
	if !s.SimLog.HasEntry("capture", "error", "disk full") {
		t.Fatal("sink error not logged")
	}
}

func TestSession_DuplicateRecorderFatal(t *testing.T) {
	s, err := NewSession(TargetVR())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	fatals := 0
	s.Fatalf = func(string, ...any) { fatals++ }
	p, _ := NewPanorama(2, 4, s.Camera(), &countingRenderer{})
	if err := s.AttachRecorder(NewRecorder(p, &memorySink{}, 1)); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	err = s.AttachRecorder(NewRecorder(p, &memorySink{}, 1))
	if !errors.Is(err, ErrRecorderAttached) {
		t.Fatalf("second attach: got %v", err)
	}
	if fatals != 1 {
		t.Fatalf("second attach should be fatal, got %d calls", fatals)
	}
}
