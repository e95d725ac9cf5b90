package game

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/Garsondee/vr-targets/internal/vmath"
)

// ErrStripTarget means the narrow off-screen render target could not be set up.
var ErrStripTarget = errors.New("panorama strip target unavailable")

const (
	panoramaIPD     = 0.06
	panoramaFPS     = 30
	stripWidth      = 2
	panoramaFOV     = 90
	panoramaNear    = 0.5
	panoramaFar     = 10
	panoramaTiltDeg = 45
)

// ViewRenderer draws the full scene from one view into dst.
type ViewRenderer interface {
	RenderView(scene Scene, view, projection vmath.Mat4, dst *image.RGBA)
}

// FrameSink consumes finished panorama frames in increasing timestamp order.
// Close signals end of stream.
type FrameSink interface {
	WriteFrame(frame *image.RGBA, pts time.Duration) error
	Close() error
}

// Panorama samples a stereo equirectangular image one column at a time. The
// output is split into four horizontal quarters: eye 0 up, eye 0 down, eye 1
// up, eye 1 down.
type Panorama struct {
	width, height int
	camera        vmath.Mat4
	projection    vmath.Mat4
	tilt          [2]vmath.Mat4
	renderer      ViewRenderer
	strip         *image.RGBA
}

// NewPanorama allocates the strip target for a width x height capture.
func NewPanorama(width, height int, camera vmath.Mat4, r ViewRenderer) (*Panorama, error) {
	if width <= 0 || height < 4 {
		return nil, fmt.Errorf("%w: output %dx%d", ErrStripTarget, width, height)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: no renderer", ErrStripTarget)
	}
	return &Panorama{
		width:      width,
		height:     height,
		camera:     camera,
		projection: vmath.Perspective(panoramaFOV, 1/float64(height), panoramaNear, panoramaFar),
		tilt: [2]vmath.Mat4{
			vmath.Rotation(-panoramaTiltDeg, 1, 0, 0),
			vmath.Rotation(panoramaTiltDeg, 1, 0, 0),
		},
		renderer: r,
		strip:    image.NewRGBA(image.Rect(0, 0, stripWidth, height/2)),
	}, nil
}

// Size returns the output dimensions.
func (p *Panorama) Size() (int, int) { return p.width, p.height }

// ColumnAngle is the azimuth in degrees sampled by output column col.
func (p *Panorama) ColumnAngle(col int) float64 {
	return 360/float64(p.width)*float64(col) - 180
}

// ColumnView builds the view transform for one eye, band and column:
// tilt × azimuth rotation × eye offset × base camera.
func (p *Panorama) ColumnView(eye, band, col int) vmath.Mat4 {
	angleDeg := p.ColumnAngle(col)
	rad := -angleDeg / 360 * 2 * math.Pi
	if eye == 0 {
		rad += math.Pi
	}
	half := panoramaIPD / 2
	offset := vmath.Translation(-math.Cos(rad)*half, 0, math.Sin(rad)*half)
	rot := vmath.Rotation(angleDeg, 0, 1, 0)
	return p.tilt[band&1].Mul(rot.Mul(offset.Mul(p.camera)))
}

// SampleBand renders every column of one eye/band and composites each strip
// into dst. visit, if set, is called after each sub-render.
func (p *Panorama) SampleBand(scene Scene, eye, band int, dst *image.RGBA, visit func(col int, angleDeg float64)) {
	quarter := eye*2 + band
	qh := float64(p.height) / 4
	for col := 0; col < p.width; col++ {
		view := p.ColumnView(eye, band, col)
		clearRGBA(p.strip)
		p.renderer.RenderView(scene, view, p.projection, p.strip)
		if dst != nil {
			sb := p.strip.Bounds()
			s2d := f64.Aff3{
				1 / float64(sb.Dx()), 0, float64(col),
				0, qh / float64(sb.Dy()), qh * float64(quarter),
			}
			draw.ApproxBiLinear.Transform(dst, s2d, p.strip, sb, draw.Src, nil)
		}
		if visit != nil {
			visit(col, p.ColumnAngle(col))
		}
	}
}

// Capture builds one complete frame: width × 2 bands × 2 eyes sub-renders.
func (p *Panorama) Capture(scene Scene) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for eye := 0; eye < 2; eye++ {
		for band := 0; band < 2; band++ {
			p.SampleBand(scene, eye, band, dst, nil)
		}
	}
	return dst
}

func clearRGBA(img *image.RGBA) {
	for i := range img.Pix {
		img.Pix[i] = 0
	}
}

// PresentationTime is the timestamp of a captured frame at the fixed 30 fps playback rate.
func PresentationTime(frame int) time.Duration {
	return time.Duration(float64(frame) * (1e9 / panoramaFPS))
}

// Recorder captures the first Frames session frames into a sink and closes
// the stream after the last one.
type Recorder struct {
	pano   *Panorama
	sink   FrameSink
	frames int
	done   bool
}

// NewRecorder wires a panorama sampler to a sink.
func NewRecorder(p *Panorama, sink FrameSink, frames int) *Recorder {
	return &Recorder{pano: p, sink: sink, frames: frames}
}

// Done reports whether the stream has been closed.
func (r *Recorder) Done() bool { return r.done }

// Step captures frame if it is within the recording window.
func (r *Recorder) Step(frame int, scene Scene) error {
	if r.done {
		return nil
	}
	if frame <= r.frames {
		img := r.pano.Capture(scene)
		if err := r.sink.WriteFrame(img, PresentationTime(frame)); err != nil {
			return fmt.Errorf("write frame %d: %w", frame, err)
		}
	}
	if frame >= r.frames {
		r.done = true
		if err := r.sink.Close(); err != nil {
			return fmt.Errorf("close stream: %w", err)
		}
	}
	return nil
}
