package overlay

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Bitmap sizes.
const (
	SignSize    = 256
	ReticleSize = 32
)

const (
	panelTop     = 64
	panelBottom  = 192
	panelRadius  = 16
	textScale    = 2
	reticleWidth = 3
)

var (
	panelColor   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	textColor    = color.RGBA{A: 0xff}
	reticleColor = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
)

// SignBitmap rasterises a message onto a white rounded panel across the
// middle half of a transparent square. Lines are centred horizontally and the
// block is centred vertically.
func SignBitmap(text string) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, SignSize, SignSize))
	fillRoundedRect(dst, image.Rect(0, panelTop, SignSize, panelBottom), panelRadius, panelColor)

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()

	// Draw at native size into a scratch image, then scale up into the panel.
	w := 0
	for _, l := range lines {
		if adv := font.MeasureString(face, l).Ceil(); adv > w {
			w = adv
		}
	}
	if w == 0 {
		return dst
	}
	h := lineH * len(lines)
	scratch := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{Dst: scratch, Src: image.NewUniform(textColor), Face: face}
	for i, l := range lines {
		adv := font.MeasureString(face, l).Ceil()
		d.Dot = fixed.P((w-adv)/2, i*lineH+face.Metrics().Ascent.Ceil())
		d.DrawString(l)
	}

	scale := textScale
	for scale > 1 && (w*scale > SignSize-2*panelRadius || h*scale > panelBottom-panelTop) {
		scale--
	}
	tw, th := w*scale, h*scale
	if tw > SignSize {
		tw = SignSize
	}
	if th > panelBottom-panelTop {
		th = panelBottom - panelTop
	}
	x0 := (SignSize - tw) / 2
	y0 := panelTop + (panelBottom-panelTop-th)/2
	draw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+tw, y0+th), scratch, scratch.Bounds(), draw.Over, nil)
	return dst
}

// ReticleBitmap draws a dark-grey X on a transparent square.
func ReticleBitmap() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, ReticleSize, ReticleSize))
	for i := 0; i < ReticleSize; i++ {
		for k := -reticleWidth / 2; k <= reticleWidth/2; k++ {
			setIn(dst, i+k, i, reticleColor)
			setIn(dst, ReticleSize-1-i+k, i, reticleColor)
		}
	}
	return dst
}

func setIn(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// fillRoundedRect fills r with corners of radius rad cut away.
func fillRoundedRect(img *image.RGBA, r image.Rectangle, rad int, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cx, cy := x, y
			switch {
			case x < r.Min.X+rad:
				cx = r.Min.X + rad
			case x >= r.Max.X-rad:
				cx = r.Max.X - rad - 1
			}
			switch {
			case y < r.Min.Y+rad:
				cy = r.Min.Y + rad
			case y >= r.Max.Y-rad:
				cy = r.Max.Y - rad - 1
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= rad*rad {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
