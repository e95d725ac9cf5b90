package overlay

import (
	"context"
	"image"
	"testing"
	"time"
)

type captureUploader struct {
	signs, reticles []*image.RGBA
}

func (c *captureUploader) UploadSign(img *image.RGBA)    { c.signs = append(c.signs, img) }
func (c *captureUploader) UploadReticle(img *image.RGBA) { c.reticles = append(c.reticles, img) }

func TestMailbox_SingleTake(t *testing.T) {
	var m Mailbox
	if _, ok := m.TryConsume(); ok {
		t.Fatal("empty mailbox should have nothing")
	}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	m.Produce(img)
	got, ok := m.TryConsume()
	if !ok || got != img {
		t.Fatal("expected the produced image")
	}
	if _, ok := m.TryConsume(); ok {
		t.Fatal("an image should be taken only once")
	}
}

func TestMailbox_BusyProducerSkipsFrame(t *testing.T) {
	var m Mailbox
	m.Produce(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	m.mu.Lock()
	_, ok := m.TryConsume()
	m.mu.Unlock()
	if ok {
		t.Fatal("consumer must not wait for a held lock")
	}
	if _, ok := m.TryConsume(); !ok {
		t.Fatal("image should still be pending after a skipped frame")
	}
}

func TestSignBitmap_Layout(t *testing.T) {
	img := SignBitmap("You hit it.\nScore: 2\n9 Shots left")
	if img.Bounds().Dx() != SignSize || img.Bounds().Dy() != SignSize {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	if a := img.RGBAAt(128, 10).A; a != 0 {
		t.Fatalf("area above the panel should be transparent, alpha %d", a)
	}
	if c := img.RGBAAt(128, panelTop+2); c != panelColor {
		t.Fatalf("panel should be white at its top edge, got %v", c)
	}
	if c := img.RGBAAt(0, panelTop); c.A != 0 {
		t.Fatal("panel corner should be rounded off")
	}
	dark := 0
	for y := panelTop; y < panelBottom; y++ {
		for x := 0; x < SignSize; x++ {
			if c := img.RGBAAt(x, y); c.A == 0xff && c.R < 0x40 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatal("no text pixels drawn")
	}
}

func TestSignBitmap_EmptyText(t *testing.T) {
	img := SignBitmap("")
	if c := img.RGBAAt(128, 128); c != panelColor {
		t.Fatalf("empty sign should still show the panel, got %v", c)
	}
}

func TestReticleBitmap_Cross(t *testing.T) {
	img := ReticleBitmap()
	if img.RGBAAt(0, 0) != reticleColor || img.RGBAAt(ReticleSize-1, 0) != reticleColor {
		t.Fatal("both diagonals should reach the corners")
	}
	if img.RGBAAt(ReticleSize/2, 2).A != 0 {
		t.Fatal("top centre should be transparent")
	}
}

func TestWorker_DeliversOnPoll(t *testing.T) {
	up := &captureUploader{}
	w := NewWorker(up)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.RequestReticle(1)
	w.ShowMessage("hello", time.Second)

	deadline := time.Now().Add(2 * time.Second)
	signed := false
	for time.Now().Before(deadline) && (!signed || len(up.reticles) == 0) {
		if w.Poll() {
			signed = true
		}
		time.Sleep(time.Millisecond)
	}
	if !signed || len(up.signs) != 1 {
		t.Fatalf("sign not delivered: %d uploads", len(up.signs))
	}
	if len(up.reticles) != 1 {
		t.Fatalf("reticle not delivered: %d uploads", len(up.reticles))
	}
	if w.Poll() {
		t.Fatal("nothing new should be pending")
	}
}

func TestWorker_CoalescesMessages(t *testing.T) {
	w := NewWorker(nil)
	w.ShowMessage("first", time.Second)
	w.ShowMessage("second", time.Second)
	w.ShowMessage("third", time.Second)
	w.drain()
	if w.Rendered() != 1 {
		t.Fatalf("queued messages should collapse into one render, got %d", w.Rendered())
	}
	if !w.Poll() {
		t.Fatal("sign should be ready after drain")
	}
}
