// Package overlay regenerates the sign and reticle bitmaps on a background
// goroutine and hands them to the frame loop through single-slot mailboxes.
package overlay

import (
	"context"
	"image"
	"sync"
	"time"
)

// Uploader receives finished bitmaps on the frame-loop goroutine.
type Uploader interface {
	UploadSign(img *image.RGBA)
	UploadReticle(img *image.RGBA)
}

// Worker is the background texture producer. It implements game.Overlay.
type Worker struct {
	sign    Mailbox
	reticle Mailbox

	mu          sync.Mutex
	nextText    string
	textPending bool
	reticleReq  bool
	wake        chan struct{}

	up Uploader

	// Rendered counts bitmaps produced, for diagnostics.
	rendered int
}

// NewWorker creates a worker that delivers bitmaps to up (may be nil).
func NewWorker(up Uploader) *Worker {
	return &Worker{up: up, wake: make(chan struct{}, 1)}
}

// Run services requests until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.wake:
		}
		w.drain()
	}
}

// Start runs the worker on its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	go w.Run(ctx)
}

func (w *Worker) drain() {
	w.mu.Lock()
	text, doText := w.nextText, w.textPending
	doReticle := w.reticleReq
	w.textPending, w.reticleReq = false, false
	w.mu.Unlock()

	if doText {
		w.sign.Produce(SignBitmap(text))
		w.count()
	}
	if doReticle {
		w.reticle.Produce(ReticleBitmap())
		w.count()
	}
}

func (w *Worker) count() {
	w.mu.Lock()
	w.rendered++
	w.mu.Unlock()
}

// Rendered reports how many bitmaps have been produced.
func (w *Worker) Rendered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rendered
}

func (w *Worker) notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// ShowMessage queues a sign bitmap. Requests that arrive before the worker
// gets to them collapse into the newest one.
func (w *Worker) ShowMessage(text string, _ time.Duration) {
	w.mu.Lock()
	w.nextText = text
	w.textPending = true
	w.mu.Unlock()
	w.notify()
}

// RequestReticle queues the reticle bitmap. Only one reticle style exists.
func (w *Worker) RequestReticle(int) {
	w.mu.Lock()
	w.reticleReq = true
	w.mu.Unlock()
	w.notify()
}

// Poll uploads whatever the worker has finished. It never blocks and reports
// whether a new sign bitmap went up.
func (w *Worker) Poll() bool {
	signed := false
	if img, ok := w.sign.TryConsume(); ok {
		if w.up != nil {
			w.up.UploadSign(img)
		}
		signed = true
	}
	if img, ok := w.reticle.TryConsume(); ok && w.up != nil {
		w.up.UploadReticle(img)
	}
	return signed
}
