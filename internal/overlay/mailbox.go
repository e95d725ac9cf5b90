package overlay

import (
	"image"
	"sync"
)

// Mailbox is a single-slot handoff for one texture between the overlay
// worker and the frame loop. The producer blocks on the lock; the consumer
// only ever tries it, so a frame never waits on rasterisation.
type Mailbox struct {
	mu      sync.Mutex
	img     *image.RGBA
	pending bool
}

// Produce publishes img, replacing anything not yet consumed.
func (m *Mailbox) Produce(img *image.RGBA) {
	m.mu.Lock()
	m.img = img
	m.pending = true
	m.mu.Unlock()
}

// TryConsume takes the pending image if the lock is free and something new
// was produced since the last take.
func (m *Mailbox) TryConsume() (*image.RGBA, bool) {
	if !m.mu.TryLock() {
		return nil, false
	}
	defer m.mu.Unlock()
	if !m.pending {
		return nil, false
	}
	m.pending = false
	return m.img, true
}
