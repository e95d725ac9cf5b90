// Package haptics provides sinks for the trigger pulse: a speaker buzz for
// desktop play and a recorder for headless runs.
package haptics

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)
	pulseFreq  = 90 // Hz, felt more than heard
	pulseGain  = 0.35
)

// Speaker renders each pulse as a short low buzz. Pulses before Initialize
// (or after a failed one) are dropped, so a machine without audio still plays.
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSpeaker creates an uninitialised speaker sink.
func NewSpeaker() *Speaker {
	return &Speaker{mixer: &beep.Mixer{}}
}

// Initialize opens the audio device. Calling it twice is a no-op.
func (s *Speaker) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Close silences anything still playing.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}

// Pulse implements game.Haptics.
func (s *Speaker) Pulse(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized || d <= 0 {
		return
	}
	speaker.Lock()
	s.mixer.Add(PulseStreamer(d))
	speaker.Unlock()
}

// PulseStreamer is a finite buzz of length d.
func PulseStreamer(d time.Duration) beep.Streamer {
	return beep.Take(sampleRate.N(d), NewBuzzGenerator(sampleRate, pulseFreq))
}

// BuzzGenerator is an endless square-ish low tone.
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBuzzGenerator creates a buzz generator at freq Hz.
func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{sr: sr, freq: freq}
}

// Stream implements beep.Streamer.
func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		v := math.Sin(2 * math.Pi * g.freq * t)
		// Soft clip toward a square wave.
		v = math.Tanh(3*v) * pulseGain
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (g *BuzzGenerator) Err() error { return nil }

// Recorder counts pulses. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	pulses []time.Duration
}

// Pulse implements game.Haptics.
func (r *Recorder) Pulse(d time.Duration) {
	r.mu.Lock()
	r.pulses = append(r.pulses, d)
	r.mu.Unlock()
}

// Count returns the number of pulses received.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pulses)
}

// Total returns the summed pulse duration.
func (r *Recorder) Total() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum time.Duration
	for _, d := range r.pulses {
		sum += d
	}
	return sum
}

// Multi fans one pulse out to several sinks.
type Multi []interface{ Pulse(time.Duration) }

// Pulse implements game.Haptics.
func (m Multi) Pulse(d time.Duration) {
	for _, h := range m {
		h.Pulse(d)
	}
}
