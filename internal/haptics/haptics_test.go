package haptics

import (
	"math"
	"testing"
	"time"
)

func TestPulseStreamer_Length(t *testing.T) {
	s := PulseStreamer(20 * time.Millisecond)
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	if want := sampleRate.N(20 * time.Millisecond); total != want {
		t.Fatalf("expected %d samples, got %d", want, total)
	}
}

func TestBuzzGenerator_Bounded(t *testing.T) {
	g := NewBuzzGenerator(sampleRate, pulseFreq)
	buf := make([][2]float64, 4800)
	g.Stream(buf)
	nonZero := false
	for i, s := range buf {
		if math.Abs(s[0]) > pulseGain+1e-9 || s[0] != s[1] {
			t.Fatalf("sample %d out of range or not mono: %v", i, s)
		}
		if s[0] != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatal("generator produced silence")
	}
}

func TestSpeaker_PulseWithoutInit(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("pulse before init panicked: %v", r)
		}
	}()
	s := NewSpeaker()
	s.Pulse(20 * time.Millisecond)
	s.Close()
}

func TestRecorder_CountsAndTotals(t *testing.T) {
	var r Recorder
	var other Recorder
	m := Multi{&r, &other}
	for i := 0; i < 3; i++ {
		m.Pulse(20 * time.Millisecond)
	}
	if r.Count() != 3 || other.Count() != 3 {
		t.Fatalf("expected 3 pulses each, got %d and %d", r.Count(), other.Count())
	}
	if r.Total() != 60*time.Millisecond {
		t.Fatalf("total %v", r.Total())
	}
}
