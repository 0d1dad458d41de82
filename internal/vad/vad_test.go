package vad

import (
	"math"
	"testing"
	"time"

	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/pipeline"
)

func TestLevelZeroForSilence(t *testing.T) {
	if got := Level(make([]int16, 480)); got != 0 {
		t.Fatalf("expected 0 RMS for all-zero input, got %v", got)
	}
	if got := Level(nil); got != 0 {
		t.Fatalf("expected 0 RMS for empty input, got %v", got)
	}
}

func TestLevelConstantAmplitude(t *testing.T) {
	const amplitude = int16(16384) // half full-scale
	samples := make([]int16, 320)
	for i := range samples {
		samples[i] = amplitude
	}
	want := float64(amplitude) / 32768.0
	got := Level(samples)
	if math.Abs(got-want) > 1e-3 {
		t.Fatalf("Level() = %v, want %v", got, want)
	}
}

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	return New(Config{SpeechThreshold: 0.02, SilenceDurationMS: 1500}, logger.New(false))
}

func frame(seq uint64, t time.Time, loud bool) pipeline.AudioFrame {
	samples := make([]int16, 160)
	if loud {
		for i := range samples {
			samples[i] = 10000
		}
	}
	return pipeline.AudioFrame{Samples: samples, Sequence: seq, Timestamp: t}
}

// TestVADMonotonicity is Testable Property 2: in a sequence of loud
// frames followed by quiet frames totaling >= silence_duration_ms, exactly
// one SpeechStart and exactly one SpeechEnd fire, in that order.
func TestVADMonotonicity(t *testing.T) {
	d := newTestDetector(t)
	base := time.Unix(0, 0)

	var starts, ends int
	var order []Event

	// 500ms of loud frames (10ms apart).
	for i := 0; i < 50; i++ {
		_, ev := d.Process(frame(uint64(i), base.Add(time.Duration(i)*10*time.Millisecond), true))
		order = append(order, ev)
		if ev == EventSpeechStart {
			starts++
		}
	}

	// 1600ms of quiet frames: enough to cross the 1500ms threshold.
	silenceStart := base.Add(500 * time.Millisecond)
	for i := 0; i < 160; i++ {
		_, ev := d.Process(frame(uint64(50+i), silenceStart.Add(time.Duration(i)*10*time.Millisecond), false))
		order = append(order, ev)
		if ev == EventSpeechEnd {
			ends++
		}
	}

	if starts != 1 {
		t.Fatalf("expected exactly 1 SpeechStart, got %d", starts)
	}
	if ends != 1 {
		t.Fatalf("expected exactly 1 SpeechEnd, got %d", ends)
	}

	firstStart, firstEnd := -1, -1
	for i, ev := range order {
		if ev == EventSpeechStart && firstStart == -1 {
			firstStart = i
		}
		if ev == EventSpeechEnd && firstEnd == -1 {
			firstEnd = i
		}
	}
	if !(firstStart < firstEnd) {
		t.Fatalf("SpeechStart (%d) must precede SpeechEnd (%d)", firstStart, firstEnd)
	}
	if d.State() != Stopped {
		t.Fatalf("expected final state Stopped, got %v", d.State())
	}
}

// TestScenarioS4 mirrors spec scenario S4 directly.
func TestScenarioS4(t *testing.T) {
	d := newTestDetector(t)
	base := time.Unix(0, 0)

	_, ev := d.Process(frame(0, base, true))
	if ev != EventSpeechStart {
		t.Fatalf("expected SpeechStart, got %v", ev)
	}

	// The first quiet frame opens the silence run (Speaking -> MaybeSilence);
	// SpeechEnd fires once that run has lasted 1500 ms.
	_, ev = d.Process(frame(1, base.Add(10*time.Millisecond), false))
	if ev != EventSilence {
		t.Fatalf("expected Silence on the first quiet frame, got %v", ev)
	}

	_, ev = d.Process(frame(2, base.Add(1510*time.Millisecond), false))
	if ev != EventSpeechEnd {
		t.Fatalf("expected SpeechEnd after 1500ms silence, got %v", ev)
	}
	if d.State() != Stopped {
		t.Fatalf("expected Stopped, got %v", d.State())
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	d := newTestDetector(t)
	d.Process(frame(0, time.Unix(0, 0), true))
	d.Reset()
	if d.State() != Idle {
		t.Fatalf("expected Idle after Reset, got %v", d.State())
	}
}
