// Package vad implements station B: it annotates every AudioFrame with a
// speech/non-speech decision and a normalized RMS level, using the
// 4-state machine described in the component design. VAD never drops
// frames.
package vad

import (
	"math"
	"time"

	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/pipeline"
)

// State is one of the four VAD states.
type State int

const (
	Idle State = iota
	Speaking
	MaybeSilence
	Stopped
)

func (s State) String() string {
	switch s {
	case Speaking:
		return "speaking"
	case MaybeSilence:
		return "maybe_silence"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Event is emitted alongside every processed frame.
type Event int

const (
	EventSilence Event = iota
	EventSpeech
	EventSpeechStart
	EventSpeechEnd
)

func (e Event) String() string {
	switch e {
	case EventSpeech:
		return "speech"
	case EventSpeechStart:
		return "speech_start"
	case EventSpeechEnd:
		return "speech_end"
	default:
		return "silence"
	}
}

// Config holds VAD tunables; all have defaults applied in New.
type Config struct {
	// SpeechThreshold is the RMS level (in [0,1]) above which a frame is
	// "loud". Defaults to 0.02.
	SpeechThreshold float64
	// SilenceDurationMS is how long a quiet run must persist in
	// MaybeSilence before the state machine transitions to Stopped.
	// Defaults to 1500ms.
	SilenceDurationMS int
	// MinSpeechMS exists for parity with the source design; it does not
	// suppress transitions in the current implementation.
	MinSpeechMS int

	// AutoLevel enables rolling-threshold adaptation from ambient noise.
	AutoLevel bool
	// AutoLevelHistorySize bounds the rolling level history used for the
	// percentile calculation. Defaults to 200 (a few seconds of frames).
	AutoLevelHistorySize int
	// AutoLevelPeriod is how many processed frames elapse between
	// threshold recomputations. Defaults to 50.
	AutoLevelPeriod int
}

func (c *Config) applyDefaults() {
	if c.SpeechThreshold == 0 {
		c.SpeechThreshold = 0.02
	}
	if c.SilenceDurationMS == 0 {
		c.SilenceDurationMS = 1500
	}
	if c.AutoLevelHistorySize == 0 {
		c.AutoLevelHistorySize = 200
	}
	if c.AutoLevelPeriod == 0 {
		c.AutoLevelPeriod = 50
	}
}

// Detector runs the VAD state machine over a stream of AudioFrames.
type Detector struct {
	cfg Config
	log *logger.ContextLogger

	state       State
	speechStart time.Time
	silenceSince time.Time
	hasSilence  bool

	levelHistory []float64
	framesSeen   int
}

// New creates a Detector with defaults applied.
func New(cfg Config, log *logger.Logger) *Detector {
	cfg.applyDefaults()
	return &Detector{
		cfg:   cfg,
		log:   log.With("vad"),
		state: Idle,
	}
}

// Level computes the normalized RMS of a frame: samples are mapped to
// [-1,1] before squaring (Testable Property 1). Empty input yields 0.
func Level(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s) / 32768.0
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Process classifies one AudioFrame, returning the resulting VadFrame and
// the event fired by the transition.
func (d *Detector) Process(frame pipeline.AudioFrame) (pipeline.VadFrame, Event) {
	level := Level(frame.Samples)
	loud := level > d.cfg.SpeechThreshold
	now := frame.Timestamp

	event := d.transition(loud, now)
	d.recordLevel(level)

	return pipeline.VadFrame{
		AudioFrame: frame,
		IsSpeech:   loud,
		Level:      level,
	}, event
}

func (d *Detector) transition(loud bool, now time.Time) Event {
	switch d.state {
	case Idle:
		if loud {
			d.state = Speaking
			d.speechStart = now
			d.hasSilence = false
			return EventSpeechStart
		}
		return EventSilence

	case Speaking:
		if loud {
			return EventSpeech
		}
		d.state = MaybeSilence
		d.silenceSince = now
		d.hasSilence = true
		return EventSilence

	case MaybeSilence:
		if loud {
			d.state = Speaking
			d.hasSilence = false
			return EventSpeech
		}
		elapsed := now.Sub(d.silenceSince)
		if elapsed >= time.Duration(d.cfg.SilenceDurationMS)*time.Millisecond {
			d.state = Stopped
			return EventSpeechEnd
		}
		return EventSilence

	default: // Stopped
		return EventSilence
	}
}

// recordLevel feeds the rolling history used by auto-leveling; per the
// component design, the threshold is only recomputed while not Speaking.
func (d *Detector) recordLevel(level float64) {
	if !d.cfg.AutoLevel {
		return
	}

	d.levelHistory = append(d.levelHistory, level)
	if len(d.levelHistory) > d.cfg.AutoLevelHistorySize {
		d.levelHistory = d.levelHistory[len(d.levelHistory)-d.cfg.AutoLevelHistorySize:]
	}

	d.framesSeen++
	if d.state == Speaking || d.framesSeen < d.cfg.AutoLevelPeriod {
		return
	}
	d.framesSeen = 0

	threshold := 2.0 * percentile25(d.levelHistory)
	if threshold < 0.002 {
		threshold = 0.002
	}
	if threshold > 0.2 {
		threshold = 0.2
	}
	if threshold > 0 {
		d.log.DebugFields("auto-leveled threshold", map[string]interface{}{"threshold": threshold})
		d.cfg.SpeechThreshold = threshold
	}
}

// percentile25 returns the 25th percentile of a copy of values, sorted by
// simple insertion (history is bounded and small, so O(n^2) is fine).
func percentile25(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	for i := 1; i < len(sorted); i++ {
		v := sorted[i]
		j := i - 1
		for j >= 0 && sorted[j] > v {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = v
	}
	idx := (len(sorted) - 1) / 4
	return sorted[idx]
}

// State returns the detector's current state (e.g. for diagnostics).
func (d *Detector) State() State { return d.state }

// Reset returns the detector to Idle, discarding accumulated timers. Used
// on explicit Cancel.
func (d *Detector) Reset() {
	d.state = Idle
	d.hasSilence = false
}
