// Package chunker implements station C: it accumulates speech frames from
// the VAD and emits AudioChunks at natural silence gaps, or a hard
// max-duration cap, using the adaptive gap-shrinking schedule described in
// the component design (§4.C). This is the hardest subsystem in the
// pipeline — latency and transcription quality pull in opposite
// directions, and the schedule is the compromise.
package chunker

import (
	"sync"
	"time"

	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/pipeline"
	"github.com/voicetype/voicetype/internal/vad"
)

// gapPoint is one anchor of the piecewise-linear gap schedule.
type gapPoint struct {
	elapsedMS int
	gapMS     int
}

// gapSchedule is the anchor table from §4.C: as accumulated speech grows
// past targetChunkMS, the silence required to emit shrinks.
var gapSchedule = []gapPoint{
	{2500, 400},
	{3000, 250},
	{3500, 150},
	{4000, 100},
	{4500, 80},
}

// State is one of the two chunker states.
type State int

const (
	Idle State = iota
	Accumulating
)

// Config holds chunker tunables; defaults match §4.C and §6.
type Config struct {
	SampleRate     int
	TargetChunkMS  int
	MaxChunkMS     int
	InitialGapMS   int
	MinGapMS       int
	OverlapMS      int
}

func (c *Config) applyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.TargetChunkMS == 0 {
		c.TargetChunkMS = 2500
	}
	if c.MaxChunkMS == 0 {
		c.MaxChunkMS = 6000
	}
	if c.InitialGapMS == 0 {
		c.InitialGapMS = 400
	}
	if c.MinGapMS == 0 {
		c.MinGapMS = 80
	}
	if c.OverlapMS == 0 {
		c.OverlapMS = 200
	}
}

// RequiredGapMS returns the silence duration (ms) required to emit a
// chunk, given the elapsed speech duration (ms) since speech_start. This
// is Testable Property 4: it must equal 400 at 2500, 250 at 3000, 150 at
// 3500, 100 at 4000, 80 at 4500-and-beyond, linearly interpolated between
// anchors, and never below MinGapMS.
func (c Config) RequiredGapMS(elapsedMS int) int {
	if elapsedMS <= c.TargetChunkMS {
		return c.InitialGapMS
	}

	points := gapSchedule
	if elapsedMS >= points[len(points)-1].elapsedMS {
		gap := points[len(points)-1].gapMS
		if gap < c.MinGapMS {
			return c.MinGapMS
		}
		return gap
	}

	prev := gapPoint{elapsedMS: c.TargetChunkMS, gapMS: c.InitialGapMS}
	for _, p := range points {
		if elapsedMS <= p.elapsedMS {
			span := p.elapsedMS - prev.elapsedMS
			if span <= 0 {
				return clampGap(p.gapMS, c.MinGapMS)
			}
			frac := float64(elapsedMS-prev.elapsedMS) / float64(span)
			gap := float64(prev.gapMS) + frac*float64(p.gapMS-prev.gapMS)
			return clampGap(int(gap), c.MinGapMS)
		}
		prev = p
	}
	return c.MinGapMS
}

func clampGap(gap, min int) int {
	if gap < min {
		return min
	}
	return gap
}

// Chunker accumulates VadFrames and emits AudioChunks. Safe for
// single-producer use; a mutex guards the buffer so Flush/Cancel can be
// called from the orchestrator while a frame is mid-process.
type Chunker struct {
	cfg Config
	log *logger.ContextLogger

	mu          sync.Mutex
	state       State
	buffer      []int16
	overlapTail []int16
	speechStart time.Time
	silenceSince time.Time
	hasSilence  bool
	startSeq    uint64
	endSeq      uint64
	nextChunkID uint64
}

// New creates a Chunker with defaults applied.
func New(cfg Config, log *logger.Logger) *Chunker {
	cfg.applyDefaults()
	return &Chunker{cfg: cfg, log: log.With("chunker"), state: Idle}
}

// Feed processes one VadFrame, returning an emitted chunk if the emission
// rule fires (nil otherwise). isFinal should be true when the caller has
// observed a VAD SpeechEnd for this frame (the control signal from B to
// C); it is threaded straight onto the emitted chunk.
func (c *Chunker) Feed(vf pipeline.VadFrame, isFinal bool) *pipeline.AudioChunk {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := vf.Timestamp

	if c.state == Idle {
		if !vf.IsSpeech {
			// Non-emission on pre-speech silence.
			return nil
		}
		c.state = Accumulating
		c.speechStart = now
		c.hasSilence = false
		c.startSeq = vf.Sequence
		c.buffer = append(c.buffer[:0], c.overlapTail...)
		c.buffer = append(c.buffer, vf.Samples...)
		c.endSeq = vf.Sequence
		return c.maybeEmit(now, isFinal)
	}

	// Accumulating.
	c.buffer = append(c.buffer, vf.Samples...)
	c.endSeq = vf.Sequence
	if vf.IsSpeech {
		c.hasSilence = false
	} else if !c.hasSilence {
		c.hasSilence = true
		c.silenceSince = now
	}

	return c.maybeEmit(now, isFinal)
}

// maybeEmit applies the emission rule; caller holds the lock.
func (c *Chunker) maybeEmit(now time.Time, isFinal bool) *pipeline.AudioChunk {
	elapsed := now.Sub(c.speechStart)
	elapsedMS := int(elapsed.Milliseconds())

	var silenceMS int
	if c.hasSilence {
		if s := now.Sub(c.silenceSince).Milliseconds(); s > 0 {
			silenceMS = int(s)
		}
	}

	required := c.cfg.RequiredGapMS(elapsedMS)

	hitCeiling := elapsedMS >= c.cfg.MaxChunkMS
	hitGap := c.hasSilence && silenceMS >= required

	if !hitCeiling && !hitGap {
		return nil
	}

	flushedEarly := hitGap && !hitCeiling
	return c.emit(flushedEarly, isFinal)
}

// emit materializes the buffer into an AudioChunk, retains the trailing
// overlap for the next chunk, and resets to Idle. Caller holds the lock.
func (c *Chunker) emit(flushedEarly, isFinal bool) *pipeline.AudioChunk {
	samples := c.buffer
	durationMS := int(float64(len(samples)) / float64(c.cfg.SampleRate) * 1000)

	chunk := &pipeline.AudioChunk{
		Samples:      samples,
		DurationMS:   durationMS,
		ChunkID:      c.nextChunkID,
		StartSeq:     c.startSeq,
		EndSeq:       c.endSeq,
		FlushedEarly: flushedEarly,
		IsFinal:      isFinal,
	}
	c.nextChunkID++

	overlapSamples := c.cfg.OverlapMS * c.cfg.SampleRate / 1000
	if overlapSamples > len(samples) {
		overlapSamples = len(samples)
	}
	if isFinal {
		c.overlapTail = nil
	} else {
		tail := make([]int16, overlapSamples)
		copy(tail, samples[len(samples)-overlapSamples:])
		c.overlapTail = tail
	}

	c.buffer = nil
	c.state = Idle
	c.hasSilence = false

	return chunk
}

// Flush returns whatever is buffered (possibly nil) and moves back to
// Idle. Called on shutdown and on receipt of a control SpeechEnd.
func (c *Chunker) Flush() *pipeline.AudioChunk {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle || len(c.buffer) == 0 {
		c.state = Idle
		c.buffer = nil
		c.overlapTail = nil
		return nil
	}
	return c.emit(false, true)
}

// Cancel discards any buffered samples and resets to Idle without
// emitting a chunk (Testable Property 11).
func (c *Chunker) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer = nil
	c.overlapTail = nil
	c.state = Idle
	c.hasSilence = false
}

func (c *Chunker) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// VADEventToFinal is a small adapter: the orchestrator wires VAD events to
// the chunker's isFinal parameter via this helper, keeping the
// SpeechEnd-is-the-only-is_final rule (§4.C) in one place.
func VADEventToFinal(ev vad.Event) bool {
	return ev == vad.EventSpeechEnd
}
