package chunker

import (
	"testing"
	"time"

	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/pipeline"
)

func defaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// TestRequiredGapAtAnchors is Testable Property 4.
func TestRequiredGapAtAnchors(t *testing.T) {
	cfg := defaultConfig()

	cases := []struct {
		elapsed, want int
	}{
		{2500, 400},
		{3000, 250},
		{3500, 150},
		{4000, 100},
		{4500, 80},
		{6000, 80},
	}
	for _, tc := range cases {
		if got := cfg.RequiredGapMS(tc.elapsed); got != tc.want {
			t.Errorf("RequiredGapMS(%d) = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
}

func TestRequiredGapInterpolation(t *testing.T) {
	cfg := defaultConfig()
	// Halfway between (3000,250) and (3500,150) is 3250 -> 200.
	if got := cfg.RequiredGapMS(3250); got != 200 {
		t.Fatalf("RequiredGapMS(3250) = %d, want 200", got)
	}
}

func TestRequiredGapNeverBelowFloor(t *testing.T) {
	cfg := defaultConfig()
	for elapsed := 0; elapsed <= 10000; elapsed += 100 {
		if got := cfg.RequiredGapMS(elapsed); got < cfg.MinGapMS {
			t.Fatalf("RequiredGapMS(%d) = %d, below floor %d", elapsed, got, cfg.MinGapMS)
		}
	}
}

func newTestChunker(t *testing.T) *Chunker {
	t.Helper()
	return New(Config{}, logger.New(false))
}

func vframe(seq uint64, ts time.Time, speech bool, n int) pipeline.VadFrame {
	samples := make([]int16, n)
	return pipeline.VadFrame{
		AudioFrame: pipeline.AudioFrame{Samples: samples, Sequence: seq, Timestamp: ts},
		IsSpeech:   speech,
	}
}

func TestIgnoresSilenceBeforeSpeech(t *testing.T) {
	c := newTestChunker(t)
	base := time.Unix(0, 0)
	if chunk := c.Feed(vframe(0, base, false, 160), false); chunk != nil {
		t.Fatalf("expected no chunk for pre-speech silence, got %+v", chunk)
	}
	if c.State() != Idle {
		t.Fatalf("expected Idle, got %v", c.State())
	}
}

func TestAccumulatesDuringSpeech(t *testing.T) {
	c := newTestChunker(t)
	base := time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		ts := base.Add(time.Duration(i) * 160 * time.Second / 16000)
		if chunk := c.Feed(vframe(uint64(i), ts, true, 160), false); chunk != nil {
			t.Fatalf("did not expect emission mid-accumulation, got %+v", chunk)
		}
	}
	if c.State() != Accumulating {
		t.Fatalf("expected Accumulating, got %v", c.State())
	}
}

// TestEmitsOnGapThreshold is Testable Property 3/5 groundwork: feed
// continuous speech below target, then a silence run long enough to cross
// initial_gap_ms, and confirm a chunk is emitted with chunk_id 0.
func TestEmitsOnGapThreshold(t *testing.T) {
	c := newTestChunker(t)
	base := time.Unix(0, 0)

	// 1s of speech (well under target_chunk_ms).
	for i := 0; i < 100; i++ {
		ts := base.Add(time.Duration(i) * 10 * time.Millisecond)
		c.Feed(vframe(uint64(i), ts, true, 160), false)
	}

	// Silence frames until initial_gap_ms (400ms) elapses.
	var emitted *pipeline.AudioChunk
	silenceStart := base.Add(1 * time.Second)
	for i := 0; i < 60; i++ {
		ts := silenceStart.Add(time.Duration(i) * 10 * time.Millisecond)
		if chunk := c.Feed(vframe(uint64(100+i), ts, false, 160), false); chunk != nil {
			emitted = chunk
			break
		}
	}

	if emitted == nil {
		t.Fatal("expected a chunk to be emitted once the gap threshold was crossed")
	}
	if emitted.ChunkID != 0 {
		t.Fatalf("expected first chunk_id 0, got %d", emitted.ChunkID)
	}
	if !emitted.FlushedEarly {
		t.Fatal("expected FlushedEarly for a gap-triggered emission")
	}
}

// TestEmitsOnMaxDuration is Testable Property 3: uninterrupted speech
// totaling >= max_chunk_ms always yields a chunk within one frame of the
// ceiling.
func TestEmitsOnMaxDuration(t *testing.T) {
	c := newTestChunker(t)
	cfg := defaultConfig()
	base := time.Unix(0, 0)

	frameMS := 10
	frames := cfg.MaxChunkMS/frameMS + 5
	var emitted *pipeline.AudioChunk
	for i := 0; i < frames; i++ {
		ts := base.Add(time.Duration(i*frameMS) * time.Millisecond)
		if chunk := c.Feed(vframe(uint64(i), ts, true, 160), false); chunk != nil {
			emitted = chunk
			break
		}
	}

	if emitted == nil {
		t.Fatal("expected a chunk forced by the max duration ceiling")
	}
	if emitted.DurationMS > cfg.MaxChunkMS+frameMS {
		t.Fatalf("chunk duration %dms exceeds ceiling %dms by more than one frame", emitted.DurationMS, cfg.MaxChunkMS)
	}
	if emitted.FlushedEarly {
		t.Fatal("ceiling-triggered emission must not be flagged FlushedEarly")
	}
}

func TestFlushReturnsAccumulated(t *testing.T) {
	c := newTestChunker(t)
	base := time.Unix(0, 0)
	c.Feed(vframe(0, base, true, 160), false)
	c.Feed(vframe(1, base.Add(10*time.Millisecond), true, 160), false)

	chunk := c.Flush()
	if chunk == nil {
		t.Fatal("expected Flush to return the accumulated buffer")
	}
	if len(chunk.Samples) != 320 {
		t.Fatalf("expected 320 buffered samples, got %d", len(chunk.Samples))
	}
	if !chunk.IsFinal {
		t.Fatal("expected Flush-emitted chunk to be final")
	}
	if c.State() != Idle {
		t.Fatalf("expected Idle after Flush, got %v", c.State())
	}
}

func TestFlushOnEmptyBufferReturnsNil(t *testing.T) {
	c := newTestChunker(t)
	if chunk := c.Flush(); chunk != nil {
		t.Fatalf("expected nil from Flush on empty buffer, got %+v", chunk)
	}
}

// TestCancelClearsState is Testable Property 11.
func TestCancelClearsState(t *testing.T) {
	c := newTestChunker(t)
	base := time.Unix(0, 0)
	c.Feed(vframe(0, base, true, 160), false)

	c.Cancel()
	if c.State() != Idle {
		t.Fatalf("expected Idle after Cancel, got %v", c.State())
	}

	// The next frame must behave exactly as if starting from Idle: a
	// silence frame produces no chunk.
	if chunk := c.Feed(vframe(1, base.Add(10*time.Millisecond), false, 160), false); chunk != nil {
		t.Fatalf("expected no chunk immediately after Cancel+silence, got %+v", chunk)
	}
}

func TestChunkIDMonotonicity(t *testing.T) {
	c := newTestChunker(t)
	base := time.Unix(0, 0)
	var ids []uint64
	t0 := base

	for utterance := 0; utterance < 3; utterance++ {
		for i := 0; i < 5; i++ {
			t0 = t0.Add(10 * time.Millisecond)
			c.Feed(vframe(0, t0, true, 160), false)
		}
		chunk := c.Flush()
		if chunk == nil {
			t.Fatal("expected a chunk from Flush")
		}
		ids = append(ids, chunk.ChunkID)
	}

	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("chunk_id not strictly increasing: %v", ids)
		}
	}
}
