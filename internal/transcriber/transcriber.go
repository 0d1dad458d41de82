// Package transcriber implements station D: mapping an AudioChunk to a
// Transcription via an external, non-reentrant inference engine.
package transcriber

import "github.com/voicetype/voicetype/internal/pipeline"

// Engine is the Transcriber's capability set (§9: "never inheritance").
// Implementations: the primary Whisper binding, a deterministic mock for
// tests, and a fan-out composite over two engines.
type Engine interface {
	// Transcribe processes 16kHz mono i16 samples. Invocation is
	// synchronous and not re-entrant: callers must serialize calls to a
	// single Engine instance (invariant 5).
	Transcribe(samples []int16) (pipeline.Transcription, error)
	ModelName() string
	LanguageHint() string
	Close() error
}

// Config is shared configuration across Engine implementations.
type Config struct {
	ModelPath string
	// Language is "auto" or an ISO-639-1 code.
	Language string
	Threads  uint
	UseGPU   bool
}
