package transcriber

import (
	"fmt"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/pipeline"
)

// initialPrompt biases decoding toward the vocabulary this daemon is
// actually used for: dictating prose and short commands to a desktop
// session, not reading news scripts.
const initialPrompt = "Voice dictation. Direct address to a computer assistant. Natural spoken English. Punctuation commands: period, comma, question mark, new line."

// SharedModel wraps a whisper.Model loaded once so that one or more
// Context instances can be created from it. The daemon loads one
// SharedModel per engine, including each engine of a fan-out pair.
type SharedModel struct {
	model whisper.Model
	mu    sync.RWMutex
	path  string
	log   *logger.ContextLogger
}

// LoadSharedModel loads a Whisper model file once.
func LoadSharedModel(modelPath string, log *logger.Logger) (*SharedModel, error) {
	ctxLog := log.With("whisper-model")
	ctxLog.Info("loading model from %s", modelPath)

	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model: %w", err)
	}

	ctxLog.Info("model loaded")
	return &SharedModel{model: model, path: modelPath, log: ctxLog}, nil
}

func (m *SharedModel) newContext() (whisper.Context, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.model.NewContext()
}

func (m *SharedModel) Path() string { return m.path }

// WhisperEngine is the primary Engine implementation, wrapping
// whisper.cpp's Go bindings. Calls are serialized with mu: the bindings
// are not re-entrant (invariant 5).
type WhisperEngine struct {
	ctx     whisper.Context
	mu      sync.Mutex
	cfg     Config
	log     *logger.ContextLogger
}

// NewWhisperEngine creates a context from a SharedModel and configures it
// per §4.D (language hint, thread count, translation disabled, token
// timestamps, beam search, initial prompt).
func NewWhisperEngine(shared *SharedModel, cfg Config, log *logger.Logger) (*WhisperEngine, error) {
	ctxLog := log.With("whisper")

	ctx, err := shared.newContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create whisper context: %w", err)
	}

	language := cfg.Language
	if language == "" {
		language = "auto"
	}
	ctx.SetLanguage(language)

	if cfg.Threads > 0 {
		ctx.SetThreads(cfg.Threads)
	}
	ctx.SetTranslate(false)
	ctx.SetTokenTimestamps(true)
	ctx.SetBeamSize(5)
	ctx.SetMaxTextContext(16384)
	ctx.SetInitialPrompt(initialPrompt)

	ctxLog.InfoFields("engine configured", map[string]interface{}{
		"language": language,
		"threads":  cfg.Threads,
		"use_gpu":  cfg.UseGPU,
	})

	return &WhisperEngine{ctx: ctx, cfg: cfg, log: ctxLog}, nil
}

// Transcribe converts int16 PCM to float32 and runs Whisper inference,
// collecting per-segment text and token probabilities.
func (w *WhisperEngine) Transcribe(samples []int16) (pipeline.Transcription, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(samples) == 0 {
		return pipeline.Transcription{}, fmt.Errorf("empty audio samples")
	}

	floatSamples := ConvertPCMToFloat32(samples)

	if err := w.ctx.ResetTimings(); err != nil {
		w.log.Warn("failed to reset timings: %v", err)
	}

	var text string
	var tokens []pipeline.TokenProbability
	var probSum float64
	var probCount int

	err := w.ctx.Process(floatSamples, nil, func(segment whisper.Segment) {
		if text != "" && segment.Text != "" {
			text += " "
		}
		text += segment.Text
		for _, tok := range segment.Tokens {
			tokens = append(tokens, pipeline.TokenProbability{Token: tok.Text, Probability: float64(tok.P)})
			probSum += float64(tok.P)
			probCount++
		}
	}, nil)
	if err != nil {
		return pipeline.Transcription{}, fmt.Errorf("whisper process failed: %w", err)
	}

	confidence := 0.0
	if probCount > 0 {
		// Arithmetic mean of token probabilities (Open Question (a): this
		// implementation documents arithmetic, not geometric, mean).
		confidence = probSum / float64(probCount)
	}

	return pipeline.Transcription{
		Text:       text,
		Language:   w.ctx.Language(),
		Confidence: confidence,
		Tokens:     tokens,
	}, nil
}

func (w *WhisperEngine) ModelName() string    { return w.cfg.ModelPath }
func (w *WhisperEngine) LanguageHint() string { return w.cfg.Language }
func (w *WhisperEngine) Close() error         { return nil }

// ConvertPCMToFloat32 converts 16-bit PCM samples to float32 in [-1,1],
// the format whisper.cpp's Process expects.
func ConvertPCMToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}
