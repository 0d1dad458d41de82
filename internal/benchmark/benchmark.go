// Package benchmark drives the `voicetype benchmark` subcommand: offline
// WAV -> transcription timing against one loaded engine, with no
// live microphone or pipeline stations involved.
package benchmark

import (
	"fmt"
	"time"

	"github.com/voicetype/voicetype/internal/transcriber"
	"github.com/voicetype/voicetype/internal/wav"
)

// Result holds one engine's timing and output over a benchmark run.
type Result struct {
	ModelName        string
	AudioDurationMS  int64
	Iterations       int
	LatenciesMS      []int64
	MeanLatencyMS    float64
	MinLatencyMS     int64
	MaxLatencyMS     int64
	RealTimeFactor   float64 // audio duration / mean transcription latency; >1 means faster than real time
	Transcription    string
	DetectedLanguage string
	Confidence       float64
}

// Run transcribes the samples loaded from wavPath against engine,
// iterations times, and reports timing statistics. Engine.Transcribe is
// not re-entrant, so iterations run sequentially on the calling
// goroutine — never in parallel.
func Run(wavPath string, engine transcriber.Engine, iterations int) (Result, error) {
	if iterations < 1 {
		iterations = 1
	}

	samples, format, err := wav.ReadFile(wavPath)
	if err != nil {
		return Result{}, fmt.Errorf("load wav file: %w", err)
	}
	audioDurationMS := int64(len(samples)) * 1000 / int64(format.SampleRate)

	result := Result{
		ModelName:       engine.ModelName(),
		AudioDurationMS: audioDurationMS,
		Iterations:      iterations,
		LatenciesMS:     make([]int64, 0, iterations),
	}

	var total time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		transcription, err := engine.Transcribe(samples)
		elapsed := time.Since(start)
		if err != nil {
			return Result{}, fmt.Errorf("transcribe iteration %d: %w", i, err)
		}

		ms := elapsed.Milliseconds()
		result.LatenciesMS = append(result.LatenciesMS, ms)
		total += elapsed

		if result.MinLatencyMS == 0 || ms < result.MinLatencyMS {
			result.MinLatencyMS = ms
		}
		if ms > result.MaxLatencyMS {
			result.MaxLatencyMS = ms
		}
		result.Transcription = transcription.Text
		result.DetectedLanguage = transcription.Language
		result.Confidence = transcription.Confidence
	}

	result.MeanLatencyMS = float64(total.Milliseconds()) / float64(iterations)
	if result.MeanLatencyMS > 0 {
		result.RealTimeFactor = float64(audioDurationMS) / result.MeanLatencyMS
	}
	return result, nil
}
