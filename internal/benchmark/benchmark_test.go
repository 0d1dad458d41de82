package benchmark

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/voicetype/voicetype/internal/pipeline"
	"github.com/voicetype/voicetype/internal/transcriber"
	"github.com/voicetype/voicetype/internal/wav"
)

var errBoom = errors.New("boom")

func writeTestWAV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fixture.wav")
	samples := make([]int16, 16000) // 1 second at 16kHz
	if err := wav.WriteFile(path, samples, wav.Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunReportsLatencyAndTranscription(t *testing.T) {
	path := writeTestWAV(t, t.TempDir())
	engine := &transcriber.MockEngine{
		Name:     "mock-model",
		Language: "en",
		Response: pipeline.Transcription{Text: "hello world", Confidence: 0.9},
	}

	result, err := Run(path, engine, 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Iterations != 3 {
		t.Fatalf("Iterations = %d, want 3", result.Iterations)
	}
	if len(result.LatenciesMS) != 3 {
		t.Fatalf("got %d latency samples, want 3", len(result.LatenciesMS))
	}
	if result.Transcription != "hello world" {
		t.Fatalf("Transcription = %q, want %q", result.Transcription, "hello world")
	}
	if result.DetectedLanguage != "en" {
		t.Fatalf("DetectedLanguage = %q, want en", result.DetectedLanguage)
	}
	if result.AudioDurationMS != 1000 {
		t.Fatalf("AudioDurationMS = %d, want 1000", result.AudioDurationMS)
	}
}

func TestRunPropagatesEngineError(t *testing.T) {
	path := writeTestWAV(t, t.TempDir())
	engine := &transcriber.MockEngine{Name: "mock-model", Err: errBoom}

	if _, err := Run(path, engine, 1); err == nil {
		t.Fatal("expected an error when the engine fails")
	}
}

func TestRunDefaultsIterationsToOne(t *testing.T) {
	path := writeTestWAV(t, t.TempDir())
	engine := &transcriber.MockEngine{Name: "mock-model", Response: pipeline.Transcription{Text: "x"}}

	result, err := Run(path, engine, 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.Iterations != 1 {
		t.Fatalf("Iterations = %d, want 1", result.Iterations)
	}
}
