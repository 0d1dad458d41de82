package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultAppliesExpectedValues(t *testing.T) {
	cfg := Default()
	if cfg.SampleRate != 16000 {
		t.Fatalf("SampleRate = %d, want 16000", cfg.SampleRate)
	}
	if cfg.Chunker.TargetChunkMS != 2500 {
		t.Fatalf("Chunker.TargetChunkMS = %d, want 2500", cfg.Chunker.TargetChunkMS)
	}
	if cfg.PasteKey != "auto" {
		t.Fatalf("PasteKey = %q, want auto", cfg.PasteKey)
	}
	if cfg.Correction.Backend != "hybrid" {
		t.Fatalf("Correction.Backend = %q, want hybrid", cfg.Correction.Backend)
	}
}

func TestLoadAppliesDefaultsOnPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voicetype.yaml")
	if err := os.WriteFile(path, []byte("model: small.en\nvad:\n  speech_threshold: 0.05\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "small.en" {
		t.Fatalf("Model = %q, want small.en", cfg.Model)
	}
	if cfg.VAD.SpeechThreshold != 0.05 {
		t.Fatalf("VAD.SpeechThreshold = %v, want 0.05", cfg.VAD.SpeechThreshold)
	}
	if cfg.Chunker.MaxChunkMS != 6000 {
		t.Fatalf("Chunker.MaxChunkMS = %d, want default 6000", cfg.Chunker.MaxChunkMS)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/voicetype.yaml"); err == nil {
		t.Fatal("expected error loading a missing config file")
	}
}
