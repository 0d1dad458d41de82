package correction

import "testing"

type recordingEngine struct {
	calls int
	out   string
}

func (r *recordingEngine) Correct(text string) (string, error) {
	r.calls++
	return r.out, nil
}
func (r *recordingEngine) Close() error { return nil }

func TestHybridEnglishUsesNeural(t *testing.T) {
	eng := &recordingEngine{out: "corrected"}
	h := &Hybrid{Neural: eng}

	got, err := h.Correct("teh quick fox", "en")
	if err != nil {
		t.Fatal(err)
	}
	if got != "corrected" {
		t.Fatalf("Correct() = %q, want %q", got, "corrected")
	}
	if eng.calls != 1 {
		t.Fatalf("expected neural engine called once, got %d", eng.calls)
	}
}

func TestHybridWhitelistedUsesDictionary(t *testing.T) {
	dict := NewFrequencyDictionary("he", map[string]int{"שלום": 100})
	h := &Hybrid{Dictionaries: map[string]*FrequencyDictionary{"he": dict}}

	got, err := h.Correct("שלום", "he")
	if err != nil {
		t.Fatal(err)
	}
	if got != "שלום" {
		t.Fatalf("Correct() = %q, want exact dictionary match", got)
	}
}

func TestHybridNonWhitelistedFallsBackToPassthrough(t *testing.T) {
	eng := &recordingEngine{out: "should not be used"}
	h := &Hybrid{Neural: eng}

	got, err := h.Correct("bonjour le monde", "fr")
	if err != nil {
		t.Fatal(err)
	}
	if got != "bonjour le monde" {
		t.Fatalf("Correct() = %q, want passthrough of original text", got)
	}
	if eng.calls != 0 {
		t.Fatal("neural engine must not be invoked for a non-English, non-whitelisted language")
	}
}

func TestHybridSupportsMultipleLanguages(t *testing.T) {
	h := &Hybrid{
		Neural: &recordingEngine{out: "en-fixed"},
		Dictionaries: map[string]*FrequencyDictionary{
			"ar": NewFrequencyDictionary("ar", map[string]int{"مرحبا": 10}),
			"ko": NewFrequencyDictionary("ko", map[string]int{"안녕": 10}),
		},
	}

	if got, _ := h.Correct("hello", "en"); got != "en-fixed" {
		t.Fatalf("en dispatch failed: %q", got)
	}
	if got, _ := h.Correct("مرحبا", "ar"); got != "مرحبا" {
		t.Fatalf("ar dispatch failed: %q", got)
	}
	if got, _ := h.Correct("안녕", "ko"); got != "안녕" {
		t.Fatalf("ko dispatch failed: %q", got)
	}
}

// TestCorrectionGating is Testable Property 8.
func TestCorrectionGating(t *testing.T) {
	allConfident := []float64{0.9, 0.95, 1.0}
	if NeedsCorrection(allConfident) {
		t.Fatal("expected no correction needed when every token is above threshold")
	}

	mixed := []float64{0.9, 0.5}
	if !NeedsCorrection(mixed) {
		t.Fatal("expected correction needed when at least one token is below threshold")
	}
}
