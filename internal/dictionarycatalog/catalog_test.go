package dictionarycatalog

import (
	"strings"
	"testing"
)

func TestCatalogEntriesAreWellFormed(t *testing.T) {
	seenLang := map[string]bool{}
	seenFile := map[string]bool{}

	for _, e := range List() {
		if e.Language == "" {
			t.Fatalf("entry %+v has empty language code", e)
		}
		if seenLang[e.Language] {
			t.Fatalf("duplicate language code %q", e.Language)
		}
		seenLang[e.Language] = true

		if seenFile[e.Filename] {
			t.Fatalf("duplicate filename %q", e.Filename)
		}
		seenFile[e.Filename] = true

		if len(e.SHA256) != 64 {
			t.Fatalf("language %q: sha256 %q has length %d, want 64", e.Language, e.SHA256, len(e.SHA256))
		}
		for _, c := range e.SHA256 {
			if !strings.ContainsRune("0123456789abcdef", c) {
				t.Fatalf("language %q: sha256 %q contains non-hex rune %q", e.Language, e.SHA256, c)
			}
		}

		if !strings.Contains(e.URL, e.Filename) {
			t.Fatalf("language %q: url %q does not contain filename %q", e.Language, e.URL, e.Filename)
		}
		if e.SizeKB <= 0 {
			t.Fatalf("language %q: size_kb = %d, want > 0", e.Language, e.SizeKB)
		}
	}
}

func TestGetKnownLanguage(t *testing.T) {
	e, ok := Get("he")
	if !ok {
		t.Fatal("expected he dictionary to exist")
	}
	if e.DisplayName != "Hebrew" {
		t.Fatalf("DisplayName = %q, want Hebrew", e.DisplayName)
	}
	if e.Filename != "he-100k.txt" {
		t.Fatalf("Filename = %q, want he-100k.txt", e.Filename)
	}
}

func TestGetUnknownLanguage(t *testing.T) {
	if _, ok := Get("fr"); ok {
		t.Fatal("fr is not in this project's whitelist and should not be cataloged")
	}
}

func TestHas(t *testing.T) {
	if !Has("zh") {
		t.Fatal("expected zh to be cataloged")
	}
	if Has("en") {
		t.Fatal("en is handled by the neural corrector, not a frequency dictionary")
	}
}

func TestListMatchesCorrectionWhitelist(t *testing.T) {
	want := map[string]bool{"he": true, "ar": true, "zh": true, "ja": true, "ko": true}
	got := map[string]bool{}
	for _, e := range List() {
		got[e.Language] = true
	}
	if len(got) != len(want) {
		t.Fatalf("catalog has %d languages, want %d", len(got), len(want))
	}
	for lang := range want {
		if !got[lang] {
			t.Fatalf("catalog missing expected language %q", lang)
		}
	}
}
