package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voicetype/voicetype/internal/logger"
)

func TestCatalogEntriesAreWellFormed(t *testing.T) {
	seenName := map[string]bool{}
	seenFile := map[string]bool{}

	for _, e := range List() {
		if seenName[e.Name] {
			t.Fatalf("duplicate model name %q", e.Name)
		}
		seenName[e.Name] = true

		if seenFile[e.Filename] {
			t.Fatalf("duplicate filename %q", e.Filename)
		}
		seenFile[e.Filename] = true

		if len(e.SHA256) != 64 {
			t.Fatalf("model %q: sha256 %q has length %d, want 64", e.Name, e.SHA256, len(e.SHA256))
		}
		if !strings.Contains(e.URL, e.Filename) {
			t.Fatalf("model %q: url %q does not contain filename %q", e.Name, e.URL, e.Filename)
		}
		if e.SizeMB <= 0 {
			t.Fatalf("model %q: size_mb = %d, want > 0", e.Name, e.SizeMB)
		}
	}
}

func TestGetUnknownModel(t *testing.T) {
	if _, ok := Get("does-not-exist"); ok {
		t.Fatal("expected unknown model name to miss")
	}
}

func TestInstallVerifiesChecksumAndIsIdempotent(t *testing.T) {
	content := []byte("fake-model-bytes-for-test")
	sum := sha256.Sum256(content)
	checksum := hex.EncodeToString(sum[:])

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	catalog = []Entry{{
		Name:     "test-model",
		Filename: "test-model.bin",
		URL:      srv.URL,
		SizeMB:   1,
		SHA256:   checksum,
	}}

	dir := t.TempDir()
	log := logger.NewWithConfig(logger.Config{Level: logger.LevelError, Output: os.Stderr})

	path, err := Install(context.Background(), "test-model", dir, log)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if filepath.Base(path) != "test-model.bin" {
		t.Fatalf("path = %q, want basename test-model.bin", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file left in dir, got %d", len(entries))
	}

	// A second install should short-circuit without re-downloading.
	path2, err := Install(context.Background(), "test-model", dir, log)
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if path2 != path {
		t.Fatalf("path2 = %q, want %q", path2, path)
	}
}

func TestInstallRejectsChecksumMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("unexpected-content"))
	}))
	defer srv.Close()

	catalog = []Entry{{
		Name:     "bad-checksum-model",
		Filename: "bad-checksum-model.bin",
		URL:      srv.URL,
		SizeMB:   1,
		SHA256:   strings.Repeat("0", 64),
	}}

	dir := t.TempDir()
	log := logger.NewWithConfig(logger.Config{Level: logger.LevelError, Output: os.Stderr})

	if _, err := Install(context.Background(), "bad-checksum-model", dir, log); err == nil {
		t.Fatal("expected checksum mismatch error")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files left behind after checksum failure, got %d", len(entries))
	}
}
