package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/voicetype/voicetype/internal/logger"
)

// Install downloads the named model into dir (the user's data directory),
// verifying its content against the catalog's recorded SHA-256 before the
// file is made visible under its final name. The download streams to a
// uniquely-suffixed temp file first so a crash or a concurrent `models
// install` never leaves a half-written file at the final path.
func Install(ctx context.Context, name, dir string, log *logger.Logger) (string, error) {
	entry, ok := Get(name)
	if !ok {
		return "", fmt.Errorf("unknown model %q", name)
	}

	finalPath := filepath.Join(dir, entry.Filename)
	if _, err := os.Stat(finalPath); err == nil {
		log.Info("model %s already installed at %s", entry.Name, finalPath)
		return finalPath, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}

	tmpPath := filepath.Join(dir, entry.Filename+".download-"+uuid.NewString())
	if err := downloadToFile(ctx, entry, tmpPath, log); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	if err := verifyChecksum(tmpPath, entry.SHA256); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename downloaded model into place: %w", err)
	}

	log.Info("installed model %s (%d MB) at %s", entry.Name, entry.SizeMB, finalPath)
	return finalPath, nil
}

func downloadToFile(ctx context.Context, entry Entry, tmpPath string, log *logger.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.URL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", entry.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", entry.Name, resp.Status)
	}

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("write downloaded model: %w", err)
	}
	log.Debug("downloaded %d bytes for model %s", written, entry.Name)
	return nil
}

func verifyChecksum(path, wantHex string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open downloaded file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash downloaded file: %w", err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	if got != wantHex {
		return fmt.Errorf("checksum mismatch: got %s, want %s", got, wantHex)
	}
	return nil
}
