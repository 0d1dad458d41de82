package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultSocketName = "voicetype.sock"
const defaultConfigName = "voicetype.yaml"

// defaultSocketPath returns $XDG_RUNTIME_DIR/voicetype.sock, falling back
// to the system temp directory when no session runtime directory exists
// (e.g. under a bare systemd --user without a login session).
func defaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, defaultSocketName)
	}
	return filepath.Join(os.TempDir(), defaultSocketName)
}

// defaultConfigPath returns $XDG_CONFIG_HOME/voicetype/voicetype.yaml,
// falling back to $HOME/.config.
func defaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "voicetype", defaultConfigName), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", fmt.Errorf("cannot determine config directory: HOME and XDG_CONFIG_HOME both unset")
	}
	return filepath.Join(home, ".config", "voicetype", defaultConfigName), nil
}

// dataDir returns the directory downloaded models and dictionaries live
// under: $XDG_DATA_HOME/voicetype, falling back to $HOME/.local/share.
func dataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "voicetype"), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", fmt.Errorf("cannot determine data directory: HOME and XDG_DATA_HOME both unset")
	}
	return filepath.Join(home, ".local", "share", "voicetype"), nil
}

func modelsDir() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "models"), nil
}

func dictionariesDir() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dictionaries"), nil
}
