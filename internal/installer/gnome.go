package installer

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const extensionUUID = "voicetype@voicetype.dev"

//go:embed assets/gnome/voicetype@voicetype.dev/extension.js
var extensionJS string

//go:embed assets/gnome/voicetype@voicetype.dev/metadata.json
var metadataJSON string

//go:embed assets/gnome/voicetype@voicetype.dev/stylesheet.css
var stylesheetCSS string

//go:embed assets/gnome/voicetype@voicetype.dev/schemas/org.gnome.shell.extensions.voicetype.gschema.xml
var gschemaXML string

// InstallGnomeExtension installs the systemd service and the optional
// GNOME Shell panel-indicator extension.
func InstallGnomeExtension(ctx context.Context) error {
	if err := InstallService(ctx); err != nil {
		return fmt.Errorf("install systemd service: %w", err)
	}
	return installExtensionFiles(ctx)
}

// UninstallGnomeExtension stops and disables the systemd service, then
// disables and removes the GNOME Shell extension.
func UninstallGnomeExtension(ctx context.Context) error {
	if err := UninstallService(ctx); err != nil {
		return fmt.Errorf("uninstall systemd service: %w", err)
	}

	if err := exec.CommandContext(ctx, "gnome-extensions", "disable", extensionUUID).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to disable extension: %v\n", err)
	}

	dir, err := extensionDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err == nil {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove extension directory: %w", err)
		}
	}
	return nil
}

func installExtensionFiles(ctx context.Context) error {
	dir, err := extensionDir()
	if err != nil {
		return err
	}
	schemasDir := filepath.Join(dir, "schemas")
	if err := os.MkdirAll(schemasDir, 0o755); err != nil {
		return fmt.Errorf("create extension directories: %w", err)
	}

	files := map[string]string{
		filepath.Join(dir, "extension.js"):                                           extensionJS,
		filepath.Join(dir, "metadata.json"):                                          metadataJSON,
		filepath.Join(dir, "stylesheet.css"):                                         stylesheetCSS,
		filepath.Join(schemasDir, "org.gnome.shell.extensions.voicetype.gschema.xml"): gschemaXML,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
	}

	if err := exec.CommandContext(ctx, "glib-compile-schemas", schemasDir).Run(); err != nil {
		return fmt.Errorf("glib-compile-schemas failed (is glib2-devel/libglib2.0-dev installed?): %w", err)
	}

	if err := exec.CommandContext(ctx, "gnome-extensions", "enable", extensionUUID).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to enable extension (not in a GNOME session?): %v\n", err)
	}
	return nil
}

func extensionDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "gnome-shell", "extensions", extensionUUID), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", fmt.Errorf("cannot determine user data directory: HOME and XDG_DATA_HOME both unset")
	}
	return filepath.Join(home, ".local", "share", "gnome-shell", "extensions", extensionUUID), nil
}
