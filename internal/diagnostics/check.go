// Package diagnostics probes the daemon's runtime dependencies: the
// clipboard and synthetic-input tools the Sink shells out to, the
// compositor IPC tool used for focused-window detection, and the whisper
// shared library the Transcriber binds to.
package diagnostics

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Status is the outcome of a single dependency check.
type Status int

const (
	// StatusOK means the tool is installed and responded successfully.
	StatusOK Status = iota
	// StatusNotFound means the tool is not on PATH.
	StatusNotFound
	// StatusWarning means the tool exists but something about it looks off.
	StatusWarning
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not found"
	case StatusWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Check is one dependency probe's result.
type Check struct {
	Name   string
	Status Status
	Detail string // populated for StatusWarning
	Remedy string // install hint for StatusNotFound
}

const probeTimeout = 2 * time.Second

func checkCommand(ctx context.Context, name string, args ...string) Status {
	cctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, name, args...)
	err := cmd.Run()
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, exec.ErrNotFound):
		return StatusNotFound
	default:
		var execErr *exec.ExitError
		if errors.As(err, &execErr) {
			return StatusWarning
		}
		return StatusNotFound
	}
}

// checkClipboard probes for wl-copy.
func checkClipboard(ctx context.Context) Check {
	switch checkCommand(ctx, "wl-copy", "--version") {
	case StatusOK:
		return Check{Name: "wl-copy", Status: StatusOK}
	case StatusNotFound:
		return Check{
			Name:   "wl-copy",
			Status: StatusNotFound,
			Remedy: "install the wl-clipboard package (e.g. `apt install wl-clipboard` or `pacman -S wl-clipboard`)",
		}
	default:
		return Check{Name: "wl-copy", Status: StatusWarning, Detail: "`wl-copy --version` exited non-zero"}
	}
}

// checkInjection probes for wtype, falling back to ydotool.
func checkInjection(ctx context.Context) Check {
	if checkCommand(ctx, "wtype", "-h") == StatusOK {
		return Check{Name: "wtype", Status: StatusOK}
	}
	switch checkCommand(ctx, "ydotool", "--version") {
	case StatusOK:
		return Check{Name: "ydotool", Status: checkYdotoolDaemon(ctx)}
	case StatusNotFound:
		return Check{
			Name:   "wtype/ydotool",
			Status: StatusNotFound,
			Remedy: "install wtype, or ydotool plus `systemctl enable --now ydotool`",
		}
	default:
		return Check{Name: "ydotool", Status: StatusWarning, Detail: "`ydotool --version` exited non-zero"}
	}
}

func checkYdotoolDaemon(ctx context.Context) Status {
	cctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	err := exec.CommandContext(cctx, "systemctl", "--user", "is-active", "ydotool").Run()
	if err == nil {
		return StatusOK
	}
	return StatusWarning
}

// checkCompositorTool probes for either swaymsg or hyprctl, whichever is
// present — focused-window detection needs at least one.
func checkCompositorTool(ctx context.Context) Check {
	if checkCommand(ctx, "swaymsg", "--version") == StatusOK {
		return Check{Name: "swaymsg", Status: StatusOK}
	}
	if checkCommand(ctx, "hyprctl", "version") == StatusOK {
		return Check{Name: "hyprctl", Status: StatusOK}
	}
	return Check{
		Name:   "compositor IPC (swaymsg/hyprctl)",
		Status: StatusWarning,
		Detail: "neither swaymsg nor hyprctl responded; falling back to GNOME Shell D-Bus or a GUI-default paste key",
	}
}

// checkWhisperLibrary probes whether the whisper shared library the
// Transcriber links against resolves at runtime, via the loader's own
// dependency check (ldconfig -p).
func checkWhisperLibrary(ctx context.Context) Check {
	cctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(cctx, "ldconfig", "-p").Output()
	if err != nil {
		return Check{Name: "libwhisper", Status: StatusWarning, Detail: "could not run ldconfig to verify libwhisper is resolvable"}
	}
	if strings.Contains(string(out), "libwhisper.so") || strings.Contains(string(out), "libggml.so") {
		return Check{Name: "libwhisper", Status: StatusOK}
	}
	return Check{
		Name:   "libwhisper",
		Status: StatusNotFound,
		Remedy: "build and install whisper.cpp's shared library, or set LD_LIBRARY_PATH to its location",
	}
}

// Run executes every dependency probe and returns their results in a
// fixed, user-facing order.
func Run(ctx context.Context) []Check {
	return []Check{
		checkClipboard(ctx),
		checkInjection(ctx),
		checkCompositorTool(ctx),
		checkWhisperLibrary(ctx),
	}
}
