// Package sink implements station F: delivering text to the focused
// window via clipboard-paste, classifying the paste key by the focused
// window's class.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/voicetype/voicetype/internal/logger"
)

// queryTimeout bounds every compositor/subprocess probe (§5 "Timeouts").
const queryTimeout = 1 * time.Second

// PasteKey is the synthetic keystroke sequence to send after a clipboard
// copy.
type PasteKey string

const (
	PasteKeyAuto       PasteKey = "auto"
	PasteKeyCtrlV      PasteKey = "ctrl+v"
	PasteKeyCtrlShiftV PasteKey = "ctrl+shift+v"
)

// knownTerminals is a list of app-ids that are known terminal emulators,
// for which the paste key is Ctrl+Shift+V rather than Ctrl+V.
var knownTerminals = map[string]bool{
	"alacritty": true, "kitty": true, "foot": true,
	"wezterm": true, "wezterm-gui": true, "ghostty": true,
	"rio": true, "contour": true, "blackbox": true,
	"gnome-terminal": true, "gnome-terminal-server": true,
	"org.gnome.terminal": true, "org.gnome.ptyxis": true, "ptyxis": true,
	"konsole": true, "org.kde.konsole": true,
	"xterm": true, "urxvt": true, "rxvt": true, "st": true,
	"terminator": true, "tilix": true, "sakura": true,
	"guake": true, "yakuake": true, "xfce4-terminal": true,
	"mate-terminal": true, "lxterminal": true, "terminology": true,
	"cool-retro-term": true, "termite": true, "havoc": true, "wayst": true,
}

// terminalSubstrings catches unknown app-ids that are plainly terminals
// (e.g. "com.acme.MyTerminal"). "terminal" mirrors the original
// heuristic; "tty" and "console" extend it to a few common emulators
// the static list misses.
var terminalSubstrings = []string{"terminal", "tty", "console"}

// ResolvePasteKey implements Testable Property 13: "auto" with an app-id
// in the terminal set (by exact match or substring heuristic) yields
// ctrl+shift+v; otherwise ctrl+v. An explicit non-auto value passes
// through unchanged.
func ResolvePasteKey(override PasteKey, appID string) PasteKey {
	if override != "" && override != PasteKeyAuto {
		return override
	}

	normalized := strings.ToLower(appID)
	if knownTerminals[normalized] {
		return PasteKeyCtrlShiftV
	}
	for _, sub := range terminalSubstrings {
		if strings.Contains(normalized, sub) {
			return PasteKeyCtrlShiftV
		}
	}
	return PasteKeyCtrlV
}

// FocusedWindow describes what the compositor reports as focused.
type FocusedWindow struct {
	AppID string
}

// DetectFocusedWindow queries the compositor in the order specified by
// §4.F: tiling-compositor (sway) JSON tree, Hyprland active-window JSON,
// desktop-shell (GNOME) D-Bus eval. Subprocess failures degrade
// gracefully: on total failure it returns an empty AppID, which
// ResolvePasteKey treats as "assume GUI" (Ctrl+V).
func DetectFocusedWindow(ctx context.Context, log *logger.ContextLogger) FocusedWindow {
	if w, ok := detectSway(ctx); ok {
		return w
	}
	if w, ok := detectHyprland(ctx); ok {
		return w
	}
	if w, ok := detectGnomeShell(ctx, log); ok {
		return w
	}
	log.Warn("could not detect focused window via any compositor; assuming GUI (ctrl+v)")
	return FocusedWindow{}
}

func runWithTimeout(ctx context.Context, name string, args ...string) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return exec.CommandContext(cctx, name, args...).Output()
}

type swayNode struct {
	Focused bool   `json:"focused"`
	AppID   string `json:"app_id"`
	WinProp struct {
		Class string `json:"class"`
	} `json:"window_properties"`
	Nodes      []swayNode `json:"nodes"`
	FloatNodes []swayNode `json:"floating_nodes"`
}

func (n swayNode) findFocused() (swayNode, bool) {
	if n.Focused {
		return n, true
	}
	for _, child := range append(append([]swayNode{}, n.Nodes...), n.FloatNodes...) {
		if found, ok := child.findFocused(); ok {
			return found, true
		}
	}
	return swayNode{}, false
}

func detectSway(ctx context.Context) (FocusedWindow, bool) {
	out, err := runWithTimeout(ctx, "swaymsg", "-t", "get_tree")
	if err != nil {
		return FocusedWindow{}, false
	}
	var root swayNode
	if err := json.Unmarshal(out, &root); err != nil {
		return FocusedWindow{}, false
	}
	found, ok := root.findFocused()
	if !ok {
		return FocusedWindow{}, false
	}
	appID := found.AppID
	if appID == "" {
		appID = found.WinProp.Class
	}
	return FocusedWindow{AppID: appID}, appID != ""
}

type hyprlandWindow struct {
	Class string `json:"class"`
}

func detectHyprland(ctx context.Context) (FocusedWindow, bool) {
	out, err := runWithTimeout(ctx, "hyprctl", "activewindow", "-j")
	if err != nil {
		return FocusedWindow{}, false
	}
	var w hyprlandWindow
	if err := json.Unmarshal(out, &w); err != nil || w.Class == "" {
		return FocusedWindow{}, false
	}
	return FocusedWindow{AppID: w.Class}, true
}

// detectGnomeShell asks the shell to evaluate a small JS snippet via
// gdbus. GNOME Shell often runs in a session whose DBUS_SESSION_BUS_ADDRESS
// is stale inside a long-lived terminal multiplexer; refreshDBusAddress
// re-derives it from the shell process environment before retrying once.
func detectGnomeShell(ctx context.Context, log *logger.ContextLogger) (FocusedWindow, bool) {
	const script = "global.display.focus_window ? global.display.focus_window.get_wm_class() : ''"

	out, err := runWithTimeout(ctx, "gdbus", "call", "--session",
		"--dest", "org.gnome.Shell",
		"--object-path", "/org/gnome/Shell",
		"--method", "org.gnome.Shell.Eval", script)
	if err != nil {
		if refreshed := refreshDBusAddress(log); refreshed {
			out, err = runWithTimeout(ctx, "gdbus", "call", "--session",
				"--dest", "org.gnome.Shell",
				"--object-path", "/org/gnome/Shell",
				"--method", "org.gnome.Shell.Eval", script)
		}
		if err != nil {
			return FocusedWindow{}, false
		}
	}

	appID := parseGnomeEvalOutput(out)
	return FocusedWindow{AppID: appID}, appID != ""
}

// parseGnomeEvalOutput parses the gdbus response of the form
// `(true, '"ClassName"')` on success or `(false, '')` when Shell.Eval is
// disabled (GNOME 45+ locks it down by default).
func parseGnomeEvalOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if !strings.HasPrefix(s, "(true,") {
		return ""
	}
	s = strings.TrimPrefix(s, "(true,")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, "')")
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

// refreshDBusAddress reads /proc/<pid>/environ of a running gnome-shell
// process and re-exports DBUS_SESSION_BUS_ADDRESS into our own
// environment, recovering from a stale address inherited by a long-lived
// terminal multiplexer.
func refreshDBusAddress(log *logger.ContextLogger) bool {
	out, err := exec.Command("pgrep", "-x", "gnome-shell").Output()
	if err != nil {
		return false
	}
	pids := strings.Fields(string(out))
	if len(pids) == 0 {
		return false
	}
	pid, err := strconv.Atoi(pids[0])
	if err != nil {
		return false
	}

	environ, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/environ")
	if err != nil {
		return false
	}
	for _, kv := range bytes.Split(environ, []byte{0}) {
		if bytes.HasPrefix(kv, []byte("DBUS_SESSION_BUS_ADDRESS=")) {
			addr := strings.TrimPrefix(string(kv), "DBUS_SESSION_BUS_ADDRESS=")
			os.Setenv("DBUS_SESSION_BUS_ADDRESS", addr)
			log.Debug("refreshed stale DBUS_SESSION_BUS_ADDRESS from pid %d", pid)
			return true
		}
	}
	return false
}
