package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// injectMu serializes synthetic key injection: the compositor's input
// method can only accept one synthetic event stream at a time, so at
// most one paste is ever in flight (§5 "Shared resources").
var injectMu sync.Mutex

// Inject sends the synthetic paste keystroke for key, preferring wtype
// and falling back to ydotool when wtype is unavailable (e.g. under a
// compositor that restricts the virtual-keyboard protocol).
func Inject(ctx context.Context, key PasteKey) error {
	injectMu.Lock()
	defer injectMu.Unlock()

	if err := injectWithWtype(ctx, key); err == nil {
		return nil
	} else if !isNotFound(err) {
		return err
	}

	return injectWithYdotool(ctx, key)
}

func wtypeArgs(key PasteKey) []string {
	parts := strings.Split(string(key), "+")
	args := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i == len(parts)-1 {
			args = append(args, "-k", part)
		} else {
			args = append(args, "-M", part)
		}
	}
	return args
}

func injectWithWtype(ctx context.Context, key PasteKey) error {
	cctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "wtype", wtypeArgs(key)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wtype: %w: %s", err, stderr.String())
	}
	return nil
}

// evdevKeycode is the minimal modifier/letter subset needed for a paste
// keystroke; extend as new paste_key overrides require it.
var evdevKeycode = map[string]int{
	"ctrl": 29, "shift": 42, "alt": 56, "super": 125,
	"v": 47,
}

// ydotoolKeySequence builds the "<code>:1 ... <code>:0" press/release
// sequence ydotool expects, pressing modifiers down first and releasing
// them in reverse order.
func ydotoolKeySequence(key PasteKey) (string, error) {
	parts := strings.Split(string(key), "+")
	codes := make([]int, 0, len(parts))
	for _, part := range parts {
		code, ok := evdevKeycode[part]
		if !ok {
			return "", fmt.Errorf("no evdev keycode known for %q", part)
		}
		codes = append(codes, code)
	}

	var down, up []string
	for _, c := range codes {
		down = append(down, fmt.Sprintf("%d:1", c))
	}
	for i := len(codes) - 1; i >= 0; i-- {
		up = append(up, fmt.Sprintf("%d:0", codes[i]))
	}
	return strings.Join(append(down, up...), " "), nil
}

func injectWithYdotool(ctx context.Context, key PasteKey) error {
	seq, err := ydotoolKeySequence(key)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "ydotool", "key", seq)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ydotool: %w: %s", err, stderr.String())
	}
	return nil
}

func isNotFound(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Is(execErr.Err, exec.ErrNotFound)
	}
	return false
}
