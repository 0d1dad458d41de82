package sink

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// CopyToClipboard places text on the Wayland clipboard via wl-copy. It
// does not touch the primary selection.
func CopyToClipboard(ctx context.Context, text string) error {
	cctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "wl-copy")
	cmd.Stdin = bytes.NewReader([]byte(text))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wl-copy: %w: %s", err, stderr.String())
	}
	return nil
}
