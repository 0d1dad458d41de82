package cli

import (
	"fmt"
	"io"

	"github.com/gen2brain/malgo"

	"github.com/voicetype/voicetype/internal/logger"
)

// runDevices lists audio capture devices by opening a throwaway malgo
// context, the same one internal/audio.Capturer uses to resolve a named
// device.
func runDevices(g globalFlags, log *logger.Logger, stdout, stderr io.Writer) int {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize audio backend: %v\n", err)
		return ExitFatal
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		fmt.Fprintf(stderr, "failed to list capture devices: %v\n", err)
		return ExitFatal
	}

	if len(infos) == 0 {
		fmt.Fprintln(stdout, "no capture devices found")
		return ExitOK
	}
	for _, info := range infos {
		fmt.Fprintln(stdout, info.Name())
	}
	return ExitOK
}
