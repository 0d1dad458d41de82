package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/voicetype/voicetype/internal/installer"
)

func runInstallService(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("install-service", flag.ContinueOnError)
	fs.SetOutput(stderr)
	gnome := fs.Bool("gnome", false, "also install the GNOME Shell panel extension")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	var err error
	if *gnome {
		err = installer.InstallGnomeExtension(context.Background())
	} else {
		err = installer.InstallService(context.Background())
	}
	if err != nil {
		fmt.Fprintf(stderr, "failed to install service: %v\n", err)
		return ExitFatal
	}
	return ExitOK
}

func runUninstallService(stderr io.Writer) int {
	ctx := context.Background()
	if err := installer.UninstallGnomeExtension(ctx); err != nil {
		fmt.Fprintf(stderr, "failed to uninstall service: %v\n", err)
		return ExitFatal
	}
	return ExitOK
}
