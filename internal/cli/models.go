package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/models"
)

func runModels(args []string, g globalFlags, log *logger.Logger, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: voicetype models list|install <name>")
		return ExitUsageError
	}

	switch args[0] {
	case "list":
		return runModelsList(stdout)
	case "install":
		if len(args) < 2 {
			fmt.Fprintln(stderr, "usage: voicetype models install <name>")
			return ExitUsageError
		}
		return runModelsInstall(args[1], log, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown models subcommand %q\n", args[0])
		return ExitUsageError
	}
}

func runModelsList(stdout io.Writer) int {
	dir, err := modelsDir()
	for _, m := range models.List() {
		installed := ""
		if err == nil {
			if _, statErr := os.Stat(filepath.Join(dir, m.Filename)); statErr == nil {
				installed = " (installed)"
			}
		}
		fmt.Fprintf(stdout, "%-10s %-24s %5d MB%s\n", m.Name, m.DisplayName, m.SizeMB, installed)
	}
	return ExitOK
}

func runModelsInstall(name string, log *logger.Logger, stdout, stderr io.Writer) int {
	if _, ok := models.Get(name); !ok {
		fmt.Fprintf(stderr, "unknown model %q; run `voicetype models list` to see available models\n", name)
		return ExitModelNotInstalled
	}

	dir, err := modelsDir()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitFatal
	}

	path, err := models.Install(context.Background(), name, dir, log)
	if err != nil {
		fmt.Fprintf(stderr, "failed to install model %q: %v\n", name, err)
		return ExitFatal
	}
	fmt.Fprintf(stdout, "installed %s at %s\n", name, path)
	return ExitOK
}
