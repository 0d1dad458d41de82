// Package cli implements the `voicetype` command-line surface (§6 "CLI
// surface"): a single binary with subcommands for running the daemon,
// driving it over the control socket, managing models, and diagnostics.
package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/voicetype/voicetype/internal/logger"
)

// Exit codes per §6: "0 success; non-zero on CLI parse error, IPC connect
// failure, model-not-installed, or fatal pipeline error."
const (
	ExitOK                = 0
	ExitUsageError        = 1
	ExitIPCError          = 2
	ExitModelNotInstalled = 3
	ExitFatal             = 4
)

// globalFlags holds the flags accepted before the subcommand name.
type globalFlags struct {
	configPath string
	quiet      bool
	verbosity  verbosityCount
	socketPath string
	model      string
	language   string
	chunkSize  float64
}

// verbosityCount implements flag.Value so repeated -v flags accumulate
// (§6: "-v level meter + results, -vv full diagnostics").
type verbosityCount int

func (v *verbosityCount) String() string { return fmt.Sprintf("%d", int(*v)) }
func (v *verbosityCount) Set(string) error {
	*v++
	return nil
}
func (v *verbosityCount) IsBoolFlag() bool { return true }

// Run parses args (excluding the program name) and executes the selected
// subcommand, returning the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("voicetype", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var g globalFlags
	fs.StringVar(&g.configPath, "config", "", "path to the config file")
	fs.BoolVar(&g.quiet, "quiet", false, "suppress non-error output")
	fs.Var(&g.verbosity, "v", "increase verbosity (repeatable: -v level meter + results, -vv full diagnostics)")
	fs.BoolFunc("vv", "shorthand for -v -v (full diagnostics)", func(string) error {
		g.verbosity += 2
		return nil
	})
	fs.StringVar(&g.socketPath, "socket", "", "path to the control socket")
	fs.StringVar(&g.model, "model", "", "model name override")
	fs.StringVar(&g.language, "language", "", "language hint override (\"auto\" or ISO-639-1)")
	fs.Float64Var(&g.chunkSize, "chunk-size", 0, "target chunk size in seconds")

	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return ExitUsageError
	}

	if g.socketPath == "" {
		g.socketPath = defaultSocketPath()
	}
	if g.configPath == "" {
		if path, err := defaultConfigPath(); err == nil {
			g.configPath = path
		}
	}

	log := logger.NewWithConfig(logger.Config{
		Level:  verbosityToLevel(g),
		Format: logger.FormatText,
		Output: stderr,
	})

	sub, subArgs := rest[0], rest[1:]
	switch sub {
	case "daemon":
		return runDaemon(subArgs, g, log, stdout, stderr)
	case "start", "stop", "toggle", "cancel", "status":
		return runControlCommand(sub, g, stdout, stderr)
	case "devices":
		return runDevices(g, log, stdout, stderr)
	case "models":
		return runModels(subArgs, g, log, stdout, stderr)
	case "check":
		return runCheck(stdout, stderr)
	case "install-service":
		return runInstallService(subArgs, stderr)
	case "uninstall-service":
		return runUninstallService(stderr)
	case "benchmark":
		return runBenchmark(subArgs, g, log, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown subcommand %q\n", sub)
		printUsage(stderr)
		return ExitUsageError
	}
}

func verbosityToLevel(g globalFlags) logger.Level {
	switch {
	case g.quiet:
		return logger.LevelError
	case g.verbosity >= 2:
		return logger.LevelDebug
	case g.verbosity == 1:
		return logger.LevelInfo
	default:
		return logger.LevelInfo
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: voicetype [global flags] <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  daemon                 run the voice-typing daemon in the foreground")
	fmt.Fprintln(w, "  start|stop|toggle|cancel|status")
	fmt.Fprintln(w, "                         control a running daemon over its socket")
	fmt.Fprintln(w, "  devices                list audio input devices")
	fmt.Fprintln(w, "  models list|install <name>")
	fmt.Fprintln(w, "                         list or download acoustic models")
	fmt.Fprintln(w, "  check                  probe runtime dependencies")
	fmt.Fprintln(w, "  install-service        install the systemd user unit (add --gnome for the panel extension)")
	fmt.Fprintln(w, "  uninstall-service      remove the systemd user unit and any installed extension")
	fmt.Fprintln(w, "  benchmark <file.wav>   offline transcription timing")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "global flags:")
	fmt.Fprintln(w, "  --config PATH, --quiet, -v, --socket PATH, --model NAME, --language LANG, --chunk-size SECONDS")
}
