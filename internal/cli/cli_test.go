package cli

import (
	"bytes"
	"testing"

	"github.com/voicetype/voicetype/internal/logger"
)

func TestRunWithNoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(nil, &stdout, &stderr)
	if code != ExitUsageError {
		t.Fatalf("exit code = %d, want %d", code, ExitUsageError)
	}
	if stderr.Len() == 0 {
		t.Fatal("expected usage text on stderr")
	}
}

func TestRunWithUnknownSubcommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"not-a-command"}, &stdout, &stderr)
	if code != ExitUsageError {
		t.Fatalf("exit code = %d, want %d", code, ExitUsageError)
	}
}

func TestRunWithUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"--not-a-flag"}, &stdout, &stderr)
	if code != ExitUsageError {
		t.Fatalf("exit code = %d, want %d", code, ExitUsageError)
	}
}

func TestVerbosityCountAccumulates(t *testing.T) {
	var v verbosityCount
	if v.IsBoolFlag() != true {
		t.Fatal("verbosityCount must be a bool flag to support repeatable -v")
	}
	_ = v.Set("")
	_ = v.Set("")
	if v != 2 {
		t.Fatalf("verbosityCount = %d, want 2", v)
	}
	if v.String() != "2" {
		t.Fatalf("String() = %q, want \"2\"", v.String())
	}
}

func TestVerbosityToLevel(t *testing.T) {
	cases := []struct {
		name string
		g    globalFlags
		want logger.Level
	}{
		{"quiet wins", globalFlags{quiet: true, verbosity: 2}, logger.LevelError},
		{"default info", globalFlags{}, logger.LevelInfo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := verbosityToLevel(tc.g); got != tc.want {
				t.Fatalf("verbosityToLevel(%+v) = %v, want %v", tc.g, got, tc.want)
			}
		})
	}
}

func TestDefaultSocketPathIsNonEmpty(t *testing.T) {
	if defaultSocketPath() == "" {
		t.Fatal("defaultSocketPath returned empty string")
	}
}

func TestDefaultConfigPathPrefersXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgcfg")
	path, err := defaultConfigPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/tmp/xdgcfg/voicetype/voicetype.yaml"
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
}
