package cli

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/voicetype/voicetype/internal/benchmark"
	"github.com/voicetype/voicetype/internal/logger"
)

func runBenchmark(args []string, g globalFlags, log *logger.Logger, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	fs.SetOutput(stderr)
	iterations := fs.Int("iterations", 5, "number of times to repeat transcription")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: voicetype benchmark [--iterations N] <file.wav>")
		return ExitUsageError
	}
	wavPath := fs.Arg(0)

	modelName := g.model
	if modelName == "" {
		modelName = "base.en"
	}

	dir, err := modelsDir()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitFatal
	}

	engine, err := loadEngine(modelName, dir, g.language, log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitModelNotInstalled
	}
	defer engine.Close()

	result, err := benchmark.Run(wavPath, engine, *iterations)
	if err != nil {
		fmt.Fprintf(stderr, "benchmark failed: %v\n", err)
		return ExitFatal
	}

	fmt.Fprintf(stdout, "model:            %s\n", result.ModelName)
	fmt.Fprintf(stdout, "file:             %s\n", filepath.Base(wavPath))
	fmt.Fprintf(stdout, "audio duration:   %d ms\n", result.AudioDurationMS)
	fmt.Fprintf(stdout, "iterations:       %d\n", result.Iterations)
	fmt.Fprintf(stdout, "latency min/mean/max: %d/%.1f/%d ms\n", result.MinLatencyMS, result.MeanLatencyMS, result.MaxLatencyMS)
	fmt.Fprintf(stdout, "real-time factor: %.2fx\n", result.RealTimeFactor)
	fmt.Fprintf(stdout, "detected language: %s (confidence %.2f)\n", result.DetectedLanguage, result.Confidence)
	fmt.Fprintf(stdout, "transcription:    %s\n", result.Transcription)
	return ExitOK
}
