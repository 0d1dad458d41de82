package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/voicetype/voicetype/internal/audio"
	"github.com/voicetype/voicetype/internal/chunker"
	"github.com/voicetype/voicetype/internal/config"
	"github.com/voicetype/voicetype/internal/correction"
	"github.com/voicetype/voicetype/internal/correction/neural"
	"github.com/voicetype/voicetype/internal/dictionarycatalog"
	"github.com/voicetype/voicetype/internal/ipcserver"
	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/models"
	"github.com/voicetype/voicetype/internal/observability"
	"github.com/voicetype/voicetype/internal/orchestrator"
	"github.com/voicetype/voicetype/internal/sink"
	"github.com/voicetype/voicetype/internal/transcriber"
	"github.com/voicetype/voicetype/internal/vad"
)

// runDaemon runs the voice-typing daemon in the foreground: it loads
// config, builds every station, and serves the control socket until
// SIGINT/SIGTERM or a `shutdown` command arrives.
func runDaemon(args []string, g globalFlags, log *logger.Logger, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	once := fs.Bool("once", false, "record a single utterance, print it, and exit")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	cfg, err := loadDaemonConfig(g)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitFatal
	}
	applyGlobalOverrides(cfg, g)
	if *once {
		cfg.Once = true
	}

	events := observability.NewBroadcaster()

	watcher, err := config.NewWatcher(g.configPath, func(old, new *config.Config) {
		log.Info("config file changed; restart the daemon to pick it up")
	}, log)
	if err != nil {
		log.Warn("config watcher disabled: %v", err)
	} else {
		defer watcher.Stop()
	}

	capturer, err := audio.New(4096, cfg.AudioDevice, log)
	if err != nil {
		fmt.Fprintf(stderr, "failed to open audio device: %v\n", err)
		return ExitFatal
	}

	engine, err := buildEngine(cfg, log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		_ = capturer.Close()
		return ExitModelNotInstalled
	}

	corrector, err := buildCorrector(cfg, log)
	if err != nil {
		log.Warn("correction backend degraded to passthrough: %v", err)
		corrector = correction.Passthrough{}
	}

	orch := orchestrator.New(orchestrator.Config{
		VAD: vad.Config{
			SpeechThreshold:   cfg.VAD.SpeechThreshold,
			SilenceDurationMS: cfg.VAD.SilenceDurationMS,
			MinSpeechMS:       cfg.VAD.MinSpeechMS,
			AutoLevel:         cfg.VAD.AutoLevel,
		},
		Chunker: chunker.Config{
			SampleRate:    cfg.SampleRate,
			TargetChunkMS: cfg.Chunker.TargetChunkMS,
			MaxChunkMS:    cfg.Chunker.MaxChunkMS,
			InitialGapMS:  cfg.Chunker.InitialGapMS,
			MinGapMS:      cfg.Chunker.MinGapMS,
			OverlapMS:     cfg.Chunker.OverlapMS,
		},
		PasteKey:    sink.PasteKey(cfg.PasteKey),
		FanOut:      cfg.FanOut,
		Correction:  corrector,
		DisplayOnly: cfg.Once,
	}, capturer, engine, log, events)

	server := ipcserver.New(g.socketPath, orch, events, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Once {
		return runOnce(ctx, orch, stdout, stderr)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx) }()

	log.Info("daemon ready: socket=%s model=%s", g.socketPath, engine.ModelName())

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			fmt.Fprintf(stderr, "control socket error: %v\n", err)
		}
	}

	_ = server.Close()
	if orch.IsRecording() {
		_ = orch.Stop()
	}
	if err := orch.Close(); err != nil {
		log.Warn("error during shutdown: %v", err)
	}
	return ExitOK
}

// runOnce drives a single start/wait-for-utterance/stop cycle for
// `daemon --once`, printing the resulting text and exiting.
func runOnce(ctx context.Context, orch *orchestrator.Orchestrator, stdout, stderr io.Writer) int {
	if err := orch.Start(); err != nil {
		fmt.Fprintf(stderr, "failed to start capture: %v\n", err)
		return ExitFatal
	}

	text, err := orch.LastUtteranceText(ctx)
	_ = orch.Stop()
	_ = orch.Close()

	if err != nil {
		fmt.Fprintf(stderr, "no utterance captured: %v\n", err)
		return ExitFatal
	}
	fmt.Fprintln(stdout, text)
	return ExitOK
}

func loadDaemonConfig(g globalFlags) (*config.Config, error) {
	if g.configPath == "" {
		return config.Default(), nil
	}
	if _, err := os.Stat(g.configPath); err != nil {
		return config.Default(), nil
	}
	return config.Load(g.configPath)
}

func applyGlobalOverrides(cfg *config.Config, g globalFlags) {
	if g.model != "" {
		cfg.Model = g.model
	}
	if g.language != "" {
		cfg.Language = g.language
	}
	if g.chunkSize > 0 {
		cfg.Chunker.TargetChunkMS = int(g.chunkSize * 1000)
	}
}

// buildEngine resolves the configured model to an installed path and
// constructs the (optionally fanned-out) Whisper engine.
func buildEngine(cfg *config.Config, log *logger.Logger) (transcriber.Engine, error) {
	dir, err := modelsDir()
	if err != nil {
		return nil, err
	}

	primary, err := loadEngine(cfg.Model, dir, cfg.Language, log)
	if err != nil {
		return nil, err
	}
	if !cfg.FanOut {
		return primary, nil
	}

	secondaryName := "small"
	if secondaryName == cfg.Model {
		return primary, nil
	}
	secondary, err := loadEngine(secondaryName, dir, cfg.Language, log)
	if err != nil {
		log.Warn("fan-out secondary model unavailable, running single-engine: %v", err)
		return primary, nil
	}
	return &transcriber.FanOut{Primary: primary, Secondary: secondary}, nil
}

func loadEngine(modelName, dir, language string, log *logger.Logger) (transcriber.Engine, error) {
	entry, ok := models.Get(modelName)
	if !ok {
		return nil, fmt.Errorf("unknown model %q; run `voicetype models list` to see available models", modelName)
	}
	path := filepath.Join(dir, entry.Filename)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model %q is not installed; run `voicetype models install %s`", modelName, modelName)
	}
	shared, err := transcriber.LoadSharedModel(path, log)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", modelName, err)
	}
	return transcriber.NewWhisperEngine(shared, transcriber.Config{
		ModelPath: modelName,
		Language:  language,
	}, log)
}

// buildCorrector wires the hybrid corrector: neural for English, a
// frequency dictionary per installed, whitelisted language, passthrough
// otherwise.
func buildCorrector(cfg *config.Config, log *logger.Logger) (correction.Corrector, error) {
	switch cfg.Correction.Backend {
	case "none":
		return correction.Passthrough{}, nil
	case "dictionary":
		dicts, err := loadDictionaries(cfg.Correction.SymspellLanguages)
		return &correction.Hybrid{Dictionaries: dicts}, err
	case "neural":
		eng, err := neural.NewEngine("")
		return &correction.Hybrid{Neural: eng}, err
	default: // "hybrid"
		eng, nErr := neural.NewEngine("")
		dicts, dErr := loadDictionaries(cfg.Correction.SymspellLanguages)
		hybrid := &correction.Hybrid{Neural: eng, Dictionaries: dicts}
		if nErr != nil {
			return hybrid, nErr
		}
		return hybrid, dErr
	}
}

func loadDictionaries(languages []string) (map[string]*correction.FrequencyDictionary, error) {
	dir, err := dictionariesDir()
	if err != nil {
		return nil, err
	}

	dicts := make(map[string]*correction.FrequencyDictionary)
	for _, lang := range languages {
		entry, ok := dictionarycatalog.Get(lang)
		if !ok {
			continue
		}
		path := filepath.Join(dir, entry.Filename)
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		dict, loadErr := correction.LoadFrequencyDictionary(lang, path)
		if loadErr != nil {
			return dicts, loadErr
		}
		dicts[lang] = dict
	}
	return dicts, nil
}
