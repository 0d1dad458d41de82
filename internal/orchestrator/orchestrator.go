// Package orchestrator wires the six stations (Capture, VAD, Chunker,
// Transcriber, Post-processor, Sink) into one capture session and owns
// its lifecycle: start, stop, cancel, and cooperative shutdown.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/voicetype/voicetype/internal/audio"
	"github.com/voicetype/voicetype/internal/chunker"
	"github.com/voicetype/voicetype/internal/correction"
	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/observability"
	"github.com/voicetype/voicetype/internal/pipeline"
	"github.com/voicetype/voicetype/internal/sink"
	"github.com/voicetype/voicetype/internal/transcriber"
	"github.com/voicetype/voicetype/internal/vad"
)

// channelCapacity sizes the VAD -> Chunker channel; the Chunker ->
// Transcriber and Transcriber -> Sink channels hold 8 items each (§5:
// "bounded FIFO channels of modest capacity, e.g. 8-64 items").
const channelCapacity = 32

// Config bundles the per-station configuration the orchestrator threads
// through to each station's constructor.
type Config struct {
	VAD        vad.Config
	Chunker    chunker.Config
	PasteKey   sink.PasteKey
	FanOut     bool
	Correction correction.Corrector
	// DisplayOnly disables sink delivery: transcriptions are still
	// produced and broadcast as events, never injected. Used by --once.
	DisplayOnly bool
}

// Orchestrator owns the lifetime of one capture session's worth of
// stations and the control-plane state (recording/idle) a client toggles
// over IPC (§5: "a single orchestrator thread owns lifecycle... and the
// IPC listener").
type Orchestrator struct {
	cfg    Config
	log    *logger.ContextLogger
	events *observability.Broadcaster

	capturer  *audio.Capturer
	detector  *vad.Detector
	chunk     *chunker.Chunker
	engine    transcriber.Engine
	stitcher  *pipeline.Stitcher
	corrector correction.Corrector

	mu        sync.Mutex
	recording bool
	wg        sync.WaitGroup
	stopCh    chan struct{}
	cancelled bool

	vadToChunker chan vadSignal
	chunkerToTrx chan *pipeline.AudioChunk
	trxToSink    chan pipeline.Utterance

	// lastUtterance holds the most recent completed utterance for the
	// `toggle`/`stop` IPC reply (buffered 1; newest wins).
	lastUtterance chan pipeline.Utterance
}

type vadSignal struct {
	vf      pipeline.VadFrame
	isFinal bool
}

// New creates an Orchestrator. capturer and engine are pre-constructed
// (by main/cli) so their own failure modes — DeviceUnavailable,
// model-load failure — surface before the daemon reports itself ready.
func New(cfg Config, capturer *audio.Capturer, engine transcriber.Engine, log *logger.Logger, events *observability.Broadcaster) *Orchestrator {
	corrector := cfg.Correction
	if corrector == nil {
		corrector = correction.Passthrough{}
	}

	return &Orchestrator{
		cfg:       cfg,
		log:       log.With("orchestrator"),
		events:    events,
		capturer:  capturer,
		detector:  vad.New(cfg.VAD, log),
		chunk:     chunker.New(cfg.Chunker, log),
		engine:    engine,
		stitcher:  pipeline.NewStitcher(pipeline.StitcherConfig{DeduplicateBoundaries: true}),
		corrector: corrector,

		lastUtterance: make(chan pipeline.Utterance, 1),
	}
}

// IsRecording reports whether a capture session is currently active.
func (o *Orchestrator) IsRecording() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.recording
}

// ModelName exposes the loaded model's name for status responses.
func (o *Orchestrator) ModelName() string { return o.engine.ModelName() }

// Start begins a capture session: spawns the four downstream stations
// (VAD, Chunker, Transcriber+Post-processor, Sink) and starts the
// capture device.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.recording {
		return fmt.Errorf("already recording")
	}

	o.vadToChunker = make(chan vadSignal, channelCapacity)
	o.chunkerToTrx = make(chan *pipeline.AudioChunk, 8)
	o.trxToSink = make(chan pipeline.Utterance, 8)
	o.stopCh = make(chan struct{})
	o.cancelled = false
	o.stitcher.Reset()
	o.detector.Reset()

	if err := o.capturer.Start(); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}

	o.wg.Add(4)
	go o.runVAD()
	go o.runChunker()
	go o.runTranscriber()
	go o.runSink()

	o.recording = true
	o.events.Publish(observability.Event{Kind: observability.KindRecordingStateChanged, Timestamp: time.Now(), Recording: true})
	return nil
}

// Stop ends the capture session cooperatively: stop the device, close
// the upstream channel chain, then let each station drain, flush, and
// exit in turn. Returns once every station has joined or the grace
// window elapses (§5).
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	if !o.recording {
		o.mu.Unlock()
		return fmt.Errorf("not recording")
	}
	o.recording = false
	o.mu.Unlock()

	if err := o.capturer.Stop(); err != nil {
		o.log.Warn("error stopping capture: %v", err)
	}
	close(o.stopCh)

	joined := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(joined)
	}()

	select {
	case <-joined:
	case <-time.After(5 * time.Second):
		o.log.Warn("stations did not join within grace window; continuing shutdown")
	}

	o.events.Publish(observability.Event{Kind: observability.KindRecordingStateChanged, Timestamp: time.Now(), Recording: false})
	return nil
}

// Toggle starts if idle, stops if recording — the IPC `toggle` command.
func (o *Orchestrator) Toggle() (started bool, err error) {
	if o.IsRecording() {
		return false, o.Stop()
	}
	return true, o.Start()
}

// Cancel discards any in-flight chunk and resets Chunker and VAD to Idle
// without emitting text (Testable Property 11), but leaves the session
// recording.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	o.cancelled = true
	o.mu.Unlock()

	o.chunk.Cancel()
	o.detector.Reset()
	o.stitcher.Reset()
	o.events.Publish(observability.Event{
		Kind: observability.KindTranscriptionDropped, Timestamp: time.Now(),
		Reason: string(pipeline.DropCancelled),
	})
}

// LastUtterance blocks until the next completed utterance is available or
// ctx is done; used by the IPC server to answer a `toggle`/`stop` request
// with the resulting transcription (scenario S5).
func (o *Orchestrator) LastUtterance(ctx context.Context) (pipeline.Utterance, error) {
	select {
	case u := <-o.lastUtterance:
		return u, nil
	case <-ctx.Done():
		return pipeline.Utterance{}, ctx.Err()
	}
}

// LastUtteranceText is the ipcserver.Handlers-shaped wrapper around
// LastUtterance, narrowed to the text a client actually needs in a
// `toggle`/`stop` reply.
func (o *Orchestrator) LastUtteranceText(ctx context.Context) (string, error) {
	u, err := o.LastUtterance(ctx)
	if err != nil {
		return "", err
	}
	return u.Text, nil
}

// Close releases the transcriber engine and capture device. Call once,
// after the final Stop.
func (o *Orchestrator) Close() error {
	var result *multierror.Error
	if err := o.engine.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("transcriber close: %w", err))
	}
	if err := o.capturer.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("capturer close: %w", err))
	}
	return result.ErrorOrNil()
}

// runVAD is station B: classify each captured frame and forward it (with
// the chunker's required is_final signal) downstream. It stops when the
// capture channel closes, or once Stop has closed stopCh and the frames
// already buffered in the capture channel are drained.
func (o *Orchestrator) runVAD() {
	defer o.wg.Done()
	defer close(o.vadToChunker)

	frames := o.capturer.Frames()
	stop := o.stopCh
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			vf, event := o.detector.Process(frame)
			o.events.Publish(observability.Event{Kind: observability.KindLevel, Timestamp: time.Now(), Level: vf.Level})
			o.vadToChunker <- vadSignal{vf: vf, isFinal: chunker.VADEventToFinal(event)}
		case <-stop:
			stop = nil
		}
		if stop == nil && len(frames) == 0 {
			return
		}
	}
}

// runChunker is station C: feed every VadFrame to the Chunker and forward
// whatever it emits. On channel close, flush the remainder as a final
// chunk (shutdown semantics, §5).
func (o *Orchestrator) runChunker() {
	defer o.wg.Done()
	defer close(o.chunkerToTrx)

	for sig := range o.vadToChunker {
		if chunk := o.chunk.Feed(sig.vf, sig.isFinal); chunk != nil {
			o.chunkerToTrx <- chunk
		}
	}
	if chunk := o.chunk.Flush(); chunk != nil {
		o.chunkerToTrx <- chunk
	}
}

// runTranscriber is station D+E: invoke the (non-reentrant) engine
// serially per invariant 5, filter hallucinations, stitch, and run the
// post-processor before handing the utterance to the Sink.
func (o *Orchestrator) runTranscriber() {
	defer o.wg.Done()
	defer close(o.trxToSink)

	for chunk := range o.chunkerToTrx {
		o.mu.Lock()
		cancelled := o.cancelled
		o.mu.Unlock()
		if cancelled {
			continue
		}

		result, err := o.engine.Transcribe(chunk.Samples)
		if err != nil {
			o.log.Warn("transcription failed for chunk %d: %v", chunk.ChunkID, err)
			o.events.Publish(observability.Event{
				Kind: observability.KindTranscriptionDropped, Timestamp: time.Now(),
				Reason: err.Error(),
			})
			continue
		}
		result.ChunkID = chunk.ChunkID
		result.IsFinal = chunk.IsFinal

		if transcriber.IsHallucination(result.Text, result.Confidence) {
			ev := observability.Event{
				Kind: observability.KindTranscriptionDropped, Timestamp: time.Now(),
				Reason: string(pipeline.DropHallucination), Confidence: result.Confidence,
			}
			if !transcriber.SuppressFromDisplay(result.Confidence) {
				ev.Text = result.Text
			}
			o.events.Publish(ev)
			o.stitcher.Add(chunk.ChunkID, "", chunk.IsFinal)
		} else {
			o.stitcher.Add(chunk.ChunkID, result.Text, chunk.IsFinal)
		}

		combined, ok := o.stitcher.Combined()
		if !ok {
			continue
		}
		o.stitcher.Reset()

		if combined == "" {
			o.events.Publish(observability.Event{
				Kind: observability.KindTranscriptionDropped, Timestamp: time.Now(),
				Reason: string(pipeline.DropEmptyText),
			})
			continue
		}

		utterance := o.postProcess(combined, result.Language, tokenConfidences(result.Tokens))
		o.trxToSink <- utterance
	}
}

// tokenConfidences narrows a Transcription's per-token output to the bare
// probabilities NeedsCorrection gates on.
func tokenConfidences(tokens []pipeline.TokenProbability) []float64 {
	confidences := make([]float64, len(tokens))
	for i, t := range tokens {
		confidences[i] = t.Probability
	}
	return confidences
}

// postProcess applies the voice-command rewriter then, if it didn't fire
// and Testable Property 8's confidence gate says correction is warranted,
// the language-dispatched corrector (§4.E, applied in that order).
func (o *Orchestrator) postProcess(text, language string, tokenConfidences []float64) pipeline.Utterance {
	cmd := correction.RewriteVoiceCommand(text)
	if cmd.Rewrote {
		return pipeline.Utterance{Text: cmd.Text, RawText: cmd.RawText, Origin: pipeline.OriginVoiceCommand}
	}

	if !correction.NeedsCorrection(tokenConfidences) {
		return pipeline.Utterance{Text: text, RawText: text, Origin: pipeline.OriginTranscription}
	}

	corrected, err := o.corrector.Correct(text, language)
	if err != nil {
		o.log.Warn("correction failed, using raw text: %v", err)
		corrected = text
	}
	return pipeline.Utterance{Text: corrected, RawText: text, Origin: pipeline.OriginTranscription}
}

// runSink is station F: deliver the utterance's text to the focused
// window and report the result to both the IPC waiter and observability.
func (o *Orchestrator) runSink() {
	defer o.wg.Done()

	for utterance := range o.trxToSink {
		select {
		case o.lastUtterance <- utterance:
		default:
			<-o.lastUtterance
			o.lastUtterance <- utterance
		}

		ev := observability.Event{
			Kind: observability.KindTranscription, Timestamp: time.Now(),
			Text: utterance.Text, RawText: utterance.RawText, Origin: utterance.Origin.String(),
		}

		if o.cfg.DisplayOnly {
			o.events.Publish(ev)
			continue
		}

		if err := o.deliver(utterance.Text); err != nil {
			o.log.Warn("sink delivery failed: %v", err)
			o.events.Publish(observability.Event{Kind: observability.KindLog, Timestamp: time.Now(), LogLevel: "warn", Message: err.Error()})
			continue
		}
		o.events.Publish(ev)
	}
}

// deliver copies text to the clipboard and synthesizes the paste
// keystroke appropriate to the focused window (§4.F).
func (o *Orchestrator) deliver(text string) error {
	ctx := context.Background()

	focused := sink.DetectFocusedWindow(ctx, o.log)
	key := sink.ResolvePasteKey(o.cfg.PasteKey, focused.AppID)

	if err := sink.CopyToClipboard(ctx, text); err != nil {
		return fmt.Errorf("clipboard copy: %w", err)
	}
	if err := sink.Inject(ctx, key); err != nil {
		return fmt.Errorf("paste injection: %w", err)
	}
	return nil
}
