// Package audio turns an OS microphone device into a stream of
// pipeline.AudioFrame values (station A, Capture).
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/pipeline"
)

const (
	// SampleRate is the pipeline's canonical rate; every station downstream
	// of Capture assumes 16 kHz mono.
	SampleRate = 16000
	Channels   = 1
	Format     = malgo.FormatS16

	// FrameDurationMS is the size of frames emitted by Capture: small
	// enough to keep VAD/Chunker latency low, large enough to avoid
	// syscall churn.
	FrameDurationMS = 30

	// nativeDownsampleRate is the one non-16kHz native rate Capture knows
	// how to convert down from (§4.A "native rate ... can be converted to
	// 16 kHz mono i16"); it is the most common hardware default and
	// downsamples to 16 kHz by a clean 3:1 ratio. Any other negotiated
	// rate is reported as FormatUnsupported rather than guessed at.
	nativeDownsampleRate = 48000
)

// DeviceUnavailable is returned when the requested or default capture
// device cannot be opened. Reported before Start returns.
type DeviceUnavailable struct {
	Device string
	Err    error
}

func (e *DeviceUnavailable) Error() string {
	return fmt.Sprintf("audio device unavailable (%s): %v", e.Device, e.Err)
}
func (e *DeviceUnavailable) Unwrap() error { return e.Err }

// FormatUnsupported is returned when no supported configuration converts
// to 16 kHz mono i16 within bounded CPU. Reported before Start returns.
type FormatUnsupported struct {
	Requested malgo.DeviceConfig
}

func (e *FormatUnsupported) Error() string {
	return fmt.Sprintf("capture format unsupported: rate=%d channels=%d", e.Requested.SampleRate, e.Requested.Capture.Channels)
}

// StreamBroken is emitted when a permanent device loss occurs after
// capture has started; it terminates the session and propagates to the
// orchestrator as a pipeline.FatalError.
type StreamBroken struct {
	Err error
}

func (e *StreamBroken) Error() string { return fmt.Sprintf("capture stream broken: %v", e.Err) }
func (e *StreamBroken) Unwrap() error { return e.Err }

// Capturer drives a malgo capture device and emits AudioFrames on a
// bounded channel. It never drops frames itself; backpressure is the
// channel's job (see §5) except for the final ring-buffer overflow case,
// which is logged as a Log event by the caller via OnOverflow.
type Capturer struct {
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	deviceName string
	mu         sync.Mutex
	running    bool
	log        *logger.ContextLogger

	frames chan pipeline.AudioFrame

	sequence   uint64
	buffer     []int16
	frameSize  int // samples per emitted frame, at the pipeline's 16 kHz
	nativeRate uint32 // the device's actual negotiated rate

	// OnOverflow is called (outside the capture callback's lock) when the
	// output channel is full and a frame had to be dropped.
	OnOverflow func(droppedSequence uint64)
	// OnStreamBroken is called when malgo reports the device has gone
	// away permanently; the caller should translate this into a
	// pipeline.FatalError and tear the session down.
	OnStreamBroken func(err error)
}

// New creates a Capturer. bufferFrames sizes the output channel (8-64 per
// §5); deviceName selects a specific input device, empty for the system
// default.
func New(bufferFrames int, deviceName string, log *logger.Logger) (*Capturer, error) {
	frameSize := SampleRate * FrameDurationMS / 1000

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, &DeviceUnavailable{Device: deviceName, Err: err}
	}

	return &Capturer{
		ctx:        ctx,
		deviceName: deviceName,
		frames:     make(chan pipeline.AudioFrame, bufferFrames),
		frameSize:  frameSize,
		log:        log.With("capture"),
	}, nil
}

// Devices lists available capture devices, the system default marked.
func (c *Capturer) Devices() ([]malgo.DeviceInfo, error) {
	return c.ctx.Devices(malgo.Capture)
}

// Start begins capture from the configured (or default) device.
func (c *Capturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("capturer already running")
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = Format
	deviceConfig.Capture.Channels = Channels
	deviceConfig.SampleRate = SampleRate
	deviceConfig.Alsa.NoMMap = 1

	if c.deviceName != "" {
		infos, err := c.ctx.Devices(malgo.Capture)
		if err == nil {
			for _, info := range infos {
				if info.Name() == c.deviceName {
					deviceConfig.Capture.DeviceID = info.ID.Pointer()
					break
				}
			}
		}
	}

	onRecv := func(_, sample []byte, frameCount uint32) {
		c.onFrames(sample)
	}

	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onRecv,
		Stop: func() {
			if c.OnStreamBroken != nil {
				c.OnStreamBroken(fmt.Errorf("capture device stopped unexpectedly"))
			}
		},
	})
	if err != nil {
		return &DeviceUnavailable{Device: c.deviceName, Err: err}
	}
	c.device = device

	nativeRate := device.SampleRate()
	switch nativeRate {
	case SampleRate:
		// Already 16 kHz; no conversion needed.
	case nativeDownsampleRate:
		c.log.Info("device running at %d Hz; downsampling to %d Hz in the capture callback", nativeRate, SampleRate)
	default:
		device.Uninit()
		return &FormatUnsupported{Requested: deviceConfig}
	}
	c.nativeRate = nativeRate

	if err := device.Start(); err != nil {
		device.Uninit()
		return &DeviceUnavailable{Device: c.deviceName, Err: err}
	}

	c.running = true
	return nil
}

// onFrames is the malgo data callback: it converts raw PCM bytes to 16 kHz
// samples (downsampling first if the device negotiated
// nativeDownsampleRate), accumulates them into fixed-size frames, and
// emits them tagged with a strictly monotonic sequence number
// (invariant 1).
func (c *Capturer) onFrames(sample []byte) {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}

	samples := bytesToInt16(sample)
	if c.nativeRate == nativeDownsampleRate {
		samples = Downsample48to16(samples)
	}
	c.buffer = append(c.buffer, samples...)

	var toEmit []pipeline.AudioFrame
	for len(c.buffer) >= c.frameSize {
		frame := pipeline.AudioFrame{
			Samples:   append([]int16(nil), c.buffer[:c.frameSize]...),
			Sequence:  c.sequence,
			Timestamp: time.Now(),
		}
		c.sequence++
		c.buffer = c.buffer[c.frameSize:]
		toEmit = append(toEmit, frame)
	}
	c.mu.Unlock()

	for _, frame := range toEmit {
		select {
		case c.frames <- frame:
		default:
			if c.OnOverflow != nil {
				c.OnOverflow(frame.Sequence)
			}
		}
	}
}

func bytesToInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(b[i*2]) | int16(b[i*2+1])<<8
	}
	return out
}

// Frames returns the channel of emitted AudioFrames. Must be drained
// continuously.
func (c *Capturer) Frames() <-chan pipeline.AudioFrame {
	return c.frames
}

// Stop halts capture and releases the device, but keeps the malgo context
// alive for a subsequent Start.
func (c *Capturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	c.running = false

	if c.device != nil {
		c.device.Stop()
		c.device.Uninit()
		c.device = nil
	}
	c.buffer = c.buffer[:0]
	return nil
}

// Close stops capture and releases the malgo context entirely.
func (c *Capturer) Close() error {
	if err := c.Stop(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx != nil {
		_ = c.ctx.Uninit()
		c.ctx.Free()
		c.ctx = nil
	}
	close(c.frames)
	return nil
}

func (c *Capturer) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
