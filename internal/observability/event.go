// Package observability defines the event stream broadcast over the
// control socket's `follow` connection (§3 ObservabilityEvent, §6 Event
// stream) and the non-blocking fanout that delivers it.
package observability

import "time"

// Kind tags the variant of an Event. Go has no closed sum types, so the
// tagged union is represented as one struct with a Kind discriminator and
// kind-specific fields left zero/omitted — the same approach
// internal/protocol takes for Command/Response (§9 design note).
type Kind string

const (
	KindLevel                  Kind = "level"
	KindRecordingStateChanged  Kind = "recording_state_changed"
	KindTranscription          Kind = "transcription"
	KindTranscriptionDropped   Kind = "transcription_dropped"
	KindLog                    Kind = "log"
	KindConfigChanged          Kind = "config_changed"
	KindModelLoading           Kind = "model_loading"
	KindModelLoaded            Kind = "model_loaded"
	KindModelLoadFailed        Kind = "model_load_failed"
	KindDaemonInfo             Kind = "daemon_info"
)

// Event is one observability notification. Only the fields relevant to
// Kind are populated.
type Event struct {
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// KindLevel
	Level float64 `json:"level,omitempty"`

	// KindRecordingStateChanged
	Recording bool `json:"recording,omitempty"`

	// KindTranscription / KindTranscriptionDropped
	Text       string  `json:"text,omitempty"`
	RawText    string  `json:"raw_text,omitempty"`
	Origin     string  `json:"origin,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Reason     string  `json:"reason,omitempty"`

	// KindLog
	LogLevel   string `json:"log_level,omitempty"`
	Message    string `json:"message,omitempty"`

	// KindModelLoading / KindModelLoaded / KindModelLoadFailed
	ModelName string `json:"model_name,omitempty"`
	Error     string `json:"error,omitempty"`

	// KindDaemonInfo
	Version string `json:"version,omitempty"`
}
