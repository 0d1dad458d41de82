package transcriber

import "github.com/voicetype/voicetype/internal/pipeline"

// MockEngine is a deterministic Engine for tests: it returns a canned
// Transcription (or an error) without touching whisper.cpp, in the
// mock-capability idiom used elsewhere in the corpus for external
// inference/LLM backends.
type MockEngine struct {
	Name     string
	Language string
	Response pipeline.Transcription
	Err      error
	Calls    int
}

func (m *MockEngine) Transcribe(samples []int16) (pipeline.Transcription, error) {
	m.Calls++
	if m.Err != nil {
		return pipeline.Transcription{}, m.Err
	}
	resp := m.Response
	if resp.Language == "" {
		resp.Language = m.Language
	}
	return resp, nil
}

func (m *MockEngine) ModelName() string    { return m.Name }
func (m *MockEngine) LanguageHint() string { return m.Language }
func (m *MockEngine) Close() error         { return nil }
