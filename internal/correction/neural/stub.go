//go:build !onnx
// +build !onnx

package neural

// This file is used when building WITHOUT the onnx build tag. It
// provides a pass-through implementation so the daemon still links and
// runs (with English correction effectively disabled) on machines without
// the ONNX runtime installed.

// StubEngine is the pass-through Engine.
type StubEngine struct{}

// NewEngine creates the pass-through neural engine (build with
// -tags onnx for real correction).
func NewEngine(modelPath string) (Engine, error) {
	return &StubEngine{}, nil
}

func (s *StubEngine) Correct(text string) (string, error) { return text, nil }
func (s *StubEngine) Close() error                        { return nil }
