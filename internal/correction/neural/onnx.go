//go:build onnx
// +build onnx

package neural

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	maxSequenceLength = 128
	vocabSize         = 256 // byte-level vocabulary; avoids a tokenizer dependency
)

// ONNXEngine runs a local English sequence-to-sequence correction model
// via onnxruntime_go. Session.Run is not safe for concurrent use, so
// Correct and Close serialize on mu themselves, as the Whisper transcriber
// does for its own non-reentrant engine.
type ONNXEngine struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewEngine loads an ONNX correction model from modelPath.
func NewEngine(modelPath string) (Engine, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize onnxruntime: %w", err)
	}

	inputShape := ort.NewShape(1, maxSequenceLength, vocabSize)
	input, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, maxSequenceLength, vocabSize)
	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("failed to allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("failed to create onnx session: %w", err)
	}

	return &ONNXEngine{session: session, input: input, output: output}, nil
}

// Correct encodes text byte-wise, runs the model, and decodes the result.
// Only the first maxSequenceLength bytes go through the model; any text
// beyond that window is appended unmodified.
func (e *ONNXEngine) Correct(text string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(text) == 0 {
		return text, nil
	}

	encodeOneHot(text, e.input.GetData())

	if err := e.session.Run(); err != nil {
		return "", fmt.Errorf("onnx inference failed: %w", err)
	}

	out := decodeOneHot(e.output.GetData(), len(text))
	if len(text) > maxSequenceLength {
		out += text[maxSequenceLength:]
	}
	return out, nil
}

func encodeOneHot(text string, dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
	for i := 0; i < len(text) && i < maxSequenceLength; i++ {
		dst[i*vocabSize+int(text[i])] = 1
	}
}

func decodeOneHot(src []float32, length int) string {
	if length > maxSequenceLength {
		length = maxSequenceLength
	}
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		best, bestScore := 0, src[i*vocabSize]
		for c := 1; c < vocabSize; c++ {
			if score := src[i*vocabSize+c]; score > bestScore {
				best, bestScore = c, score
			}
		}
		out[i] = byte(best)
	}
	return string(out)
}

func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Destroy()
	e.input.Destroy()
	e.output.Destroy()
	return nil
}
