package transcriber

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/voicetype/voicetype/internal/pipeline"
)

// FanOut transcribes the same chunk on two engines in parallel — one
// English-specialized, one multilingual — and keeps the higher-confidence
// result. This is an orchestrator-level option (§4.D "Fan-out (optional)");
// the engines themselves are unaware of it. When both disagree
// substantially, confidence alone decides — no quorum or vote (Open
// Question (c)).
type FanOut struct {
	Primary, Secondary Engine
}

func (f *FanOut) Transcribe(samples []int16) (pipeline.Transcription, error) {
	g, _ := errgroup.WithContext(context.Background())

	var primaryResult, secondaryResult pipeline.Transcription
	var primaryErr, secondaryErr error

	g.Go(func() error {
		primaryResult, primaryErr = f.Primary.Transcribe(samples)
		return nil
	})
	g.Go(func() error {
		secondaryResult, secondaryErr = f.Secondary.Transcribe(samples)
		return nil
	})
	_ = g.Wait()

	switch {
	case primaryErr != nil && secondaryErr != nil:
		return pipeline.Transcription{}, primaryErr
	case primaryErr != nil:
		return secondaryResult, nil
	case secondaryErr != nil:
		return primaryResult, nil
	case secondaryResult.Confidence > primaryResult.Confidence:
		return secondaryResult, nil
	default:
		return primaryResult, nil
	}
}

func (f *FanOut) ModelName() string    { return f.Primary.ModelName() + "+" + f.Secondary.ModelName() }
func (f *FanOut) LanguageHint() string { return f.Primary.LanguageHint() }
func (f *FanOut) Close() error {
	err1 := f.Primary.Close()
	err2 := f.Secondary.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
