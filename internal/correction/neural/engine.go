// Package neural provides the English seq2seq correction backend. Two
// build variants exist, mirroring the capability/stub split used
// elsewhere in the corpus for optional native backends: stub.go (the
// default, pass-through) and onnx.go (build tag "onnx", backed by a local
// ONNX sequence-to-sequence model). Neither variant calls out to a remote
// service — the Non-goal against serving remote clients applies to the
// daemon's own interfaces, and is honored here too by keeping inference
// local.
package neural

// Engine corrects English text using a neural sequence-to-sequence model.
type Engine interface {
	Correct(text string) (string, error)
	Close() error
}
