package transcriber

import "strings"

// idlePhrases are the known Whisper idle-mode outputs produced on
// silence/noise input. The set is English-biased (Open Question (b)); a
// reimplementation targeting another primary language should extend it.
var idlePhrases = map[string]bool{
	"thank you.":                   true,
	"thank you":                    true,
	"thanks for watching!":         true,
	"[blank_audio]":                true,
	"(blank audio)":                true,
	"[silence]":                    true,
	"[music]":                      true,
	"[applause]":                   true,
	"you":                          true,
	".":                            true,
	"":                             true,
}

// FilterThreshold is the confidence below which a known idle phrase is
// dropped as a hallucination rather than delivered.
const FilterThreshold = 0.5

// DisplaySuppressConfidence is the separate threshold below which a
// hallucination drop is further hidden from interactive display (but
// still visible in logs) — distinct from, and higher than, FilterThreshold
// (§4.D). Since a drop already requires confidence below FilterThreshold,
// every hallucination drop falls below it with the current values.
const DisplaySuppressConfidence = 0.75

// IsHallucination reports whether text/confidence should be dropped
// (Testable Property 9).
func IsHallucination(text string, confidence float64) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	return idlePhrases[normalized] && confidence < FilterThreshold
}

// SuppressFromDisplay reports whether a dropped hallucination should be
// hidden from interactive display entirely (confidence below
// DisplaySuppressConfidence), as opposed to merely not injected.
func SuppressFromDisplay(confidence float64) bool {
	return confidence < DisplaySuppressConfidence
}
