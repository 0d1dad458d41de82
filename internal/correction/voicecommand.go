package correction

import "strings"

// commandPhrases maps a spoken phrase to the literal character it
// produces. Applied only when the ENTIRE transcription matches one of
// these phrases (§4.E).
var commandPhrases = map[string]string{
	"period":         ".",
	"comma":          ",",
	"new line":       "\n",
	"question mark":  "?",
}

// VoiceCommandResult carries the rewrite outcome plus whether a rewrite
// actually happened, so the caller can tag the resulting Utterance's
// TextOrigin for the sink/observability layer (spec scenario S6).
type VoiceCommandResult struct {
	Text      string
	Rewrote   bool
	RawText   string
}

// RewriteVoiceCommand checks whether text (already trimmed/normalized by
// the caller) is exactly a known command phrase and, if so, returns the
// literal it maps to.
func RewriteVoiceCommand(text string) VoiceCommandResult {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if literal, ok := commandPhrases[normalized]; ok {
		return VoiceCommandResult{Text: literal, Rewrote: true, RawText: text}
	}
	return VoiceCommandResult{Text: text, Rewrote: false, RawText: text}
}
