package correction

import (
	"strings"

	"github.com/voicetype/voicetype/internal/correction/neural"
)

// dictionaryWhitelist is the small set of languages that do not carry
// semantic casing, for which the frequency-dictionary corrector is safe
// to use (§4.E). Languages with semantic casing are intentionally
// excluded because the dictionary corrector lowercases its output.
var dictionaryWhitelist = map[string]bool{
	"he": true, "ar": true, "zh": true, "ja": true, "ko": true,
}

// Hybrid dispatches on detected language: English uses the neural
// corrector, whitelisted languages use a frequency dictionary, and
// everything else falls back to passthrough. It holds at most one of
// each backend (§9).
type Hybrid struct {
	Neural       neural.Engine
	Dictionaries map[string]*FrequencyDictionary
}

func (h *Hybrid) Name() string { return "hybrid" }

// Correct dispatches to the appropriate backend for language, falling
// back to passthrough when none applies.
func (h *Hybrid) Correct(text, language string) (string, error) {
	lang := strings.ToLower(language)

	if lang == "en" && h.Neural != nil {
		return h.Neural.Correct(text)
	}

	if dictionaryWhitelist[lang] {
		if dict, ok := h.Dictionaries[lang]; ok {
			return dict.Correct(text, lang)
		}
	}

	return Passthrough{}.Correct(text, lang)
}
