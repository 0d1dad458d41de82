package pipeline

import (
	"sort"
	"strings"
)

// StitcherConfig configures boundary deduplication.
type StitcherConfig struct {
	DeduplicateBoundaries bool
	// MinWordLength is the minimum length a duplicated boundary word must
	// have before it is dropped, to avoid eating short, legitimately
	// repeated words ("a a").
	MinWordLength int
}

func (c *StitcherConfig) applyDefaults() {
	if c.MinWordLength == 0 {
		c.MinWordLength = 2
	}
}

// Stitcher reorders and combines per-chunk transcriptions into a single
// utterance text, per §5's ordering guarantee 2: a BTreeMap-equivalent
// keyed by chunk_id, combined only once coverage from 0 (or the lowest
// observed id) to the final id is contiguous.
type Stitcher struct {
	cfg      StitcherConfig
	results  map[uint64]string
	finalID  uint64
	hasFinal bool
	minID    uint64
	hasMin   bool
}

// NewStitcher creates a Stitcher with defaults applied.
func NewStitcher(cfg StitcherConfig) *Stitcher {
	cfg.applyDefaults()
	return &Stitcher{cfg: cfg, results: make(map[uint64]string)}
}

// Add records one chunk's transcription. isFinal marks the last chunk_id
// of the utterance; once all ids in [minID, finalID] are present, Combined
// returns the assembled text.
func (s *Stitcher) Add(chunkID uint64, text string, isFinal bool) {
	s.results[chunkID] = cleanTranscription(text)
	if !s.hasMin || chunkID < s.minID {
		s.minID = chunkID
		s.hasMin = true
	}
	if isFinal {
		s.finalID = chunkID
		s.hasFinal = true
	}
}

// Combined returns the assembled text and true once every chunk_id from
// the lowest observed id through finalID has arrived (Testable Property
// 6); otherwise ("", false).
func (s *Stitcher) Combined() (string, bool) {
	if !s.hasFinal || !s.hasMin {
		return "", false
	}

	var ids []uint64
	for id := s.minID; id <= s.finalID; id++ {
		if _, ok := s.results[id]; !ok {
			return "", false
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var combined string
	var prevLastWord string
	for i, id := range ids {
		text := s.results[id]
		if i == 0 {
			combined = text
			prevLastWord = lastWord(text)
			continue
		}
		combined, prevLastWord = s.append(combined, prevLastWord, text)
	}
	return strings.TrimSpace(combined), true
}

// append joins the next chunk's text onto combined, dropping a duplicate
// boundary word when dedup is enabled (Testable Property 7).
func (s *Stitcher) append(combined, prevLastWord, next string) (string, string) {
	next = strings.TrimSpace(next)
	if next == "" {
		return combined, prevLastWord
	}

	if s.cfg.DeduplicateBoundaries && prevLastWord != "" {
		words := strings.Fields(next)
		if len(words) > 0 &&
			len(prevLastWord) >= s.cfg.MinWordLength &&
			strings.EqualFold(words[0], prevLastWord) {
			next = strings.TrimSpace(strings.Join(words[1:], " "))
		}
	}

	if next == "" {
		return combined, prevLastWord
	}

	joined := strings.TrimSpace(combined) + " " + next
	return joined, lastWord(next)
}

func lastWord(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}

// cleanTranscription strips Whisper's bracketed idle markers that survive
// into otherwise-useful segments (e.g. a trailing "[BLANK_AUDIO]" after
// real speech).
func cleanTranscription(text string) string {
	text = strings.TrimSpace(text)
	for _, marker := range []string{"[BLANK_AUDIO]", "[blank_audio]", "[SILENCE]", "[silence]"} {
		text = strings.ReplaceAll(text, marker, "")
	}
	return strings.TrimSpace(text)
}

// Reset clears all accumulated state, starting a fresh utterance.
func (s *Stitcher) Reset() {
	s.results = make(map[uint64]string)
	s.hasFinal = false
	s.hasMin = false
}
