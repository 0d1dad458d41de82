package correction

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"
)

// maxEditDistance bounds candidate acceptance: a dictionary word further
// than this from the input token is never offered as a correction.
const maxEditDistance = 2

// FrequencyDictionary is a frequency-dictionary spelling corrector
// (edit-distance based), used for the whitelist of languages that do not
// carry semantic casing (he, ar, zh, ja, ko — §4.E). It lowercases its
// output, which is why languages with semantic casing are excluded from
// this backend.
type FrequencyDictionary struct {
	language    string
	frequencies map[string]int
}

// NewFrequencyDictionary builds a corrector from a word->frequency table,
// as loaded from one of the catalog entries in internal/dictionarycatalog.
func NewFrequencyDictionary(language string, frequencies map[string]int) *FrequencyDictionary {
	return &FrequencyDictionary{language: language, frequencies: frequencies}
}

// LoadFrequencyDictionary reads a SymSpell-style "word frequency" file (one
// entry per line, whitespace separated) from an installed
// internal/dictionarycatalog entry.
func LoadFrequencyDictionary(language, path string) (*FrequencyDictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer f.Close()

	frequencies := make(map[string]int)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		freq, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		frequencies[strings.ToLower(fields[0])] = freq
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}

	return NewFrequencyDictionary(language, frequencies), nil
}

func (d *FrequencyDictionary) Name() string { return "dictionary:" + d.language }

// Correct replaces each whitespace-delimited token with the dictionary
// entry of highest frequency within maxEditDistance, using
// character-level Levenshtein distance (§4.E "Edit distance").
func (d *FrequencyDictionary) Correct(text, _ string) (string, error) {
	words := strings.Fields(strings.ToLower(text))
	for i, word := range words {
		words[i] = d.correctWord(word)
	}
	return strings.Join(words, " "), nil
}

func (d *FrequencyDictionary) correctWord(word string) string {
	if _, exact := d.frequencies[word]; exact {
		return word
	}

	best := word
	bestFreq := -1
	for candidate, freq := range d.frequencies {
		dist := matchr.Levenshtein(word, candidate)
		if dist > maxEditDistance {
			continue
		}
		if freq > bestFreq {
			best = candidate
			bestFreq = freq
		}
	}
	return best
}
