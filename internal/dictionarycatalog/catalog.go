// Package dictionarycatalog holds static metadata for the frequency
// dictionaries the hybrid corrector can load for non-English, non-cased
// languages (§4.E). Only metadata lives here; nothing in this repository
// downloads dictionary files (internal/models fetches acoustic models only),
// and the daemon loads a dictionary only if its file is already present.
package dictionarycatalog

// Entry describes one downloadable frequency dictionary.
type Entry struct {
	Language    string // ISO 639-1 code, e.g. "he"
	DisplayName string
	Filename    string
	URL         string
	SizeKB      int
	SHA256      string // lowercase hex, 64 chars
}

// catalog lists the dictionaries available for correction.Hybrid's
// whitelist, ordered by language code.
var catalog = []Entry{
	{
		Language:    "ar",
		DisplayName: "Arabic",
		Filename:    "ar-100k.txt",
		URL:         "https://raw.githubusercontent.com/wolfgarbe/SymSpell/master/SymSpell.FrequencyDictionary/ar-100k.txt",
		SizeKB:      950,
		SHA256:      "1655f1e6258cd13c9cdaab71ddd7765a99a4adf6bd57e31b7d1160719ed42e2b",
	},
	{
		Language:    "he",
		DisplayName: "Hebrew",
		Filename:    "he-100k.txt",
		URL:         "https://raw.githubusercontent.com/wolfgarbe/SymSpell/master/SymSpell.FrequencyDictionary/he-100k.txt",
		SizeKB:      800,
		SHA256:      "72e3a5feb2415628fe3f9fd1129ffd49dec111ac264a991089137477859715e8",
	},
	{
		Language:    "ja",
		DisplayName: "Japanese",
		Filename:    "ja-100k.txt",
		URL:         "https://raw.githubusercontent.com/wolfgarbe/SymSpell/master/SymSpell.FrequencyDictionary/ja-100k.txt",
		SizeKB:      1400,
		SHA256:      "60f1403ce44ec4840b2491ea84e6da0b7710afe500b006595bc5475b9af66c37",
	},
	{
		Language:    "ko",
		DisplayName: "Korean",
		Filename:    "ko-100k.txt",
		URL:         "https://raw.githubusercontent.com/wolfgarbe/SymSpell/master/SymSpell.FrequencyDictionary/ko-100k.txt",
		SizeKB:      1100,
		SHA256:      "fcc0407864fc4e5223dd5667fa5aa8c1151f7aed3df0c4041838c7fd003523d0",
	},
	{
		Language:    "zh",
		DisplayName: "Chinese",
		Filename:    "zh-100k.txt",
		URL:         "https://raw.githubusercontent.com/wolfgarbe/SymSpell/master/SymSpell.FrequencyDictionary/zh-100k.txt",
		SizeKB:      1300,
		SHA256:      "9d35d03526cf7616fed87f7ac03159bd1138835f53300455baeef03c59bd1950",
	},
}

// Get looks up a dictionary by language code.
func Get(language string) (Entry, bool) {
	for _, e := range catalog {
		if e.Language == language {
			return e, true
		}
	}
	return Entry{}, false
}

// List returns every cataloged dictionary.
func List() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// Has reports whether a dictionary exists for the given language.
func Has(language string) bool {
	_, ok := Get(language)
	return ok
}
