// Package models holds the static catalog of downloadable Whisper
// acoustic models and the downloader that fetches them into the user's
// data directory, integrity-checked against a recorded SHA-256 (§6
// "Persisted state").
package models

// Entry describes one downloadable acoustic model.
type Entry struct {
	Name        string // the name accepted by `--model` and the config file
	DisplayName string
	Filename    string
	URL         string
	SizeMB      int
	SHA256      string // lowercase hex, 64 chars
}

// catalog lists the ggml Whisper models this daemon knows how to fetch,
// ordered from smallest to largest.
var catalog = []Entry{
	{
		Name:        "tiny.en",
		DisplayName: "Tiny (English-only)",
		Filename:    "ggml-tiny.en.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.en.bin",
		SizeMB:      75,
		SHA256:      "44b9ae930d2d27da1933f7fbdf1bd27f4fb3b72c95c9b5bfdb34cc3e6cfe6bdb",
	},
	{
		Name:        "base.en",
		DisplayName: "Base (English-only)",
		Filename:    "ggml-base.en.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en.bin",
		SizeMB:      142,
		SHA256:      "b74b0f60c5baf370b74c3360414d4277086bce414ca23851b78619e9267917b1",
	},
	{
		Name:        "small.en",
		DisplayName: "Small (English-only)",
		Filename:    "ggml-small.en.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.en.bin",
		SizeMB:      466,
		SHA256:      "8227472e3c253470a22000bee8ffd053b88c3cb1960b6365dcf17bd467057956",
	},
	{
		Name:        "small",
		DisplayName: "Small (multilingual)",
		Filename:    "ggml-small.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		SizeMB:      466,
		SHA256:      "bb63f179f6fa4634a34a218c8551c43d1cc02842feff848c2bf2336fdee5ce32",
	},
	{
		Name:        "medium",
		DisplayName: "Medium (multilingual)",
		Filename:    "ggml-medium.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
		SizeMB:      1500,
		SHA256:      "9b6e8c5dfff51c60a6bb267a80656eb25b4b7eddf45330d947bc48b62efebbaa",
	},
	{
		Name:        "large-v3",
		DisplayName: "Large v3 (multilingual)",
		Filename:    "ggml-large-v3.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
		SizeMB:      2960,
		SHA256:      "118a90ddd5f178c39516f633ee4846452c0181bbd97d7ac26a5c66465e80c90b",
	},
}

// Get looks up a model by name.
func Get(name string) (Entry, bool) {
	for _, e := range catalog {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// List returns every cataloged model.
func List() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}
