// Package config loads and defaults the daemon's YAML configuration file
// (§6 "Config file"), grounded on the teacher's client/server config
// loaders.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the structured config file schema from §6.
type Config struct {
	AudioDevice string `yaml:"audio_device"`
	SampleRate  int    `yaml:"sample_rate"`
	Model       string `yaml:"model"`
	Language    string `yaml:"language"`

	VAD struct {
		SpeechThreshold   float64 `yaml:"speech_threshold"`
		SilenceDurationMS int     `yaml:"silence_duration_ms"`
		MinSpeechMS       int     `yaml:"min_speech_ms"`
		AutoLevel         bool    `yaml:"auto_level"`
	} `yaml:"vad"`

	Chunker struct {
		TargetChunkMS int `yaml:"target_chunk_ms"`
		MaxChunkMS    int `yaml:"max_chunk_ms"`
		InitialGapMS  int `yaml:"initial_gap_ms"`
		MinGapMS      int `yaml:"min_gap_ms"`
		OverlapMS     int `yaml:"overlap_ms"`
	} `yaml:"chunker"`

	Correction struct {
		Backend           string   `yaml:"backend"` // none | neural | dictionary | hybrid
		SymspellLanguages []string `yaml:"symspell_languages"`
	} `yaml:"correction"`

	PasteKey string `yaml:"paste_key"` // auto | ctrl+v | ctrl+shift+v | ...
	FanOut   bool   `yaml:"fan_out"`
	Once     bool   `yaml:"once"`
}

// Load reads and parses the config file, applying defaults to any unset
// field.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a fully-defaulted configuration, used when no config
// file exists on disk.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.Model == "" {
		c.Model = "base.en"
	}
	if c.Language == "" {
		c.Language = "auto"
	}
	if c.VAD.SpeechThreshold == 0 {
		c.VAD.SpeechThreshold = 0.02
	}
	if c.VAD.SilenceDurationMS == 0 {
		c.VAD.SilenceDurationMS = 1500
	}
	if c.Chunker.TargetChunkMS == 0 {
		c.Chunker.TargetChunkMS = 2500
	}
	if c.Chunker.MaxChunkMS == 0 {
		c.Chunker.MaxChunkMS = 6000
	}
	if c.Chunker.InitialGapMS == 0 {
		c.Chunker.InitialGapMS = 400
	}
	if c.Chunker.MinGapMS == 0 {
		c.Chunker.MinGapMS = 80
	}
	if c.Chunker.OverlapMS == 0 {
		c.Chunker.OverlapMS = 200
	}
	if c.Correction.Backend == "" {
		c.Correction.Backend = "hybrid"
	}
	if c.PasteKey == "" {
		c.PasteKey = "auto"
	}
}
