// Package config loads the shared configuration for the server and CLI
// front ends.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jeongseonghan/semcom/internal/bitcodec"
)

// Config holds all tunables for the front ends. The transmission core never
// reads this; front ends translate it into constructed components.
type Config struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`

	DefaultEbN0dB float64 `yaml:"default_ebno_db"`

	Encoding     string `yaml:"encoding"`
	EncodePolicy string `yaml:"encode_policy"` // "substitute" or "escape"
	DecodePolicy string `yaml:"decode_policy"` // "skip" or "substitute"

	OpenAIKey   string `yaml:"openai_api_key"`
	GeminiKey   string `yaml:"gemini_api_key"`
	EmbedderURL string `yaml:"embedder_url"`
}

// Default returns the baseline configuration. API keys fall back to the
// conventional environment variables.
func Default() Config {
	return Config{
		Addr:          "0.0.0.0:8080",
		StaticDir:     "./web/static",
		DefaultEbN0dB: 5.0,
		Encoding:      "utf-8",
		EncodePolicy:  "substitute",
		DecodePolicy:  "skip",
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Codec builds the bit codec described by the config.
func (c Config) Codec() (*bitcodec.Codec, error) {
	var ep bitcodec.EncodePolicy
	switch c.EncodePolicy {
	case "", "substitute":
		ep = bitcodec.Substitute
	case "escape":
		ep = bitcodec.Escape
	default:
		return nil, fmt.Errorf("unknown encode policy %q", c.EncodePolicy)
	}

	var dp bitcodec.DecodePolicy
	switch c.DecodePolicy {
	case "", "skip":
		dp = bitcodec.SkipInvalid
	case "substitute":
		dp = bitcodec.SubstituteInvalid
	default:
		return nil, fmt.Errorf("unknown decode policy %q", c.DecodePolicy)
	}

	name := c.Encoding
	if name == "" {
		name = "utf-8"
	}
	return bitcodec.ByName(name, ep, dp)
}
