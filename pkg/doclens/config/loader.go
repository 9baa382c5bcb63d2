package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader loads the analysis configuration from a YAML file, falling
// back to the built-in defaults when no path is given.
type Loader struct {
	Path string
}

// Load reads and validates the configuration. The file is decoded into
// a fresh Config so a section it defines replaces the built-in one
// wholesale; sections it leaves out are backfilled from Default().
func (l *Loader) Load() (Config, error) {
	cfg := Default()

	if l.Path != "" {
		data, err := os.ReadFile(l.Path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		cfg = Config{}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		applyDefaults(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills gaps a partial yaml file left open. A file that
// only overrides the risk weights still gets the default lexicons.
func applyDefaults(cfg *Config) {
	def := Default()

	if len(cfg.Sentiment.Positive) == 0 {
		cfg.Sentiment.Positive = def.Sentiment.Positive
	}
	if len(cfg.Sentiment.Negative) == 0 {
		cfg.Sentiment.Negative = def.Sentiment.Negative
	}
	if cfg.Sentiment.HeadFraction == 0 {
		cfg.Sentiment.HeadFraction = def.Sentiment.HeadFraction
	}
	if cfg.Sentiment.HeadWeight == 0 {
		cfg.Sentiment.HeadWeight = def.Sentiment.HeadWeight
	}
	if len(cfg.Risk.Categories) == 0 {
		cfg.Risk.Categories = def.Risk.Categories
	}
	if cfg.Quality == (QualityConfig{}) {
		cfg.Quality = def.Quality
	}
	if len(cfg.Topics) == 0 {
		cfg.Topics = def.Topics
	}
	if cfg.Run.TimeoutSeconds == 0 {
		cfg.Run.TimeoutSeconds = def.Run.TimeoutSeconds
	}
	if cfg.Run.MaxConcurrentRuns == 0 {
		cfg.Run.MaxConcurrentRuns = def.Run.MaxConcurrentRuns
	}
	if cfg.Run.MaxDocumentBytes == 0 {
		cfg.Run.MaxDocumentBytes = def.Run.MaxDocumentBytes
	}
}
