package config

import (
	"fmt"

	"github.com/cognicore/doclens/pkg/doclens/internalerr"
)

// Config holds all analysis configuration: lexicons, category weights,
// quality point values and run options. Zero values fall back to
// Default() via the Loader.
type Config struct {
	Sentiment SentimentConfig     `yaml:"sentiment"`
	Risk      RiskConfig          `yaml:"risk"`
	Quality   QualityConfig       `yaml:"quality"`
	Topics    map[string][]string `yaml:"topics"`
	Run       RunConfig           `yaml:"run"`
}

// SentimentConfig defines the polarity lexicon and position weighting.
// Tokens inside the leading HeadFraction of the document (headline and
// summary territory) count HeadWeight times.
type SentimentConfig struct {
	Positive     []string `yaml:"positive"`
	Negative     []string `yaml:"negative"`
	HeadFraction float64  `yaml:"head_fraction"`
	HeadWeight   float64  `yaml:"head_weight"`
}

// RiskConfig maps risk category names to their indicator keywords and
// severity weights.
type RiskConfig struct {
	Categories map[string]RiskCategory `yaml:"categories"`
}

// RiskCategory is one risk dimension contributing to the risk score.
type RiskCategory struct {
	Keywords []string `yaml:"keywords"`
	Weight   int      `yaml:"weight"`
}

// Weights returns the per-category severity weights keyed by name.
func (r RiskConfig) Weights() map[string]int {
	out := make(map[string]int, len(r.Categories))
	for name, cat := range r.Categories {
		out[name] = cat.Weight
	}
	return out
}

// QualityConfig assigns fixed point values to structural completeness
// checks. The four defaults sum to 100.
type QualityConfig struct {
	SummaryPoints        int `yaml:"summary_points"`
	FinancialPoints      int `yaml:"financial_points"`
	RecommendationPoints int `yaml:"recommendation_points"`
	StructurePoints      int `yaml:"structure_points"`
}

// RunConfig bounds pipeline execution for one document.
type RunConfig struct {
	TimeoutSeconds    int      `yaml:"timeout_seconds"`
	BestEffortStages  []string `yaml:"best_effort_stages"`
	MaxConcurrentRuns int      `yaml:"max_concurrent_runs"`
	MaxDocumentBytes  int      `yaml:"max_document_bytes"`
}

// Default returns the built-in configuration. The lexicons and weights
// here are the calibrated reference set; yaml files override them.
func Default() Config {
	return Config{
		Sentiment: SentimentConfig{
			Positive: []string{
				"good", "great", "excellent", "positive", "success", "growth",
				"improvement", "benefit", "advantage", "opportunity", "strong",
				"effective", "profit", "revenue", "savings", "efficient",
			},
			Negative: []string{
				"bad", "poor", "negative", "problem", "issue", "risk",
				"concern", "challenge", "difficulty", "failure", "weak",
				"ineffective", "loss", "debt", "decline", "deficit",
			},
			HeadFraction: 0.15,
			HeadWeight:   2.0,
		},
		Risk: RiskConfig{
			Categories: map[string]RiskCategory{
				"financial": {
					Keywords: []string{"budget", "cost", "overrun", "deficit", "loss", "debt", "liability", "expensive"},
					Weight:   4,
				},
				"operational": {
					Keywords: []string{"delay", "bottleneck", "failure", "breakdown", "issue", "problem", "disruption"},
					Weight:   3,
				},
				"market": {
					Keywords: []string{"competition", "recession", "volatility", "downturn", "uncertainty"},
					Weight:   3,
				},
				"timeline": {
					Keywords: []string{"deadline", "slippage", "overdue", "postponed", "long-term"},
					Weight:   2,
				},
				"regulatory": {
					Keywords: []string{"compliance", "violation", "breach", "audit", "regulatory", "legal", "penalty"},
					Weight:   4,
				},
			},
		},
		Quality: QualityConfig{
			SummaryPoints:        30,
			FinancialPoints:      25,
			RecommendationPoints: 25,
			StructurePoints:      20,
		},
		Topics: map[string][]string{
			"digital transformation": {"digital", "transformation", "automation", "modernization"},
			"efficiency":             {"efficiency", "streamlined", "optimized", "productivity"},
			"growth":                 {"growth", "expansion", "scaling", "increase"},
			"innovation":             {"innovation", "innovative", "breakthrough", "cutting-edge"},
			"cost savings":           {"savings", "cost-reduction", "cheaper", "affordable"},
		},
		Run: RunConfig{
			TimeoutSeconds:    30,
			MaxConcurrentRuns: 8,
			MaxDocumentBytes:  4 << 20,
		},
	}
}

// Validate checks invariants the analysis depends on.
func (c Config) Validate() error {
	if len(c.Sentiment.Positive) == 0 || len(c.Sentiment.Negative) == 0 {
		return fmt.Errorf("sentiment lexicon must not be empty: %w", internalerr.ErrInvalidConfig)
	}
	if c.Sentiment.HeadFraction < 0 || c.Sentiment.HeadFraction > 1 {
		return fmt.Errorf("head_fraction %.2f outside [0,1]: %w", c.Sentiment.HeadFraction, internalerr.ErrInvalidConfig)
	}
	if c.Sentiment.HeadWeight < 1 {
		return fmt.Errorf("head_weight %.2f must be >= 1: %w", c.Sentiment.HeadWeight, internalerr.ErrInvalidConfig)
	}
	if len(c.Risk.Categories) == 0 {
		return fmt.Errorf("risk categories must not be empty: %w", internalerr.ErrInvalidConfig)
	}
	for name, cat := range c.Risk.Categories {
		if cat.Weight <= 0 {
			return fmt.Errorf("risk category %q has non-positive weight %d: %w", name, cat.Weight, internalerr.ErrInvalidConfig)
		}
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("risk category %q has no keywords: %w", name, internalerr.ErrInvalidConfig)
		}
	}
	for _, pts := range []int{c.Quality.SummaryPoints, c.Quality.FinancialPoints, c.Quality.RecommendationPoints, c.Quality.StructurePoints} {
		if pts < 0 {
			return fmt.Errorf("quality point values must be non-negative: %w", internalerr.ErrInvalidConfig)
		}
	}
	if c.Run.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be >= 0: %w", internalerr.ErrInvalidConfig)
	}
	if c.Run.MaxConcurrentRuns < 0 {
		return fmt.Errorf("max_concurrent_runs must be >= 0: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}
