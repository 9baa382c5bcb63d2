package extract

import (
	"sort"

	"github.com/cognicore/doclens/pkg/doclens/config"
	"github.com/cognicore/doclens/pkg/doclens/ingest"
	"github.com/cognicore/doclens/pkg/doclens/score"
)

// riskEvidenceWords is the word count at which a document is considered
// long enough for full-confidence risk assessment.
const riskEvidenceWords = 50

// RiskExtractor counts risk-indicator keywords per category and
// combines them into a 0-20 risk score via the scoring engine.
type RiskExtractor struct {
	cfg config.RiskConfig
}

// NewRiskExtractor creates a risk extractor from the category
// configuration.
func NewRiskExtractor(cfg config.RiskConfig) *RiskExtractor {
	return &RiskExtractor{cfg: cfg}
}

// Name implements Extractor.
func (e *RiskExtractor) Name() string { return StageRisk }

// Run implements Extractor.
func (e *RiskExtractor) Run(doc ingest.Document) (Output, error) {
	tokens := ingest.Tokenize(doc.Text)
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	names := make([]string, 0, len(e.cfg.Categories))
	for name := range e.cfg.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	var hits []score.CategoryHit
	for _, name := range names {
		indicators := 0
		for _, kw := range e.cfg.Categories[name].Keywords {
			indicators += counts[kw]
		}
		if indicators > 0 {
			hits = append(hits, score.CategoryHit{Name: name, Indicators: indicators})
		}
	}

	bd := score.CombineRisk(hits, e.cfg.Weights())

	// Confidence: short documents give weaker evidence; disagreement
	// between category contributions reduces it further.
	coverage := 1.0
	if doc.WordCount < riskEvidenceWords {
		coverage = float64(doc.WordCount) / riskEvidenceWords
	}
	signals := make([]float64, 0, len(bd.Categories))
	for _, name := range bd.Categories {
		w := e.cfg.Categories[name].Weight
		signals = append(signals, float64(bd.PerCategory[name])/float64(2*w))
	}
	confidence := score.Confidence(coverage, signals)

	s := score.NewRisk(bd.Value, confidence)
	return Output{
		WordCount:  doc.WordCount,
		Score:      &s,
		Risk:       &bd,
		Categories: bd.Categories,
	}, nil
}
