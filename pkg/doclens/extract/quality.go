package extract

import (
	"strings"

	"github.com/cognicore/doclens/pkg/doclens/config"
	"github.com/cognicore/doclens/pkg/doclens/ingest"
	"github.com/cognicore/doclens/pkg/doclens/score"
)

// minSections is the paragraph count a well-formed document needs.
const minSections = 3

// QualityExtractor scores structural completeness: presence of an
// executive summary, financial data, clear recommendations, and
// well-formed sections. Missing elements become findings, not errors.
type QualityExtractor struct {
	cfg config.QualityConfig
}

// NewQualityExtractor creates a quality extractor from the point-value
// configuration.
func NewQualityExtractor(cfg config.QualityConfig) *QualityExtractor {
	return &QualityExtractor{cfg: cfg}
}

// Name implements Extractor.
func (e *QualityExtractor) Name() string { return StageQuality }

// Run implements Extractor. Without entity facts available it falls
// back to scanning the text for financial figures itself.
func (e *QualityExtractor) Run(doc ingest.Document) (Output, error) {
	return e.Assess(doc, nil)
}

// Assess scores the document, reusing already-extracted facts for the
// financial-data check when the caller has them.
func (e *QualityExtractor) Assess(doc ingest.Document, facts []Fact) (Output, error) {
	lower := strings.ToLower(doc.Text)

	hasSummary := strings.Contains(lower, "executive summary") ||
		strings.Contains(lower, "overview") ||
		strings.Contains(lower, "summary")
	hasFinancial := e.hasFinancialData(doc, facts)
	hasRecommendations := strings.Contains(lower, "recommend")
	hasStructure := countSections(doc.Text) >= minSections

	total := 0
	var findings []string
	var earned []float64

	check := func(present bool, points int, finding string) {
		if present {
			total += points
			earned = append(earned, 1)
			return
		}
		findings = append(findings, finding)
		earned = append(earned, 0)
	}

	check(hasSummary, e.cfg.SummaryPoints, "Executive summary missing")
	check(hasFinancial, e.cfg.FinancialPoints, "Financial data absent")
	check(hasRecommendations, e.cfg.RecommendationPoints, "No clear recommendations")
	check(hasStructure, e.cfg.StructurePoints, "Weak section structure")

	confidence := score.Confidence(1.0, earned)
	s := score.NewQuality(total, confidence, qualityLabel(total))

	return Output{
		WordCount:        doc.WordCount,
		Score:            &s,
		Findings:         findings,
		HasFinancialData: hasFinancial,
	}, nil
}

func (e *QualityExtractor) hasFinancialData(doc ingest.Document, facts []Fact) bool {
	if facts != nil {
		for _, f := range facts {
			if f.Kind == FactAmount || f.Kind == FactMetric {
				return true
			}
		}
		return false
	}
	return amountPattern.MatchString(doc.Text) || percentPattern.MatchString(doc.Text)
}

// qualityLabel buckets the 0-100 quality score.
func qualityLabel(total int) string {
	switch {
	case total >= 85:
		return "excellent"
	case total >= 70:
		return "good"
	case total >= 50:
		return "fair"
	default:
		return "poor"
	}
}

// countSections counts blank-line separated paragraphs.
func countSections(text string) int {
	sections := 0
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			sections++
		}
	}
	return sections
}
