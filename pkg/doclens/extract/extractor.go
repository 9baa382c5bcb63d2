package extract

import (
	"github.com/cognicore/doclens/pkg/doclens/ingest"
	"github.com/cognicore/doclens/pkg/doclens/score"
)

// Stage names for the standard analysis graph. Each extractor reports
// its own name through Name() so pipeline definitions and result
// lookups agree.
const (
	StageEntities  = "extract_entities"
	StageSentiment = "analyze_sentiment"
	StageRisk      = "assess_risk"
	StageQuality   = "assess_quality"
)

// FactKind classifies an extracted fact.
type FactKind string

const (
	FactEntity FactKind = "entity"
	FactDate   FactKind = "date"
	FactAmount FactKind = "amount"
	FactMetric FactKind = "metric"
)

// Fact is a typed value found in the document text, with the byte span
// it was matched at. Duplicates are allowed; one Fact per occurrence.
type Fact struct {
	Kind  FactKind
	Value string
	Start int
	End   int
}

// Output is the partial result of one extractor. Fields not produced by
// a given extractor stay at their zero value.
type Output struct {
	WordCount        int
	Facts            []Fact
	Score            *score.Score
	Risk             *score.RiskBreakdown
	Categories       []string
	Findings         []string
	Emotion          string
	Tone             string
	FocusArea        string
	HasFinancialData bool
}

// Extractor is the shared capability all feature extractors implement.
// Run must be a pure function of the Document: no shared mutable state,
// safe to call concurrently and in any order.
type Extractor interface {
	Name() string
	Run(doc ingest.Document) (Output, error)
}
