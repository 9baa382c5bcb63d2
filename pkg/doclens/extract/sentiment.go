package extract

import (
	"math"

	"github.com/cognicore/doclens/pkg/doclens/config"
	"github.com/cognicore/doclens/pkg/doclens/ingest"
	"github.com/cognicore/doclens/pkg/doclens/score"
)

// Sentiment label thresholds on the 0-100 scale.
const (
	positiveFloor = 56
	negativeCeil  = 44
)

// SentimentExtractor scores lexical polarity on a 0-100 scale. Tokens
// in the leading head fraction of the document (headline and summary
// territory) weigh more than body tokens.
type SentimentExtractor struct {
	cfg      config.SentimentConfig
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewSentimentExtractor creates a sentiment extractor from the lexicon
// configuration.
func NewSentimentExtractor(cfg config.SentimentConfig) *SentimentExtractor {
	e := &SentimentExtractor{
		cfg:      cfg,
		positive: make(map[string]struct{}, len(cfg.Positive)),
		negative: make(map[string]struct{}, len(cfg.Negative)),
	}
	for _, w := range cfg.Positive {
		e.positive[w] = struct{}{}
	}
	for _, w := range cfg.Negative {
		e.negative[w] = struct{}{}
	}
	return e
}

// Name implements Extractor.
func (e *SentimentExtractor) Name() string { return StageSentiment }

// Run implements Extractor.
func (e *SentimentExtractor) Run(doc ingest.Document) (Output, error) {
	tokens := ingest.Tokenize(doc.Text)
	headLen := int(float64(len(tokens)) * e.cfg.HeadFraction)

	var weightedPos, weightedNeg float64
	var rawPos, rawNeg int

	for i, tok := range tokens {
		weight := 1.0
		if i < headLen {
			weight = e.cfg.HeadWeight
		}
		if _, ok := e.positive[tok]; ok {
			weightedPos += weight
			rawPos++
			continue
		}
		if _, ok := e.negative[tok]; ok {
			weightedNeg += weight
			rawNeg++
		}
	}

	margin := weightedPos - weightedNeg
	value := 50 + int(math.Round(5*margin))

	label := "neutral"
	emotion := "neutral"
	switch {
	case value >= positiveFloor:
		label = "positive"
		emotion = "optimistic"
	case value <= negativeCeil:
		label = "negative"
		emotion = "cautious"
	}

	// A wider polarity margin means clearer evidence for the label.
	confidence := math.Min(0.95, 0.7+0.05*math.Abs(margin))

	s := score.NewSentiment(value, confidence, label)
	return Output{
		WordCount: doc.WordCount,
		Score:     &s,
		Emotion:   emotion,
		Tone:      businessTone(rawPos, rawNeg),
	}, nil
}

// businessTone classifies the overall business tone from the raw
// indicator counts.
func businessTone(pos, neg int) string {
	switch {
	case pos == 0 && neg == 0:
		return "neutral"
	case float64(pos) > 1.5*float64(neg):
		return "optimistic"
	case float64(neg) > 1.5*float64(pos):
		return "pessimistic"
	default:
		return "balanced"
	}
}
