package extract

import (
	"regexp"
	"sort"

	"github.com/cognicore/doclens/pkg/doclens/ingest"
)

var (
	orgPattern = regexp.MustCompile(
		`\b[A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*\s+(?:Corp|Corporation|Inc|Ltd|LLC|Group|Holdings)\b`)
	orgSuffixPattern = regexp.MustCompile(`\b[A-Z][A-Za-z]+(?:Corp|Inc|Ltd)\b`)
	amountPattern    = regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d+)?(?:\s?(?:million|billion)|[MBK])?`)
	percentPattern   = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*%`)
	datePattern      = regexp.MustCompile(
		`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)(?:\s+\d{1,2},)?\s+\d{4}\b`)
	durationPattern = regexp.MustCompile(`\b\d+\s+(?:day|week|month|quarter|year)s?\b`)
)

// EntityExtractor scans text for organization names, dates, currency
// amounts and percentages, emitting one Fact per match with its span.
// It also picks the document's primary focus area from a topic lexicon.
type EntityExtractor struct {
	topics map[string][]string
}

// NewEntityExtractor creates an entity extractor with the given topic
// lexicon (topic name -> keywords).
func NewEntityExtractor(topics map[string][]string) *EntityExtractor {
	return &EntityExtractor{topics: topics}
}

// Name implements Extractor.
func (e *EntityExtractor) Name() string { return StageEntities }

// Run implements Extractor.
func (e *EntityExtractor) Run(doc ingest.Document) (Output, error) {
	var facts []Fact

	collect := func(re *regexp.Regexp, kind FactKind) {
		for _, span := range re.FindAllStringIndex(doc.Text, -1) {
			facts = append(facts, Fact{
				Kind:  kind,
				Value: doc.Text[span[0]:span[1]],
				Start: span[0],
				End:   span[1],
			})
		}
	}

	collect(orgPattern, FactEntity)
	collect(orgSuffixPattern, FactEntity)
	collect(amountPattern, FactAmount)
	collect(percentPattern, FactMetric)
	collect(datePattern, FactDate)
	collect(durationPattern, FactDate)

	facts = dedupeSpans(facts)
	sort.SliceStable(facts, func(i, j int) bool {
		if facts[i].Start != facts[j].Start {
			return facts[i].Start < facts[j].Start
		}
		return facts[i].End < facts[j].End
	})

	hasFinancial := false
	for _, f := range facts {
		if f.Kind == FactAmount || f.Kind == FactMetric {
			hasFinancial = true
			break
		}
	}

	return Output{
		WordCount:        doc.WordCount,
		Facts:            facts,
		FocusArea:        e.focusArea(doc),
		HasFinancialData: hasFinancial,
	}, nil
}

// focusArea counts topic keyword hits and returns the dominant topic.
// Ties break alphabetically so the choice is deterministic.
func (e *EntityExtractor) focusArea(doc ingest.Document) string {
	if len(e.topics) == 0 {
		return "general"
	}

	hits := make(map[string]int, len(e.topics))
	tokens := ingest.Tokenize(doc.Text)
	tokenSet := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok]++
	}

	for topic, keywords := range e.topics {
		for _, kw := range keywords {
			hits[topic] += tokenSet[kw]
		}
	}

	best, bestCount := "general", 0
	names := make([]string, 0, len(hits))
	for topic := range hits {
		names = append(names, topic)
	}
	sort.Strings(names)
	for _, topic := range names {
		if hits[topic] > bestCount {
			best, bestCount = topic, hits[topic]
		}
	}
	return best
}

// dedupeSpans removes facts fully contained inside another fact of the
// same kind, keeping the longest match. Orgs matched by both patterns
// collapse to one Fact.
func dedupeSpans(facts []Fact) []Fact {
	out := facts[:0]
	for i, f := range facts {
		contained := false
		for j, other := range facts {
			if i == j || f.Kind != other.Kind {
				continue
			}
			if other.Start <= f.Start && f.End <= other.End && (other.End-other.Start) > (f.End-f.Start) {
				contained = true
				break
			}
			// Identical spans keep the first occurrence only.
			if other.Start == f.Start && other.End == f.End && j < i {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, f)
		}
	}
	return out
}
