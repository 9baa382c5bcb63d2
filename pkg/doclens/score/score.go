package score

import (
	"math"
	"sort"
)

// Score bounds for each scoring dimension.
const (
	SentimentMin = 0
	SentimentMax = 100
	RiskMin      = 0
	RiskMax      = 20
	QualityMin   = 0
	QualityMax   = 100
)

// Risk level bucket boundaries, inclusive on the lower end:
// 0-6 low, 7-13 medium, 14-20 high.
const (
	riskMediumFloor = 7
	riskHighFloor   = 14
)

// Score is a bounded numeric value with an associated confidence and a
// human label. Value is always within [Min, Max] and Confidence within
// [0, 1]; the constructors clamp rather than error.
type Score struct {
	Value      int
	Min        int
	Max        int
	Confidence float64
	Label      string
}

// InBounds reports whether the score honors its declared range.
func (s Score) InBounds() bool {
	return s.Value >= s.Min && s.Value <= s.Max &&
		s.Confidence >= 0 && s.Confidence <= 1
}

// NewSentiment builds a sentiment score clamped to [0, 100].
func NewSentiment(value int, confidence float64, label string) Score {
	return Score{
		Value:      Clamp(value, SentimentMin, SentimentMax),
		Min:        SentimentMin,
		Max:        SentimentMax,
		Confidence: ClampConfidence(confidence),
		Label:      label,
	}
}

// NewRisk builds a risk score clamped to [0, 20]. The label is the risk
// level name derived from the clamped value.
func NewRisk(value int, confidence float64) Score {
	v := Clamp(value, RiskMin, RiskMax)
	return Score{
		Value:      v,
		Min:        RiskMin,
		Max:        RiskMax,
		Confidence: ClampConfidence(confidence),
		Label:      RiskLevel(v),
	}
}

// NewQuality builds a quality score clamped to [0, 100].
func NewQuality(value int, confidence float64, label string) Score {
	return Score{
		Value:      Clamp(value, QualityMin, QualityMax),
		Min:        QualityMin,
		Max:        QualityMax,
		Confidence: ClampConfidence(confidence),
		Label:      label,
	}
}

// RiskLevel maps a risk score to its level name.
func RiskLevel(value int) string {
	switch {
	case value >= riskHighFloor:
		return "High"
	case value >= riskMediumFloor:
		return "Medium"
	default:
		return "Low"
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampConfidence bounds f to [0, 1]. NaN collapses to 0.
func ClampConfidence(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// CategoryHit records how many indicators matched one risk category.
type CategoryHit struct {
	Name       string
	Indicators int
}

// RiskBreakdown explains how a combined risk score was produced. When
// the raw sum exceeds the upper bound the clip is explicit: Raw keeps
// the unclipped sum and Clipped is set.
type RiskBreakdown struct {
	PerCategory map[string]int
	Categories  []string
	Raw         int
	Value       int
	Clipped     bool
}

// CombineRisk sums per-category contributions. Each category contributes
// weight x indicator count, capped at twice its weight so one noisy
// category cannot dominate; the total is clipped at RiskMax.
func CombineRisk(hits []CategoryHit, weights map[string]int) RiskBreakdown {
	bd := RiskBreakdown{PerCategory: make(map[string]int, len(hits))}

	for _, h := range hits {
		if h.Indicators <= 0 {
			continue
		}
		w := weights[h.Name]
		if w <= 0 {
			continue
		}
		contrib := w * h.Indicators
		if contrib > 2*w {
			contrib = 2 * w
		}
		bd.PerCategory[h.Name] = contrib
		bd.Categories = append(bd.Categories, h.Name)
		bd.Raw += contrib
	}
	sort.Strings(bd.Categories)

	bd.Value = bd.Raw
	if bd.Value > RiskMax {
		bd.Value = RiskMax
		bd.Clipped = true
	}
	return bd
}

// Confidence derives a [0, 1] confidence from extractor coverage and
// signal agreement. Coverage is the fraction of expected signal kinds
// that were present; signals are normalized scores in [0, 1] whose
// spread reduces confidence.
//
// confidence = coverage x (0.5 + 0.5 x agreement), agreement = 1 - stdev
func Confidence(coverage float64, signals []float64) float64 {
	coverage = ClampConfidence(coverage)
	agreement := 1 - math.Min(1, stdev(signals))
	return ClampConfidence(coverage * (0.5 + 0.5*agreement))
}

// stdev computes the population standard deviation.
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
